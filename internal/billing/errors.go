package billing

import "errors"

var (
	// ErrInvalidSignature signals that the delivery's signature header failed
	// verification. The handler maps it to HTTP 400 and the delivery is never
	// retried.
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrProfileNotFound signals that every resolution strategy was exhausted
	// without locating a subscriber. The service acknowledges the delivery so
	// the provider does not retry an event this deployment cannot attribute.
	ErrProfileNotFound = errors.New("no profile matches the event payload")

	// ErrMissingCustomerRef signals a portal-link request for an account that
	// has no stored Stripe customer, i.e. has never completed a checkout.
	ErrMissingCustomerRef = errors.New("profile has no stripe customer reference")

	// ErrInvalidCatalog signals a catalog file that parsed but describes no
	// usable price mappings.
	ErrInvalidCatalog = errors.New("catalog contains no price mappings")
)
