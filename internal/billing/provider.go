package billing

import "context"

// SignatureVerifier authenticates a raw webhook delivery and decodes it into
// an Event. Verification failures must be reported as ErrInvalidSignature.
type SignatureVerifier interface {
	VerifyAndParse(payload []byte, signatureHeader string) (Event, error)
}

// LineItemSource fetches the price behind a checkout session's first line
// item. Checkout webhook payloads omit line items, so activation needs this
// secondary lookup.
type LineItemSource interface {
	FirstPriceID(ctx context.Context, checkoutSessionID string) (string, error)
}

// CustomerDirectory resolves a provider customer reference to the email
// address on the customer record.
type CustomerDirectory interface {
	CustomerEmail(ctx context.Context, customerRef string) (string, error)
}

// PortalLinker creates a self-service billing portal session and returns its
// URL.
type PortalLinker interface {
	PortalSession(ctx context.Context, customerRef, returnURL string) (string, error)
}

// ProviderGateway bundles the payment-provider operations the service needs.
// StripeGateway is the production implementation; tests supply func-field
// fakes.
type ProviderGateway interface {
	SignatureVerifier
	LineItemSource
	CustomerDirectory
	PortalLinker
}

// DuplicateChecker tracks settled event IDs so redeliveries can be skipped.
// Checking and marking are separate so the service can mark only after the
// transition is persisted; a delivery that fails mid-pipeline stays unmarked
// and its redelivery is processed. Implementations are advisory: the service
// fails open on checker errors because every transition is idempotent anyway.
type DuplicateChecker interface {
	// AlreadyProcessed reports whether the event ID has been marked.
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed records the event ID as settled.
	MarkProcessed(ctx context.Context, eventID string) error
}

// Notifier delivers subscriber-facing billing notifications. All methods are
// best-effort; failures never fail the webhook.
type Notifier interface {
	PaymentFailed(ctx context.Context, email string) error
}
