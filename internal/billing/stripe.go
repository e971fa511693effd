package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	portalsession "github.com/stripe/stripe-go/v83/billingportal/session"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/customer"
	"github.com/stripe/stripe-go/v83/webhook"
)

var (
	ErrMissingStripeKey     = errors.New("stripe secret key is required")
	ErrMissingWebhookSecret = errors.New("stripe webhook secret is required")
)

// StripeConfig holds the Stripe credentials and portal defaults.
type StripeConfig struct {
	SecretKey       string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret   string `env:"STRIPE_WEBHOOK_SECRET,required"`
	PortalReturnURL string `env:"STRIPE_PORTAL_RETURN_URL" envDefault:"https://scholarastudy.com/account"`
}

// StripeGateway is the production ProviderGateway over the Stripe SDK.
type StripeGateway struct {
	cfg StripeConfig
}

// NewStripeGateway validates the credentials and sets the SDK's global API
// key. The service talks to a single Stripe account, so the global key is
// fine here; a multi-tenant deployment would need per-request clients.
func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingStripeKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	stripe.Key = cfg.SecretKey

	return &StripeGateway{cfg: cfg}, nil
}

// VerifyAndParse checks the delivery's HMAC signature against the endpoint
// secret and decodes the event. API version mismatches are tolerated: the
// thin EventObject decode only reads fields that are stable across versions.
func (g *StripeGateway) VerifyAndParse(payload []byte, signatureHeader string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, errors.Join(ErrInvalidSignature, err)
	}

	return NewEvent(ev.ID, string(ev.Type), ev.Data.Raw)
}

// FirstPriceID fetches the checkout session's line items and returns the
// first price ID, or empty when the session has none.
func (g *StripeGateway) FirstPriceID(ctx context.Context, checkoutSessionID string) (string, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(checkoutSessionID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := session.ListLineItems(params)
	for iter.Next() {
		if item := iter.LineItem(); item.Price != nil {
			return item.Price.ID, nil
		}
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list checkout line items: %w", err)
	}

	return "", nil
}

// CustomerEmail fetches the customer record and returns its email address.
func (g *StripeGateway) CustomerEmail(ctx context.Context, customerRef string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := customer.Get(customerRef, params)
	if err != nil {
		return "", fmt.Errorf("fetch customer %s: %w", customerRef, err)
	}

	return c.Email, nil
}

// PortalSession creates a billing portal session for the customer and returns
// its URL. An empty returnURL falls back to the configured default.
func (g *StripeGateway) PortalSession(ctx context.Context, customerRef, returnURL string) (string, error) {
	if returnURL == "" {
		returnURL = g.cfg.PortalReturnURL
	}

	params := &stripe.BillingPortalSessionParams{
		Customer: stripe.String(customerRef),
	}
	if returnURL != "" {
		params.ReturnURL = stripe.String(returnURL)
	}
	params.Context = ctx

	s, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}

	return s.URL, nil
}
