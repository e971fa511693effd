package billing_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/scholarastudy-create/scholarastudy/internal/billing"
	"github.com/scholarastudy-create/scholarastudy/internal/profile"
)

type storeMock struct {
	findByClientRef   func(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	findByEmail       func(ctx context.Context, email string) (*profile.Profile, error)
	findByCustomerRef func(ctx context.Context, customerID string) (*profile.Profile, error)
	update            func(ctx context.Context, id uuid.UUID, upd profile.Update) error
}

func (m *storeMock) FindByClientRef(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	if m.findByClientRef == nil {
		return nil, profile.ErrNotFound
	}
	return m.findByClientRef(ctx, id)
}

func (m *storeMock) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	if m.findByEmail == nil {
		return nil, profile.ErrNotFound
	}
	return m.findByEmail(ctx, email)
}

func (m *storeMock) FindByCustomerRef(ctx context.Context, customerID string) (*profile.Profile, error) {
	if m.findByCustomerRef == nil {
		return nil, profile.ErrNotFound
	}
	return m.findByCustomerRef(ctx, customerID)
}

func (m *storeMock) Update(ctx context.Context, id uuid.UUID, upd profile.Update) error {
	if m.update == nil {
		return nil
	}
	return m.update(ctx, id, upd)
}

type gatewayMock struct {
	verifyAndParse func(payload []byte, signatureHeader string) (billing.Event, error)
	firstPriceID   func(ctx context.Context, checkoutSessionID string) (string, error)
	customerEmail  func(ctx context.Context, customerRef string) (string, error)
	portalSession  func(ctx context.Context, customerRef, returnURL string) (string, error)
}

func (m *gatewayMock) VerifyAndParse(payload []byte, signatureHeader string) (billing.Event, error) {
	if m.verifyAndParse == nil {
		return billing.Event{}, billing.ErrInvalidSignature
	}
	return m.verifyAndParse(payload, signatureHeader)
}

func (m *gatewayMock) FirstPriceID(ctx context.Context, checkoutSessionID string) (string, error) {
	if m.firstPriceID == nil {
		return "", nil
	}
	return m.firstPriceID(ctx, checkoutSessionID)
}

func (m *gatewayMock) CustomerEmail(ctx context.Context, customerRef string) (string, error) {
	if m.customerEmail == nil {
		return "", nil
	}
	return m.customerEmail(ctx, customerRef)
}

func (m *gatewayMock) PortalSession(ctx context.Context, customerRef, returnURL string) (string, error) {
	if m.portalSession == nil {
		return "", nil
	}
	return m.portalSession(ctx, customerRef, returnURL)
}

type checkerMock struct {
	alreadyProcessed func(ctx context.Context, eventID string) (bool, error)
	markProcessed    func(ctx context.Context, eventID string) error
}

func (m *checkerMock) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.alreadyProcessed == nil {
		return false, nil
	}
	return m.alreadyProcessed(ctx, eventID)
}

func (m *checkerMock) MarkProcessed(ctx context.Context, eventID string) error {
	if m.markProcessed == nil {
		return nil
	}
	return m.markProcessed(ctx, eventID)
}

// memoryChecker behaves like the redis deduper: membership check plus an
// explicit mark, kept in memory.
type memoryChecker struct {
	seen map[string]bool
}

func newMemoryChecker() *memoryChecker {
	return &memoryChecker{seen: make(map[string]bool)}
}

func (m *memoryChecker) AlreadyProcessed(_ context.Context, eventID string) (bool, error) {
	return m.seen[eventID], nil
}

func (m *memoryChecker) MarkProcessed(_ context.Context, eventID string) error {
	m.seen[eventID] = true
	return nil
}

type notifierMock struct {
	paymentFailed func(ctx context.Context, email string) error
}

func (m *notifierMock) PaymentFailed(ctx context.Context, email string) error {
	if m.paymentFailed == nil {
		return nil
	}
	return m.paymentFailed(ctx, email)
}
