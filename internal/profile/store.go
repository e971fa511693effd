package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound signals that no profile matched the lookup key. Callers
	// treat it as a resolution miss, not a transport failure.
	ErrNotFound = errors.New("profile not found")
	// ErrEmptyUpdate signals an Update carrying no field changes.
	ErrEmptyUpdate = errors.New("profile update has no fields set")
)

// Store is the persistence gateway for account subscription records. Every
// lookup may fail with ErrNotFound or a transport error; the distinction
// matters because only transport errors should trigger webhook redelivery.
type Store interface {
	// FindByClientRef locates a profile by the account identifier that the
	// frontend attaches to checkout sessions as client_reference_id.
	FindByClientRef(ctx context.Context, id uuid.UUID) (*Profile, error)

	// FindByEmail locates a profile by its email address.
	FindByEmail(ctx context.Context, email string) (*Profile, error)

	// FindByCustomerRef locates a profile by its stored Stripe customer ID.
	FindByCustomerRef(ctx context.Context, customerID string) (*Profile, error)

	// Update applies a partial mutation to a single profile.
	Update(ctx context.Context, id uuid.UUID, update Update) error
}
