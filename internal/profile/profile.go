package profile

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is the entitlement level granted to an account.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanPro     PlanTier = "pro"
	PlanPremium PlanTier = "premium"
)

// Status is the current state of an account's subscription.
type Status string

const (
	StatusInactive  Status = "inactive"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	// StatusExpired is reachable through provider events reporting an
	// incomplete_expired subscription and through the time-based expiry
	// sweep that runs outside this service.
	StatusExpired Status = "expired"
)

// Profile is the account subscription record. It is created at signup by the
// auth stack; this service only mutates the subscription fields.
type Profile struct {
	ID                   uuid.UUID
	Email                string
	Plan                 PlanTier
	Status               Status
	SubscriptionStart    *time.Time
	SubscriptionEnd      *time.Time
	StripeCustomerID     string
	StripeSubscriptionID string
	UpdatedAt            time.Time
}

// IsActive reports whether the subscription is currently active.
func (p *Profile) IsActive() bool {
	return p.Status == StatusActive
}

// Update is a partial mutation of a profile's subscription fields. Nil fields
// are left untouched, which keeps every reconciliation transition a
// single-record, single-statement write.
type Update struct {
	Plan                 *PlanTier
	Status               *Status
	SubscriptionStart    *time.Time
	SubscriptionEnd      *time.Time
	StripeCustomerID     *string
	StripeSubscriptionID *string
	UpdatedAt            time.Time
}

// IsEmpty reports whether the update carries no field changes.
func (u Update) IsEmpty() bool {
	return u.Plan == nil &&
		u.Status == nil &&
		u.SubscriptionStart == nil &&
		u.SubscriptionEnd == nil &&
		u.StripeCustomerID == nil &&
		u.StripeSubscriptionID == nil
}
