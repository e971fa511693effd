package billing

import (
	"time"

	"github.com/scholarastudy-create/scholarastudy/internal/profile"
)

// Reconciler computes subscription state transitions. Every method is a pure
// function of (current record, event data, now) returning a partial update;
// persistence and provider I/O stay with the caller, which keeps each
// transition trivially testable and safely re-runnable on redelivery.
type Reconciler struct {
	catalog Catalog
}

// NewReconciler returns a reconciler over the given price catalog.
func NewReconciler(catalog Catalog) Reconciler {
	return Reconciler{catalog: catalog}
}

// Activate grants the entitlement purchased in a completed checkout. The
// transition is keyed off the external subscription reference: when the stored
// reference already matches the event's, a redelivered or duplicate checkout
// only re-asserts the active status instead of resetting the paid window.
func (r Reconciler) Activate(current *profile.Profile, customerRef, subscriptionRef, priceID string, now time.Time) profile.Update {
	upd := profile.Update{
		Status:    ptr(profile.StatusActive),
		UpdatedAt: now,
	}
	if customerRef != "" {
		upd.StripeCustomerID = &customerRef
	}

	if subscriptionRef != "" && current.StripeSubscriptionID == subscriptionRef {
		return upd
	}

	plan := r.catalog.PlanFor(priceID)
	end := r.catalog.PeriodFor(priceID).Extend(now)

	upd.Plan = &plan
	upd.SubscriptionStart = &now
	upd.SubscriptionEnd = &end
	if subscriptionRef != "" {
		upd.StripeSubscriptionID = &subscriptionRef
	}
	return upd
}

// Update mirrors the provider's view of an existing subscription: tier from
// the subscription's current price, status mapped from the provider's
// vocabulary. The billing window is never touched here; only renewal events
// move it. An empty price leaves the tier unchanged, and an unmapped provider
// status leaves the stored status unchanged rather than guessing.
func (r Reconciler) Update(current *profile.Profile, providerStatus, priceID string, now time.Time) profile.Update {
	upd := profile.Update{UpdatedAt: now}

	if priceID != "" {
		plan := r.catalog.PlanFor(priceID)
		upd.Plan = &plan
	}
	if status, ok := statusFromProvider(providerStatus); ok {
		upd.Status = &status
	}
	return upd
}

// Cancel revokes the entitlement unconditionally: tier back to free, status
// cancelled. Idempotent, so a redelivered deletion is harmless.
func (r Reconciler) Cancel(now time.Time) profile.Update {
	return profile.Update{
		Plan:      ptr(profile.PlanFree),
		Status:    ptr(profile.StatusCancelled),
		UpdatedAt: now,
	}
}

// Renew extends the billing window after a paid invoice. The new end is one
// billing period past max(now, current end), so a late delivery never moves
// the window backward and an early renewal stacks onto remaining paid time.
func (r Reconciler) Renew(current *profile.Profile, priceID string, now time.Time) profile.Update {
	period := PeriodMonthly
	upd := profile.Update{
		Status:    ptr(profile.StatusActive),
		UpdatedAt: now,
	}
	if priceID != "" {
		plan := r.catalog.PlanFor(priceID)
		upd.Plan = &plan
		period = r.catalog.PeriodFor(priceID)
	}

	base := now
	if current.SubscriptionEnd != nil && current.SubscriptionEnd.After(now) {
		base = *current.SubscriptionEnd
	}
	end := period.Extend(base)
	upd.SubscriptionEnd = &end
	return upd
}

// MarkPastDue flags a failed payment. Entitlement and billing window stay as
// they are; the provider will follow up with a subscription update or a
// deletion once its retry schedule runs out.
func (r Reconciler) MarkPastDue(now time.Time) profile.Update {
	return profile.Update{
		Status:    ptr(profile.StatusPastDue),
		UpdatedAt: now,
	}
}

// statusFromProvider maps Stripe subscription statuses onto the local
// vocabulary. Unknown statuses report ok=false so callers keep the stored
// status instead of clobbering it.
func statusFromProvider(s string) (profile.Status, bool) {
	switch s {
	case "active", "trialing":
		return profile.StatusActive, true
	case "past_due", "unpaid":
		return profile.StatusPastDue, true
	case "canceled":
		return profile.StatusCancelled, true
	case "incomplete":
		return profile.StatusInactive, true
	case "incomplete_expired":
		return profile.StatusExpired, true
	default:
		return "", false
	}
}

func ptr[T any](v T) *T { return &v }
