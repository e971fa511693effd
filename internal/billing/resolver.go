package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/scholarastudy-create/scholarastudy/internal/profile"
	"github.com/scholarastudy-create/scholarastudy/pkg/logger"
)

// Resolver locates the account behind an event payload. Strategies run in
// order of reliability and the first hit wins:
//
//  1. client_reference_id — the account UUID the frontend pins to checkout.
//  2. email — payload emails first, then (for activations only) the email on
//     the provider's customer record.
//  3. the provider customer reference stored on a previous activation.
//
// A store miss falls through to the next strategy; a store transport error
// aborts resolution so the delivery is retried. Directory failures count as
// "no email" because a flaky provider API must not block strategies 2b–3.
type Resolver struct {
	store     profile.Store
	directory CustomerDirectory
	log       *slog.Logger
}

// NewResolver returns a resolver over the given store. The directory is
// optional; without it the secondary email lookup is skipped.
func NewResolver(store profile.Store, directory CustomerDirectory, log *slog.Logger) Resolver {
	if log == nil {
		log = slog.Default()
	}
	return Resolver{store: store, directory: directory, log: log}
}

// Resolve returns the profile the event belongs to, or ErrProfileNotFound
// when every strategy is exhausted.
func (r Resolver) Resolve(ctx context.Context, action Action, obj EventObject) (*profile.Profile, error) {
	if ref := obj.ClientReferenceID; ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			r.log.WarnContext(ctx, "ignoring malformed client reference",
				slog.String("client_reference_id", ref))
		} else {
			p, err := r.store.FindByClientRef(ctx, id)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, profile.ErrNotFound) {
				return nil, fmt.Errorf("resolve by client reference: %w", err)
			}
		}
	}

	for _, email := range r.candidateEmails(ctx, action, obj) {
		p, err := r.store.FindByEmail(ctx, email)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, profile.ErrNotFound) {
			return nil, fmt.Errorf("resolve by email: %w", err)
		}
	}

	if ref := obj.Customer.String(); ref != "" {
		p, err := r.store.FindByCustomerRef(ctx, ref)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, profile.ErrNotFound) {
			return nil, fmt.Errorf("resolve by customer reference: %w", err)
		}
	}

	return nil, ErrProfileNotFound
}

// candidateEmails collects payload emails in precedence order, deduplicated.
// The provider directory is consulted only for activations: that is the one
// moment the customer may not yet be linked to any profile, and the extra API
// round-trip is not worth paying on every subscription event.
func (r Resolver) candidateEmails(ctx context.Context, action Action, obj EventObject) []string {
	var out []string
	seen := make(map[string]struct{}, 3)
	add := func(email string) {
		if email == "" {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}

	add(obj.CustomerEmail)
	add(obj.CustomerDetails.Email)

	if action == ActionActivate && len(out) == 0 && r.directory != nil && obj.Customer != "" {
		email, err := r.directory.CustomerEmail(ctx, obj.Customer.String())
		if err != nil {
			r.log.WarnContext(ctx, "customer directory lookup failed",
				logger.Error(err),
				slog.String("customer_ref", obj.Customer.String()))
		} else {
			add(email)
		}
	}

	return out
}
