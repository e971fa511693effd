package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scholarastudy-create/scholarastudy/internal/profile"
	"github.com/scholarastudy-create/scholarastudy/pkg/logger"
)

// Service runs the webhook reconciliation pipeline: verify, classify, dedup,
// resolve, reconcile, persist. Errors returned from HandleWebhook are
// transport-grade and mean the delivery should be retried; everything the
// service chooses to skip (ignored types, duplicates, unresolvable
// subscribers) is logged and acknowledged.
type Service struct {
	catalog    Catalog
	store      profile.Store
	gateway    ProviderGateway
	reconciler Reconciler
	resolver   Resolver
	dedup      DuplicateChecker
	notifier   Notifier
	log        *slog.Logger
	now        func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithDuplicateChecker installs an event-ID guard that skips redeliveries.
func WithDuplicateChecker(c DuplicateChecker) Option {
	return func(s *Service) { s.dedup = c }
}

// WithNotifier installs a subscriber notifier for payment failures.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the pipeline. catalog, store, and gateway are required;
// the rest default to off (dedup, notifier) or sane values (logger, clock).
func NewService(catalog Catalog, store profile.Store, gateway ProviderGateway, opts ...Option) *Service {
	s := &Service{
		catalog:    catalog,
		store:      store,
		gateway:    gateway,
		reconciler: NewReconciler(catalog),
		log:        slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewResolver(store, gateway, s.log)
	return s
}

// HandleWebhook processes one raw delivery. The returned error is either
// ErrInvalidSignature or a retryable transport failure; a nil return means
// the delivery is settled and must be acknowledged.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	ev, err := s.gateway.VerifyAndParse(payload, signatureHeader)
	if err != nil {
		return err
	}

	action := Classify(ev.Type)
	log := s.log.With(
		logger.EventID(ev.ID),
		logger.EventType(ev.Type),
		slog.String("action", string(action)),
	)

	if action == ActionIgnore {
		log.DebugContext(ctx, "ignoring event type")
		return nil
	}

	if s.dedup != nil {
		seen, err := s.dedup.AlreadyProcessed(ctx, ev.ID)
		if err != nil {
			// Fail open: transitions are idempotent, a repeat is harmless.
			log.WarnContext(ctx, "duplicate check unavailable", logger.Error(err))
		} else if seen {
			log.InfoContext(ctx, "skipping duplicate delivery")
			return nil
		}
	}

	prof, err := s.resolver.Resolve(ctx, action, ev.Object)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			log.WarnContext(ctx, "no profile matches event, acknowledging",
				slog.String("customer_ref", ev.Object.Customer.String()))
			return nil
		}
		return err
	}
	log = log.With(logger.AccountID(prof.ID.String()))

	upd, err := s.transition(ctx, action, prof, ev.Object)
	if err != nil {
		return err
	}

	// An update event can carry nothing actionable, e.g. an unmapped provider
	// status with no price line. Acknowledge instead of asking for redelivery.
	if upd.IsEmpty() {
		log.InfoContext(ctx, "event carries no state change, acknowledging")
		s.markProcessed(ctx, log, ev.ID)
		return nil
	}

	if err := s.store.Update(ctx, prof.ID, upd); err != nil {
		return fmt.Errorf("persist transition: %w", err)
	}
	log.InfoContext(ctx, "subscription reconciled")
	s.markProcessed(ctx, log, ev.ID)

	if action == ActionMarkPastDue {
		s.notifyPaymentFailed(ctx, log, prof)
	}
	return nil
}

// transition computes the partial update for the classified action. Only
// activation performs provider I/O (the line-item fetch); its failure is
// returned as retryable rather than guessing a tier.
func (s *Service) transition(ctx context.Context, action Action, prof *profile.Profile, obj EventObject) (profile.Update, error) {
	now := s.now()

	switch action {
	case ActionActivate:
		priceID, err := s.gateway.FirstPriceID(ctx, obj.ID)
		if err != nil {
			return profile.Update{}, fmt.Errorf("fetch checkout line items: %w", err)
		}
		return s.reconciler.Activate(prof, obj.Customer.String(), obj.Subscription.String(), priceID, now), nil
	case ActionUpdate:
		return s.reconciler.Update(prof, obj.Status, obj.FirstPriceID(), now), nil
	case ActionCancel:
		return s.reconciler.Cancel(now), nil
	case ActionRenew:
		return s.reconciler.Renew(prof, obj.FirstPriceID(), now), nil
	case ActionMarkPastDue:
		return s.reconciler.MarkPastDue(now), nil
	default:
		return profile.Update{}, fmt.Errorf("no transition for action %q", action)
	}
}

// markProcessed records the event as settled once its transition is durable.
// Marking after the write means a failure anywhere in the pipeline leaves the
// event unmarked for redelivery; a failure of the mark itself only costs one
// redundant idempotent replay.
func (s *Service) markProcessed(ctx context.Context, log *slog.Logger, eventID string) {
	if s.dedup == nil {
		return
	}
	if err := s.dedup.MarkProcessed(ctx, eventID); err != nil {
		log.WarnContext(ctx, "event id not recorded for deduplication", logger.Error(err))
	}
}

func (s *Service) notifyPaymentFailed(ctx context.Context, log *slog.Logger, prof *profile.Profile) {
	if s.notifier == nil || prof.Email == "" {
		return
	}
	if err := s.notifier.PaymentFailed(ctx, prof.Email); err != nil {
		log.ErrorContext(ctx, "payment failure notification not sent", logger.Error(err))
	}
}

// PortalLink creates a billing portal session for the account and returns its
// URL. Accounts that never completed a checkout have no customer reference
// and get ErrMissingCustomerRef.
func (s *Service) PortalLink(ctx context.Context, accountID uuid.UUID, returnURL string) (string, error) {
	prof, err := s.store.FindByClientRef(ctx, accountID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("load profile: %w", err)
	}
	if prof.StripeCustomerID == "" {
		return "", ErrMissingCustomerRef
	}

	url, err := s.gateway.PortalSession(ctx, prof.StripeCustomerID, returnURL)
	if err != nil {
		return "", err
	}
	return url, nil
}
