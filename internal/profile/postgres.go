package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/scholarastudy-create/scholarastudy/pkg/pg"
)

// DB is the subset of pgxpool.Pool used by the store, kept as an interface so
// tests can exercise query building without a live database.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store against the profiles table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a profile store backed by the given connection.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, email, subscription_plan, subscription_status,
	subscription_start_date, subscription_end_date,
	stripe_customer_id, stripe_subscription_id, updated_at`

func (s *PostgresStore) FindByClientRef(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, selectColumns)
	return s.scanOne(ctx, query, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE lower(email) = lower($1)`, selectColumns)
	return s.scanOne(ctx, query, email)
}

func (s *PostgresStore) FindByCustomerRef(ctx context.Context, customerID string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE stripe_customer_id = $1`, selectColumns)
	return s.scanOne(ctx, query, customerID)
}

func (s *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*Profile, error) {
	var (
		p          Profile
		customerID *string
		subID      *string
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.Email,
		&p.Plan,
		&p.Status,
		&p.SubscriptionStart,
		&p.SubscriptionEnd,
		&customerID,
		&subID,
		&p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if customerID != nil {
		p.StripeCustomerID = *customerID
	}
	if subID != nil {
		p.StripeSubscriptionID = *subID
	}
	return &p, nil
}

// Update writes the set fields of the partial update in a single UPDATE
// statement. An update matching no rows maps to ErrNotFound.
func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, update Update) error {
	query, args, err := buildUpdateQuery(id, update)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildUpdateQuery assembles the SET clause from the non-nil fields of the
// update. updated_at is always written so concurrent readers can order
// observations.
func buildUpdateQuery(id uuid.UUID, update Update) (string, []any, error) {
	if update.IsEmpty() {
		return "", nil, ErrEmptyUpdate
	}

	set := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Plan != nil {
		add("subscription_plan", *update.Plan)
	}
	if update.Status != nil {
		add("subscription_status", *update.Status)
	}
	if update.SubscriptionStart != nil {
		add("subscription_start_date", *update.SubscriptionStart)
	}
	if update.SubscriptionEnd != nil {
		add("subscription_end_date", *update.SubscriptionEnd)
	}
	if update.StripeCustomerID != nil {
		add("stripe_customer_id", *update.StripeCustomerID)
	}
	if update.StripeSubscriptionID != nil {
		add("stripe_subscription_id", *update.StripeSubscriptionID)
	}

	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	return query, args, nil
}

var _ Store = (*PostgresStore)(nil)
