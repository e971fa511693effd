package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarastudy-create/scholarastudy/internal/billing"
	"github.com/scholarastudy-create/scholarastudy/internal/profile"
)

const (
	proMonthlyPrice      = "price_1SGgPe8AghzT7EpikDpWOkmJ"
	premiumSemesterPrice = "price_1SGgXf8AghzT7Epig0Rx6SG7"
)

func testNow() time.Time {
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func TestReconcilerActivate(t *testing.T) {
	t.Parallel()

	rec := billing.NewReconciler(billing.DefaultCatalog())
	now := testNow()

	t.Run("first activation sets the full window", func(t *testing.T) {
		t.Parallel()

		current := &profile.Profile{Plan: profile.PlanFree, Status: profile.StatusInactive}

		upd := rec.Activate(current, "cus_1", "sub_1", proMonthlyPrice, now)

		require.NotNil(t, upd.Plan)
		assert.Equal(t, profile.PlanPro, *upd.Plan)
		require.NotNil(t, upd.Status)
		assert.Equal(t, profile.StatusActive, *upd.Status)
		require.NotNil(t, upd.SubscriptionStart)
		assert.Equal(t, now, *upd.SubscriptionStart)
		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, now.AddDate(0, 1, 0), *upd.SubscriptionEnd)
		require.NotNil(t, upd.StripeCustomerID)
		assert.Equal(t, "cus_1", *upd.StripeCustomerID)
		require.NotNil(t, upd.StripeSubscriptionID)
		assert.Equal(t, "sub_1", *upd.StripeSubscriptionID)
		assert.Equal(t, now, upd.UpdatedAt)
	})

	t.Run("semester price extends six months", func(t *testing.T) {
		t.Parallel()

		current := &profile.Profile{}

		upd := rec.Activate(current, "cus_1", "sub_1", premiumSemesterPrice, now)

		require.NotNil(t, upd.Plan)
		assert.Equal(t, profile.PlanPremium, *upd.Plan)
		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, now.AddDate(0, 6, 0), *upd.SubscriptionEnd)
	})

	t.Run("redelivery for the same subscription keeps the window", func(t *testing.T) {
		t.Parallel()

		start := now.AddDate(0, -1, 0)
		end := now.AddDate(0, 5, 0)
		current := &profile.Profile{
			Plan:                 profile.PlanPremium,
			Status:               profile.StatusActive,
			SubscriptionStart:    &start,
			SubscriptionEnd:      &end,
			StripeSubscriptionID: "sub_1",
		}

		upd := rec.Activate(current, "cus_1", "sub_1", premiumSemesterPrice, now)

		assert.Nil(t, upd.Plan)
		assert.Nil(t, upd.SubscriptionStart)
		assert.Nil(t, upd.SubscriptionEnd)
		assert.Nil(t, upd.StripeSubscriptionID)
		require.NotNil(t, upd.Status)
		assert.Equal(t, profile.StatusActive, *upd.Status)
	})

	t.Run("a different subscription resets the window", func(t *testing.T) {
		t.Parallel()

		current := &profile.Profile{StripeSubscriptionID: "sub_old"}

		upd := rec.Activate(current, "cus_1", "sub_new", proMonthlyPrice, now)

		require.NotNil(t, upd.SubscriptionStart)
		require.NotNil(t, upd.StripeSubscriptionID)
		assert.Equal(t, "sub_new", *upd.StripeSubscriptionID)
	})

	t.Run("unknown price activates the free tier", func(t *testing.T) {
		t.Parallel()

		upd := rec.Activate(&profile.Profile{}, "cus_1", "sub_1", "price_mystery", now)

		require.NotNil(t, upd.Plan)
		assert.Equal(t, profile.PlanFree, *upd.Plan)
		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, now.AddDate(0, 1, 0), *upd.SubscriptionEnd)
	})
}

func TestReconcilerUpdate(t *testing.T) {
	t.Parallel()

	rec := billing.NewReconciler(billing.DefaultCatalog())
	now := testNow()

	t.Run("maps provider status and price", func(t *testing.T) {
		t.Parallel()

		upd := rec.Update(&profile.Profile{}, "past_due", proMonthlyPrice, now)

		require.NotNil(t, upd.Plan)
		assert.Equal(t, profile.PlanPro, *upd.Plan)
		require.NotNil(t, upd.Status)
		assert.Equal(t, profile.StatusPastDue, *upd.Status)
		assert.Nil(t, upd.SubscriptionStart)
		assert.Nil(t, upd.SubscriptionEnd)
	})

	t.Run("provider status vocabulary", func(t *testing.T) {
		t.Parallel()

		cases := map[string]profile.Status{
			"active":             profile.StatusActive,
			"trialing":           profile.StatusActive,
			"past_due":           profile.StatusPastDue,
			"unpaid":             profile.StatusPastDue,
			"canceled":           profile.StatusCancelled,
			"incomplete":         profile.StatusInactive,
			"incomplete_expired": profile.StatusExpired,
		}
		for providerStatus, want := range cases {
			upd := rec.Update(&profile.Profile{}, providerStatus, "", now)
			require.NotNil(t, upd.Status, providerStatus)
			assert.Equal(t, want, *upd.Status, providerStatus)
		}
	})

	t.Run("unknown provider status leaves status untouched", func(t *testing.T) {
		t.Parallel()

		upd := rec.Update(&profile.Profile{Status: profile.StatusActive}, "paused", proMonthlyPrice, now)

		assert.Nil(t, upd.Status)
		require.NotNil(t, upd.Plan)
	})

	t.Run("empty price leaves plan untouched", func(t *testing.T) {
		t.Parallel()

		upd := rec.Update(&profile.Profile{Plan: profile.PlanPremium}, "active", "", now)

		assert.Nil(t, upd.Plan)
		require.NotNil(t, upd.Status)
	})
}

func TestReconcilerCancel(t *testing.T) {
	t.Parallel()

	rec := billing.NewReconciler(billing.DefaultCatalog())
	now := testNow()

	upd := rec.Cancel(now)

	require.NotNil(t, upd.Plan)
	assert.Equal(t, profile.PlanFree, *upd.Plan)
	require.NotNil(t, upd.Status)
	assert.Equal(t, profile.StatusCancelled, *upd.Status)
	assert.Nil(t, upd.SubscriptionEnd)
	assert.Equal(t, now, upd.UpdatedAt)
}

func TestReconcilerRenew(t *testing.T) {
	t.Parallel()

	rec := billing.NewReconciler(billing.DefaultCatalog())
	now := testNow()

	t.Run("extends from current end when in the future", func(t *testing.T) {
		t.Parallel()

		end := now.AddDate(0, 0, 10)
		upd := rec.Renew(&profile.Profile{SubscriptionEnd: &end}, proMonthlyPrice, now)

		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, end.AddDate(0, 1, 0), *upd.SubscriptionEnd)
		require.NotNil(t, upd.Status)
		assert.Equal(t, profile.StatusActive, *upd.Status)
	})

	t.Run("extends from now when current end has passed", func(t *testing.T) {
		t.Parallel()

		end := now.AddDate(0, -2, 0)
		upd := rec.Renew(&profile.Profile{SubscriptionEnd: &end}, premiumSemesterPrice, now)

		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, now.AddDate(0, 6, 0), *upd.SubscriptionEnd)
	})

	t.Run("extends from now when no end is stored", func(t *testing.T) {
		t.Parallel()

		upd := rec.Renew(&profile.Profile{}, proMonthlyPrice, now)

		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, now.AddDate(0, 1, 0), *upd.SubscriptionEnd)
	})

	t.Run("empty price keeps plan and assumes a monthly period", func(t *testing.T) {
		t.Parallel()

		upd := rec.Renew(&profile.Profile{Plan: profile.PlanPremium}, "", now)

		assert.Nil(t, upd.Plan)
		require.NotNil(t, upd.SubscriptionEnd)
		assert.Equal(t, now.AddDate(0, 1, 0), *upd.SubscriptionEnd)
	})

	t.Run("never moves the end backward", func(t *testing.T) {
		t.Parallel()

		end := now.AddDate(0, 12, 0)
		upd := rec.Renew(&profile.Profile{SubscriptionEnd: &end}, proMonthlyPrice, now)

		require.NotNil(t, upd.SubscriptionEnd)
		assert.True(t, upd.SubscriptionEnd.After(end))
	})
}

func TestReconcilerMarkPastDue(t *testing.T) {
	t.Parallel()

	rec := billing.NewReconciler(billing.DefaultCatalog())
	now := testNow()

	upd := rec.MarkPastDue(now)

	require.NotNil(t, upd.Status)
	assert.Equal(t, profile.StatusPastDue, *upd.Status)
	assert.Nil(t, upd.Plan)
	assert.Nil(t, upd.SubscriptionEnd)
	assert.Equal(t, now, upd.UpdatedAt)
}
