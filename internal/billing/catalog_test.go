package billing_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarastudy-create/scholarastudy/internal/billing"
	"github.com/scholarastudy-create/scholarastudy/internal/profile"
)

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	catalog := billing.DefaultCatalog()

	t.Run("known monthly price", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, profile.PlanPro, catalog.PlanFor("price_1SGgPe8AghzT7EpikDpWOkmJ"))
		assert.Equal(t, billing.PeriodMonthly, catalog.PeriodFor("price_1SGgPe8AghzT7EpikDpWOkmJ"))
	})

	t.Run("known semester price", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, profile.PlanPremium, catalog.PlanFor("price_1SH45p8AghzT7EpiQTyDhixB"))
		assert.Equal(t, billing.PeriodSemester, catalog.PeriodFor("price_1SH45p8AghzT7EpiQTyDhixB"))
	})

	t.Run("unknown price defaults to free monthly", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, profile.PlanFree, catalog.PlanFor("price_unlisted"))
		assert.Equal(t, billing.PeriodMonthly, catalog.PeriodFor("price_unlisted"))

		_, ok := catalog.Lookup("price_unlisted")
		assert.False(t, ok)
	})

	t.Run("empty price id defaults to free monthly", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, profile.PlanFree, catalog.PlanFor(""))
		assert.Equal(t, billing.PeriodMonthly, catalog.PeriodFor(""))
	})
}

func TestBillingPeriodExtend(t *testing.T) {
	t.Parallel()

	t.Run("monthly adds one calendar month", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC), billing.PeriodMonthly.Extend(from))
	})

	t.Run("semester adds six calendar months", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), billing.PeriodSemester.Extend(from))
	})

	t.Run("month-end normalizes like calendar arithmetic", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), billing.PeriodMonthly.Extend(from))
	})
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, `
prices:
  price_abc:
    plan: pro
    period: monthly
  price_def:
    plan: premium
    period: semester
`)

		catalog, err := billing.LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, 2, catalog.Len())
		assert.Equal(t, profile.PlanPremium, catalog.PlanFor("price_def"))
		assert.Equal(t, billing.PeriodSemester, catalog.PeriodFor("price_def"))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := billing.LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("empty price table", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "prices: {}\n")

		_, err := billing.LoadCatalog(path)
		require.ErrorIs(t, err, billing.ErrInvalidCatalog)
	})

	t.Run("unknown plan rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, `
prices:
  price_abc:
    plan: platinum
    period: monthly
`)

		_, err := billing.LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown plan")
	})

	t.Run("unknown period rejected", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, `
prices:
  price_abc:
    plan: pro
    period: yearly
`)

		_, err := billing.LoadCatalog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown period")
	})
}
