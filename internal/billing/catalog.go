package billing

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scholarastudy-create/scholarastudy/internal/profile"
)

// BillingPeriod is the length of one paid subscription interval.
type BillingPeriod string

const (
	PeriodMonthly  BillingPeriod = "monthly"
	PeriodSemester BillingPeriod = "semester"
)

// Months returns the period length in calendar months. Extension arithmetic
// uses calendar months rather than fixed-length durations, so a renewal on
// Jan 31 normalizes the same way the payment provider's own billing cycle does.
func (p BillingPeriod) Months() int {
	if p == PeriodSemester {
		return 6
	}
	return 1
}

// Extend returns t moved forward by one billing period.
func (p BillingPeriod) Extend(t time.Time) time.Time {
	return t.AddDate(0, p.Months(), 0)
}

// PriceMapping binds a single Stripe price ID to the entitlement it purchases.
type PriceMapping struct {
	Plan   profile.PlanTier `yaml:"plan"`
	Period BillingPeriod    `yaml:"period"`
}

// Catalog maps Stripe price IDs to plan tiers and billing periods. It is an
// immutable value injected into the service at construction; price rotations
// ship as config changes, not code changes.
type Catalog struct {
	prices map[string]PriceMapping
}

// NewCatalog builds a catalog from an explicit price table.
func NewCatalog(prices map[string]PriceMapping) Catalog {
	cp := make(map[string]PriceMapping, len(prices))
	for id, m := range prices {
		cp[id] = m
	}
	return Catalog{prices: cp}
}

// DefaultCatalog returns the production price table.
func DefaultCatalog() Catalog {
	return NewCatalog(map[string]PriceMapping{
		"price_1SGgPe8AghzT7EpikDpWOkmJ": {Plan: profile.PlanPro, Period: PeriodMonthly},
		"price_1SGgQy8AghzT7EpidhWipxf1": {Plan: profile.PlanPremium, Period: PeriodMonthly},
		"price_1SGgXG8AghzT7EpiQTKsi3gL": {Plan: profile.PlanPro, Period: PeriodSemester},
		"price_1SH45l8AghzT7EpidHDvP9dk": {Plan: profile.PlanPro, Period: PeriodSemester},
		"price_1SGgXf8AghzT7Epig0Rx6SG7": {Plan: profile.PlanPremium, Period: PeriodSemester},
		"price_1SH45p8AghzT7EpiQTyDhixB": {Plan: profile.PlanPremium, Period: PeriodSemester},
	})
}

// PlanFor returns the tier a price purchases. Unknown prices map to the free
// tier rather than failing: a price added in the Stripe dashboard before the
// deployment catches up must not block the webhook pipeline.
func (c Catalog) PlanFor(priceID string) profile.PlanTier {
	if m, ok := c.prices[priceID]; ok {
		return m.Plan
	}
	return profile.PlanFree
}

// PeriodFor returns the billing period a price purchases. Unknown prices
// default to monthly, the shortest interval, so a misconfigured catalog never
// grants more time than was paid for.
func (c Catalog) PeriodFor(priceID string) BillingPeriod {
	if m, ok := c.prices[priceID]; ok {
		return m.Period
	}
	return PeriodMonthly
}

// Lookup returns the full mapping for a price ID and whether it is known.
func (c Catalog) Lookup(priceID string) (PriceMapping, bool) {
	m, ok := c.prices[priceID]
	return m, ok
}

// Len returns the number of known prices.
func (c Catalog) Len() int {
	return len(c.prices)
}

type catalogFile struct {
	Prices map[string]PriceMapping `yaml:"prices"`
}

// LoadCatalog reads a price table from a YAML file:
//
//	prices:
//	  price_123:
//	    plan: pro
//	    period: monthly
//
// Entries with an unknown plan or period are rejected so a typo in the file
// surfaces at startup instead of silently downgrading subscribers.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(f.Prices) == 0 {
		return Catalog{}, ErrInvalidCatalog
	}

	for id, m := range f.Prices {
		switch m.Plan {
		case profile.PlanFree, profile.PlanPro, profile.PlanPremium:
		default:
			return Catalog{}, fmt.Errorf("catalog price %s: unknown plan %q", id, m.Plan)
		}
		switch m.Period {
		case PeriodMonthly, PeriodSemester:
		default:
			return Catalog{}, fmt.Errorf("catalog price %s: unknown period %q", id, m.Period)
		}
	}

	return NewCatalog(f.Prices), nil
}
