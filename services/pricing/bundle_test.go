package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"estuary/models"
)

func TestSuggestedDiscount(t *testing.T) {
	cases := []struct {
		sessions int
		want     int
	}{
		{2, 5}, {3, 5}, {4, 5}, {5, 10}, {9, 10},
		{10, 15}, {19, 15}, {20, 20}, {100, 20},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SuggestedDiscount(tc.sessions), "sessions=%d", tc.sessions)
	}
}

func TestSuggestedDiscountPicksHighestThreshold(t *testing.T) {
	for n := models.MinBundleSessions; n <= models.MaxBundleSessions; n++ {
		want := BundleTiers[0].Discount
		for _, tier := range BundleTiers {
			if tier.MinSessions <= n {
				want = tier.Discount
			}
		}
		assert.Equal(t, want, SuggestedDiscount(n), "sessions=%d", n)
	}
}

func TestClampSessions(t *testing.T) {
	assert.Equal(t, 2, ClampSessions(-4))
	assert.Equal(t, 2, ClampSessions(1))
	assert.Equal(t, 7, ClampSessions(7))
	assert.Equal(t, 100, ClampSessions(250))
}

func TestClampDiscount(t *testing.T) {
	assert.Equal(t, 0, ClampDiscount(-10))
	assert.Equal(t, 50, ClampDiscount(75))
	assert.Equal(t, 15, ClampDiscount(15))
	assert.Equal(t, 15, ClampDiscount(13))
	assert.Equal(t, 10, ClampDiscount(12))
}

func TestQuoteBundle(t *testing.T) {
	q := QuoteBundle(50, 10)
	assert.Equal(t, 500.0, q.RegularTotal)
	assert.Equal(t, 15, q.SuggestedDiscount)
	assert.Equal(t, 425.0, q.SuggestedPrice)
	assert.Equal(t, 75.0, q.Savings)

	clamped := QuoteBundle(50, 1)
	assert.Equal(t, 2, clamped.SessionsIncluded)
	assert.Equal(t, 100.0, clamped.RegularTotal)
}

func TestActualDiscountPercent(t *testing.T) {
	assert.Equal(t, 20.0, ActualDiscountPercent(500, 400))
	assert.Equal(t, 0.0, ActualDiscountPercent(0, 400))
	assert.Equal(t, 33.3, ActualDiscountPercent(300, 200))
	assert.Equal(t, -10.0, ActualDiscountPercent(100, 110))
}

func TestRepriceRespectsOverride(t *testing.T) {
	cfg := &models.BundleConfig{PricePerSession: 40, SessionsIncluded: 5}
	assert.Equal(t, 180.0, Reprice(cfg, 0))
	assert.Equal(t, 10, cfg.SuggestedDiscount)

	cfg.PriceOverridden = true
	cfg.SessionsIncluded = 20
	assert.Equal(t, 150.0, Reprice(cfg, 150))
	assert.Equal(t, 640.0, cfg.SuggestedPrice)
}
