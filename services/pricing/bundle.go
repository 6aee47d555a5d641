package pricing

import (
	"math"
	"sort"

	"estuary/models"
)

// DiscountTier maps a session count threshold to a suggested discount.
type DiscountTier struct {
	MinSessions int
	Discount    int
}

// BundleTiers is ordered by ascending MinSessions.
var BundleTiers = []DiscountTier{
	{MinSessions: 3, Discount: 5},
	{MinSessions: 5, Discount: 10},
	{MinSessions: 10, Discount: 15},
	{MinSessions: 20, Discount: 20},
}

// BundleQuote is the derived pricing of a bundle before any override.
type BundleQuote struct {
	PricePerSession   float64 `json:"pricePerSession"`
	SessionsIncluded  int     `json:"sessionsIncluded"`
	RegularTotal      float64 `json:"regularTotal"`
	SuggestedDiscount int     `json:"suggestedDiscount"`
	SuggestedPrice    float64 `json:"suggestedPrice"`
	Savings           float64 `json:"savings"`
}

// ClampSessions bounds a bundle's session count to [2,100].
func ClampSessions(n int) int {
	if n < models.MinBundleSessions {
		return models.MinBundleSessions
	}
	if n > models.MaxBundleSessions {
		return models.MaxBundleSessions
	}
	return n
}

// SuggestedDiscount picks the highest tier whose threshold is <= n.
// Counts below every threshold fall back to the smallest tier.
func SuggestedDiscount(n int) int {
	idx := sort.Search(len(BundleTiers), func(i int) bool {
		return BundleTiers[i].MinSessions > n
	})
	if idx == 0 {
		return BundleTiers[0].Discount
	}
	return BundleTiers[idx-1].Discount
}

// QuoteBundle derives the regular total and suggested price for a bundle.
func QuoteBundle(pricePerSession float64, sessions int) BundleQuote {
	sessions = ClampSessions(sessions)
	regular := RoundCents(pricePerSession * float64(sessions))
	discount := SuggestedDiscount(sessions)
	suggested := applyDiscount(regular, discount)
	return BundleQuote{
		PricePerSession:   pricePerSession,
		SessionsIncluded:  sessions,
		RegularTotal:      regular,
		SuggestedDiscount: discount,
		SuggestedPrice:    suggested,
		Savings:           RoundCents(regular - suggested),
	}
}

// PriceForDiscount is the bundle price a discount slider position implies.
func PriceForDiscount(regularTotal float64, discount int) float64 {
	return applyDiscount(regularTotal, ClampDiscount(discount))
}

// ActualDiscountPercent back-derives the discount from a user-entered price.
// The result is rounded to one decimal and is 0 when there is no regular total.
func ActualDiscountPercent(regularTotal, actualPrice float64) float64 {
	if regularTotal <= 0 {
		return 0
	}
	pct := (regularTotal - actualPrice) / regularTotal * 100
	return math.Round(pct*10) / 10
}

// Reprice refreshes the suggested values on cfg and, unless the price was
// overridden, returns the suggested price as the bundle's price.
func Reprice(cfg *models.BundleConfig, currentPrice float64) float64 {
	cfg.SessionsIncluded = ClampSessions(cfg.SessionsIncluded)
	q := QuoteBundle(cfg.PricePerSession, cfg.SessionsIncluded)
	cfg.SuggestedDiscount = q.SuggestedDiscount
	cfg.SuggestedPrice = q.SuggestedPrice
	if cfg.PriceOverridden {
		return currentPrice
	}
	return q.SuggestedPrice
}
