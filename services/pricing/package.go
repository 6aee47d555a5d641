package pricing

import "estuary/models"

// PackageQuote is the forward-derived pricing of a package.
type PackageQuote struct {
	SessionCount    int     `json:"sessionCount"`
	TotalOriginal   float64 `json:"totalOriginal"`
	Discount        int     `json:"discount"`
	DiscountAmount  float64 `json:"discountAmount"`
	FinalPrice      float64 `json:"finalPrice"`
	TotalDuration   int     `json:"totalDuration"`
	MaxParticipants int     `json:"maxParticipants"`
}

// QuotePackage sums the selected sessions and applies the package discount.
// Packages are always booked by a single participant.
func QuotePackage(items []models.PackageSessionItem, discount int) PackageQuote {
	discount = ClampDiscount(discount)
	var total float64
	var duration int
	for _, item := range items {
		total += item.Service.Price
		duration += item.Service.DurationMinutes
	}
	total = RoundCents(total)
	final := applyDiscount(total, discount)
	return PackageQuote{
		SessionCount:    len(items),
		TotalOriginal:   total,
		Discount:        discount,
		DiscountAmount:  RoundCents(total - final),
		FinalPrice:      final,
		TotalDuration:   duration,
		MaxParticipants: 1,
	}
}
