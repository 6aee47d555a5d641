package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"estuary/models"
)

func items(prices []float64, durations []int) []models.PackageSessionItem {
	out := make([]models.PackageSessionItem, len(prices))
	for i := range prices {
		out[i] = models.PackageSessionItem{
			ServiceID: string(rune('a' + i)),
			Service:   models.ServiceSummary{Price: prices[i], DurationMinutes: durations[i]},
			Order:     i,
		}
	}
	return out
}

func TestQuotePackage(t *testing.T) {
	q := QuotePackage(items([]float64{40, 50, 60}, []int{30, 45, 60}), 20)
	assert.Equal(t, 150.0, q.TotalOriginal)
	assert.Equal(t, 30.0, q.DiscountAmount)
	assert.Equal(t, 120.0, q.FinalPrice)
	assert.Equal(t, 135, q.TotalDuration)
	assert.Equal(t, 1, q.MaxParticipants)
	assert.Equal(t, 3, q.SessionCount)
}

func TestQuotePackageIsIdempotent(t *testing.T) {
	sel := items([]float64{19.99, 35.5}, []int{30, 60})
	for d := MinDiscount; d <= MaxDiscount; d += DiscountStep {
		first := QuotePackage(sel, d)
		assert.Equal(t, first, QuotePackage(sel, d))
		assert.InDelta(t, 55.49*(1-float64(d)/100), first.FinalPrice, 0.01)
	}
}

func TestQuotePackageEmpty(t *testing.T) {
	q := QuotePackage(nil, models.DefaultPackageDiscount)
	assert.Zero(t, q.FinalPrice)
	assert.Zero(t, q.TotalDuration)
	assert.Equal(t, 15, q.Discount)
}
