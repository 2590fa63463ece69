package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	upperThreshold = 1.2
	lowerThreshold = 0.8

	// Adjustments are capped at half the base price in either direction,
	// regardless of how extreme the demand factor is. A ticket that sells
	// out on day one can produce factors in the thousands.
	maxAdjustment = 0.50

	adjustmentSlope = 0.10
)

type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// Recommendation is a bounded price-adjustment proposal for one ticket.
type Recommendation struct {
	Direction Direction
	AdjustPct float64 // fraction of base price, always <= maxAdjustment
	NewPrice  decimal.Decimal
	Summary   string
}

// Recommend applies the threshold policy to a ticket's demand factor.
// Inside the (0.8, 1.2) band no action is taken and ok is false.
func Recommend(basePrice, demandFactor float64) (Recommendation, bool) {
	base := decimal.NewFromFloat(basePrice)

	switch {
	case demandFactor >= upperThreshold:
		pct := adjustmentSlope * (demandFactor - 1)
		if pct > maxAdjustment {
			pct = maxAdjustment
		}
		newPrice := base.Mul(decimal.NewFromFloat(1 + pct))
		return Recommendation{
			Direction: Increase,
			AdjustPct: pct,
			NewPrice:  newPrice,
			Summary:   summary("Increase", pct, newPrice, base),
		}, true

	case demandFactor <= lowerThreshold:
		pct := adjustmentSlope * (1 - demandFactor)
		if pct > maxAdjustment {
			pct = maxAdjustment
		}
		newPrice := base.Mul(decimal.NewFromFloat(1 - pct))
		return Recommendation{
			Direction: Decrease,
			AdjustPct: pct,
			NewPrice:  newPrice,
			Summary:   summary("Decrease", pct, newPrice, base),
		}, true
	}

	return Recommendation{}, false
}

func summary(verb string, pct float64, newPrice, base decimal.Decimal) string {
	pctStr := decimal.NewFromFloat(pct * 100).StringFixed(1)
	return fmt.Sprintf("%s price by %s%% to %s (base was %s).",
		verb, pctStr, newPrice.StringFixed(2), base.StringFixed(2))
}
