package pricing

import (
	"time"

	"pricing-system/internal/status"
)

const dayMillis = 86_400_000

// DemandResult is the sell-through signal for one ticket over its sale
// window so far.
type DemandResult struct {
	DemandFactor        float64
	ElapsedDays         int
	TotalSalePeriodDays int
}

// EstimateDemand compares a ticket's actual sales rate against the rate it
// would need to sell out exactly when the event starts.
//
// Returns status.ErrWindowNotActive when the window is degenerate: the
// event date is not after the sale start, or now is before the sale start.
// Those are steady-state conditions (event already happened, clock skew),
// not faults.
func EstimateDemand(capacity, sold int, saleStart, eventDate, now time.Time) (DemandResult, error) {
	totalDays := wholeDays(saleStart, eventDate)
	elapsedDays := wholeDays(saleStart, now)

	if totalDays <= 0 || elapsedDays < 0 {
		return DemandResult{}, status.ErrWindowNotActive
	}

	// A sale that started today has elapsed 0 whole days. Treat it as the
	// first day so the actual rate is the quantity sold so far rather than
	// a division by zero.
	rateDays := elapsedDays
	if rateDays == 0 {
		rateDays = 1
	}

	expectedRate := float64(capacity) / float64(totalDays)
	actualRate := float64(sold) / float64(rateDays)

	return DemandResult{
		DemandFactor:        actualRate / expectedRate,
		ElapsedDays:         elapsedDays,
		TotalSalePeriodDays: totalDays,
	}, nil
}

// wholeDays is the floor of the millisecond delta divided by one day,
// matching how the organizer app buckets sale-window time.
func wholeDays(from, to time.Time) int {
	ms := to.Sub(from).Milliseconds()
	d := ms / dayMillis
	if ms%dayMillis < 0 {
		d--
	}
	return int(d)
}
