package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-system/internal/status"
)

func day(offset int) time.Time {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestEstimateDemand_ThirtyDayWindow(t *testing.T) {
	// 100 capacity over 30 days, 12 sold after 10 days.
	result, err := EstimateDemand(100, 12, day(0), day(30), day(10))
	require.NoError(t, err)

	assert.Equal(t, 10, result.ElapsedDays)
	assert.Equal(t, 30, result.TotalSalePeriodDays)

	// expected rate 100/30, actual rate 12/10
	assert.InDelta(t, 0.36, result.DemandFactor, 0.001)
}

func TestEstimateDemand_HighDemand(t *testing.T) {
	// Selling twice the pace needed to sell out.
	result, err := EstimateDemand(100, 20, day(0), day(20), day(2))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, result.DemandFactor, 0.001)
}

func TestEstimateDemand_WindowNotActive(t *testing.T) {
	tests := []struct {
		name      string
		eventDate time.Time
		now       time.Time
	}{
		{"event date equals sale start", day(0), day(5)},
		{"event date before sale start", day(-3), day(5)},
		{"now before sale start", day(30), day(0).Add(-time.Hour)},
		{"now well before sale start", day(30), day(-10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateDemand(100, 10, day(0), tt.eventDate, tt.now)
			assert.ErrorIs(t, err, status.ErrWindowNotActive)
		})
	}
}

func TestEstimateDemand_DayZeroTreatedAsFirstDay(t *testing.T) {
	// Sale started an hour ago: zero whole days elapsed. The actual rate
	// is the quantity sold so far, not a division by zero.
	result, err := EstimateDemand(100, 5, day(0), day(10), day(0).Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ElapsedDays)
	// expected rate 10/day, actual rate 5
	assert.InDelta(t, 0.5, result.DemandFactor, 0.001)
}

func TestEstimateDemand_ZeroSales(t *testing.T) {
	result, err := EstimateDemand(100, 0, day(0), day(30), day(10))
	require.NoError(t, err)
	assert.Zero(t, result.DemandFactor)
}

func TestEstimateDemand_PastEventStillComputes(t *testing.T) {
	// Elapsed past the event date is not a degenerate window; the skip
	// predicates are only a non-positive total and a negative elapsed.
	result, err := EstimateDemand(100, 100, day(0), day(10), day(40))
	require.NoError(t, err)
	assert.Equal(t, 40, result.ElapsedDays)
	assert.Equal(t, 10, result.TotalSalePeriodDays)
}

func TestWholeDays_FloorsNegativeDeltas(t *testing.T) {
	assert.Equal(t, -1, wholeDays(day(0), day(0).Add(-time.Hour)))
	assert.Equal(t, 0, wholeDays(day(0), day(0).Add(time.Hour)))
	assert.Equal(t, 1, wholeDays(day(0), day(1)))
	assert.Equal(t, 29, wholeDays(day(0), day(30).Add(-time.Minute)))
}
