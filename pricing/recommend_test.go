package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		demandFactor float64
		wantAction   bool
		direction    Direction
	}{
		{"exactly upper threshold", 1.2, true, Increase},
		{"just below upper threshold", 1.19999, false, ""},
		{"exactly lower threshold", 0.8, true, Decrease},
		{"just above lower threshold", 0.80001, false, ""},
		{"balanced demand", 1.0, false, ""},
		{"extreme demand", 50.0, true, Increase},
		{"dead demand", 0.0, true, Decrease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Recommend(100, tt.demandFactor)
			assert.Equal(t, tt.wantAction, ok)
			if tt.wantAction {
				assert.Equal(t, tt.direction, rec.Direction)
			}
		})
	}
}

func TestRecommend_AdjustmentCap(t *testing.T) {
	// No demand factor, however extreme, may push the adjustment past
	// half the base price in either direction.
	for df := 0.0; df <= 1000; df += 0.5 {
		rec, ok := Recommend(100, df)
		if !ok {
			continue
		}
		assert.LessOrEqual(t, rec.AdjustPct, 0.50, "demand factor %v", df)
		assert.GreaterOrEqual(t, rec.AdjustPct, 0.0, "demand factor %v", df)
	}
}

func TestRecommend_CappedSummary(t *testing.T) {
	rec, ok := Recommend(100, 20)
	require.True(t, ok)
	assert.Equal(t, 0.50, rec.AdjustPct)
	assert.Equal(t, "Increase price by 50.0% to 150.00 (base was 100.00).", rec.Summary)
}

func TestRecommend_IncreaseSummary(t *testing.T) {
	rec, ok := Recommend(100, 1.5)
	require.True(t, ok)

	assert.Equal(t, Increase, rec.Direction)
	assert.InDelta(t, 0.05, rec.AdjustPct, 1e-9)
	assert.Equal(t, "105.00", rec.NewPrice.StringFixed(2))
	assert.Equal(t, "Increase price by 5.0% to 105.00 (base was 100.00).", rec.Summary)
}

func TestRecommend_DecreaseSummary(t *testing.T) {
	rec, ok := Recommend(100, 0.36)
	require.True(t, ok)

	assert.Equal(t, Decrease, rec.Direction)
	assert.InDelta(t, 0.064, rec.AdjustPct, 1e-9)
	assert.Equal(t, "93.60", rec.NewPrice.StringFixed(2))
	assert.Equal(t, "Decrease price by 6.4% to 93.60 (base was 100.00).", rec.Summary)
}

func TestRecommend_FractionalBasePrice(t *testing.T) {
	rec, ok := Recommend(49.99, 1.5)
	require.True(t, ok)
	assert.Equal(t, "Increase price by 5.0% to 52.49 (base was 49.99).", rec.Summary)
}
