package numeric

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	str := "1,250.5"
	tests := []struct {
		name string
		in   interface{}
		want *float64
	}{
		{"nil", nil, nil},
		{"float", 12.5, Ptr(12.5)},
		{"int", 7, Ptr(7)},
		{"string", "42", Ptr(42)},
		{"string with comma", "1,000,000", Ptr(1000000)},
		{"string pointer", &str, Ptr(1250.5)},
		{"json number", json.Number("0.85"), Ptr(0.85)},
		{"empty string", "", nil},
		{"garbage", "n/a", nil},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFloat(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestRatioWithSentinel(t *testing.T) {
	assert.Equal(t, 2.0, RatioWithSentinel(200, 100))
	assert.Equal(t, UnboundedRatio, RatioWithSentinel(10, 0))
	assert.Equal(t, 0.0, RatioWithSentinel(0, 0))
}

func TestRatio(t *testing.T) {
	assert.Nil(t, Ratio(Ptr(1), Ptr(0)))
	assert.Nil(t, Ratio(nil, Ptr(2)))
	assert.Equal(t, 0.5, *Ratio(Ptr(1), Ptr(2)))
}

func TestDaysUntilCeil(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	t.Run("future date rounds up", func(t *testing.T) {
		got := DaysUntilCeil("2026-10-29", now)
		require.NotNil(t, got)
		assert.Equal(t, 10, *got)
	})

	t.Run("past date clamps to zero", func(t *testing.T) {
		got := DaysUntilCeil("2026-10-01", now)
		require.NotNil(t, got)
		assert.Equal(t, 0, *got)
	})

	t.Run("unparsable", func(t *testing.T) {
		assert.Nil(t, DaysUntilCeil("next friday", now))
	})
}

func TestCalendarDaysBetween(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)

	got := CalendarDaysBetween(now, "2026-10-26")
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)

	got = CalendarDaysBetween(now, "2026-10-19")
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)

	assert.Nil(t, CalendarDaysBetween(now, ""))
}
