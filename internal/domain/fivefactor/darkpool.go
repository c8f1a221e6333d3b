package fivefactor

import (
	"time"

	"insideredge/pkg/numeric"
)

// DefaultDarkPoolWindow is the lookback of the dark pool baseline
const DefaultDarkPoolWindow = 30 * 24 * time.Hour

func darkPoolDay(r DarkPoolRow) string {
	if r.DataDate != "" {
		return r.DataDate
	}
	if r.ExecutedAt != nil {
		return numeric.DateKey(*r.ExecutedAt)
	}
	return ""
}

// BuildDarkPool totals prints inside the window and compares the most recent
// day's value against the window's average daily value.
func BuildDarkPool(rows []DarkPoolRow, window time.Duration, now time.Time) *DarkPool {
	if window <= 0 {
		window = DefaultDarkPoolWindow
	}
	since := numeric.DateKey(now.Add(-window))

	var (
		count       int
		totalValue  float64
		totalVolume float64
		byDay       = make(map[string]float64)
	)
	for _, r := range rows {
		if r.IsEmptyMarker {
			continue
		}
		day := darkPoolDay(r)
		if day != "" && day < since {
			continue
		}
		count++
		value := numeric.Value(r.Value)
		totalValue += value
		if r.Volume != nil && *r.Volume != 0 {
			totalVolume += *r.Volume
		} else {
			totalVolume += numeric.Value(r.Size)
		}
		if day != "" {
			byDay[day] += value
		}
	}
	if count == 0 {
		return nil
	}

	block := &DarkPool{
		Count:        count,
		TotalValue:   totalValue,
		TotalVolume:  totalVolume,
		AvgTradeSize: numeric.Ptr(totalVolume / float64(count)),
	}
	if len(byDay) == 0 {
		return block
	}

	var sum float64
	for day, v := range byDay {
		sum += v
		if day > block.LatestDay {
			block.LatestDay = day
		}
	}
	avg := sum / float64(len(byDay))
	last := byDay[block.LatestDay]
	block.LatestDayValue = numeric.Ptr(last)
	block.AvgDailyValue = numeric.Ptr(avg)
	if avg > 0 {
		block.VsAvg30dValue = numeric.Ratio(block.LatestDayValue, block.AvgDailyValue)
	}
	return block
}
