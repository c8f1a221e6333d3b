package fivefactor

import (
	"insideredge/pkg/numeric"
)

const (
	// TrendBand is the ±0.2% hysteresis band on SMA20 vs SMA50
	TrendBand = 0.002
	// TrendingADX is the ADX(14) level at or above which a market is trending
	TrendingADX = 25.0
)

// Trend2050 compares SMA20 to SMA50 with a hysteresis band
func Trend2050(sma20, sma50 *float64) Trend {
	if sma20 == nil || sma50 == nil {
		return TrendUnknown
	}
	switch {
	case *sma20 > *sma50*(1+TrendBand):
		return TrendUp
	case *sma20 < *sma50*(1-TrendBand):
		return TrendDown
	default:
		return TrendFlat
	}
}

// RegimeTrend confirms the SMA trend only when spot sits on the same side of both averages
func RegimeTrend(spot, sma20, sma50 *float64) Trend {
	t := Trend2050(sma20, sma50)
	if t == TrendUnknown || spot == nil {
		return TrendUnknown
	}
	s := *spot
	switch {
	case t == TrendUp && s >= *sma20 && s >= *sma50:
		return TrendUp
	case t == TrendDown && s <= *sma20 && s <= *sma50:
		return TrendDown
	default:
		return TrendRange
	}
}

// MarketStateFor maps ADX(14) to trending or choppy
func MarketStateFor(adx *float64) MarketState {
	if adx == nil {
		return MarketUnknown
	}
	if *adx >= TrendingADX {
		return MarketTrending
	}
	return MarketChoppy
}

// distanceToSMA is (spot - sma) / sma
func distanceToSMA(spot, sma *float64) *float64 {
	if spot == nil || sma == nil || *spot == 0 {
		return nil
	}
	return numeric.Ratio(numeric.Ptr(*spot-*sma), sma)
}

func pct(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return numeric.Ptr(*p * 100)
}

// BuildPriceContext places spot against its moving averages. fallbackSpot is
// used when the context row carries no spot.
func BuildPriceContext(rows []PriceContextRow, fallbackSpot *float64) *PriceContext {
	if len(rows) == 0 {
		return nil
	}
	pc := rows[0]
	for _, r := range rows[1:] {
		if r.DataDate > pc.DataDate || (r.DataDate == pc.DataDate && r.CachedAt.After(pc.CachedAt)) {
			pc = r
		}
	}

	spot := pc.Spot
	if spot == nil {
		spot = fallbackSpot
	}
	dist20 := distanceToSMA(spot, pc.SMA20)
	dist50 := distanceToSMA(spot, pc.SMA50)

	return &PriceContext{
		Spot:            spot,
		ChangePercent:   pc.ChangePercent,
		Volume:          pc.Volume,
		SMA20:           pc.SMA20,
		SMA50:           pc.SMA50,
		StdDev20:        pc.StdDev20,
		Range5dPct:      pc.Range5dPct,
		DistanceToSMA20: dist20,
		DistanceToSMA50: dist50,
		PriceVsSMA20Pct: pct(dist20),
		PriceVsSMA50Pct: pct(dist50),
		Trend2050:       Trend2050(pc.SMA20, pc.SMA50),
		Trend:           RegimeTrend(spot, pc.SMA20, pc.SMA50),
		ADX14:           pc.ADX14,
		MarketState:     MarketStateFor(pc.ADX14),
		RealizedVol20d:  pc.RealizedVol20d,
	}
}
