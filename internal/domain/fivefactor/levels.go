package fivefactor

import (
	"math"
	"sort"
	"time"

	"insideredge/pkg/numeric"
)

// BuildIVRank passes through the latest iv_rank row
func BuildIVRank(rows []IVRankRow) *IVRank {
	date, latest := rowsAtLatestDate(rows, func(r IVRankRow) string { return r.DataDate })
	if len(latest) == 0 {
		return nil
	}
	r := latest[0]
	return &IVRank{
		LatestDate: date,
		IVRank1Y:   r.IVRank1Y,
		Volatility: r.Volatility,
		Close:      r.Close,
	}
}

// QuoteSpot is the quote price, falling back to the last trade
func QuoteSpot(q *QuoteRow) *float64 {
	if q == nil {
		return nil
	}
	if q.Price != nil && *q.Price != 0 {
		return q.Price
	}
	if q.Last != nil && *q.Last != 0 {
		return q.Last
	}
	return nil
}

// BuildMaxPain computes distance from spot per expiry of the latest data date.
// The nearest expiry is chosen among unexpired rows when any exist.
func BuildMaxPain(rows []MaxPainRow, quote *QuoteRow, now time.Time) *MaxPain {
	date, latest := rowsAtLatestDate(rows, func(r MaxPainRow) string { return r.DataDate })
	if len(latest) == 0 {
		return nil
	}
	sort.SliceStable(latest, func(i, j int) bool { return latest[i].Expiry < latest[j].Expiry })

	spot := QuoteSpot(quote)
	today := numeric.DateKey(now)

	levels := make([]MaxPainLevel, 0, len(latest))
	future := make([]MaxPainLevel, 0, len(latest))
	for _, r := range latest {
		lvl := MaxPainLevel{
			Expiry:           r.Expiry,
			MaxPain:          r.MaxPain,
			DistanceFromSpot: distanceFromSpot(spot, r.MaxPain),
		}
		levels = append(levels, lvl)
		if r.Expiry == "" || r.Expiry >= today {
			future = append(future, lvl)
		}
	}

	candidates := future
	if len(candidates) == 0 {
		candidates = levels
	}

	return &MaxPain{
		DataDate:      date,
		CurrentSpot:   spot,
		Rows:          levels,
		NearestExpiry: nearestLevel(candidates),
	}
}

func distanceFromSpot(spot, maxPain *float64) *float64 {
	if spot == nil || maxPain == nil || *spot == 0 {
		return nil
	}
	return numeric.Ptr(math.Abs(*spot-*maxPain) / *spot)
}

func nearestLevel(levels []MaxPainLevel) *MaxPainLevel {
	var best *MaxPainLevel
	for i := range levels {
		l := levels[i]
		if l.DistanceFromSpot == nil {
			continue
		}
		if best == nil || *l.DistanceFromSpot < *best.DistanceFromSpot {
			best = &l
		}
	}
	return best
}

// BuildGreeks passes through the latest greeks snapshot
func BuildGreeks(rows []GreeksRow, asOf string) *GreeksAggregated {
	if len(rows) == 0 {
		return nil
	}
	latest := rows[0]
	for _, r := range rows[1:] {
		if r.DataDate > latest.DataDate || (r.DataDate == latest.DataDate && r.CachedAt.After(latest.CachedAt)) {
			latest = r
		}
	}

	block := &GreeksAggregated{
		AsOf:             latest.DataDate,
		NetGammaExposure: latest.NetGammaExposure,
		NetDeltaExposure: latest.NetDeltaExposure,
		TopGammaStrikes:  latest.TopGammaStrikes,
	}
	if block.AsOf == "" {
		block.AsOf = asOf
	}
	if block.TopGammaStrikes == nil {
		block.TopGammaStrikes = []GammaStrike{}
	}
	return block
}
