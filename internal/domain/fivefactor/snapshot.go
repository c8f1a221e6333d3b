package fivefactor

import (
	"math"
	"strings"
	"time"

	"insideredge/pkg/numeric"
)

// Options tune the snapshot builder
type Options struct {
	DarkPoolWindow time.Duration
}

// DefaultOptions returns the builder defaults
func DefaultOptions() Options {
	return Options{DarkPoolWindow: DefaultDarkPoolWindow}
}

// Build assembles the five-factor snapshot for one ticker. It returns nil when
// none of flows, oi_change, oi_per_strike, iv_rank or max_pain could be built,
// which callers must read as "no options activity recorded".
func Build(ticker string, rows Rows, now time.Time) *Snapshot {
	return BuildWithOptions(ticker, rows, DefaultOptions(), now)
}

// BuildWithOptions is Build with explicit options
func BuildWithOptions(ticker string, rows Rows, opts Options, now time.Time) *Snapshot {
	flows := BuildRecentFlows(rows.Flows)
	oiChange := BuildOIChange(rows.OIChanges)
	oiStrike := BuildOIPerStrike(rows.OIPerStrike)
	iv := BuildIVRank(rows.IVRank)
	maxPain := BuildMaxPain(rows.MaxPain, rows.Quote, now)

	if !flows.Available && oiChange == nil && oiStrike == nil && iv == nil && maxPain == nil {
		return nil
	}

	asOf := AsOf(iv, oiChange, oiStrike, now)

	var mpSpot *float64
	if maxPain != nil {
		mpSpot = maxPain.CurrentSpot
	}

	return &Snapshot{
		Ticker:           strings.ToUpper(ticker),
		AsOf:             asOf,
		RecentFlows:      flows,
		FlowRepetition:   BuildFlowRepetition(rows.Flows),
		OIChange:         oiChange,
		OIPerStrike:      oiStrike,
		IVRank:           iv,
		MaxPain:          maxPain,
		GreeksAggregated: BuildGreeks(rows.Greeks, asOf),
		PriceContext:     BuildPriceContext(rows.PriceContext, mpSpot),
		Catalysts:        BuildCatalysts(rows.Earnings, now),
		DarkPool:         BuildDarkPool(rows.DarkPool, opts.DarkPoolWindow, now),
		FlowContext:      BuildFlowContext(flows, oiChange, oiStrike),
	}
}

// AsOf picks the snapshot date: iv_rank, then oi_change, then oi_per_strike, then today
func AsOf(iv *IVRank, oiChange *OIChange, oiStrike *OIPerStrike, now time.Time) string {
	switch {
	case iv != nil && iv.LatestDate != "":
		return iv.LatestDate
	case oiChange != nil && oiChange.DataDate != "":
		return oiChange.DataDate
	case oiStrike != nil && oiStrike.DataDate != "":
		return oiStrike.DataDate
	default:
		return numeric.DateKey(now)
	}
}

// BuildFlowContext derives the cross-block ratios
func BuildFlowContext(flows RecentFlows, oiChange *OIChange, oiStrike *OIPerStrike) FlowContext {
	fc := FlowContext{
		TotalFlowVolume:  flows.CallVolume + flows.PutVolume,
		TotalFlowPremium: flows.TotalPremium,
	}
	if oiChange != nil {
		total := oiChange.TotalChange
		fc.OIChangeTotal = numeric.Ptr(total)
		fc.FlowToOIChangeRatio = numeric.Ratio(numeric.Ptr(fc.TotalFlowVolume), numeric.Ptr(math.Abs(total)))
	}
	if oiStrike != nil && len(oiStrike.TopStrikes) > 0 {
		var sum float64
		for _, s := range oiStrike.TopStrikes {
			sum += s.TotalOI
		}
		fc.TopStrikesTotalOI = numeric.Ptr(sum)
		fc.OIConcentrationRatio = oiStrike.OIConcentrationRatio
	}
	return fc
}
