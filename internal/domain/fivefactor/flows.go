package fivefactor

import (
	"sort"
	"strings"

	"insideredge/pkg/numeric"
)

const (
	// BullishCallPutRatio and BearishCallPutRatio bound the neutral band
	BullishCallPutRatio = 1.3
	BearishCallPutRatio = 0.7

	TopTradesLimit     = 20
	RepetitionDayLimit = 3
)

func validFlows(rows []FlowRow) []FlowRow {
	out := make([]FlowRow, 0, len(rows))
	for _, r := range rows {
		if !r.IsEmptyMarker {
			out = append(out, r)
		}
	}
	return out
}

// flowVolumes splits a row's volume into call and put volume. Explicit
// per-side fields win over the type flag.
func flowVolumes(r FlowRow) (call, put float64) {
	s := sideOfFlow(r)
	if r.CallVolume != nil {
		call = *r.CallVolume
	} else if s == sideCall {
		call = numeric.Value(r.Volume)
	}
	if r.PutVolume != nil {
		put = *r.PutVolume
	} else if s == sidePut {
		put = numeric.Value(r.Volume)
	}
	return call, put
}

// DirectionFor maps a call/put ratio to a direction
func DirectionFor(ratio float64) Direction {
	switch {
	case ratio > BullishCallPutRatio:
		return DirectionBullish
	case ratio < BearishCallPutRatio:
		return DirectionBearish
	default:
		return DirectionNeutral
	}
}

// BuildRecentFlows aggregates call/put volume over non-empty flow rows
func BuildRecentFlows(rows []FlowRow) RecentFlows {
	valid := validFlows(rows)
	if len(valid) == 0 {
		return RecentFlows{Direction: DirectionNeutral, TopTrades: []TopTrade{}}
	}

	var callVol, putVol, premium float64
	for _, r := range valid {
		c, p := flowVolumes(r)
		callVol += c
		putVol += p
		premium += numeric.Value(r.Premium)
	}
	ratio := numeric.RatioWithSentinel(callVol, putVol)

	return RecentFlows{
		Available:    true,
		Direction:    DirectionFor(ratio),
		CallVolume:   callVol,
		PutVolume:    putVol,
		CallPutRatio: ratio,
		TotalPremium: premium,
		TopTrades:    topTrades(valid),
	}
}

func topTrades(rows []FlowRow) []TopTrade {
	sorted := make([]FlowRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return numeric.Value(sorted[i].Premium) > numeric.Value(sorted[j].Premium)
	})
	if len(sorted) > TopTradesLimit {
		sorted = sorted[:TopTradesLimit]
	}

	out := make([]TopTrade, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, TopTrade{
			OptionSymbol: r.OptionSymbol,
			Strike:       r.Strike,
			Expiry:       r.Expiry,
			Type:         tradeType(r),
			Volume:       numeric.Value(r.Volume),
			Premium:      r.Premium,
			ExecutedAt:   r.ExecutedAt,
		})
	}
	return out
}

func tradeType(r FlowRow) string {
	switch sideOfFlow(r) {
	case sideCall:
		return "call"
	case sidePut:
		return "put"
	}
	if t := strings.ToLower(strings.TrimSpace(r.OptionType)); t != "" {
		return t
	}
	return "unknown"
}

// BuildFlowRepetition buckets flows per trading day and keeps the most recent days
func BuildFlowRepetition(rows []FlowRow) FlowRepetition {
	byDay := make(map[string]*FlowDay)
	for _, r := range validFlows(rows) {
		day := r.DataDate
		if day == "" && r.ExecutedAt != nil {
			day = numeric.DateKey(*r.ExecutedAt)
		}
		if day == "" {
			continue
		}
		d, ok := byDay[day]
		if !ok {
			d = &FlowDay{Date: day}
			byDay[day] = d
		}
		c, p := flowVolumes(r)
		d.TradesCount++
		d.PremiumSum += numeric.Value(r.Premium)
		d.CallVolume += c
		d.PutVolume += p
	}

	days := make([]FlowDay, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	if len(days) > RepetitionDayLimit {
		days = days[:RepetitionDayLimit]
	}

	return FlowRepetition{UniqueDays: len(byDay), Days: days}
}
