package fivefactor

import (
	"sort"

	"insideredge/pkg/numeric"
)

const (
	OIChangeTopLimit  = 10
	OIStrikeTopLimit  = 15
	ConcentrationSpan = 10
)

// BuildOIChange sums signed open interest deltas on the latest data date.
// Returns nil when there are no rows at all; per-side sums over an empty
// subset are a legitimate zero.
func BuildOIChange(rows []OIChangeRow) *OIChange {
	date, latest := rowsAtLatestDate(rows, func(r OIChangeRow) string { return r.DataDate })
	if len(latest) == 0 {
		return nil
	}

	block := &OIChange{DataDate: date}
	for _, r := range latest {
		diff := numeric.Value(r.OIDiffPlain)
		block.TotalChange += diff
		switch sideOfSymbol(r.OptionSymbol) {
		case sideCall:
			block.CallOIChange += diff
		case sidePut:
			block.PutOIChange += diff
		}
	}

	sorted := make([]OIChangeRow, len(latest))
	copy(sorted, latest)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := numeric.Value(sorted[i].OIDiffPlain), numeric.Value(sorted[j].OIDiffPlain)
		if di != dj {
			return di > dj
		}
		return sorted[i].OptionSymbol < sorted[j].OptionSymbol
	})

	block.TopIncreases = make([]OIChangeEntry, 0, OIChangeTopLimit)
	for i := 0; i < len(sorted) && i < OIChangeTopLimit; i++ {
		block.TopIncreases = append(block.TopIncreases, oiEntry(sorted[i], date))
	}
	block.TopDecreases = make([]OIChangeEntry, 0, OIChangeTopLimit)
	for i := len(sorted) - 1; i >= 0 && len(block.TopDecreases) < OIChangeTopLimit; i-- {
		block.TopDecreases = append(block.TopDecreases, oiEntry(sorted[i], date))
	}
	return block
}

func oiEntry(r OIChangeRow, latest string) OIChangeEntry {
	e := OIChangeEntry{
		OptionSymbol: r.OptionSymbol,
		OIDiffPlain:  numeric.Value(r.OIDiffPlain),
		OIChange:     r.OIChange,
	}
	if p, ok := ParseOptionSymbol(r.OptionSymbol); ok {
		e.Strike = numeric.Ptr(p.Strike)
		e.Expiry = p.Expiry
		return e
	}
	switch {
	case r.CurrDate != "":
		e.Expiry = r.CurrDate
	case r.LastDate != "":
		e.Expiry = r.LastDate
	default:
		e.Expiry = latest
	}
	return e
}

// BuildOIPerStrike ranks strikes of the latest data date by total open interest
func BuildOIPerStrike(rows []OIStrikeRow) *OIPerStrike {
	date, latest := rowsAtLatestDate(rows, func(r OIStrikeRow) string { return r.DataDate })
	if len(latest) == 0 {
		return nil
	}

	strikes := make([]StrikeOI, 0, len(latest))
	for _, r := range latest {
		call, put := numeric.Value(r.CallOI), numeric.Value(r.PutOI)
		strikes = append(strikes, StrikeOI{
			Strike:  numeric.Value(r.Strike),
			CallOI:  call,
			PutOI:   put,
			TotalOI: call + put,
		})
	}
	sort.SliceStable(strikes, func(i, j int) bool {
		if strikes[i].TotalOI != strikes[j].TotalOI {
			return strikes[i].TotalOI > strikes[j].TotalOI
		}
		return strikes[i].Strike < strikes[j].Strike
	})
	if len(strikes) > OIStrikeTopLimit {
		strikes = strikes[:OIStrikeTopLimit]
	}

	return &OIPerStrike{
		DataDate:             date,
		TopStrikes:           strikes,
		OIConcentrationRatio: ConcentrationRatio(strikes),
	}
}

// ConcentrationRatio is top1 / sum(top10) of strikes sorted by total OI
// descending. Nil when there is no strike or no open interest.
func ConcentrationRatio(sorted []StrikeOI) *float64 {
	if len(sorted) == 0 {
		return nil
	}
	top := sorted
	if len(top) > ConcentrationSpan {
		top = top[:ConcentrationSpan]
	}
	var sum float64
	for _, s := range top {
		sum += s.TotalOI
	}
	if sum <= 0 {
		return nil
	}
	return numeric.Ratio(numeric.Ptr(top[0].TotalOI), numeric.Ptr(sum))
}
