package optionsflow

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"insideredge/pkg/numeric"
)

func clusterKey(ticker string, typ OptionType, expiry, strike string) string {
	return ticker + "|" + string(typ) + "|" + expiry + "|" + strike
}

// accumulator sums in decimal so cluster totals do not depend on row order
type accumulator struct {
	ticker, expiry, strike string
	typ                    OptionType

	premium, ask, bid, trades, size decimal.Decimal
	volOIMax                        float64
	members                         []OptionTradeAlert
	rules                           map[string]struct{}
	opening                         bool
}

func newAccumulator(a OptionTradeAlert) *accumulator {
	return &accumulator{
		ticker: a.Ticker,
		typ:    a.Type,
		expiry: a.Expiry,
		strike: a.Strike,
		rules:  make(map[string]struct{}),
	}
}

func (acc *accumulator) add(a OptionTradeAlert) {
	acc.premium = acc.premium.Add(dec(a.TotalPremium))
	acc.ask = acc.ask.Add(dec(a.AskSidePremium))
	acc.bid = acc.bid.Add(dec(a.BidSidePremium))
	acc.trades = acc.trades.Add(dec(a.TradeCount))
	acc.size = acc.size.Add(dec(a.TotalSize))
	if a.VolumeOIRatio != nil && *a.VolumeOIRatio > acc.volOIMax {
		acc.volOIMax = *a.VolumeOIRatio
	}
	acc.rules[a.AlertRule] = struct{}{}
	acc.opening = acc.opening || a.AllOpeningTrades
	acc.members = append(acc.members, a)
}

func dec(p *float64) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*p)
}

// BuildClusters groups alerts by (ticker, type, expiry, strike) and aggregates them.
//
// Alerts without a parsable total premium are excluded entirely. Clusters whose
// premium total is below minClusterPremium are dropped. The result is sorted by
// premium total descending; ties fall back to the composite key so output is
// independent of input order.
func BuildClusters(alerts []OptionTradeAlert, minClusterPremium float64, now time.Time) []Cluster {
	groups := make(map[string]*accumulator)

	for _, a := range alerts {
		if a.TotalPremium == nil {
			continue
		}
		key := clusterKey(a.Ticker, a.Type, a.Expiry, a.Strike)
		acc, ok := groups[key]
		if !ok {
			acc = newAccumulator(a)
			groups[key] = acc
		}
		acc.add(a)
	}

	clusters := make([]Cluster, 0, len(groups))
	for _, acc := range groups {
		premium, _ := acc.premium.Float64()
		if premium < minClusterPremium {
			continue
		}
		clusters = append(clusters, acc.cluster(now))
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].PremiumTotal != clusters[j].PremiumTotal {
			return clusters[i].PremiumTotal > clusters[j].PremiumTotal
		}
		return clusters[i].Key() < clusters[j].Key()
	})

	return clusters
}

func (acc *accumulator) cluster(now time.Time) Cluster {
	premium, _ := acc.premium.Float64()
	ask, _ := acc.ask.Float64()
	bid, _ := acc.bid.Float64()
	trades, _ := acc.trades.Float64()
	size, _ := acc.size.Float64()
	bias, _ := acc.ask.Sub(acc.bid).Float64()

	// members ordered by creation time so "first member" is well defined
	sort.Slice(acc.members, func(i, j int) bool {
		return memberBefore(acc.members[i], acc.members[j])
	})

	created := make([]time.Time, 0, len(acc.members))
	var spot *float64
	for _, m := range acc.members {
		created = append(created, m.CreatedAt)
		if spot == nil && m.UnderlyingPrice != nil {
			v := *m.UnderlyingPrice
			spot = &v
		}
	}

	rules := make([]string, 0, len(acc.rules))
	for r := range acc.rules {
		rules = append(rules, r)
	}
	sort.Strings(rules)

	dte := numeric.DaysUntilCeil(acc.expiry, now)

	return Cluster{
		Ticker:           acc.ticker,
		Type:             acc.typ,
		Strike:           acc.strike,
		Expiry:           acc.expiry,
		PremiumTotal:     premium,
		AskPremiumTotal:  ask,
		BidPremiumTotal:  bid,
		AskRatio:         askRatio(acc.ask, acc.bid),
		DirectionBias:    bias,
		TradesTotal:      trades,
		SizeTotal:        size,
		VolumeOIRatioMax: acc.volOIMax,
		UnderlyingPrice:  spot,
		DaysToExpiry:     dte,
		TimeHorizon:      HorizonFor(dte),
		AlertCount:       len(acc.members),
		CreatedDates:     created,
		OpeningHint:      acc.opening,
		AlertRules:       rules,
	}
}

func memberBefore(a, b OptionTradeAlert) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	switch {
	case a.UnderlyingPrice == nil:
		return false
	case b.UnderlyingPrice == nil:
		return true
	}
	return *a.UnderlyingPrice < *b.UnderlyingPrice
}

// askRatio is ask/(ask+bid) clamped to [0,1]; 0 when there is no side premium
func askRatio(ask, bid decimal.Decimal) float64 {
	total := ask.Add(bid)
	if !total.IsPositive() {
		return 0
	}
	r, _ := ask.Div(total).Float64()
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// HorizonFor buckets days to expiry. Unknown expiry is treated as swing.
func HorizonFor(days *int) TimeHorizon {
	if days == nil {
		return HorizonSwing
	}
	switch {
	case *days <= ShortHorizonMaxDays:
		return HorizonShort
	case *days <= SwingHorizonMaxDays:
		return HorizonSwing
	default:
		return HorizonLong
	}
}
