package optionsflow

import "time"

// Conviction thresholds. Tests assert on these boundaries directly.
const (
	// UltraWhalePremium marks a cluster as an ultra whale and drives importance
	UltraWhalePremium = 1_000_000.0
	// AggressiveAskRatio is the ask share treated as very aggressive buying
	AggressiveAskRatio = 0.85
	// UrgencyDays is the expiry window considered urgent for INVESTIGATE
	UrgencyDays = 14
	// UrgentInvestigatePremium is the premium floor for urgent aggressive clusters
	UrgentInvestigatePremium = 500_000.0
	// WatchPremium and WatchAskRatio gate the WATCH tier
	WatchPremium  = 100_000.0
	WatchAskRatio = 0.55
	// GoldenSweepPremium must be strictly exceeded for GOLDEN_SWEEP
	GoldenSweepPremium = 250_000.0
	// LotoDays and LotoAskRatio gate LOTO_CONVICTION (ratio strictly exceeded)
	LotoDays     = 7
	LotoAskRatio = 0.75
	// MissingDaysToExpiry substitutes an unknown expiry distance: never urgent
	MissingDaysToExpiry = 99
)

// Display thresholds
const (
	BullishAskRatio     = 0.65
	BearishAskRatio     = 0.35
	HighConvictionVolOI = 1.0
	ShortHorizonMaxDays = 7
	SwingHorizonMaxDays = 45
)

// Fetch and clustering defaults, all caller-overridable
const (
	DefaultMinClusterPremium = 100_000.0
	DefaultMinRowPremium     = 20_000.0
	DefaultLookback          = 72 * time.Hour
	DefaultFetchLimit        = 500
)

// Options configures a flow analysis run
type Options struct {
	// MinClusterPremium drops clusters whose premium_total is below it
	MinClusterPremium float64
	// MinRowPremium is the per-alert floor applied by the row source
	MinRowPremium float64
	// Lookback bounds how old fetched alerts may be
	Lookback time.Duration
	// FetchLimit caps rows fetched upstream
	FetchLimit int
	// Limit caps ranked clusters returned; 0 means no limit
	Limit int
	// MinAction filters ranked clusters; the zero value keeps everything
	MinAction Action
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		MinClusterPremium: DefaultMinClusterPremium,
		MinRowPremium:     DefaultMinRowPremium,
		Lookback:          DefaultLookback,
		FetchLimit:        DefaultFetchLimit,
	}
}

// WithDefaults fills unset fields with their defaults
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.MinClusterPremium <= 0 {
		o.MinClusterPremium = d.MinClusterPremium
	}
	if o.MinRowPremium <= 0 {
		o.MinRowPremium = d.MinRowPremium
	}
	if o.Lookback <= 0 {
		o.Lookback = d.Lookback
	}
	if o.FetchLimit <= 0 {
		o.FetchLimit = d.FetchLimit
	}
	return o
}
