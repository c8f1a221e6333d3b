package optionsflow

import "time"

// OptionType is the contract side of an option
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// TimeHorizon buckets a cluster by days to expiry
type TimeHorizon string

const (
	HorizonShort TimeHorizon = "short"
	HorizonSwing TimeHorizon = "swing"
	HorizonLong  TimeHorizon = "long"
)

// Action is the conviction tier assigned to a cluster
type Action string

const (
	ActionIgnore      Action = "IGNORE"
	ActionWatch       Action = "WATCH"
	ActionInvestigate Action = "INVESTIGATE"
)

// rank orders actions for filtering (higher is stronger)
func (a Action) rank() int {
	switch a {
	case ActionInvestigate:
		return 2
	case ActionWatch:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether a is as strong as min
func (a Action) AtLeast(min Action) bool {
	return a.rank() >= min.rank()
}

// Tag is an optional pattern label. The zero value means no tag.
type Tag string

const (
	TagNone           Tag = ""
	TagUltraWhale     Tag = "ULTRA_WHALE"
	TagGoldenSweep    Tag = "GOLDEN_SWEEP"
	TagLotoConviction Tag = "LOTO_CONVICTION"
)

// Importance is the coarse size tier of a cluster
type Importance string

const (
	ImportanceVeryStrong Importance = "tres_fort"
	ImportanceStrong     Importance = "fort"
)

// Intent is the inferred directional intent of a cluster
type Intent string

const (
	IntentBullishAggression Intent = "bullish_aggression"
	IntentBearishAggression Intent = "bearish_aggression"
	IntentNeutralHedging    Intent = "neutral_hedging"
)

// Quality reflects whether the strike traded through its open interest
type Quality string

const (
	QualityHighConviction Quality = "high_conviction"
	QualityStandard       Quality = "standard"
)

// OptionTradeAlert is one normalized trade-alert row.
// Numeric fields are nil when the upstream value was missing or malformed.
type OptionTradeAlert struct {
	Ticker           string     `json:"ticker"`
	Type             OptionType `json:"type"`
	Strike           string     `json:"strike"` // canonical decimal text, e.g. "100" or "182.5"
	Expiry           string     `json:"expiry"` // as supplied; YYYY-MM-DD when valid
	TotalPremium     *float64   `json:"total_premium"`
	AskSidePremium   *float64   `json:"total_ask_side_prem"`
	BidSidePremium   *float64   `json:"total_bid_side_prem"`
	TradeCount       *float64   `json:"trade_count"`
	TotalSize        *float64   `json:"total_size"`
	VolumeOIRatio    *float64   `json:"volume_oi_ratio"`
	UnderlyingPrice  *float64   `json:"underlying_price"`
	AllOpeningTrades bool       `json:"all_opening_trades"`
	AlertRule        string     `json:"alert_rule"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Cluster aggregates every alert sharing (ticker, type, expiry, strike)
type Cluster struct {
	Ticker           string      `json:"ticker"`
	Type             OptionType  `json:"type"`
	Strike           string      `json:"strike"`
	Expiry           string      `json:"expiry"`
	PremiumTotal     float64     `json:"premium_total"`
	AskPremiumTotal  float64     `json:"ask_prem_total"`
	BidPremiumTotal  float64     `json:"bid_prem_total"`
	AskRatio         float64     `json:"ask_ratio"`      // in [0,1]
	DirectionBias    float64     `json:"direction_bias"` // ask minus bid premium
	TradesTotal      float64     `json:"trades_total"`
	SizeTotal        float64     `json:"size_total"`
	VolumeOIRatioMax float64     `json:"volume_oi_ratio_max"`
	UnderlyingPrice  *float64    `json:"underlying_price"`
	DaysToExpiry     *int        `json:"days_to_expiry"`
	TimeHorizon      TimeHorizon `json:"time_horizon"`
	AlertCount       int         `json:"alert_count"`
	CreatedDates     []time.Time `json:"created_dates"`
	OpeningHint      bool        `json:"opening_hint"`
	AlertRules       []string    `json:"alert_rules"`
}

// Key returns the composite grouping key
func (c Cluster) Key() string {
	return clusterKey(c.Ticker, c.Type, c.Expiry, c.Strike)
}

// ClusterAnalysis is a classified cluster ready for display
type ClusterAnalysis struct {
	Cluster    Cluster    `json:"cluster"`
	Label      string     `json:"label"`
	Importance Importance `json:"importance"`
	Intent     Intent     `json:"intent"`
	Quality    Quality    `json:"quality"`
	Action     Action     `json:"action"`
	Tag        Tag        `json:"tag,omitempty"`
	Why        []string   `json:"why"`
}

// Report is the ranked cluster set plus its narrative summary
type Report struct {
	Ticker           string            `json:"ticker"`
	ClustersAnalyzed int               `json:"clusters_analyzed"`
	Clusters         []ClusterAnalysis `json:"clusters"`
	Summary          string            `json:"summary"`
	Cached           bool              `json:"cached"`
	Timestamp        time.Time         `json:"timestamp"`
}
