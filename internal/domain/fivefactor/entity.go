package fivefactor

import "time"

// Direction of recent flows
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Snapshot is the per-ticker five-factor view. Any block may be nil when its
// source rows are absent.
type Snapshot struct {
	Ticker           string            `json:"ticker"`
	AsOf             string            `json:"as_of"`
	RecentFlows      RecentFlows       `json:"recent_flows"`
	FlowRepetition   FlowRepetition    `json:"flow_repetition"`
	OIChange         *OIChange         `json:"oi_change"`
	OIPerStrike      *OIPerStrike      `json:"oi_per_strike"`
	IVRank           *IVRank           `json:"iv_rank"`
	MaxPain          *MaxPain          `json:"max_pain"`
	GreeksAggregated *GreeksAggregated `json:"greeks_aggregated"`
	PriceContext     *PriceContext     `json:"price_context"`
	Catalysts        *Catalysts        `json:"catalysts"`
	DarkPool         *DarkPool         `json:"dark_pool"`
	FlowContext      FlowContext       `json:"flow_context"`
}

// TopTrade is one of the highest-premium flow rows
type TopTrade struct {
	OptionSymbol string     `json:"option_symbol"`
	Strike       *float64   `json:"strike"`
	Expiry       string     `json:"expiry,omitempty"`
	Type         string     `json:"type"` // call, put, unknown
	Volume       float64    `json:"volume"`
	Premium      *float64   `json:"premium"`
	ExecutedAt   *time.Time `json:"executed_at"`
}

// RecentFlows summarizes call/put flow volume
type RecentFlows struct {
	Available    bool       `json:"available"`
	Direction    Direction  `json:"direction"`
	CallVolume   float64    `json:"call_volume"`
	PutVolume    float64    `json:"put_volume"`
	CallPutRatio float64    `json:"call_put_ratio"`
	TotalPremium float64    `json:"total_premium"`
	TopTrades    []TopTrade `json:"top_trades"`
}

// FlowDay is one trading day of flow activity
type FlowDay struct {
	Date        string  `json:"date"`
	TradesCount int     `json:"trades_count"`
	PremiumSum  float64 `json:"premium_sum"`
	CallVolume  float64 `json:"call_volume"`
	PutVolume   float64 `json:"put_volume"`
}

// FlowRepetition shows whether flow persists across sessions
type FlowRepetition struct {
	UniqueDays int       `json:"unique_days"`
	Days       []FlowDay `json:"days"`
}

// OIChangeEntry is one contract's open interest delta
type OIChangeEntry struct {
	OptionSymbol string   `json:"option_symbol"`
	Strike       *float64 `json:"strike"`
	Expiry       string   `json:"expiry"`
	OIDiffPlain  float64  `json:"oi_diff_plain"`
	OIChange     *float64 `json:"oi_change"`
}

// OIChange sums signed open interest deltas on the latest data date
type OIChange struct {
	DataDate     string          `json:"data_date"`
	TotalChange  float64         `json:"total_change"`
	CallOIChange float64         `json:"call_oi_change"`
	PutOIChange  float64         `json:"put_oi_change"`
	TopIncreases []OIChangeEntry `json:"top_increases"`
	TopDecreases []OIChangeEntry `json:"top_decreases"`
}

// StrikeOI is open interest at one strike
type StrikeOI struct {
	Strike  float64 `json:"strike"`
	CallOI  float64 `json:"call_oi"`
	PutOI   float64 `json:"put_oi"`
	TotalOI float64 `json:"total_oi"`
}

// OIPerStrike ranks strikes by total open interest
type OIPerStrike struct {
	DataDate             string     `json:"data_date"`
	TopStrikes           []StrikeOI `json:"top_strikes"`
	OIConcentrationRatio *float64   `json:"oi_concentration_ratio"`
}

// IVRank is the latest implied volatility rank row
type IVRank struct {
	LatestDate string   `json:"latest_date"`
	IVRank1Y   *float64 `json:"iv_rank_1y"`
	Volatility *float64 `json:"volatility"`
	Close      *float64 `json:"close"`
}

// MaxPainLevel is the max pain of one expiry
type MaxPainLevel struct {
	Expiry           string   `json:"expiry"`
	MaxPain          *float64 `json:"max_pain"`
	DistanceFromSpot *float64 `json:"distance_from_spot"`
}

// MaxPain lists max pain levels of the latest data date
type MaxPain struct {
	DataDate      string         `json:"data_date"`
	CurrentSpot   *float64       `json:"current_spot"`
	Rows          []MaxPainLevel `json:"rows"`
	NearestExpiry *MaxPainLevel  `json:"nearest_expiry"`
}

// GreeksAggregated is the latest dealer exposure snapshot
type GreeksAggregated struct {
	AsOf             string        `json:"as_of"`
	NetGammaExposure *float64      `json:"net_gamma_exposure"`
	NetDeltaExposure *float64      `json:"net_delta_exposure"`
	TopGammaStrikes  []GammaStrike `json:"top_gamma_strikes"`
}

// Trend of SMA20 versus SMA50
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendRange   Trend = "range"
	TrendUnknown Trend = "unknown"
)

// MarketState from ADX(14)
type MarketState string

const (
	MarketTrending MarketState = "trending"
	MarketChoppy   MarketState = "choppy"
	MarketUnknown  MarketState = "unknown"
)

// PriceContext places spot relative to its moving averages
type PriceContext struct {
	Spot            *float64    `json:"spot"`
	ChangePercent   *float64    `json:"change_percent"`
	Volume          *float64    `json:"volume"`
	SMA20           *float64    `json:"sma_20"`
	SMA50           *float64    `json:"sma_50"`
	StdDev20        *float64    `json:"stddev_20"`
	Range5dPct      *float64    `json:"range_5d_pct"`
	DistanceToSMA20 *float64    `json:"distance_to_sma_20"`
	DistanceToSMA50 *float64    `json:"distance_to_sma_50"`
	PriceVsSMA20Pct *float64    `json:"price_vs_sma20_pct"`
	PriceVsSMA50Pct *float64    `json:"price_vs_sma50_pct"`
	Trend2050       Trend       `json:"trend_20_50"`
	Trend           Trend       `json:"trend"`
	ADX14           *float64    `json:"adx_14"`
	MarketState     MarketState `json:"market_state"`
	RealizedVol20d  *float64    `json:"realized_vol_20d"`
}

// Catalysts describes the next earnings event
type Catalysts struct {
	NextEarningsDate string   `json:"next_earnings_date"`
	ReportTime       string   `json:"report_time,omitempty"`
	DaysToEarnings   *int     `json:"days_to_earnings"`
	IsEarningsWeek   bool     `json:"is_earnings_week"`
	ExpectedMovePerc *float64 `json:"expected_move_perc"`
}

// DarkPool summarizes off-exchange prints over the window
type DarkPool struct {
	Count          int      `json:"count"`
	TotalValue     float64  `json:"total_value"`
	TotalVolume    float64  `json:"total_volume"`
	AvgTradeSize   *float64 `json:"avg_trade_size"`
	LatestDay      string   `json:"latest_day"`
	LatestDayValue *float64 `json:"latest_day_value"`
	AvgDailyValue  *float64 `json:"avg_daily_value"`
	VsAvg30dValue  *float64 `json:"vs_avg_30d_value"`
}

// FlowContext holds the cross-block ratios. Contextual, not signals.
type FlowContext struct {
	TotalFlowVolume      float64  `json:"total_flow_volume"`
	TotalFlowPremium     float64  `json:"total_flow_premium"`
	OIChangeTotal        *float64 `json:"oi_change_total"`
	FlowToOIChangeRatio  *float64 `json:"flow_to_oi_change_ratio"`
	TopStrikesTotalOI    *float64 `json:"top_strikes_total_oi"`
	OIConcentrationRatio *float64 `json:"oi_concentration_ratio"`
}

// CachedSnapshot wraps a stored snapshot so that a cached "no data" result
// (nil snapshot) is distinguishable from a cache miss
type CachedSnapshot struct {
	Snapshot   *Snapshot `json:"snapshot"`
	ComputedAt time.Time `json:"computed_at"`
}
