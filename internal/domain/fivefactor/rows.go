package fivefactor

import "time"

// Raw table rows after normalization at the ingestion boundary.
// Numeric fields are nil when missing or malformed upstream.

// FlowRow is one options_flow row
type FlowRow struct {
	OptionSymbol  string     `json:"option_symbol"`
	OptionType    string     `json:"option_type"` // call, put, c, p or empty
	Strike        *float64   `json:"strike"`
	Expiry        string     `json:"expiry"`
	Volume        *float64   `json:"volume"`
	CallVolume    *float64   `json:"call_volume"`
	PutVolume     *float64   `json:"put_volume"`
	Premium       *float64   `json:"premium"`
	DataDate      string     `json:"data_date"`
	ExecutedAt    *time.Time `json:"executed_at"`
	IsEmptyMarker bool       `json:"is_empty_marker"`
}

// OIChangeRow is one oi_change row
type OIChangeRow struct {
	OptionSymbol string   `json:"option_symbol"`
	DataDate     string   `json:"data_date"`
	CurrDate     string   `json:"curr_date"`
	LastDate     string   `json:"last_date"`
	OIDiffPlain  *float64 `json:"oi_diff_plain"`
	OIChange     *float64 `json:"oi_change"`
}

// OIStrikeRow is one oi_per_strike row
type OIStrikeRow struct {
	DataDate string   `json:"data_date"`
	Strike   *float64 `json:"strike"`
	CallOI   *float64 `json:"call_oi"`
	PutOI    *float64 `json:"put_oi"`
}

// IVRankRow is one iv_rank row
type IVRankRow struct {
	DataDate   string   `json:"data_date"`
	IVRank1Y   *float64 `json:"iv_rank_1y"`
	Volatility *float64 `json:"volatility"`
	Close      *float64 `json:"close"`
}

// MaxPainRow is one max_pain row (one expiry of one snapshot date)
type MaxPainRow struct {
	DataDate string   `json:"data_date"`
	Expiry   string   `json:"expiry"`
	MaxPain  *float64 `json:"max_pain"`
}

// QuoteRow is the latest ticker quote
type QuoteRow struct {
	Price *float64 `json:"price"`
	Last  *float64 `json:"last"`
}

// GammaStrike is one pre-aggregated strike of a greeks snapshot
type GammaStrike struct {
	Strike            float64 `json:"strike"`
	NetGammaExposure  float64 `json:"net_gamma_exposure"`
	CallGammaExposure float64 `json:"call_gamma_exposure"`
	PutGammaExposure  float64 `json:"put_gamma_exposure"`
	NetDeltaExposure  float64 `json:"net_delta_exposure"`
	CallDeltaExposure float64 `json:"call_delta_exposure"`
	PutDeltaExposure  float64 `json:"put_delta_exposure"`
}

// GreeksRow is one greeks exposure snapshot
type GreeksRow struct {
	DataDate         string        `json:"data_date"`
	CachedAt         time.Time     `json:"cached_at"`
	NetGammaExposure *float64      `json:"net_gamma_exposure"`
	NetDeltaExposure *float64      `json:"net_delta_exposure"`
	TopGammaStrikes  []GammaStrike `json:"top_gamma_strikes"`
}

// PriceContextRow is one price/trend snapshot
type PriceContextRow struct {
	DataDate       string    `json:"data_date"`
	CachedAt       time.Time `json:"cached_at"`
	Spot           *float64  `json:"spot"`
	ChangePercent  *float64  `json:"change_percent"`
	Volume         *float64  `json:"volume"`
	SMA20          *float64  `json:"sma_20"`
	SMA50          *float64  `json:"sma_50"`
	StdDev20       *float64  `json:"stddev_20"`
	Range5dPct     *float64  `json:"range_5d_pct"`
	ADX14          *float64  `json:"adx_14"`
	RealizedVol20d *float64  `json:"realized_vol_20d"`
}

// EarningsRow is one earnings calendar entry
type EarningsRow struct {
	ReportDate       string   `json:"report_date"`
	ReportTime       string   `json:"report_time"`
	ExpectedMovePerc *float64 `json:"expected_move_perc"`
}

// DarkPoolRow is one dark pool print
type DarkPoolRow struct {
	DataDate      string     `json:"data_date"`
	ExecutedAt    *time.Time `json:"executed_at"`
	Value         *float64   `json:"value"`
	Volume        *float64   `json:"volume"`
	Size          *float64   `json:"size"`
	IsEmptyMarker bool       `json:"is_empty_marker"`
}

// Rows is everything the builder consumes for one ticker
type Rows struct {
	Flows        []FlowRow
	OIChanges    []OIChangeRow
	OIPerStrike  []OIStrikeRow
	IVRank       []IVRankRow
	MaxPain      []MaxPainRow
	Quote        *QuoteRow
	Greeks       []GreeksRow
	PriceContext []PriceContextRow
	Earnings     []EarningsRow
	DarkPool     []DarkPoolRow
}
