package market_data

import "time"

// OHLCV is one daily bar of the underlying
type OHLCV struct {
	Ticker   string    `ch:"ticker"`
	OpenTime time.Time `ch:"open_time"`
	Open     float64   `ch:"open"`
	High     float64   `ch:"high"`
	Low      float64   `ch:"low"`
	Close    float64   `ch:"close"`
	Volume   float64   `ch:"volume"`
}

// OHLCVQuery selects bars for one ticker, newest first
type OHLCVQuery struct {
	Ticker string
	Since  time.Time
	Limit  int
}
