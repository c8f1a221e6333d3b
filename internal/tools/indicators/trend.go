package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/market_data"
	"insideredge/pkg/numeric"
)

const (
	SMAShortPeriod    = 20
	SMALongPeriod     = 50
	ADXPeriod         = 14
	RangePeriod       = 5
	RealizedVolPeriod = 20
	TradingDaysYear   = 252
)

// TrendInputs are the daily-bar indicators behind price_context. A field is
// nil when there are not enough candles for it.
type TrendInputs struct {
	Spot           *float64
	SMA20          *float64
	SMA50          *float64
	StdDev20       *float64
	ADX14          *float64
	Range5dPct     *float64
	RealizedVol20d *float64
}

// ComputeTrendInputs runs the ta-lib indicators over daily candles (newest first)
func ComputeTrendInputs(candles []market_data.OHLCV) TrendInputs {
	var out TrendInputs
	data, err := PrepareData(candles)
	if err != nil {
		return out
	}
	n := len(data.Close)
	out.Spot = last(data.Close)

	if ValidateMinLength(candles, SMAShortPeriod, "SMA20") == nil {
		out.SMA20 = last(talib.Sma(data.Close, SMAShortPeriod))
		out.StdDev20 = last(talib.StdDev(data.Close, SMAShortPeriod, 1))
	}
	if ValidateMinLength(candles, SMALongPeriod, "SMA50") == nil {
		out.SMA50 = last(talib.Sma(data.Close, SMALongPeriod))
	}
	// ADX needs 2*period-1 bars of lookback before its first value
	if ValidateMinLength(candles, 2*ADXPeriod, "ADX") == nil {
		out.ADX14 = last(talib.Adx(data.High, data.Low, data.Close, ADXPeriod))
	}
	if ValidateMinLength(candles, RangePeriod, "range") == nil && data.Close[n-1] != 0 {
		hi := talib.Max(data.High, RangePeriod)
		lo := talib.Min(data.Low, RangePeriod)
		out.Range5dPct = numeric.Ptr((hi[n-1] - lo[n-1]) / data.Close[n-1] * 100)
	}
	if ValidateMinLength(candles, RealizedVolPeriod+1, "realized vol") == nil {
		out.RealizedVol20d = realizedVol(data.Close)
	}
	return out
}

// realizedVol is the annualized stddev of daily log returns over the last 20 sessions
func realizedVol(closes []float64) *float64 {
	for _, c := range closes {
		if c <= 0 {
			return nil
		}
	}
	// Rocr's first value is lookback padding
	logReturns := talib.Ln(talib.Rocr(closes, 1)[1:])
	sd := last(talib.StdDev(logReturns, RealizedVolPeriod, 1))
	if sd == nil {
		return nil
	}
	return numeric.Ptr(*sd * math.Sqrt(TradingDaysYear))
}

func last(values []float64) *float64 {
	v, err := GetLastValue(values)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FillPriceContext completes missing fields of a price-context row from
// indicators computed on daily candles. Upstream values always win.
func FillPriceContext(row fivefactor.PriceContextRow, in TrendInputs) fivefactor.PriceContextRow {
	fill := func(dst **float64, src *float64) {
		if *dst == nil {
			*dst = src
		}
	}
	fill(&row.Spot, in.Spot)
	fill(&row.SMA20, in.SMA20)
	fill(&row.SMA50, in.SMA50)
	fill(&row.StdDev20, in.StdDev20)
	fill(&row.ADX14, in.ADX14)
	fill(&row.Range5dPct, in.Range5dPct)
	fill(&row.RealizedVol20d, in.RealizedVol20d)
	return row
}
