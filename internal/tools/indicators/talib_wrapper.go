package indicators

import (
	"insideredge/internal/domain/market_data"
	"insideredge/pkg/errors"
)

// TalibData holds OHLCV data in format expected by ta-lib
type TalibData struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// PrepareData converts domain OHLCV candles to ta-lib format.
// Candles arrive newest first; ta-lib expects oldest first.
func PrepareData(candles []market_data.OHLCV) (*TalibData, error) {
	if len(candles) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "no candles provided")
	}
	data := &TalibData{
		Open:   make([]float64, len(candles)),
		High:   make([]float64, len(candles)),
		Low:    make([]float64, len(candles)),
		Close:  make([]float64, len(candles)),
		Volume: make([]float64, len(candles)),
	}
	for i, candle := range candles {
		idx := len(candles) - 1 - i
		data.Open[idx] = candle.Open
		data.High[idx] = candle.High
		data.Low[idx] = candle.Low
		data.Close[idx] = candle.Close
		data.Volume[idx] = candle.Volume
	}
	return data, nil
}

// GetLastValue returns the most recent value from ta-lib output
func GetLastValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	return values[len(values)-1], nil
}

// ValidateMinLength checks if we have enough data for indicator calculation
func ValidateMinLength(candles []market_data.OHLCV, minLength int, indicatorName string) error {
	if len(candles) < minLength {
		return errors.Wrapf(errors.ErrInvalidInput,
			"%s requires at least %d candles, got %d",
			indicatorName, minLength, len(candles))
	}
	return nil
}
