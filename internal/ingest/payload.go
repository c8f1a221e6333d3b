package ingest

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"insideredge/internal/domain/fivefactor"
	"insideredge/pkg/errors"
	"insideredge/pkg/numeric"
)

// AlertColumns is the column order of positional trade-alert rows, matching
// the options_trade_alerts table.
var AlertColumns = []string{
	"ticker", "type", "strike", "expiry",
	"total_premium", "total_ask_side_prem", "total_bid_side_prem",
	"trade_count", "total_size", "volume_oi_ratio", "underlying_price",
	"all_opening_trades", "alert_rule", "created_at",
}

// UnmarshalJSON accepts a row either as an object of named fields or as an
// array laid out in AlertColumns order. Numbers are kept as json.Number so
// numeric strings and numbers parse the same way downstream.
func (r *Record) UnmarshalJSON(data []byte) error {
	row := gjson.ParseBytes(data)
	if row.Type == gjson.Null {
		*r = nil
		return nil
	}
	out := Record{}
	switch {
	case row.IsObject():
		row.ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = plain(v)
			return true
		})
	case row.IsArray():
		for i, v := range row.Array() {
			if i >= len(AlertColumns) {
				break
			}
			out[AlertColumns[i]] = plain(v)
		}
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "row must be an object or an array, got %s", row.Type)
	}
	*r = out
	return nil
}

func plain(v gjson.Result) interface{} {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.Str
	case gjson.True, gjson.False:
		return v.Bool()
	}
	return v.Value()
}

// PriceContextExtras are the indicator fields carried in a price-context
// JSON payload column
type PriceContextExtras struct {
	ADX14          *float64
	RealizedVol20d *float64
}

// PriceContextPayload extracts ADX(14) and realized volatility. ADX arrives
// as {"adx14":{"adx":n}}, {"adx_14":n} or {"adx14":n} depending on the feed.
func PriceContextPayload(raw string) PriceContextExtras {
	if raw == "" || !gjson.Valid(raw) {
		return PriceContextExtras{}
	}
	var out PriceContextExtras
	for _, path := range []string{"adx14.adx", "adx_14", "adx14"} {
		if v := gjson.Get(raw, path); v.Exists() {
			if p := gjsonFloat(v); p != nil {
				out.ADX14 = p
				break
			}
		}
	}
	out.RealizedVol20d = gjsonFloat(gjson.Get(raw, "realized_vol_20d"))
	return out
}

// GreeksPayload extracts the pre-aggregated top gamma strikes
func GreeksPayload(raw string) []fivefactor.GammaStrike {
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	arr := gjson.Get(raw, "top_gamma_strikes")
	if !arr.IsArray() {
		return nil
	}
	out := make([]fivefactor.GammaStrike, 0, len(arr.Array()))
	arr.ForEach(func(_, v gjson.Result) bool {
		out = append(out, fivefactor.GammaStrike{
			Strike:            orZero(v.Get("strike")),
			NetGammaExposure:  orZero(v.Get("net_gamma_exposure")),
			CallGammaExposure: orZero(v.Get("call_gamma_exposure")),
			PutGammaExposure:  orZero(v.Get("put_gamma_exposure")),
			NetDeltaExposure:  orZero(v.Get("net_delta_exposure")),
			CallDeltaExposure: orZero(v.Get("call_delta_exposure")),
			PutDeltaExposure:  orZero(v.Get("put_delta_exposure")),
		})
		return true
	})
	return out
}

// gjsonFloat accepts JSON numbers and numeric strings; objects and bools are nil
func gjsonFloat(v gjson.Result) *float64 {
	switch v.Type {
	case gjson.Number:
		return numeric.ParseString(v.Raw)
	case gjson.String:
		return numeric.ParseString(v.Str)
	}
	return nil
}

func orZero(v gjson.Result) float64 {
	return numeric.Value(gjsonFloat(v))
}
