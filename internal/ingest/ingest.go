// Package ingest normalizes raw upstream rows into the typed rows the engine
// consumes. Missing or malformed numerics become nil, never zero.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"insideredge/internal/domain/optionsflow"
	"insideredge/pkg/numeric"
)

// Record is one raw row as decoded from JSON or a loosely typed store
type Record map[string]interface{}

// first returns the first present, non-nil value among keys
func (r Record) first(keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Float reads the first parsable numeric among keys
func (r Record) Float(keys ...string) *float64 {
	for _, k := range keys {
		if p := numeric.ParseFloat(r[k]); p != nil {
			return p
		}
	}
	return nil
}

// String reads the first non-empty string among keys
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		if s := toString(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// Bool reads a boolean, accepting "true"/"1" strings and non-zero numbers
func (r Record) Bool(keys ...string) bool {
	switch v := r.first(keys...).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		if p := numeric.ParseFloat(v); p != nil {
			return *p != 0
		}
	}
	return false
}

// Time reads a timestamp; zero when absent or unparsable
func (r Record) Time(keys ...string) time.Time {
	switch v := r.first(keys...).(type) {
	case time.Time:
		return v.UTC()
	case *time.Time:
		if v != nil {
			return v.UTC()
		}
	case string:
		return parseTime(v)
	}
	return time.Time{}
}

// TimePtr is Time returning nil for the zero value
func (r Record) TimePtr(keys ...string) *time.Time {
	t := r.Time(keys...)
	if t.IsZero() {
		return nil
	}
	return &t
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05", numeric.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case *string:
		if s != nil {
			return strings.TrimSpace(*s)
		}
	case nil:
		return ""
	default:
		if p := numeric.ParseFloat(s); p != nil {
			return strconv.FormatFloat(*p, 'f', -1, 64)
		}
	}
	return ""
}

// Strike renders a strike in canonical decimal text so "100", "100.0" and
// 100 group together. Unparsable input is kept verbatim.
func Strike(v interface{}) string {
	if p := numeric.ParseFloat(v); p != nil {
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	return toString(v)
}

// OptionType maps call/put spellings; empty when unrecognized
func OptionType(v string) optionsflow.OptionType {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "call", "c", "calls":
		return optionsflow.OptionCall
	case "put", "p", "puts":
		return optionsflow.OptionPut
	}
	return ""
}

// Expiry normalizes an expiry to YYYY-MM-DD, keeping unparsable text as is
func Expiry(s string) string {
	if t, ok := numeric.ParseDate(s); ok {
		return numeric.DateKey(t)
	}
	return strings.TrimSpace(s)
}

// Alert normalizes one trade-alert record
func Alert(r Record) optionsflow.OptionTradeAlert {
	return optionsflow.OptionTradeAlert{
		Ticker:           strings.ToUpper(r.String("ticker", "underlying_symbol")),
		Type:             OptionType(r.String("type", "option_type", "call_put")),
		Strike:           Strike(r.first("strike")),
		Expiry:           Expiry(r.String("expiry", "expiration_date")),
		TotalPremium:     r.Float("total_premium", "premium"),
		AskSidePremium:   r.Float("total_ask_side_prem", "ask_side_premium"),
		BidSidePremium:   r.Float("total_bid_side_prem", "bid_side_premium"),
		TradeCount:       r.Float("trade_count"),
		TotalSize:        r.Float("total_size"),
		VolumeOIRatio:    r.Float("volume_oi_ratio"),
		UnderlyingPrice:  r.Float("underlying_price"),
		AllOpeningTrades: r.Bool("all_opening_trades"),
		AlertRule:        r.String("alert_rule"),
		CreatedAt:        r.Time("created_at"),
	}
}

// Alerts normalizes a batch of records, dropping rows with no ticker or type
func Alerts(records []Record) []optionsflow.OptionTradeAlert {
	out := make([]optionsflow.OptionTradeAlert, 0, len(records))
	for _, rec := range records {
		a := Alert(rec)
		if a.Ticker == "" || a.Type == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
