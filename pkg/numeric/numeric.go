// Package numeric holds the null-aware arithmetic shared by the analytics engine.
//
// Missing or malformed inputs are represented as nil, never as 0 or NaN, so that a
// missing value cannot masquerade as "below threshold".
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnboundedRatio is reported instead of +Inf when a ratio's denominator is zero
// and its numerator is positive.
const UnboundedRatio = 999.0

// Ptr returns a pointer to v
func Ptr(v float64) *float64 {
	return &v
}

// ParseFloat parses a loosely typed value into a finite float.
// Supported inputs: float/int kinds, json.Number, numeric strings (commas and
// surrounding spaces tolerated), and their pointers. Anything else yields nil.
func ParseFloat(v interface{}) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return Ptr(float64(x))
	case int32:
		return Ptr(float64(x))
	case int64:
		return Ptr(float64(x))
	case uint32:
		return Ptr(float64(x))
	case uint64:
		return Ptr(float64(x))
	case json.Number:
		return ParseString(string(x))
	case string:
		return ParseString(x)
	case *string:
		if x == nil {
			return nil
		}
		return ParseString(*x)
	case *float64:
		if x == nil {
			return nil
		}
		return finite(*x)
	default:
		return nil
	}
}

// ParseString parses a numeric string, returning nil for empty or malformed input
func ParseString(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Value dereferences p, treating nil as zero. Only use it where a zero
// contribution is the documented semantics (sums over present values).
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Ratio divides num by den, returning nil when either side is unknown or den is zero
func Ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return finite(*num / *den)
}

// RatioWithSentinel divides num by den. A zero denominator yields UnboundedRatio
// when num is positive and 0 otherwise.
func RatioWithSentinel(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	if num > 0 {
		return UnboundedRatio
	}
	return 0
}
