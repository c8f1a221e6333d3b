package fivefactor

import (
	"regexp"
	"strconv"
	"strings"
)

// The root may be space-padded to six characters (the 21-character OCC form)
// and adjusted roots carry a trailing digit, e.g. BRKB1.
var occSymbol = regexp.MustCompile(`^([A-Z][A-Z0-9.]*?)\s*(\d{6})([CP])(\d{8})$`)

// OptionSymbol is a parsed OCC option symbol, e.g. AAPL251219C00200000 or
// "AAPL  251219C00200000"
type OptionSymbol struct {
	Root   string
	Expiry string // YYYY-MM-DD
	IsCall bool
	Strike float64
}

// ParseOptionSymbol parses an OCC-format symbol. Leading "-" or "O:" prefixes
// used by some feeds are tolerated.
func ParseOptionSymbol(symbol string) (OptionSymbol, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "O:")
	s = strings.TrimPrefix(s, "-")
	m := occSymbol.FindStringSubmatch(s)
	if m == nil {
		return OptionSymbol{}, false
	}
	strike, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return OptionSymbol{}, false
	}
	d := m[2]
	return OptionSymbol{
		Root:   m[1],
		Expiry: "20" + d[0:2] + "-" + d[2:4] + "-" + d[4:6],
		IsCall: m[3] == "C",
		Strike: strike / 1000,
	}, true
}

// side of a contract: call, put or unknown
type side int

const (
	sideUnknown side = iota
	sideCall
	sidePut
)

func sideOfSymbol(symbol string) side {
	if p, ok := ParseOptionSymbol(symbol); ok {
		if p.IsCall {
			return sideCall
		}
		return sidePut
	}
	return sideUnknown
}

func sideOfType(optionType string) side {
	switch strings.ToLower(strings.TrimSpace(optionType)) {
	case "call", "c":
		return sideCall
	case "put", "p":
		return sidePut
	}
	return sideUnknown
}

// sideOfFlow prefers the explicit type flag and falls back to the symbol
func sideOfFlow(r FlowRow) side {
	if s := sideOfType(r.OptionType); s != sideUnknown {
		return s
	}
	return sideOfSymbol(r.OptionSymbol)
}
