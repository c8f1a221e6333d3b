package optionsflow

import (
	"context"
	"time"
)

// AlertQuery bounds a trade-alert fetch
type AlertQuery struct {
	Ticker     string
	Since      time.Time
	MinPremium float64
	Limit      int
}

// AlertSource supplies trade alerts ordered by total premium descending.
// An empty result means "no activity"; a non-nil error means the fetch failed.
type AlertSource interface {
	GetTradeAlerts(ctx context.Context, q AlertQuery) ([]OptionTradeAlert, error)
}
