package fivefactor

import (
	"context"
	"time"
)

// RowSource fetches the raw tables feeding one snapshot. Implementations own
// caching and empty-marker handling; an empty slice means nothing was found.
type RowSource interface {
	GetFlows(ctx context.Context, ticker string, since time.Time) ([]FlowRow, error)
	GetOIChanges(ctx context.Context, ticker string) ([]OIChangeRow, error)
	GetOIPerStrike(ctx context.Context, ticker string) ([]OIStrikeRow, error)
	GetIVRank(ctx context.Context, ticker string) ([]IVRankRow, error)
	GetMaxPain(ctx context.Context, ticker string) ([]MaxPainRow, error)
	GetLatestQuote(ctx context.Context, ticker string) (*QuoteRow, error)
	GetGreeks(ctx context.Context, ticker string) ([]GreeksRow, error)
	GetPriceContext(ctx context.Context, ticker string) ([]PriceContextRow, error)
	GetDarkPool(ctx context.Context, ticker string, since time.Time) ([]DarkPoolRow, error)
}

// EarningsSource fetches upcoming earnings reports
type EarningsSource interface {
	GetUpcomingEarnings(ctx context.Context, ticker string, from time.Time) ([]EarningsRow, error)
}
