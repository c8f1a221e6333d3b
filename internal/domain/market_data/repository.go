package market_data

import (
	"context"
)

// Repository reads daily bars (ClickHouse)
type Repository interface {
	// GetDailyOHLCV returns bars ordered by open_time DESC
	GetDailyOHLCV(ctx context.Context, query OHLCVQuery) ([]OHLCV, error)
}
