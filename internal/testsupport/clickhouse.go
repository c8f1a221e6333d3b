package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"insideredge/internal/adapters/clickhouse"
	"insideredge/internal/adapters/config"
)

// ClickHouseTestHelper manages cleanup for ClickHouse integration tests.
type ClickHouseTestHelper struct {
	client *clickhouse.Client
}

// NewClickHouseTestHelper creates a ClickHouse client for tests.
func NewClickHouseTestHelper(t *testing.T, cfg config.ClickHouseConfig) *ClickHouseTestHelper {
	t.Helper()

	client, err := clickhouse.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to connect to clickhouse: %v", err)
	}

	helper := &ClickHouseTestHelper{client: client}
	t.Cleanup(func() { _ = client.Close() })
	return helper
}

// Client exposes the raw ClickHouse client for queries.
func (h *ClickHouseTestHelper) Client() *clickhouse.Client {
	return h.client
}

// RegisterTableCleanup deletes rows matching condition once the test completes.
// Shared tables are never dropped.
func (h *ClickHouseTestHelper) RegisterTableCleanup(t *testing.T, table, condition string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.client.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", table, condition))
	})
}

// CreateBatch inserts items with one prepared batch.
// Usage: testsupport.CreateBatch(t, helper, testsupport.InsertTradeAlerts, rows)
func CreateBatch[T any](t *testing.T, helper *ClickHouseTestHelper, insertQuery string, items []T) {
	t.Helper()

	if len(items) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch, err := helper.client.Conn().PrepareBatch(ctx, insertQuery)
	if err != nil {
		t.Fatalf("failed to prepare batch: %v", err)
	}

	for i := range items {
		if err := batch.AppendStruct(&items[i]); err != nil {
			t.Fatalf("failed to append item to batch: %v", err)
		}
	}

	if err := batch.Send(); err != nil {
		t.Fatalf("failed to send batch: %v", err)
	}
}

const InsertTradeAlerts = `
	INSERT INTO options_trade_alerts (
		ticker, type, strike, expiry,
		total_premium, total_ask_side_prem, total_bid_side_prem,
		trade_count, total_size, volume_oi_ratio, underlying_price,
		all_opening_trades, alert_rule, created_at
	)
`

// TradeAlertRow mirrors one options_trade_alerts row
type TradeAlertRow struct {
	Ticker           string    `ch:"ticker"`
	Type             string    `ch:"type"`
	Strike           string    `ch:"strike"`
	Expiry           string    `ch:"expiry"`
	TotalPremium     *float64  `ch:"total_premium"`
	AskSidePremium   *float64  `ch:"total_ask_side_prem"`
	BidSidePremium   *float64  `ch:"total_bid_side_prem"`
	TradeCount       *float64  `ch:"trade_count"`
	TotalSize        *float64  `ch:"total_size"`
	VolumeOIRatio    *float64  `ch:"volume_oi_ratio"`
	UnderlyingPrice  *float64  `ch:"underlying_price"`
	AllOpeningTrades bool      `ch:"all_opening_trades"`
	AlertRule        string    `ch:"alert_rule"`
	CreatedAt        time.Time `ch:"created_at"`
}

// TradeAlertFixture builds options_trade_alerts rows
type TradeAlertFixture struct {
	row TradeAlertRow
}

// NewTradeAlertFixture returns an ask-heavy call sweep on a test-only ticker
func NewTradeAlertFixture() *TradeAlertFixture {
	return &TradeAlertFixture{
		row: TradeAlertRow{
			Ticker:           "ZZTEST",
			Type:             "call",
			Strike:           "100",
			Expiry:           time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02"),
			TotalPremium:     floatPtr(250000),
			AskSidePremium:   floatPtr(225000),
			BidSidePremium:   floatPtr(25000),
			TradeCount:       floatPtr(12),
			TotalSize:        floatPtr(500),
			VolumeOIRatio:    floatPtr(1.4),
			UnderlyingPrice:  floatPtr(98.5),
			AllOpeningTrades: true,
			AlertRule:        "RepeatedHitsAscendingFill",
			CreatedAt:        time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond),
		},
	}
}

// WithTicker sets the ticker
func (f *TradeAlertFixture) WithTicker(ticker string) *TradeAlertFixture {
	f.row.Ticker = ticker
	return f
}

// WithContract sets type, strike and expiry
func (f *TradeAlertFixture) WithContract(typ, strike, expiry string) *TradeAlertFixture {
	f.row.Type = typ
	f.row.Strike = strike
	f.row.Expiry = expiry
	return f
}

// WithPremium sets total premium and splits it between ask and bid by askShare
func (f *TradeAlertFixture) WithPremium(total, askShare float64) *TradeAlertFixture {
	f.row.TotalPremium = floatPtr(total)
	f.row.AskSidePremium = floatPtr(total * askShare)
	f.row.BidSidePremium = floatPtr(total * (1 - askShare))
	return f
}

// WithoutPremium clears total premium
func (f *TradeAlertFixture) WithoutPremium() *TradeAlertFixture {
	f.row.TotalPremium = nil
	return f
}

// WithCreatedAt sets the alert timestamp
func (f *TradeAlertFixture) WithCreatedAt(t time.Time) *TradeAlertFixture {
	f.row.CreatedAt = t.UTC().Truncate(time.Millisecond)
	return f
}

// Build returns the constructed row
func (f *TradeAlertFixture) Build() TradeAlertRow {
	return f.row
}

func floatPtr(v float64) *float64 {
	return &v
}
