package options

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/market_data"
	"insideredge/internal/domain/optionsflow"
)

// MockAlertSource is a mock for optionsflow.AlertSource
type MockAlertSource struct {
	mock.Mock
}

func (m *MockAlertSource) GetTradeAlerts(ctx context.Context, q optionsflow.AlertQuery) ([]optionsflow.OptionTradeAlert, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]optionsflow.OptionTradeAlert), args.Error(1)
}

// MockCache is a mock for Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlowReport(ctx context.Context, ticker string, opts optionsflow.Options) (*optionsflow.Report, error) {
	args := m.Called(ctx, ticker, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*optionsflow.Report), args.Error(1)
}

func (m *MockCache) SetFlowReport(ctx context.Context, ticker string, opts optionsflow.Options, report *optionsflow.Report) error {
	args := m.Called(ctx, ticker, opts, report)
	return args.Error(0)
}

func (m *MockCache) GetSnapshot(ctx context.Context, ticker string) (*fivefactor.CachedSnapshot, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fivefactor.CachedSnapshot), args.Error(1)
}

func (m *MockCache) SetSnapshot(ctx context.Context, ticker string, snapshot *fivefactor.Snapshot, computedAt time.Time) error {
	args := m.Called(ctx, ticker, snapshot, computedAt)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, ticker string) error {
	return m.Called(ctx, ticker).Error(0)
}

// stubRows serves fixed tables; failTable makes one table return err
type stubRows struct {
	rows      fivefactor.Rows
	failTable string
	err       error

	flowsSince    time.Time
	darkPoolSince time.Time
}

func (s *stubRows) fail(table string) error {
	if s.failTable == table {
		return s.err
	}
	return nil
}

func (s *stubRows) GetFlows(_ context.Context, _ string, since time.Time) ([]fivefactor.FlowRow, error) {
	s.flowsSince = since
	return s.rows.Flows, s.fail("options_flow")
}

func (s *stubRows) GetOIChanges(context.Context, string) ([]fivefactor.OIChangeRow, error) {
	return s.rows.OIChanges, s.fail("oi_change")
}

func (s *stubRows) GetOIPerStrike(context.Context, string) ([]fivefactor.OIStrikeRow, error) {
	return s.rows.OIPerStrike, s.fail("oi_per_strike")
}

func (s *stubRows) GetIVRank(context.Context, string) ([]fivefactor.IVRankRow, error) {
	return s.rows.IVRank, s.fail("iv_rank")
}

func (s *stubRows) GetMaxPain(context.Context, string) ([]fivefactor.MaxPainRow, error) {
	return s.rows.MaxPain, s.fail("max_pain")
}

func (s *stubRows) GetLatestQuote(context.Context, string) (*fivefactor.QuoteRow, error) {
	return s.rows.Quote, s.fail("ticker_quotes")
}

func (s *stubRows) GetGreeks(context.Context, string) ([]fivefactor.GreeksRow, error) {
	return s.rows.Greeks, s.fail("greeks")
}

func (s *stubRows) GetPriceContext(context.Context, string) ([]fivefactor.PriceContextRow, error) {
	return s.rows.PriceContext, s.fail("ticker_price_context")
}

func (s *stubRows) GetDarkPool(_ context.Context, _ string, since time.Time) ([]fivefactor.DarkPoolRow, error) {
	s.darkPoolSince = since
	return s.rows.DarkPool, s.fail("dark_pool_trades")
}

// stubEarnings serves fixed earnings rows
type stubEarnings struct {
	rows []fivefactor.EarningsRow
	err  error
}

func (s *stubEarnings) GetUpcomingEarnings(context.Context, string, time.Time) ([]fivefactor.EarningsRow, error) {
	return s.rows, s.err
}

// stubCandles serves fixed daily candles
type stubCandles struct {
	candles []market_data.OHLCV
	err     error
}

func (s *stubCandles) GetDailyOHLCV(context.Context, market_data.OHLCVQuery) ([]market_data.OHLCV, error) {
	return s.candles, s.err
}
