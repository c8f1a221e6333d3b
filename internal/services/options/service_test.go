package options

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/market_data"
	"insideredge/internal/domain/optionsflow"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
	"insideredge/pkg/numeric"
)

var testNow = time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

func newTestService(deps Dependencies, cfg Config) *Service {
	s := NewService(deps, cfg, testLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func whaleAlert(premium float64) optionsflow.OptionTradeAlert {
	return optionsflow.OptionTradeAlert{
		Ticker:         "XYZ",
		Type:           optionsflow.OptionCall,
		Strike:         "100",
		Expiry:         "2026-10-30",
		TotalPremium:   numeric.Ptr(premium),
		AskSidePremium: numeric.Ptr(premium * 0.9),
		BidSidePremium: numeric.Ptr(premium * 0.1),
		VolumeOIRatio:  numeric.Ptr(1.5),
		CreatedAt:      testNow.Add(-time.Hour),
	}
}

func TestService_Options(t *testing.T) {
	s := newTestService(Dependencies{}, Config{Flow: optionsflow.Options{MinClusterPremium: 250_000}})

	opts := s.Options(optionsflow.Options{})
	assert.Equal(t, 250_000.0, opts.MinClusterPremium)
	assert.Equal(t, optionsflow.DefaultMinRowPremium, opts.MinRowPremium)
	assert.Equal(t, optionsflow.DefaultLookback, opts.Lookback)
	assert.Equal(t, optionsflow.DefaultFetchLimit, opts.FetchLimit)

	opts = s.Options(optionsflow.Options{MinRowPremium: 50_000, Limit: 3, MinAction: optionsflow.ActionWatch})
	assert.Equal(t, 250_000.0, opts.MinClusterPremium)
	assert.Equal(t, 50_000.0, opts.MinRowPremium)
	assert.Equal(t, 3, opts.Limit)
	assert.Equal(t, optionsflow.ActionWatch, opts.MinAction)
}

func TestService_AnalyzeFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("supplied alerts skip the row source", func(t *testing.T) {
		alerts := new(MockAlertSource)
		s := newTestService(Dependencies{Alerts: alerts}, Config{})

		report, err := s.AnalyzeFlow(ctx, FlowRequest{Alerts: []optionsflow.OptionTradeAlert{whaleAlert(1_200_000)}})
		require.NoError(t, err)
		assert.Equal(t, "XYZ", report.Ticker)
		assert.Equal(t, 1, report.ClustersAnalyzed)
		assert.Equal(t, optionsflow.ActionInvestigate, report.Clusters[0].Action)
		assert.False(t, report.Cached)
		alerts.AssertNotCalled(t, "GetTradeAlerts", mock.Anything, mock.Anything)
	})

	t.Run("no ticker and no alerts", func(t *testing.T) {
		s := newTestService(Dependencies{}, Config{})

		report, err := s.AnalyzeFlow(ctx, FlowRequest{})
		require.NoError(t, err)
		assert.Equal(t, "N/A", report.Ticker)
		assert.Empty(t, report.Clusters)
		assert.Contains(t, report.Summary, "72h")
	})

	t.Run("fetches with configured bounds and caches", func(t *testing.T) {
		alerts := new(MockAlertSource)
		cache := new(MockCache)
		s := newTestService(Dependencies{Alerts: alerts, Cache: cache}, Config{})
		opts := s.Options(optionsflow.Options{})

		cache.On("GetFlowReport", ctx, "XYZ", opts).Return(nil, errors.ErrCacheMiss)
		alerts.On("GetTradeAlerts", ctx, optionsflow.AlertQuery{
			Ticker:     "XYZ",
			Since:      testNow.Add(-72 * time.Hour),
			MinPremium: 20_000,
			Limit:      500,
		}).Return([]optionsflow.OptionTradeAlert{whaleAlert(600_000), whaleAlert(700_000)}, nil)
		cache.On("SetFlowReport", ctx, "XYZ", opts, mock.AnythingOfType("*optionsflow.Report")).Return(nil)

		report, err := s.AnalyzeFlow(ctx, FlowRequest{Ticker: " xyz "})
		require.NoError(t, err)
		require.Len(t, report.Clusters, 1)
		assert.Equal(t, 1_300_000.0, report.Clusters[0].Cluster.PremiumTotal)
		assert.Equal(t, optionsflow.TagUltraWhale, report.Clusters[0].Tag)
		assert.Equal(t, testNow, report.Timestamp)

		alerts.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit", func(t *testing.T) {
		alerts := new(MockAlertSource)
		cache := new(MockCache)
		s := newTestService(Dependencies{Alerts: alerts, Cache: cache}, Config{})

		cache.On("GetFlowReport", ctx, "XYZ", mock.Anything).
			Return(&optionsflow.Report{Ticker: "XYZ", Summary: "cached"}, nil)

		report, err := s.AnalyzeFlow(ctx, FlowRequest{Ticker: "XYZ"})
		require.NoError(t, err)
		assert.True(t, report.Cached)
		assert.Equal(t, "cached", report.Summary)
		alerts.AssertNotCalled(t, "GetTradeAlerts", mock.Anything, mock.Anything)
	})

	t.Run("refresh bypasses the cache read", func(t *testing.T) {
		alerts := new(MockAlertSource)
		cache := new(MockCache)
		s := newTestService(Dependencies{Alerts: alerts, Cache: cache}, Config{})

		alerts.On("GetTradeAlerts", ctx, mock.Anything).Return([]optionsflow.OptionTradeAlert{}, nil)
		cache.On("SetFlowReport", ctx, "XYZ", mock.Anything, mock.Anything).Return(nil)

		report, err := s.AnalyzeFlow(ctx, FlowRequest{Ticker: "XYZ", Refresh: true})
		require.NoError(t, err)
		assert.Empty(t, report.Clusters)
		cache.AssertNotCalled(t, "GetFlowReport", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("broken cache falls through to the row source", func(t *testing.T) {
		alerts := new(MockAlertSource)
		cache := new(MockCache)
		s := newTestService(Dependencies{Alerts: alerts, Cache: cache}, Config{})

		cache.On("GetFlowReport", ctx, "XYZ", mock.Anything).Return(nil, errors.New("connection refused"))
		alerts.On("GetTradeAlerts", ctx, mock.Anything).Return([]optionsflow.OptionTradeAlert{whaleAlert(150_000)}, nil)
		cache.On("SetFlowReport", ctx, "XYZ", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		report, err := s.AnalyzeFlow(ctx, FlowRequest{Ticker: "XYZ"})
		require.NoError(t, err)
		assert.Equal(t, 1, report.ClustersAnalyzed)
	})

	t.Run("fetch failure is not an empty result", func(t *testing.T) {
		alerts := new(MockAlertSource)
		s := newTestService(Dependencies{Alerts: alerts}, Config{})

		alerts.On("GetTradeAlerts", ctx, mock.Anything).
			Return(nil, errors.NewFetchError("options_trade_alerts", "XYZ", errors.New("timeout")))

		report, err := s.AnalyzeFlow(ctx, FlowRequest{Ticker: "XYZ"})
		require.Error(t, err)
		assert.Nil(t, report)
		assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	})
}

func activeRows() fivefactor.Rows {
	return fivefactor.Rows{
		Flows: []fivefactor.FlowRow{
			{OptionSymbol: "XYZ261030C00100000", OptionType: "call", Volume: numeric.Ptr(300), Premium: numeric.Ptr(90_000), DataDate: "2026-10-19"},
			{OptionSymbol: "XYZ261030P00090000", OptionType: "put", Volume: numeric.Ptr(100), Premium: numeric.Ptr(20_000), DataDate: "2026-10-19"},
		},
		IVRank: []fivefactor.IVRankRow{
			{DataDate: "2026-10-19", IVRank1Y: numeric.Ptr(42)},
		},
	}
}

func TestService_BuildFiveFactors(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a ticker", func(t *testing.T) {
		s := newTestService(Dependencies{Rows: &stubRows{}}, Config{})
		_, err := s.BuildFiveFactors(ctx, "  ", false)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("no activity is a nil snapshot", func(t *testing.T) {
		s := newTestService(Dependencies{Rows: &stubRows{}}, Config{})

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("builds from fetched rows", func(t *testing.T) {
		rows := &stubRows{rows: activeRows()}
		earnings := &stubEarnings{rows: []fivefactor.EarningsRow{{ReportDate: "2026-10-23", ReportTime: "postmarket"}}}
		s := newTestService(Dependencies{Rows: rows, Earnings: earnings}, Config{DarkPoolWindow: 10 * 24 * time.Hour})

		snapshot, err := s.BuildFiveFactors(ctx, "xyz", false)
		require.NoError(t, err)
		require.NotNil(t, snapshot)

		assert.Equal(t, "XYZ", snapshot.Ticker)
		assert.Equal(t, "2026-10-19", snapshot.AsOf)
		assert.True(t, snapshot.RecentFlows.Available)
		assert.Equal(t, fivefactor.DirectionBullish, snapshot.RecentFlows.Direction)
		require.NotNil(t, snapshot.Catalysts)
		assert.Equal(t, 3, *snapshot.Catalysts.DaysToEarnings)
		assert.True(t, snapshot.Catalysts.IsEarningsWeek)

		assert.Equal(t, testNow, rows.flowsSince)
		assert.Equal(t, testNow.Add(-10*24*time.Hour), rows.darkPoolSince)
	})

	t.Run("one failed table fails the snapshot", func(t *testing.T) {
		rows := &stubRows{
			rows:      activeRows(),
			failTable: "max_pain",
			err:       errors.NewFetchError("max_pain", "XYZ", errors.New("timeout")),
		}
		s := newTestService(Dependencies{Rows: rows}, Config{})

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.Error(t, err)
		assert.Nil(t, snapshot)
		assert.True(t, errors.Is(err, errors.ErrFetchFailed))

		var fetchErr *errors.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, "max_pain", fetchErr.Table)
	})

	t.Run("earnings failure fails the snapshot", func(t *testing.T) {
		earnings := &stubEarnings{err: errors.NewFetchError("ticker_earnings", "XYZ", errors.New("down"))}
		s := newTestService(Dependencies{Rows: &stubRows{rows: activeRows()}, Earnings: earnings}, Config{})

		_, err := s.BuildFiveFactors(ctx, "XYZ", false)
		assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	})

	t.Run("cached nil snapshot is served", func(t *testing.T) {
		cache := new(MockCache)
		rows := &stubRows{rows: activeRows()}
		s := newTestService(Dependencies{Rows: rows, Cache: cache}, Config{})

		cache.On("GetSnapshot", ctx, "XYZ").Return(&fivefactor.CachedSnapshot{ComputedAt: testNow}, nil)

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.NoError(t, err)
		assert.Nil(t, snapshot)
		assert.True(t, rows.flowsSince.IsZero())
	})

	t.Run("computed snapshot is cached", func(t *testing.T) {
		cache := new(MockCache)
		s := newTestService(Dependencies{Rows: &stubRows{rows: activeRows()}, Cache: cache}, Config{})

		cache.On("GetSnapshot", ctx, "XYZ").Return(nil, errors.ErrCacheMiss)
		cache.On("SetSnapshot", ctx, "XYZ", mock.AnythingOfType("*fivefactor.Snapshot"), testNow).Return(nil)

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.NoError(t, err)
		assert.NotNil(t, snapshot)
		cache.AssertExpectations(t)
	})
}

func dailyCandles(n int) []market_data.OHLCV {
	// newest first, rising by one per day
	out := make([]market_data.OHLCV, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(n-1-i)
		out[i] = market_data.OHLCV{
			Ticker:   "XYZ",
			OpenTime: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i),
			Open:     c - 0.5,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1_000_000,
		}
	}
	return out
}

func TestService_PriceContextFill(t *testing.T) {
	ctx := context.Background()

	t.Run("synthesized from candles", func(t *testing.T) {
		s := newTestService(Dependencies{
			Rows:    &stubRows{rows: activeRows()},
			Candles: &stubCandles{candles: dailyCandles(60)},
		}, Config{CandleHistory: 60})

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.NoError(t, err)
		require.NotNil(t, snapshot.PriceContext)

		pc := snapshot.PriceContext
		require.NotNil(t, pc.Spot)
		assert.InDelta(t, 159.0, *pc.Spot, 1e-9)
		require.NotNil(t, pc.SMA20)
		assert.InDelta(t, 149.5, *pc.SMA20, 1e-9)
		require.NotNil(t, pc.SMA50)
		assert.InDelta(t, 134.5, *pc.SMA50, 1e-9)
		assert.Equal(t, fivefactor.TrendUp, pc.Trend2050)
		assert.Equal(t, fivefactor.TrendUp, pc.Trend)
		assert.NotNil(t, pc.ADX14)
		assert.NotNil(t, pc.RealizedVol20d)
	})

	t.Run("upstream values win", func(t *testing.T) {
		rows := activeRows()
		rows.PriceContext = []fivefactor.PriceContextRow{
			{DataDate: "2026-10-19", Spot: numeric.Ptr(150), SMA20: numeric.Ptr(140)},
		}
		s := newTestService(Dependencies{
			Rows:    &stubRows{rows: rows},
			Candles: &stubCandles{candles: dailyCandles(60)},
		}, Config{CandleHistory: 60})

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.NoError(t, err)

		pc := snapshot.PriceContext
		assert.Equal(t, 150.0, *pc.Spot)
		assert.Equal(t, 140.0, *pc.SMA20)
		assert.InDelta(t, 134.5, *pc.SMA50, 1e-9)
	})

	t.Run("candle failure degrades", func(t *testing.T) {
		s := newTestService(Dependencies{
			Rows:    &stubRows{rows: activeRows()},
			Candles: &stubCandles{err: errors.New("clickhouse down")},
		}, Config{CandleHistory: 60})

		snapshot, err := s.BuildFiveFactors(ctx, "XYZ", false)
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Nil(t, snapshot.PriceContext)
	})
}

func TestService_Overview(t *testing.T) {
	ctx := context.Background()
	alerts := new(MockAlertSource)
	alerts.On("GetTradeAlerts", mock.Anything, mock.Anything).
		Return([]optionsflow.OptionTradeAlert{whaleAlert(1_200_000)}, nil)

	s := newTestService(Dependencies{Alerts: alerts, Rows: &stubRows{rows: activeRows()}}, Config{})

	overview, err := s.Overview(ctx, "xyz", false)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", overview.Ticker)
	require.NotNil(t, overview.Flow)
	assert.Equal(t, 1, overview.Flow.ClustersAnalyzed)
	require.NotNil(t, overview.FiveFactors)
	assert.Equal(t, "XYZ", overview.FiveFactors.Ticker)

	t.Run("either half failing fails the overview", func(t *testing.T) {
		rows := &stubRows{rows: activeRows(), failTable: "iv_rank", err: errors.NewFetchError("iv_rank", "XYZ", errors.New("x"))}
		s := newTestService(Dependencies{Alerts: alerts, Rows: rows}, Config{})

		_, err := s.Overview(ctx, "XYZ", false)
		assert.True(t, errors.Is(err, errors.ErrFetchFailed))
	})
}

func TestService_AnalyzeFlow_EmptySuppliedAlerts(t *testing.T) {
	alerts := new(MockAlertSource)
	s := newTestService(Dependencies{Alerts: alerts}, Config{})

	report, err := s.AnalyzeFlow(context.Background(), FlowRequest{Ticker: "XYZ", Alerts: []optionsflow.OptionTradeAlert{}})
	require.NoError(t, err)
	assert.Equal(t, "XYZ", report.Ticker)
	assert.Empty(t, report.Clusters)
	alerts.AssertNotCalled(t, "GetTradeAlerts", mock.Anything, mock.Anything)
}

func TestService_Invalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("without cache", func(t *testing.T) {
		s := newTestService(Dependencies{}, Config{})
		assert.NoError(t, s.Invalidate(ctx, "xyz"))
	})

	t.Run("normalizes the ticker", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Invalidate", ctx, "XYZ").Return(nil)
		s := newTestService(Dependencies{Cache: cache}, Config{})

		require.NoError(t, s.Invalidate(ctx, " xyz "))
		cache.AssertExpectations(t)
	})

	t.Run("cache failure is returned", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Invalidate", ctx, "XYZ").Return(errors.New("connection refused"))
		s := newTestService(Dependencies{Cache: cache}, Config{})

		assert.Error(t, s.Invalidate(ctx, "XYZ"))
	})
}
