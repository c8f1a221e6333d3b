package options

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/market_data"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/metrics"
	"insideredge/internal/tools/indicators"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// Cache stores computed artifacts. Misses are reported as errors.ErrCacheMiss.
type Cache interface {
	GetFlowReport(ctx context.Context, ticker string, opts optionsflow.Options) (*optionsflow.Report, error)
	SetFlowReport(ctx context.Context, ticker string, opts optionsflow.Options, report *optionsflow.Report) error
	GetSnapshot(ctx context.Context, ticker string) (*fivefactor.CachedSnapshot, error)
	SetSnapshot(ctx context.Context, ticker string, snapshot *fivefactor.Snapshot, computedAt time.Time) error
	Invalidate(ctx context.Context, ticker string) error
}

// Config holds the defaults applied to every request
type Config struct {
	Flow           optionsflow.Options
	DarkPoolWindow time.Duration
	// CandleHistory is the number of daily bars loaded for the indicator fill; 0 disables it
	CandleHistory int
}

// Dependencies wires the service collaborators. Cache and Candles are optional.
type Dependencies struct {
	Alerts   optionsflow.AlertSource
	Rows     fivefactor.RowSource
	Earnings fivefactor.EarningsSource
	Candles  market_data.Repository
	Cache    Cache
}

// FlowRequest asks for a ranked flow report. A non-nil Alerts slice, even an
// empty one, is analyzed as supplied and skips the row source and the cache.
// Options fields left at zero take the configured defaults.
type FlowRequest struct {
	Ticker  string
	Alerts  []optionsflow.OptionTradeAlert
	Options optionsflow.Options
	Refresh bool
}

// Overview bundles both analytics halves for one ticker
type Overview struct {
	Ticker      string               `json:"ticker"`
	Flow        *optionsflow.Report  `json:"flow"`
	FiveFactors *fivefactor.Snapshot `json:"five_factors"`
}

// Service orchestrates row fetching, caching and the pure analytics engines
type Service struct {
	deps Dependencies
	cfg  Config
	now  func() time.Time
	log  *logger.Logger
}

// NewService creates a new options analytics service
func NewService(deps Dependencies, cfg Config, log *logger.Logger) *Service {
	cfg.Flow = cfg.Flow.WithDefaults()
	if cfg.DarkPoolWindow <= 0 {
		cfg.DarkPoolWindow = fivefactor.DefaultDarkPoolWindow
	}

	return &Service{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
		log:  log.With("service", "options"),
	}
}

// Options resolves request options against the configured defaults
func (s *Service) Options(override optionsflow.Options) optionsflow.Options {
	opts := s.cfg.Flow
	if override.MinClusterPremium > 0 {
		opts.MinClusterPremium = override.MinClusterPremium
	}
	if override.MinRowPremium > 0 {
		opts.MinRowPremium = override.MinRowPremium
	}
	if override.Lookback > 0 {
		opts.Lookback = override.Lookback
	}
	if override.FetchLimit > 0 {
		opts.FetchLimit = override.FetchLimit
	}
	if override.Limit > 0 {
		opts.Limit = override.Limit
	}
	if override.MinAction != "" {
		opts.MinAction = override.MinAction
	}
	return opts
}

// Invalidate drops every cached artifact of a ticker. A no-op without a cache.
func (s *Service) Invalidate(ctx context.Context, ticker string) error {
	if s.deps.Cache == nil {
		return nil
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err := s.deps.Cache.Invalidate(ctx, ticker); err != nil {
		return errors.Wrapf(err, "invalidate cache: ticker=%s", ticker)
	}
	return nil
}

// AnalyzeFlow builds the ranked cluster report for a ticker
func (s *Service) AnalyzeFlow(ctx context.Context, req FlowRequest) (*optionsflow.Report, error) {
	opts := s.Options(req.Options)
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	now := s.now()

	if req.Alerts != nil || ticker == "" {
		report := optionsflow.BuildReport(ticker, req.Alerts, opts, now)
		metrics.RecordFlowReport("supplied", &report)
		return &report, nil
	}

	if !req.Refresh {
		if cached := s.cachedFlowReport(ctx, ticker, opts); cached != nil {
			cached.Cached = true
			metrics.RecordFlowReport("cached", cached)
			return cached, nil
		}
	}

	start := time.Now()
	alerts, err := s.deps.Alerts.GetTradeAlerts(ctx, optionsflow.AlertQuery{
		Ticker:     ticker,
		Since:      now.Add(-opts.Lookback),
		MinPremium: opts.MinRowPremium,
		Limit:      opts.FetchLimit,
	})
	metrics.RecordRowFetch("options_trade_alerts", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch trade alerts: ticker=%s", ticker)
	}

	report := optionsflow.BuildReport(ticker, alerts, opts, now)
	if len(alerts) == 0 {
		s.log.Warnw("No trade alerts in lookback", "ticker", ticker, "lookback", opts.Lookback)
	}

	s.log.Infow("Flow analysis complete",
		"ticker", ticker,
		"alerts", len(alerts),
		"clusters", report.ClustersAnalyzed,
	)

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetFlowReport(ctx, ticker, opts, &report); err != nil {
			s.log.Warnw("Failed to cache flow report", "ticker", ticker, "error", err)
		}
	}

	metrics.RecordFlowReport("computed", &report)
	return &report, nil
}

func (s *Service) cachedFlowReport(ctx context.Context, ticker string, opts optionsflow.Options) *optionsflow.Report {
	if s.deps.Cache == nil {
		return nil
	}

	report, err := s.deps.Cache.GetFlowReport(ctx, ticker, opts)
	switch {
	case err == nil:
		metrics.RecordCacheLookup("flow", "hit")
		return report
	case errors.Is(err, errors.ErrCacheMiss):
		metrics.RecordCacheLookup("flow", "miss")
	default:
		metrics.RecordCacheLookup("flow", "error")
		s.log.Warnw("Flow cache lookup failed", "ticker", ticker, "error", err)
	}
	return nil
}

// BuildFiveFactors returns the five-factor snapshot of a ticker. A nil snapshot
// with a nil error means the ticker has no options activity recorded.
func (s *Service) BuildFiveFactors(ctx context.Context, ticker string, refresh bool) (*fivefactor.Snapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ticker is required")
	}

	if !refresh {
		if entry := s.cachedSnapshot(ctx, ticker); entry != nil {
			metrics.RecordSnapshot("cached")
			return entry.Snapshot, nil
		}
	}

	now := s.now()
	rows, err := s.FetchRows(ctx, ticker, now)
	if err != nil {
		metrics.RecordSnapshot("error")
		return nil, err
	}

	snapshot := fivefactor.BuildWithOptions(ticker, rows, fivefactor.Options{DarkPoolWindow: s.cfg.DarkPoolWindow}, now)
	if snapshot == nil {
		metrics.RecordSnapshot("no_data")
		s.log.Warnw("No options data for ticker", "ticker", ticker)
	} else {
		metrics.RecordSnapshot("built")
		s.log.Infow("Five-factor snapshot built",
			"ticker", ticker,
			"as_of", snapshot.AsOf,
			"direction", snapshot.RecentFlows.Direction,
		)
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SetSnapshot(ctx, ticker, snapshot, now); err != nil {
			s.log.Warnw("Failed to cache snapshot", "ticker", ticker, "error", err)
		}
	}

	return snapshot, nil
}

func (s *Service) cachedSnapshot(ctx context.Context, ticker string) *fivefactor.CachedSnapshot {
	if s.deps.Cache == nil {
		return nil
	}

	entry, err := s.deps.Cache.GetSnapshot(ctx, ticker)
	switch {
	case err == nil:
		metrics.RecordCacheLookup("snapshot", "hit")
		return entry
	case errors.Is(err, errors.ErrCacheMiss):
		metrics.RecordCacheLookup("snapshot", "miss")
	default:
		metrics.RecordCacheLookup("snapshot", "error")
		s.log.Warnw("Snapshot cache lookup failed", "ticker", ticker, "error", err)
	}
	return nil
}

// FetchRows loads every raw table of a snapshot in parallel. The first failed
// table cancels the rest and is returned; an empty table is not a failure.
func (s *Service) FetchRows(ctx context.Context, ticker string, now time.Time) (fivefactor.Rows, error) {
	var rows fivefactor.Rows
	g, gctx := errgroup.WithContext(ctx)
	src := s.deps.Rows

	fetch := func(table string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			start := time.Now()
			err := fn(gctx)
			metrics.RecordRowFetch(table, time.Since(start), err)
			return err
		})
	}

	fetch("options_flow", func(ctx context.Context) (err error) {
		rows.Flows, err = src.GetFlows(ctx, ticker, now)
		return err
	})
	fetch("oi_change", func(ctx context.Context) (err error) {
		rows.OIChanges, err = src.GetOIChanges(ctx, ticker)
		return err
	})
	fetch("oi_per_strike", func(ctx context.Context) (err error) {
		rows.OIPerStrike, err = src.GetOIPerStrike(ctx, ticker)
		return err
	})
	fetch("iv_rank", func(ctx context.Context) (err error) {
		rows.IVRank, err = src.GetIVRank(ctx, ticker)
		return err
	})
	fetch("max_pain", func(ctx context.Context) (err error) {
		rows.MaxPain, err = src.GetMaxPain(ctx, ticker)
		return err
	})
	fetch("ticker_quotes", func(ctx context.Context) (err error) {
		rows.Quote, err = src.GetLatestQuote(ctx, ticker)
		return err
	})
	fetch("greeks", func(ctx context.Context) (err error) {
		rows.Greeks, err = src.GetGreeks(ctx, ticker)
		return err
	})
	fetch("ticker_price_context", func(ctx context.Context) (err error) {
		rows.PriceContext, err = src.GetPriceContext(ctx, ticker)
		return err
	})
	fetch("dark_pool_trades", func(ctx context.Context) (err error) {
		rows.DarkPool, err = src.GetDarkPool(ctx, ticker, now.Add(-s.cfg.DarkPoolWindow))
		return err
	})
	if s.deps.Earnings != nil {
		fetch("ticker_earnings", func(ctx context.Context) (err error) {
			rows.Earnings, err = s.deps.Earnings.GetUpcomingEarnings(ctx, ticker, now)
			return err
		})
	}

	var candles []market_data.OHLCV
	if s.deps.Candles != nil && s.cfg.CandleHistory > 0 {
		g.Go(func() error {
			var err error
			candles, err = s.deps.Candles.GetDailyOHLCV(gctx, market_data.OHLCVQuery{
				Ticker: ticker,
				Limit:  s.cfg.CandleHistory,
			})
			if err != nil {
				// Candles only complete price_context; a failure degrades, it does not abort
				s.log.Warnw("Failed to load daily candles", "ticker", ticker, "error", err)
				candles = nil
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fivefactor.Rows{}, errors.Wrapf(err, "failed to load five-factor rows: ticker=%s", ticker)
	}

	rows.PriceContext = completePriceContext(rows.PriceContext, candles)
	return rows, nil
}

// completePriceContext fills indicator gaps from daily candles, synthesizing a
// row from the newest candle when upstream has none
func completePriceContext(rows []fivefactor.PriceContextRow, candles []market_data.OHLCV) []fivefactor.PriceContextRow {
	if len(candles) == 0 {
		return rows
	}

	in := indicators.ComputeTrendInputs(candles)
	if len(rows) == 0 {
		if in.Spot == nil {
			return rows
		}
		return []fivefactor.PriceContextRow{
			indicators.FillPriceContext(fivefactor.PriceContextRow{
				DataDate: candles[0].OpenTime.UTC().Format("2006-01-02"),
			}, in),
		}
	}

	out := make([]fivefactor.PriceContextRow, len(rows))
	for i, r := range rows {
		out[i] = indicators.FillPriceContext(r, in)
	}
	return out
}

// Overview runs both halves concurrently; they share no state
func (s *Service) Overview(ctx context.Context, ticker string, refresh bool) (*Overview, error) {
	out := &Overview{Ticker: strings.ToUpper(strings.TrimSpace(ticker))}
	if out.Ticker == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ticker is required")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := s.AnalyzeFlow(gctx, FlowRequest{Ticker: out.Ticker, Refresh: refresh})
		out.Flow = report
		return err
	})
	g.Go(func() error {
		snapshot, err := s.BuildFiveFactors(gctx, out.Ticker, refresh)
		out.FiveFactors = snapshot
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
