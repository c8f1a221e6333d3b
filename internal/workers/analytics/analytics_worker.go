package analytics

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/events"
	"insideredge/internal/services/options"
	"insideredge/internal/workers"
	"insideredge/pkg/errors"
)

// Analyzer runs both analytics halves for a ticker
type Analyzer interface {
	AnalyzeFlow(ctx context.Context, req options.FlowRequest) (*optionsflow.Report, error)
	BuildFiveFactors(ctx context.Context, ticker string, refresh bool) (*fivefactor.Snapshot, error)
	Invalidate(ctx context.Context, ticker string) error
}

// Publisher emits computed artifacts downstream
type Publisher interface {
	PublishFlowReport(ctx context.Context, runID, requestID string, report *optionsflow.Report) error
	PublishFiveFactors(ctx context.Context, runID, ticker string, snapshot *fivefactor.Snapshot) error
}

// Notifier pushes INVESTIGATE clusters to humans
type Notifier interface {
	NotifyInvestigations(ctx context.Context, report *optionsflow.Report) (bool, error)
}

// Locker guards a ticker against concurrent refreshes from other replicas
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// Config controls the refresh loop
type Config struct {
	Tickers          []string
	Interval         time.Duration
	Enabled          bool
	TickersPerSecond float64
}

// Worker periodically recomputes flow reports and five-factor snapshots for
// the watchlist, bypassing the cache so downstream consumers see fresh data.
// Publisher, Notifier and Locker are optional.
type Worker struct {
	*workers.BaseWorker
	analyzer  Analyzer
	publisher Publisher
	notifier  Notifier
	locker    Locker
	tickers   []string
	limiter   *rate.Limiter
}

// NewWorker creates a new options analytics worker
func NewWorker(analyzer Analyzer, publisher Publisher, notifier Notifier, locker Locker, cfg Config) *Worker {
	limit := rate.Inf
	if cfg.TickersPerSecond > 0 {
		limit = rate.Limit(cfg.TickersPerSecond)
	}

	tickers := make([]string, 0, len(cfg.Tickers))
	seen := make(map[string]struct{}, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}

	return &Worker{
		BaseWorker: workers.NewBaseWorker("options_analytics", cfg.Interval, cfg.Enabled),
		analyzer:   analyzer,
		publisher:  publisher,
		notifier:   notifier,
		locker:     locker,
		tickers:    tickers,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Run refreshes every ticker once. Per-ticker failures are logged and skipped;
// the run fails only when no ticker succeeded.
func (w *Worker) Run(ctx context.Context) error {
	if len(w.tickers) == 0 {
		return nil
	}

	runID := events.NewRunID()
	w.Log().Debugw("Options analytics: starting iteration", "run_id", runID, "tickers", len(w.tickers))

	var failed int
	var lastErr error
	for _, ticker := range w.tickers {
		if err := w.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}

		if err := w.refreshLocked(ctx, runID, ticker); err != nil {
			failed++
			lastErr = err
			w.Log().Errorw("Failed to refresh ticker",
				"ticker", ticker,
				"run_id", runID,
				"error", err,
			)
		}
	}

	w.Log().Infow("Options analytics complete",
		"run_id", runID,
		"tickers", len(w.tickers),
		"failed", failed,
	)

	if failed == len(w.tickers) {
		return errors.Wrapf(lastErr, "all %d tickers failed", failed)
	}
	return nil
}

func (w *Worker) refreshLocked(ctx context.Context, runID, ticker string) error {
	if w.locker == nil {
		return w.refresh(ctx, runID, ticker)
	}

	key := "options_analytics:" + ticker
	acquired, err := w.locker.AcquireLock(ctx, key, w.Interval())
	if err != nil {
		return errors.Wrapf(err, "acquire lock for %s", ticker)
	}
	if !acquired {
		w.Log().Debugw("Ticker refresh held by another instance", "ticker", ticker)
		return nil
	}
	defer func() {
		if err := w.locker.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			w.Log().Warnw("Failed to release lock", "ticker", ticker, "error", err)
		}
	}()

	return w.refresh(ctx, runID, ticker)
}

func (w *Worker) refresh(ctx context.Context, runID, ticker string) error {
	// reports cached under request-specific options are stale once new rows land
	if err := w.analyzer.Invalidate(ctx, ticker); err != nil {
		w.Log().Warnw("Failed to invalidate cached analytics", "ticker", ticker, "error", err)
	}

	report, err := w.analyzer.AnalyzeFlow(ctx, options.FlowRequest{Ticker: ticker, Refresh: true})
	if err != nil {
		return errors.Wrap(err, "analyze flow")
	}

	if w.publisher != nil {
		if err := w.publisher.PublishFlowReport(ctx, runID, "", report); err != nil {
			w.Log().Warnw("Failed to publish flow report", "ticker", ticker, "error", err)
		}
	}

	if w.notifier != nil {
		if _, err := w.notifier.NotifyInvestigations(ctx, report); err != nil {
			w.Log().Warnw("Failed to send flow alert", "ticker", ticker, "error", err)
		}
	}

	snapshot, err := w.analyzer.BuildFiveFactors(ctx, ticker, true)
	if err != nil {
		return errors.Wrap(err, "build five factors")
	}

	if w.publisher != nil {
		if err := w.publisher.PublishFiveFactors(ctx, runID, ticker, snapshot); err != nil {
			w.Log().Warnw("Failed to publish five-factor snapshot", "ticker", ticker, "error", err)
		}
	}

	w.Log().Debugw("Ticker refreshed",
		"ticker", ticker,
		"clusters", len(report.Clusters),
		"has_snapshot", snapshot != nil,
	)
	return nil
}
