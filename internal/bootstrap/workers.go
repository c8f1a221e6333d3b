package bootstrap

import (
	"insideredge/internal/adapters/config"
	redisclient "insideredge/internal/adapters/redis"
	"insideredge/internal/workers"
	"insideredge/internal/workers/analytics"
	"insideredge/pkg/logger"
)

// provideWorkers initializes all background workers
func provideWorkers(
	cfg *config.Config,
	analyzer analytics.Analyzer,
	adapters *Adapters,
	redisClient *redisclient.Client,
	log *logger.Logger,
) *workers.Scheduler {
	log.Info("Initializing workers...")

	scheduler := workers.NewScheduler()

	// Typed nils must not leak into the optional interfaces
	var publisher analytics.Publisher
	if adapters.Publisher != nil {
		publisher = adapters.Publisher
	}
	var notifier analytics.Notifier
	if adapters.Notifier != nil {
		notifier = adapters.Notifier
	}
	var locker analytics.Locker
	if redisClient != nil {
		locker = redisClient
	}

	scheduler.RegisterWorker(analytics.NewWorker(analyzer, publisher, notifier, locker, analytics.Config{
		Tickers:          cfg.Analytics.Tickers,
		Interval:         cfg.Workers.OptionsAnalyticsInterval,
		Enabled:          cfg.Workers.OptionsAnalyticsEnabled,
		TickersPerSecond: cfg.Workers.TickersPerSecond,
	}))

	log.Infow("✓ Workers initialized", "count", len(scheduler.GetWorkers()))
	return scheduler
}
