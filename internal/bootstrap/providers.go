package bootstrap

import (
	chclient "insideredge/internal/adapters/clickhouse"
	"insideredge/internal/adapters/config"
	errnoop "insideredge/internal/adapters/errors/noop"
	"insideredge/internal/adapters/errors/sentry"
	"insideredge/internal/adapters/kafka"
	pgclient "insideredge/internal/adapters/postgres"
	redisclient "insideredge/internal/adapters/redis"
	"insideredge/internal/adapters/telegram"
	"insideredge/internal/api"
	"insideredge/internal/api/health"
	"insideredge/internal/consumers"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/events"
	"insideredge/internal/metrics"
	chrepo "insideredge/internal/repository/clickhouse"
	pgrepo "insideredge/internal/repository/postgres"
	redisrepo "insideredge/internal/repository/redis"
	"insideredge/internal/services/options"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure initializes data stores (Postgres, ClickHouse, Redis)
func (c *Container) MustInitInfrastructure() {
	var err error

	c.Log.Info("Connecting to PostgreSQL...")
	c.PG, err = pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		c.Log.Fatalf("failed to connect postgres: %v", err)
	}
	c.Log.Info("✓ PostgreSQL connected")

	c.Log.Info("Connecting to ClickHouse...")
	c.CH, err = chclient.NewClient(c.Config.ClickHouse)
	if err != nil {
		c.Log.Fatalf("failed to connect clickhouse: %v", err)
	}
	c.Log.Info("✓ ClickHouse connected")

	c.Log.Info("Connecting to Redis...")
	c.Redis, err = redisclient.NewClient(c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Log.Info("✓ Redis connected")
}

// ========================================
// Phase 3: Repositories
// ========================================

// MustInitRepositories initializes the row sources and the cache
func (c *Container) MustInitRepositories() {
	c.Repos.Options = chrepo.NewOptionsRepository(c.CH.Conn())
	c.Repos.Earnings = pgrepo.NewEarningsRepository(c.PG.DB())
	c.Repos.Cache = redisrepo.NewAnalysisCache(c.Redis.Client(), c.Config.Analytics.CacheTTL)

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters initializes Kafka and Telegram. Both are optional.
func (c *Container) MustInitAdapters() {
	if c.Config.Kafka.Enabled {
		c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)
		c.Adapters.FlowRequestConsumer = provideKafkaConsumer(c.Config, kafka.TopicOptionsFlowRequests, c.Log)
		c.Adapters.Publisher = events.NewOptionsPublisher(c.Adapters.KafkaProducer, c.Config.App.Name, c.Log)
	} else {
		c.Log.Info("Kafka disabled, analytics events will not be published")
	}

	if c.Config.Telegram.Enabled() {
		bot, err := telegram.NewBot(telegram.Config{
			Token: c.Config.Telegram.BotToken,
			Debug: c.Config.App.Debug,
		}, c.Log)
		if err != nil {
			c.Log.Fatalf("failed to create telegram bot: %v", err)
		}
		c.Adapters.TelegramBot = bot
		c.Adapters.Notifier = telegram.NewFlowNotifier(bot, c.Config.Telegram.ChatIDs, c.Log)
		c.Log.Infow("✓ Telegram alerts enabled", "chats", len(c.Config.Telegram.ChatIDs))
	} else {
		c.Log.Info("Telegram alerts disabled")
	}
}

// ========================================
// Phase 5: Domain Services
// ========================================

// MustInitServices initializes the options analytics service
func (c *Container) MustInitServices() {
	a := c.Config.Analytics

	c.Services.Options = options.NewService(options.Dependencies{
		Alerts:   c.Repos.Options,
		Rows:     c.Repos.Options,
		Earnings: c.Repos.Earnings,
		Candles:  c.Repos.Options,
		Cache:    c.Repos.Cache,
	}, options.Config{
		Flow: optionsflow.Options{
			MinClusterPremium: a.MinClusterPremium,
			MinRowPremium:     a.MinRowPremium,
			Lookback:          a.AlertLookback,
			FetchLimit:        a.AlertLimit,
		},
		DarkPoolWindow: a.DarkPoolWindow,
		CandleHistory:  a.CandleHistory,
	}, c.Log)

	c.Log.Info("✓ Services initialized")
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication initializes health checks, metrics and the HTTP server
func (c *Container) MustInitApplication() {
	c.Background.WorkerScheduler = provideWorkers(c.Config, c.Services.Options, c.Adapters, c.Redis, c.Log)

	c.Application.HealthHandler = health.New(
		c.Log,
		map[string]health.Checker{
			"postgres":   c.PG.Health,
			"clickhouse": c.CH.Health,
			"redis":      c.Redis.Health,
			"workers":    c.Background.WorkerScheduler.Check,
		},
		c.Config.App.Name,
		c.Config.App.Version,
	)

	c.Application.OptionsHandler = api.NewOptionsHandler(c.Services.Options, c.Log)

	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:           c.Config.HTTP.Port,
		ServiceName:    c.Config.App.Name,
		Version:        c.Config.App.Version,
		RequestTimeout: c.Config.HTTP.RequestTimeout,
	}, c.Application.HealthHandler, c.Application.OptionsHandler, c.Log)

	metrics.Init()
	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, c.PG.DB(), c.CH.Conn()))
	c.Log.Info("✓ Metrics initialized")

	c.Log.Info("✓ Application layer initialized")
}

// ========================================
// Phase 7: Background Processing
// ========================================

// MustInitBackground initializes the Kafka request consumer
func (c *Container) MustInitBackground() {
	if c.Adapters.FlowRequestConsumer != nil {
		c.Background.FlowRequestSvc = consumers.NewFlowRequestConsumer(
			c.Adapters.FlowRequestConsumer,
			c.Services.Options,
			c.Adapters.Publisher,
			c.Log,
		)
	}

	c.Log.Info("✓ Background processing initialized")
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	log.Info("Initializing Kafka producer...")
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("Kafka brokers not configured, using default localhost:9092")
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Async:   false,
	})
	log.Info("✓ Kafka producer initialized")
	return producer
}

func provideKafkaConsumer(cfg *config.Config, topic string, log *logger.Logger) *kafka.Consumer {
	log.Infow("Initializing Kafka consumer", "topic", topic)
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		Topic:           topic,
		MaxWait:         cfg.Kafka.ConsumerMaxWait,
		ReplayFromStart: cfg.Kafka.ReplayRequests,
	})
	log.Infow("✓ Kafka consumer initialized", "topic", topic)
	return consumer
}
