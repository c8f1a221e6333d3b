package bootstrap

import (
	"context"
	"sync"

	chclient "insideredge/internal/adapters/clickhouse"
	"insideredge/internal/adapters/config"
	"insideredge/internal/adapters/kafka"
	pgclient "insideredge/internal/adapters/postgres"
	redisclient "insideredge/internal/adapters/redis"
	"insideredge/internal/adapters/telegram"
	"insideredge/internal/api"
	"insideredge/internal/api/health"
	"insideredge/internal/consumers"
	"insideredge/internal/events"
	chrepo "insideredge/internal/repository/clickhouse"
	pgrepo "insideredge/internal/repository/postgres"
	redisrepo "insideredge/internal/repository/redis"
	"insideredge/internal/services/options"
	"insideredge/internal/workers"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer (Data stores)
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	Repos       *Repositories
	Services    *Services
	Adapters    *Adapters
	Application *Application
	Background  *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups the row sources and the artifact cache
type Repositories struct {
	Options  *chrepo.OptionsRepository
	Earnings *pgrepo.EarningsRepository
	Cache    *redisrepo.AnalysisCache
}

// Services groups all domain services
type Services struct {
	Options *options.Service
}

// Adapters groups all external adapters. Kafka and Telegram members are nil when disabled.
type Adapters struct {
	KafkaProducer       *kafka.Producer
	FlowRequestConsumer *kafka.Consumer
	Publisher           *events.OptionsPublisher

	TelegramBot *telegram.Bot
	Notifier    *telegram.FlowNotifier
}

// Application groups application layer components
type Application struct {
	HTTPServer     *api.Server
	HealthHandler  *health.Handler
	OptionsHandler *api.OptionsHandler
}

// Background groups all background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
	FlowRequestSvc  *consumers.FlowRequestConsumer
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Services:    &Services{},
		Adapters:    &Adapters{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts all background components
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if svc := c.Background.FlowRequestSvc; svc != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := svc.Start(c.Context); err != nil && c.Context.Err() == nil {
				c.Log.Errorw("Flow request consumer failed", "error", err)
			}
		}()
		c.Log.Info("✓ Flow request consumer started")
	}

	// Scheduler first so readiness never sees it stopped
	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Info("✓ All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(ShutdownTargets{
		WG:                  c.WG,
		HTTPServer:          c.Application.HTTPServer,
		WorkerScheduler:     c.Background.WorkerScheduler,
		KafkaProducer:       c.Adapters.KafkaProducer,
		FlowRequestConsumer: c.Adapters.FlowRequestConsumer,
		PG:                  c.PG,
		CH:                  c.CH,
		Redis:               c.Redis,
		ErrorTracker:        c.ErrorTracker,
	}, c.Log)
}
