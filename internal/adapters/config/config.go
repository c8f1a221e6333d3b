package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"insideredge/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
	Analytics     AnalyticsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"insideredge"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type HTTPConfig struct {
	Port           int           `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"30s"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"options"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"true"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"insideredge"`
	// ConsumerMaxWait bounds request fetch latency
	ConsumerMaxWait time.Duration `envconfig:"KAFKA_CONSUMER_MAX_WAIT" default:"1s"`
	// ReplayRequests answers flow requests retained before the group first joined
	ReplayRequests bool `envconfig:"KAFKA_REPLAY_REQUESTS" default:"false"`
}

// TelegramConfig is optional; notifications are disabled without a token
type TelegramConfig struct {
	BotToken string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatIDs  []int64 `envconfig:"TELEGRAM_ALERT_CHAT_IDS"`
}

// Enabled reports whether alerts can be delivered
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && len(c.ChatIDs) > 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	OptionsAnalyticsInterval time.Duration `envconfig:"WORKER_OPTIONS_ANALYTICS_INTERVAL" default:"15m"`
	OptionsAnalyticsEnabled  bool          `envconfig:"WORKER_OPTIONS_ANALYTICS_ENABLED" default:"true"`
	// Tickers analyzed per second inside one run
	TickersPerSecond float64 `envconfig:"WORKER_TICKERS_PER_SECOND" default:"2"`
}

// AnalyticsConfig holds the caller-overridable analytics defaults
type AnalyticsConfig struct {
	MinClusterPremium float64       `envconfig:"ANALYTICS_MIN_CLUSTER_PREMIUM" default:"100000"`
	MinRowPremium     float64       `envconfig:"ANALYTICS_MIN_ROW_PREMIUM" default:"20000"`
	AlertLookback     time.Duration `envconfig:"ANALYTICS_ALERT_LOOKBACK" default:"72h"`
	AlertLimit        int           `envconfig:"ANALYTICS_ALERT_LIMIT" default:"500"`
	DarkPoolWindow    time.Duration `envconfig:"ANALYTICS_DARK_POOL_WINDOW" default:"720h"`
	CandleHistory     int           `envconfig:"ANALYTICS_CANDLE_HISTORY" default:"120"`
	Tickers           []string      `envconfig:"ANALYTICS_TICKERS" default:"SPY,QQQ,AAPL,NVDA,TSLA"`
	CacheTTL          time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"24h"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
