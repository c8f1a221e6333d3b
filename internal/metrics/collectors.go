package metrics

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"insideredge/pkg/logger"
)

// freshnessTables are the ClickHouse tables whose latest data_date is exported
var freshnessTables = []string{
	"options_flow",
	"oi_change",
	"oi_per_strike",
	"iv_rank",
	"max_pain",
	"greeks",
	"ticker_price_context",
	"dark_pool_trades",
}

// CustomCollector collects data freshness metrics from the row stores
type CustomCollector struct {
	log        *logger.Logger
	postgres   *sqlx.DB
	clickhouse driver.Conn

	// Descriptors
	alerts24h        *prometheus.Desc
	trackedTickers   *prometheus.Desc
	tableLagDays     *prometheus.Desc
	upcomingEarnings *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, postgres *sqlx.DB, clickhouse driver.Conn) *CustomCollector {
	return &CustomCollector{
		log:        log,
		postgres:   postgres,
		clickhouse: clickhouse,

		alerts24h: prometheus.NewDesc(
			"insideredge_trade_alerts_24h",
			"Trade alerts ingested in the last 24h",
			nil, nil,
		),
		trackedTickers: prometheus.NewDesc(
			"insideredge_tracked_tickers",
			"Distinct tickers with trade alerts in the last 24h",
			nil, nil,
		),
		tableLagDays: prometheus.NewDesc(
			"insideredge_table_lag_days",
			"Days since the latest data_date per table",
			[]string{"table"}, nil,
		),
		upcomingEarnings: prometheus.NewDesc(
			"insideredge_upcoming_earnings",
			"Earnings reports scheduled in the next 7 days",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.alerts24h
	ch <- c.trackedTickers
	ch <- c.tableLagDays
	ch <- c.upcomingEarnings
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectAlertStats(ctx, ch)
	c.collectTableLag(ctx, ch)
	c.collectUpcomingEarnings(ctx, ch)
}

func (c *CustomCollector) collectAlertStats(ctx context.Context, ch chan<- prometheus.Metric) {
	var (
		count   uint64
		tickers uint64
	)
	err := c.clickhouse.QueryRow(ctx, `
		SELECT count(), uniqExact(ticker)
		FROM options_trade_alerts
		WHERE created_at > now() - INTERVAL 24 HOUR
	`).Scan(&count, &tickers)
	if err != nil {
		c.log.Errorw("Failed to collect trade alert stats", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.alerts24h, prometheus.GaugeValue, float64(count))
	ch <- prometheus.MustNewConstMetric(c.trackedTickers, prometheus.GaugeValue, float64(tickers))
}

func (c *CustomCollector) collectTableLag(ctx context.Context, ch chan<- prometheus.Metric) {
	for _, table := range freshnessTables {
		var lag int64
		err := c.clickhouse.QueryRow(ctx,
			"SELECT toInt64(dateDiff('day', max(data_date), today())) FROM "+table,
		).Scan(&lag)
		if err != nil {
			c.log.Debugw("Failed to collect table lag", "table", table, "error", err)
			continue
		}

		ch <- prometheus.MustNewConstMetric(c.tableLagDays, prometheus.GaugeValue, float64(lag), table)
	}
}

func (c *CustomCollector) collectUpcomingEarnings(ctx context.Context, ch chan<- prometheus.Metric) {
	var count int
	err := c.postgres.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM ticker_earnings
		WHERE report_date >= CURRENT_DATE
		AND report_date < CURRENT_DATE + INTERVAL '7 days'
	`)
	if err != nil {
		c.log.Errorw("Failed to collect upcoming earnings", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.upcomingEarnings, prometheus.GaugeValue, float64(count))
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
