package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"insideredge/internal/adapters/config"
	"insideredge/pkg/errors"
)

const connectTimeout = 10 * time.Second

// earningsTableCheck reports whether the earnings calendar the catalysts
// block reads from has been migrated
const earningsTableCheck = `SELECT to_regclass('public.ticker_earnings') IS NOT NULL`

// Client wraps sqlx.DB holding the earnings calendar
type Client struct {
	db *sqlx.DB
}

// NewClient connects with a bounded timeout and sizes the pool from config
func NewClient(cfg config.PostgresConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to postgres: host=%s db=%s", cfg.Host, cfg.Database)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return newClient(db), nil
}

func newClient(db *sqlx.DB) *Client {
	return &Client{db: db}
}

// DB returns the underlying sqlx.DB instance
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health is the readiness check: the server answers and the earnings
// calendar exists. A missing table is ErrUnavailable, since every
// five-factor request would fail on it.
func (c *Client) Health(ctx context.Context) error {
	var migrated bool
	if err := c.db.GetContext(ctx, &migrated, earningsTableCheck); err != nil {
		return errors.Wrapf(errors.ErrUnavailable, "postgres: %v", err)
	}
	if !migrated {
		return errors.Wrap(errors.ErrUnavailable, "postgres: ticker_earnings table missing")
	}
	return nil
}
