package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/optionsflow"
	"insideredge/pkg/errors"
)

const keyPrefix = "insideredge:analysis:"

// AnalysisCache stores computed flow reports and five-factor snapshots
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisCache creates a cache whose entries expire after ttl
func NewAnalysisCache(client *redis.Client, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{client: client, ttl: ttl}
}

// FlowReportKey identifies a flow report by ticker and the options it was built with
func FlowReportKey(ticker string, opts optionsflow.Options) string {
	minAction := string(opts.MinAction)
	if minAction == "" {
		minAction = "ANY"
	}
	return fmt.Sprintf("%sflow:%s:%.0f:%.0f:%s:%d:%d:%s",
		keyPrefix, strings.ToUpper(ticker), opts.MinClusterPremium, opts.MinRowPremium,
		opts.Lookback, opts.FetchLimit, opts.Limit, minAction)
}

// SnapshotKey identifies the five-factor snapshot of a ticker
func SnapshotKey(ticker string) string {
	return keyPrefix + "fivefactor:" + strings.ToUpper(ticker)
}

// GetFlowReport returns a cached report or errors.ErrCacheMiss
func (c *AnalysisCache) GetFlowReport(ctx context.Context, ticker string, opts optionsflow.Options) (*optionsflow.Report, error) {
	var report optionsflow.Report
	if err := c.get(ctx, FlowReportKey(ticker, opts), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SetFlowReport caches a report
func (c *AnalysisCache) SetFlowReport(ctx context.Context, ticker string, opts optionsflow.Options, report *optionsflow.Report) error {
	return c.set(ctx, FlowReportKey(ticker, opts), report)
}

// GetSnapshot returns a cached snapshot entry or errors.ErrCacheMiss
func (c *AnalysisCache) GetSnapshot(ctx context.Context, ticker string) (*fivefactor.CachedSnapshot, error) {
	var entry fivefactor.CachedSnapshot
	if err := c.get(ctx, SnapshotKey(ticker), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetSnapshot caches a snapshot, including a nil one
func (c *AnalysisCache) SetSnapshot(ctx context.Context, ticker string, snapshot *fivefactor.Snapshot, computedAt time.Time) error {
	return c.set(ctx, SnapshotKey(ticker), fivefactor.CachedSnapshot{Snapshot: snapshot, ComputedAt: computedAt})
}

// flowReportPattern matches every flow report of exactly one ticker
func flowReportPattern(ticker string) string {
	return keyPrefix + "flow:" + strings.ToUpper(ticker) + ":*"
}

// Invalidate drops every cached artifact of a ticker: its snapshot and the
// flow reports built with any options.
func (c *AnalysisCache) Invalidate(ctx context.Context, ticker string) error {
	keys := []string{SnapshotKey(ticker)}
	iter := c.client.Scan(ctx, 0, flowReportPattern(ticker), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrapf(err, "failed to scan cache keys: ticker=%s", ticker)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrapf(err, "failed to invalidate cache: ticker=%s", ticker)
	}
	return nil
}

func (c *AnalysisCache) get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return errors.Wrapf(errors.ErrCacheMiss, "key=%s", key)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read cache: key=%s", key)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrapf(err, "failed to unmarshal cache entry: key=%s", key)
	}
	return nil
}

func (c *AnalysisCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal cache entry: key=%s", key)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to write cache: key=%s", key)
	}
	return nil
}
