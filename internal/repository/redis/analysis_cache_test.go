package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/testsupport"
	"insideredge/pkg/errors"
)

func TestCacheKeys(t *testing.T) {
	opts := optionsflow.DefaultOptions()
	assert.Equal(t, "insideredge:analysis:flow:XYZ:100000:20000:72h0m0s:500:0:ANY", FlowReportKey("xyz", opts))

	opts.MinClusterPremium = 250000
	assert.NotEqual(t, FlowReportKey("XYZ", optionsflow.DefaultOptions()), FlowReportKey("XYZ", opts))

	assert.Equal(t, "insideredge:analysis:fivefactor:XYZ", SnapshotKey("xyz"))
	assert.Equal(t, "insideredge:analysis:flow:XYZ:*", flowReportPattern("xyz"))
}

func TestAnalysisCache_RoundTrip(t *testing.T) {
	cfg := testsupport.LoadDatabaseConfigsFromEnv(t)
	client := testsupport.NewRedisClient(t, cfg.Redis, "insideredge:analysis:")

	ctx := context.Background()
	cache := NewAnalysisCache(client, time.Minute)
	ticker := "ZZTEST"
	t.Cleanup(func() { _ = cache.Invalidate(ctx, ticker) })

	t.Run("miss", func(t *testing.T) {
		_, err := cache.GetSnapshot(ctx, ticker)
		assert.True(t, errors.Is(err, errors.ErrCacheMiss))
	})

	t.Run("nil snapshot is a hit", func(t *testing.T) {
		now := time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)
		require.NoError(t, cache.SetSnapshot(ctx, ticker, nil, now))

		entry, err := cache.GetSnapshot(ctx, ticker)
		require.NoError(t, err)
		assert.Nil(t, entry.Snapshot)
		assert.True(t, entry.ComputedAt.Equal(now))
	})

	t.Run("snapshot", func(t *testing.T) {
		snap := &fivefactor.Snapshot{Ticker: ticker, AsOf: "2026-10-19"}
		require.NoError(t, cache.SetSnapshot(ctx, ticker, snap, time.Now()))

		entry, err := cache.GetSnapshot(ctx, ticker)
		require.NoError(t, err)
		require.NotNil(t, entry.Snapshot)
		assert.Equal(t, "2026-10-19", entry.Snapshot.AsOf)
	})

	t.Run("flow report", func(t *testing.T) {
		opts := optionsflow.DefaultOptions()
		report := &optionsflow.Report{Ticker: ticker, ClustersAnalyzed: 2, Summary: "x"}
		require.NoError(t, cache.SetFlowReport(ctx, ticker, opts, report))

		got, err := cache.GetFlowReport(ctx, ticker, opts)
		require.NoError(t, err)
		assert.Equal(t, 2, got.ClustersAnalyzed)

		require.NoError(t, cache.Invalidate(ctx, ticker))
		_, err = cache.GetFlowReport(ctx, ticker, opts)
		assert.True(t, errors.Is(err, errors.ErrCacheMiss))
	})

	t.Run("invalidate leaves prefix siblings alone", func(t *testing.T) {
		sibling := ticker + "X"
		t.Cleanup(func() { _ = cache.Invalidate(ctx, sibling) })

		opts := optionsflow.DefaultOptions()
		snap := &fivefactor.Snapshot{Ticker: sibling, AsOf: "2026-10-19"}
		for _, tk := range []string{ticker, sibling} {
			require.NoError(t, cache.SetSnapshot(ctx, tk, snap, time.Now()))
			require.NoError(t, cache.SetFlowReport(ctx, tk, opts, &optionsflow.Report{Ticker: tk}))
		}

		require.NoError(t, cache.Invalidate(ctx, ticker))

		_, err := cache.GetSnapshot(ctx, ticker)
		assert.True(t, errors.Is(err, errors.ErrCacheMiss))
		_, err = cache.GetFlowReport(ctx, ticker, opts)
		assert.True(t, errors.Is(err, errors.ErrCacheMiss))

		_, err = cache.GetSnapshot(ctx, sibling)
		assert.NoError(t, err)
		_, err = cache.GetFlowReport(ctx, sibling, opts)
		assert.NoError(t, err)
	})
}
