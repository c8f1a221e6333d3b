package testsupport

import (
	"context"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"

	"insideredge/internal/adapters/config"
)

// NewRedisClient creates a redis client for integration tests. Keys under
// prefix are removed before and after the test; the rest of the DB is untouched.
func NewRedisClient(t *testing.T, cfg config.RedisConfig, prefix string) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	pattern := strings.TrimSuffix(prefix, "*") + "*"
	clean := func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			_ = client.Del(ctx, iter.Val()).Err()
		}
	}

	clean()
	t.Cleanup(func() {
		clean()
		_ = client.Close()
	})

	return client
}
