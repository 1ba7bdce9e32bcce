package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"gait-analysis/gait"
	"gait-analysis/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ResultCache memoizes completed analyses in Redis. A sequence re-submitted
// under the same analyzer configuration and rule table returns the cached
// result instead of re-running the pipeline. The cache is best effort: an
// unreachable Redis disables it and the service keeps working.
type ResultCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
}

// NewResultCache connects to Redis using REDIS_ADDRESS, REDIS_PASSWORD and
// REDIS_DB. A failed ping returns a disabled cache, not an error.
func NewResultCache(ttl time.Duration) *ResultCache {
	logger := utils.GetLogger()
	addr := utils.GetEnv("REDIS_ADDRESS", "localhost:6379")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, result cache disabled",
			slog.String("addr", addr), slog.Any("error", err))
		return &ResultCache{}
	}

	logger.Info("result cache connected", slog.String("addr", addr))
	return &ResultCache{client: client, ttl: ttl, enabled: true}
}

// Enabled reports whether the cache is live.
func (c *ResultCache) Enabled() bool {
	return c != nil && c.enabled
}

// Key builds the cache key. The config fingerprint covers every analyzer
// threshold and the rule table version, so a config change never serves
// stale assessments.
func Key(datasetID, sequenceID string, cfg gait.Config) string {
	return fmt.Sprintf("gait:result:%s:%s:%s", datasetID, sequenceID, cfg.Fingerprint())
}

// Get fetches a cached result. The second return is false on miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*gait.PoseAnalysisResult, bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		utils.GetLogger().Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}

	var result gait.PoseAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		utils.GetLogger().Warn("cache entry corrupt, ignoring", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return &result, true
}

// Set stores a result. Failures are logged and swallowed.
func (c *ResultCache) Set(ctx context.Context, key string, result *gait.PoseAnalysisResult) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		utils.GetLogger().Warn("cache marshal failed", slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Close releases the Redis connection.
func (c *ResultCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
