package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/logging"
)

const keyPrefix = "scheduling:provider-config:"

// ProviderConfigCache is a read-through cache of provider scheduling
// snapshots in redis. Invalidate must run before slots are regenerated for
// an edited config.
type ProviderConfigCache struct {
	client *redis.Client
	source catalog.ConfigSource
	ttl    time.Duration
	logger *zap.Logger
}

func NewProviderConfigCache(
	client *redis.Client,
	source catalog.ConfigSource,
	ttl time.Duration,
	logger *zap.Logger,
) *ProviderConfigCache {
	return &ProviderConfigCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logging.Or(logger),
	}
}

func key(providerID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, providerID)
}

// ProviderConfig returns the cached snapshot or loads and stores it. Redis
// failures fall through to the source.
func (c *ProviderConfigCache) ProviderConfig(
	ctx context.Context,
	providerID uint,
) (availability.ProviderConfig, error) {

	raw, err := c.client.Get(ctx, key(providerID)).Bytes()
	switch {
	case err == nil:
		var cfg availability.ProviderConfig
		if jerr := json.Unmarshal(raw, &cfg); jerr == nil {
			return cfg, nil
		}
		c.logger.Warn("discarding undecodable cached provider config", zap.Uint("provider_id", providerID))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("provider config cache read failed", zap.Uint("provider_id", providerID), zap.Error(err))
	}

	cfg, err := c.source.ProviderConfig(ctx, providerID)
	if err != nil {
		return availability.ProviderConfig{}, err
	}

	payload, err := json.Marshal(cfg)
	if err == nil {
		if serr := c.client.Set(ctx, key(providerID), payload, c.ttl).Err(); serr != nil {
			c.logger.Warn("provider config cache write failed", zap.Uint("provider_id", providerID), zap.Error(serr))
		}
	}

	return cfg, nil
}

// Invalidate drops the cached snapshot. Unlike reads it reports failures.
func (c *ProviderConfigCache) Invalidate(ctx context.Context, providerID uint) error {
	if err := c.client.Del(ctx, key(providerID)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate provider %d: %w", providerID, err)
	}
	return nil
}

// Ping reports whether redis is reachable.
func (c *ProviderConfigCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ catalog.ConfigSource = (*ProviderConfigCache)(nil)
