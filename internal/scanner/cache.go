package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CacheConfig -
type CacheConfig struct {
	Addr     string `yaml:"addr" validate:"required,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
	TTL      uint64 `yaml:"ttl" validate:"omitempty,min=1"`
}

// Cache - short-lived scan result cache in redis. Strictly best
// effort: every cache failure is logged and treated as a miss, a scan
// never fails because of the cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache -
func NewCache(cfg CacheConfig) *Cache {
	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

func cacheKey(address, chainID string) string {
	return fmt.Sprintf("scan:%s:%s", chainID, address)
}

// Get -
func (c *Cache) Get(ctx context.Context, address, chainID string) (*Result, bool) {
	payload, err := c.client.Get(ctx, cacheKey(address, chainID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false
	case err != nil:
		log.Warn().Err(err).Msg("scan cache read")
		return nil, false
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		log.Warn().Err(err).Msg("scan cache decode")
		return nil, false
	}
	return &result, true
}

// Set -
func (c *Cache) Set(ctx context.Context, result *Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("scan cache encode")
		return
	}
	if err := c.client.Set(ctx, cacheKey(result.Address, result.ChainID), payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("scan cache write")
	}
}

// Close -
func (c *Cache) Close() error {
	return c.client.Close()
}
