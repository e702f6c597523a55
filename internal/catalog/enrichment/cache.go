// internal/catalog/enrichment/cache.go
package enrichment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"storefront/internal/common/database"
	"storefront/internal/common/logger"
)

const cachePrefix = "storefront:enrich:"

// Cache remembers image lookups and embeddings across runs. A nil *Cache is a valid,
// always-missing cache, and Redis errors are logged and treated as misses.
type Cache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	model  string
	logger logger.Logger
}

func NewCache(redis *database.RedisClient, ttl time.Duration, model string, log logger.Logger) *Cache {
	return &Cache{
		redis:  redis,
		ttl:    ttl,
		model:  model,
		logger: log,
	}
}

func cacheKey(kind, input string) string {
	sum := sha256.Sum256([]byte(input))
	return cachePrefix + kind + ":" + hex.EncodeToString(sum[:])
}

func (c *Cache) GetImage(ctx context.Context, query string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, found, err := c.redis.Get(ctx, cacheKey("image", query))
	if err != nil {
		c.logger.Warn("image cache read failed", map[string]interface{}{"error": err})
		return "", false
	}
	return val, found && val != ""
}

func (c *Cache) SetImage(ctx context.Context, query, url string) {
	if c == nil || url == "" {
		return
	}
	if err := c.redis.Set(ctx, cacheKey("image", query), url, c.ttl); err != nil {
		c.logger.Warn("image cache write failed", map[string]interface{}{"error": err})
	}
}

// embeddingKey includes the model so switching models never serves stale vectors.
func (c *Cache) embeddingKey(text string) string {
	return cacheKey("embedding", c.model+"\x00"+text)
}

func (c *Cache) GetEmbedding(ctx context.Context, text string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}
	key := c.embeddingKey(text)
	val, found, err := c.redis.Get(ctx, key)
	if err != nil {
		c.logger.Warn("embedding cache read failed", map[string]interface{}{"error": err})
		return nil, false
	}
	if !found {
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal([]byte(val), &vec); err != nil || len(vec) == 0 {
		c.logger.Debug("embedding cache entry unreadable, evicting", map[string]interface{}{"error": err})
		if err := c.redis.Del(ctx, key); err != nil {
			c.logger.Warn("embedding cache evict failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	return vec, true
}

func (c *Cache) SetEmbedding(ctx context.Context, text string, vec []float32) {
	if c == nil || len(vec) == 0 {
		return
	}
	payload, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.embeddingKey(text), payload, c.ttl); err != nil {
		c.logger.Warn("embedding cache write failed", map[string]interface{}{"error": err})
	}
}
