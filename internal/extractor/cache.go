// internal/extractor/cache.go
package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/common/database"
	"github.com/cozypet/loan-processor-ai/internal/schema"
)

// Cache stores extraction results keyed by document digest so re-submitting
// the same PDF skips a round trip to the extraction service. A nil *Cache is
// valid and disables caching.
type Cache struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewCache(redis *database.RedisClient, ttl time.Duration) *Cache {
	if redis == nil {
		return nil
	}
	return &Cache{redis: redis, ttl: ttl}
}

func cacheKey(document []byte, category schema.Category) string {
	return fmt.Sprintf("extract:%s:%x", category, sha256.Sum256(document))
}

// Get returns a cached record, or false on miss or any cache error. Cache
// failures never fail an extraction.
func (c *Cache) Get(ctx context.Context, document []byte, category schema.Category) (*ExtractedRecord, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, cacheKey(document, category))
	if err != nil {
		return nil, false
	}

	var rec ExtractedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// Put stores a record, ignoring cache errors.
func (c *Cache) Put(ctx context.Context, document []byte, category schema.Category, rec *ExtractedRecord) {
	if c == nil || rec == nil {
		return
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(document, category), string(raw), c.ttl)
}
