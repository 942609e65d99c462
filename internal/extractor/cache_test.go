// internal/extractor/cache_test.go
package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozypet/loan-processor-ai/internal/common/config"
	"github.com/cozypet/loan-processor-ai/internal/common/database"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/schema"
)

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	return NewCache(redisClient, time.Hour), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()
	doc := []byte("%PDF-1.4 identity")

	_, ok := cache.Get(ctx, doc, schema.CategoryIdentity)
	assert.False(t, ok)

	rec := &ExtractedRecord{
		Category: schema.CategoryIdentity,
		Identity: &IdentityFields{FullName: "Marie Dupont", DocumentNumber: "X123456"},
	}
	cache.Put(ctx, doc, schema.CategoryIdentity, rec)

	got, ok := cache.Get(ctx, doc, schema.CategoryIdentity)
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestCacheKeyedByCategory(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()
	doc := []byte("same bytes")

	cache.Put(ctx, doc, schema.CategoryIdentity, &ExtractedRecord{
		Category: schema.CategoryIdentity,
		Identity: &IdentityFields{FullName: "Marie Dupont"},
	})

	_, ok := cache.Get(ctx, doc, schema.CategoryIncome)
	assert.False(t, ok, "same document under a different category must miss")
}

func TestNilCacheIsDisabled(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, ok := cache.Get(ctx, []byte("doc"), schema.CategoryIdentity)
	assert.False(t, ok)
	// Put on a nil cache is a no-op, not a panic.
	cache.Put(ctx, []byte("doc"), schema.CategoryIdentity, &ExtractedRecord{Category: schema.CategoryIdentity})

	assert.Nil(t, NewCache(nil, time.Hour))
}

func TestCacheErrorsAreSwallowed(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()
	doc := []byte("doc")

	cache.Put(ctx, doc, schema.CategoryIdentity, &ExtractedRecord{Category: schema.CategoryIdentity})
	mr.Close()

	_, ok := cache.Get(ctx, doc, schema.CategoryIdentity)
	assert.False(t, ok)
	cache.Put(ctx, doc, schema.CategoryIdentity, &ExtractedRecord{Category: schema.CategoryIdentity})
}

func TestExtractServesSecondCallFromCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(annotationResponse(map[string]interface{}{
			"full_name":       "Marie Dupont",
			"date_of_birth":   "1990-04-12",
			"document_number": "X123456",
		}))
	}))
	defer server.Close()

	cache, _ := testCache(t)
	ex := New(testConfig(server.URL), cache, logger.NewNoOpLogger())
	doc := []byte("%PDF-1.4")

	first, err := ex.Extract(context.Background(), doc, schema.CategoryIdentity)
	require.NoError(t, err)

	second, err := ex.Extract(context.Background(), doc, schema.CategoryIdentity)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second extraction must not hit the service")
}
