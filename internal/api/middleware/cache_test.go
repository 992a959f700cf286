package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/middleware"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func TestCacheMiddleware_MissThenHit(t *testing.T) {
	cache := newMapCache()
	m := middleware.NewCacheMiddleware(cache, 60)

	hits := 0
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_appointments":6}`))
	}))

	url := "/api/analytics/performance?start=2026-01-01&end=2026-01-31"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits, "cache hit must not reach the handler")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

// Cache keys stay readable so the invalidation service can drop the whole
// analytics family with one prefix delete.
func TestCacheMiddleware_KeysSupportPrefixInvalidation(t *testing.T) {
	cache := newMapCache()
	m := middleware.NewCacheMiddleware(cache, 60)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/performance?start=2026-01-01", nil))

	cache.mu.Lock()
	defer cache.mu.Unlock()
	require.Len(t, cache.data, 1)
	for key := range cache.data {
		assert.Equal(t, "http:cache:GET:/api/analytics/performance?start=2026-01-01", key)
	}
}

func TestCacheMiddleware_SkipsUncachedRoutes(t *testing.T) {
	cache := newMapCache()
	m := middleware.NewCacheMiddleware(cache, 60)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/partners", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, cache.data)
}

func TestCacheMiddleware_SkipsNonGET(t *testing.T) {
	cache := newMapCache()
	m := middleware.NewCacheMiddleware(cache, 60)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analytics/performance", nil))

	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, cache.data)
}

func TestCacheMiddleware_DoesNotCacheErrors(t *testing.T) {
	cache := newMapCache()
	m := middleware.NewCacheMiddleware(cache, 60)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad date"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/performance?start=nope", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, cache.data)
}
