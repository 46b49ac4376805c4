package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagementEndpoints(t *testing.T) {
	proxy := NewProxy(
		NewUpstream("http://127.0.0.1:0", "test-token"),
		NewCache(cacheTTL, cacheCapacity),
		zap.NewNop(),
	)
	proxy.Cache.Set("octocat/Hello-World", &CacheEntry{Status: 200, Body: []byte(`{}`)})
	proxy.LogRequest(RequestLog{
		Time:        time.Now(),
		Method:      http.MethodGet,
		Fingerprint: "octocat/Hello-World",
		Status:      200,
		Cache:       "miss",
		SrcIP:       "127.0.0.1",
	})

	router := managementRouter(proxy)

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("stats", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var stats struct {
			CacheEntries  int      `json:"cache_entries"`
			CacheCapacity int      `json:"cache_capacity"`
			CacheTTL      string   `json:"cache_ttl"`
			CachedKeys    []string `json:"cached_keys"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.CacheEntries)
		assert.Equal(t, cacheCapacity, stats.CacheCapacity)
		assert.Equal(t, cacheTTL.String(), stats.CacheTTL)
		assert.Equal(t, []string{"octocat/Hello-World"}, stats.CachedKeys)
	})

	t.Run("requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var logs []RequestLog
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
		require.Len(t, logs, 1)
		assert.Equal(t, "octocat/Hello-World", logs[0].Fingerprint)
		assert.Equal(t, "miss", logs[0].Cache)
	})
}

func TestRequestLogRingKeepsNewestFirst(t *testing.T) {
	proxy := NewProxy(nil, NewCache(cacheTTL, cacheCapacity), zap.NewNop())
	proxy.logLimit = 3

	for i, key := range []string{"a", "b", "c", "d"} {
		proxy.LogRequest(RequestLog{Fingerprint: key, Status: 200 + i})
	}

	logs := proxy.GetLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, "d", logs[0].Fingerprint)
	assert.Equal(t, "b", logs[2].Fingerprint)
}
