package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	headerCache = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"

	// Downstream caching is aligned with the server-side TTL.
	responseCacheControl = "public, max-age=10"
)

// NewRouter assembles the public handler chain: request IDs, access log,
// origin policy, then the proxy and preflight routes over the whole path
// space.
func NewRouter(p *Proxy) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(p.Log), p.CORSPolicy())
	r.GET("/*path", p.HandleProxy)
	r.OPTIONS("/*path", p.HandlePreflight)
	return r
}

// fingerprint derives the cache key from the wildcard path and the raw
// query. The same string is the suffix appended to the upstream base URL,
// so byte-equal fingerprints share both a cache entry and an upstream
// target.
func fingerprint(c *gin.Context) string {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if raw := c.Request.URL.RawQuery; raw != "" {
		return path + "?" + raw
	}
	return path
}

// HandleProxy serves one proxied retrieval: cache lookup by fingerprint,
// upstream fetch on miss, CORS re-headering on the way out.
func (p *Proxy) HandleProxy(c *gin.Context) {
	key := fingerprint(c)

	if entry, ok := p.Cache.Get(key); ok {
		p.respond(c, key, entry, cacheHit)
		return
	}

	entry, err := p.Upstream.Fetch(c.Request.Context(), key)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, errUpstreamRead) {
			status = http.StatusInternalServerError
		}
		p.Log.Warn("upstream fetch failed",
			zap.String("fingerprint", key),
			zap.Error(err))
		c.Header("Access-Control-Allow-Origin", "*")
		c.Status(status)
		p.record(c, key, status, cacheMiss)
		return
	}

	p.Cache.Set(key, entry)
	p.respond(c, key, entry, cacheMiss)
}

// HandlePreflight answers the browser's capability probe. It never touches
// the origin policy, the cache or the upstream; the real request that
// follows is what gets checked.
func (p *Proxy) HandlePreflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", corsOrigin(c))
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "*")
	c.Header("Access-Control-Max-Age", "3600")
	c.Status(http.StatusOK)
	p.record(c, fingerprint(c), http.StatusOK, "preflight")
}

func (p *Proxy) respond(c *gin.Context, key string, entry *CacheEntry, disposition string) {
	contentType := entry.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Header("Access-Control-Allow-Origin", corsOrigin(c))
	c.Header("Cache-Control", responseCacheControl)
	c.Header(headerCache, disposition)
	c.Data(entry.Status, contentType, entry.Body)
	p.record(c, key, entry.Status, disposition)
}

// corsOrigin picks the Access-Control-Allow-Origin value: the inbound
// Origin verbatim when present and representable as a header value, "*"
// otherwise. Falling back never fails the request.
func corsOrigin(c *gin.Context) string {
	origin := c.GetHeader("Origin")
	if origin == "" || !validHeaderValue(origin) {
		return "*"
	}
	return origin
}

// validHeaderValue rejects values that cannot go on the wire as a header
// field value (control bytes).
func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 || v[i] == 0x7f {
			return false
		}
	}
	return true
}

func (p *Proxy) record(c *gin.Context, key string, status int, disposition string) {
	p.LogRequest(RequestLog{
		Time:        time.Now(),
		Method:      c.Request.Method,
		Fingerprint: key,
		Status:      status,
		Cache:       strings.ToLower(disposition),
		SrcIP:       c.ClientIP(),
	})
}
