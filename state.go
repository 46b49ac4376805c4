package main

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RequestLog represents a single request handled by the proxy.
type RequestLog struct {
	Time        time.Time `json:"time"`
	Method      string    `json:"method"`
	Fingerprint string    `json:"fingerprint"`
	Status      int       `json:"status"`
	Cache       string    `json:"cache"` // "hit", "miss", "denied", "preflight"
	SrcIP       string    `json:"src_ip"`
}

// Proxy holds the shared state for the proxy: the upstream facade, the
// response cache, the logger and a ring of recent requests for the
// management console. The bearer credential lives inside the upstream
// facade only and is never stored or logged here.
type Proxy struct {
	Upstream *Upstream
	Cache    *Cache
	Log      *zap.Logger

	mu       sync.RWMutex
	logs     []RequestLog
	logLimit int
}

// NewProxy creates a new Proxy around an upstream facade and a cache.
func NewProxy(upstream *Upstream, cache *Cache, log *zap.Logger) *Proxy {
	return &Proxy{
		Upstream: upstream,
		Cache:    cache,
		Log:      log,
		logs:     make([]RequestLog, 0),
		logLimit: 100, // keep last 100 requests
	}
}

// LogRequest adds a request log, newest first.
func (p *Proxy) LogRequest(r RequestLog) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logs = append([]RequestLog{r}, p.logs...)

	if len(p.logs) > p.logLimit {
		p.logs = p.logs[:p.logLimit]
	}
}

// GetLogs returns a copy of the logs.
func (p *Proxy) GetLogs() []RequestLog {
	p.mu.RLock()
	defer p.mu.RUnlock()

	logs := make([]RequestLog, len(p.logs))
	copy(logs, p.logs)
	return logs
}
