package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// managementRouter exposes proxy internals: health, cache stats and the
// recent request ring. It serves ops tooling, not browsers, so everything
// is JSON. The credential is not reachable from here.
func managementRouter(p *Proxy) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"cache_entries":  p.Cache.Len(),
			"cache_capacity": p.Cache.capacity,
			"cache_ttl":      p.Cache.ttl.String(),
			"cached_keys":    p.Cache.Keys(),
		})
	})

	r.GET("/requests", func(c *gin.Context) {
		c.JSON(http.StatusOK, p.GetLogs())
	})

	return r
}

// StartManagementServer runs the management console on its own port.
func StartManagementServer(addr string, p *Proxy) error {
	return managementRouter(p).Run(addr)
}
