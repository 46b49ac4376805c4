package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// allowedOrigin reports whether an Origin header value belongs to the
// prigoana.com origin family: the apex over http or https, or any
// subdomain. The suffix check requires the dot, so
// "https://evilprigoana.com" does not match. Comparison is exact bytes;
// an origin carrying a port or path fails the suffix check, which is
// intended — browsers never send those.
func allowedOrigin(origin string) bool {
	if origin == "https://prigoana.com" || origin == "http://prigoana.com" {
		return true
	}
	for _, scheme := range []string{"https://", "http://"} {
		if host, ok := strings.CutPrefix(origin, scheme); ok {
			if strings.HasSuffix(host, ".prigoana.com") {
				return true
			}
		}
	}
	return false
}

// CORSPolicy rejects requests from outside the allowed origin family
// before any handler runs. Requests without an Origin header are
// same-origin or non-browser callers and pass through unchecked.
// Preflight is exempt: the probe is answered for any origin and the real
// request that follows is what gets checked.
func (p *Proxy) CORSPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" || allowedOrigin(origin) {
			c.Next()
			return
		}
		p.Log.Info("origin denied", zap.String("origin", origin))
		p.record(c, fingerprint(c), http.StatusForbidden, "denied")
		// The browser still needs a well-formed CORS response to surface
		// the 403 instead of a network error.
		c.Header("Access-Control-Allow-Origin", "*")
		c.AbortWithStatus(http.StatusForbidden)
	}
}
