package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	log := newLogger()
	defer log.Sync()

	// The proxy exists to add credentials; refuse to start without one.
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		log.Fatal("GITHUB_TOKEN environment variable must be set")
	}

	base := os.Getenv("UPSTREAM_BASE")
	if base == "" {
		base = defaultUpstreamBase
	}
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	proxy := NewProxy(
		NewUpstream(base, token),
		NewCache(cacheTTL, cacheCapacity),
		log,
	)

	if mgmtAddr := os.Getenv("MANAGEMENT_ADDR"); mgmtAddr != "" {
		log.Info("management console listening", zap.String("addr", mgmtAddr))
		go func() {
			if err := StartManagementServer(mgmtAddr, proxy); err != nil {
				log.Error("management server stopped", zap.Error(err))
			}
		}()
	}

	log.Info("CORS proxy listening",
		zap.String("addr", addr),
		zap.String("upstream", base),
		zap.String("allowed_origins", "*.prigoana.com"))

	if err := NewRouter(proxy).Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	if os.Getenv("DEBUG") != "" {
		log, _ := zap.NewDevelopment()
		return log
	}
	log, _ := zap.NewProduction()
	return log
}
