package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUpstreamBase = "https://api.github.com/repos/"
	upstreamUserAgent   = "rust-cors-proxy/1.0"
	upstreamTimeout     = 30 * time.Second
)

// Classification errors for upstream failures. Send failures become 502,
// body read failures 500.
var (
	errUpstreamSend = errors.New("upstream send failed")
	errUpstreamRead = errors.New("upstream body read failed")
)

// Upstream issues authenticated GETs against the repos API. One shared
// instance serves all handlers; the client pools idle connections and
// prefers HTTP/2.
type Upstream struct {
	base   string
	token  string
	client *http.Client
}

func NewUpstream(base, token string) *Upstream {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Upstream{
		base:  base,
		token: token,
		client: &http.Client{
			Timeout: upstreamTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 60 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// Fetch retrieves one fingerprint from the upstream and buffers the whole
// body. No inbound header crosses over; only the fixed user agent and the
// bearer credential go out. Non-2xx statuses are not errors — the caller
// caches and returns them as-is, error JSON included.
func (u *Upstream) Fetch(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.base+fingerprint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUpstreamSend, err)
	}
	req.Header.Set("User-Agent", upstreamUserAgent)
	req.Header.Set("Authorization", "Bearer "+u.token)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUpstreamSend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUpstreamRead, err)
	}

	return &CacheEntry{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
