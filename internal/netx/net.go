// Package netx contains small networking helpers for the client.
package netx

import (
	"context"
	"net/http"
	"time"
)

// Prober reports whether the remote endpoint is currently reachable.
type Prober interface {
	Online(ctx context.Context) bool
}

// HTTPProber probes reachability with a HEAD request against a health URL.
type HTTPProber struct {
	URL    string
	Client *http.Client
}

func NewHTTPProber(url string) *HTTPProber {
	return &HTTPProber{
		URL:    url,
		Client: &http.Client{Timeout: 3 * time.Second},
	}
}

// Online returns true if the health endpoint answered with any status below
// 500. Transport errors and timeouts count as offline.
func (p *HTTPProber) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
