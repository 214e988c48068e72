// Package httpclient holds the shared tuned HTTP client used for direct
// audio downloads, plus a small retry helper for flaky upstreams.
package httpclient

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout         = 10 * time.Minute // audio downloads can be large and slow
	DefaultIdleConnTimeout = 90 * time.Second
	MaxIdleConnsPerHost    = 8
)

var defaultClient = &http.Client{
	Timeout: DefaultTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: MaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	},
}

// Default returns the shared client.
func Default() *http.Client {
	return defaultClient
}

// WithTimeout returns a client sharing Default's transport settings but with
// the given overall timeout.
func WithTimeout(timeout time.Duration) *http.Client {
	t, ok := defaultClient.Transport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout}
	}
	return &http.Client{Timeout: timeout, Transport: t.Clone()}
}
