package clients

import (
	"net"
	"net/http"
	"time"
)

// DefaultTransport returns a configured HTTP transport with connection
// limits shared by the upstream provider clients. Provider outages are
// expected and handled by the fallback cascade; the caps here keep a
// dead provider from pinning goroutines on connection waits.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		// Cap concurrent connections to any single provider host
		MaxConnsPerHost: 100,

		// Keep some connections warm for reuse
		MaxIdleConnsPerHost: 10,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,

		// Connection establishment timeouts
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout: 10 * time.Second,

		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewHTTPClient returns an HTTP client on the shared transport with the
// given per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: DefaultTransport(),
	}
}
