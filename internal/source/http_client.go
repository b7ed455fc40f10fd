package source

import (
	"net"
	"net/http"
	"time"

	"github.com/geopulse/geopulse/internal/observability/tracing"
)

// NewHTTPClient builds the pooled, trace-instrumented client shared by both
// source fetchers. The overall request deadline is enforced per call via
// context, not here.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return tracing.WrapHTTPClient(&http.Client{
		Transport: transport,
	})
}
