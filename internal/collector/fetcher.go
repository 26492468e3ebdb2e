package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"SignalSentinel/internal/model"
)

// ErrFetch marks every failure of a price source: unreachable, bad status, malformed body.
var ErrFetch = errors.New("fetch failed")

// DefaultTimeout bounds every price source request.
const DefaultTimeout = 10 * time.Second

// Fetcher defines the interface for fetching a raw price feed for one symbol.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol, interval string, limit int) (*model.RawFeed, error)
	Name() string
}

func newHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
