package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

const coinGeckoBaseURL = "https://api.coingecko.com"

// CoinGeckoFetcher implements Fetcher using the CoinGecko market_chart endpoint.
// Asset names are CoinGecko coin ids.
type CoinGeckoFetcher struct {
	BaseURL    string
	VsCurrency string
	Client     *http.Client
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, vsCurrency string, timeout time.Duration, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	return &CoinGeckoFetcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		VsCurrency: vsCurrency,
		Client:     newHTTPClient(timeout, proxyURL),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// FetchHistory requests enough days to cover limit hourly points and trims the rest.
// CoinGecko picks the granularity itself; for 2-90 days it is hourly.
func (f *CoinGeckoFetcher) FetchHistory(ctx context.Context, symbol, _ string, limit int) (*model.RawFeed, error) {
	days := (limit + 23) / 24
	if days < 2 {
		days = 2
	}
	q := url.Values{}
	q.Set("vs_currency", f.VsCurrency)
	q.Set("days", strconv.Itoa(days))
	endpoint := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?%s",
		f.BaseURL, url.PathEscape(strings.ToLower(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko %s: %w", ErrFetch, symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: coingecko: status %d", ErrFetch, resp.StatusCode)
	}

	var chart marketChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("%w: coingecko decode: %w", ErrFetch, err)
	}

	pairs := make([]model.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		pairs = append(pairs, model.PricePoint{Time: time.UnixMilli(int64(p[0])).UTC(), Price: p[1]})
	}
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[len(pairs)-limit:]
	}
	return &model.RawFeed{Symbol: symbol, Source: f.Name(), Kind: model.FeedPairs, Pairs: pairs}, nil
}
