package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"SignalSentinel/internal/model"
)

// New returns the Fetcher for the named provider.
func New(provider, baseURL string, tickers map[string]string, timeout time.Duration, proxyURL string) (Fetcher, error) {
	switch strings.ToLower(provider) {
	case "binance", "":
		return NewBinanceFetcher(baseURL, tickers, timeout, proxyURL), nil
	case "coingecko":
		return NewCoinGeckoFetcher(baseURL, "usd", timeout, proxyURL), nil
	case "yahoo":
		return NewYahooFetcher(baseURL, tickers, timeout, proxyURL), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", provider)
	}
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu     sync.Mutex
	Prices map[string][]float64 // per-symbol closes, oldest first
	Errors map[string]error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, _ string, limit int) (*model.RawFeed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	prices := m.Prices[symbol]
	if limit > 0 && len(prices) > limit {
		prices = prices[len(prices)-limit:]
	}
	return &model.RawFeed{Symbol: symbol, Source: m.Name(), Kind: model.FeedCandles, Candles: generateMockBars(prices)}, nil
}

func generateMockBars(closes []float64) []model.OHLCV {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, p := range closes {
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
