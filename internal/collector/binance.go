package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

const binanceBaseURL = "https://api.binance.com"

// BinanceFetcher implements Fetcher using the public Binance klines endpoint.
type BinanceFetcher struct {
	BaseURL string
	Pairs   map[string]string // maps asset name to Binance pair, e.g. bitcoin -> BTCUSDT
	Client  *http.Client
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(baseURL string, pairs map[string]string, timeout time.Duration, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = binanceBaseURL
	}
	return &BinanceFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Pairs:   pairs,
		Client:  newHTTPClient(timeout, proxyURL),
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchHistory returns up to limit klines for the asset. Assets missing from
// the pair map fail with a NormalizationError before any request is made.
func (f *BinanceFetcher) FetchHistory(ctx context.Context, symbol, interval string, limit int) (*model.RawFeed, error) {
	pair, err := ResolveTicker(f.Pairs, symbol)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", pair)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: binance klines %s: %w", ErrFetch, pair, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: binance read body: %w", ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: binance: status %d, body: %s", ErrFetch, resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows [][]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: binance decode: %w", ErrFetch, err)
	}

	candles := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		c, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("%w: binance kline %d: %w", ErrFetch, i, err)
		}
		candles = append(candles, c)
	}
	return &model.RawFeed{Symbol: symbol, Source: f.Name(), Kind: model.FeedCandles, Candles: candles}, nil
}

// parseKline decodes [openTime, open, high, low, close, volume, ...]. Prices arrive as strings.
func parseKline(row []interface{}) (model.OHLCV, error) {
	if len(row) < 6 {
		return model.OHLCV{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	openTime, err := klineInt(row[0])
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("open time: %w", err)
	}
	var vals [5]float64
	for i := range vals {
		v, err := klineFloat(row[i+1])
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return model.OHLCV{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func klineInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func klineFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case string:
		return strconv.ParseFloat(n, 64)
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
