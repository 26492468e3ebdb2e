package collector

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"SignalSentinel/internal/model"
)

var (
	ErrEmptyFeed     = errors.New("empty feed")
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// NormalizationError reports why a raw feed could not become a PriceSeries.
// Kind is ErrEmptyFeed or ErrUnknownSymbol.
type NormalizationError struct {
	Kind   error
	Symbol string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %v", e.Symbol, e.Kind)
}

func (e *NormalizationError) Unwrap() error { return e.Kind }

// ResolveTicker maps an internal asset name to an upstream ticker. Lookup is case-insensitive.
func ResolveTicker(tickers map[string]string, symbol string) (string, error) {
	if t, ok := tickers[strings.ToLower(symbol)]; ok && t != "" {
		return t, nil
	}
	return "", &NormalizationError{Kind: ErrUnknownSymbol, Symbol: symbol}
}

// Normalize converts a raw feed into a strictly time-ordered series of positive prices.
// Candle feeds contribute their close price at the candle's open time.
func Normalize(raw *model.RawFeed) (model.PriceSeries, error) {
	if raw == nil {
		return model.PriceSeries{}, &NormalizationError{Kind: ErrEmptyFeed}
	}

	var points []model.PricePoint
	switch raw.Kind {
	case model.FeedCandles:
		points = make([]model.PricePoint, 0, len(raw.Candles))
		for _, c := range raw.Candles {
			points = append(points, model.PricePoint{Time: c.Time, Price: c.Close})
		}
	default:
		points = make([]model.PricePoint, 0, len(raw.Pairs))
		points = append(points, raw.Pairs...)
	}

	valid := points[:0]
	for _, p := range points {
		if p.Price > 0 && !math.IsInf(p.Price, 0) && !p.Time.IsZero() {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return model.PriceSeries{}, &NormalizationError{Kind: ErrEmptyFeed, Symbol: raw.Symbol}
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Time.Before(valid[j].Time) })

	// Duplicate timestamps keep the entry that came last in the feed.
	out := make([]model.PricePoint, 0, len(valid))
	for _, p := range valid {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return model.PriceSeries{Symbol: raw.Symbol, Points: out}, nil
}
