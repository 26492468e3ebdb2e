package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is one observation of an asset's price.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// FeedKind identifies the upstream shape a RawFeed was decoded from.
type FeedKind string

const (
	FeedPairs   FeedKind = "PAIRS"   // [timestamp, price] pairs
	FeedCandles FeedKind = "CANDLES" // OHLC candles, close price is used
)

// RawFeed is a price feed as returned by a price source, before normalisation.
type RawFeed struct {
	Symbol  string
	Source  string
	Kind    FeedKind
	Pairs   []PricePoint
	Candles []OHLCV
}

// Len returns the number of entries in the feed regardless of its kind.
func (f *RawFeed) Len() int {
	if f == nil {
		return 0
	}
	if f.Kind == FeedCandles {
		return len(f.Candles)
	}
	return len(f.Pairs)
}

// PriceSeries is the canonical, strictly time-ordered price history for one asset.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Prices returns the price column of the series.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Latest returns the most recent point. ok is false for an empty series.
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
