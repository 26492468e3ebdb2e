package collector

import (
	"errors"
	"math"
	"testing"
	"time"

	"SignalSentinel/internal/model"
)

func at0(h int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(h) * time.Hour)
}

func TestNormalize_Candles(t *testing.T) {
	raw := &model.RawFeed{
		Symbol: "bitcoin",
		Kind:   model.FeedCandles,
		Candles: []model.OHLCV{
			{Time: at0(2), Close: 102},
			{Time: at0(0), Close: 100},
			{Time: at0(1), Close: 101},
		},
	}
	series, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Symbol != "bitcoin" {
		t.Errorf("unexpected symbol %q", series.Symbol)
	}
	want := []float64{100, 101, 102}
	got := series.Prices()
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestNormalize_PairsStrictlyIncreasing(t *testing.T) {
	raw := &model.RawFeed{
		Symbol: "eth",
		Kind:   model.FeedPairs,
		Pairs: []model.PricePoint{
			{Time: at0(0), Price: 10},
			{Time: at0(1), Price: 11},
			{Time: at0(1), Price: 12},
			{Time: at0(2), Price: -1},
			{Time: at0(3), Price: math.NaN()},
			{Time: at0(4), Price: 14},
		},
	}
	series, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Points) != 3 {
		t.Fatalf("expected 3 points, got %d: %+v", len(series.Points), series.Points)
	}
	for i := 1; i < len(series.Points); i++ {
		if !series.Points[i].Time.After(series.Points[i-1].Time) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
	if series.Points[1].Price != 12 {
		t.Errorf("expected duplicate timestamp to keep last entry, got %f", series.Points[1].Price)
	}
}

func TestNormalize_EmptyFeed(t *testing.T) {
	cases := []*model.RawFeed{
		nil,
		{Symbol: "x", Kind: model.FeedPairs},
		{Symbol: "x", Kind: model.FeedCandles},
		{Symbol: "x", Kind: model.FeedPairs, Pairs: []model.PricePoint{{Time: at0(0), Price: 0}}},
	}
	for i, raw := range cases {
		_, err := Normalize(raw)
		if !errors.Is(err, ErrEmptyFeed) {
			t.Errorf("case %d: expected ErrEmptyFeed, got %v", i, err)
		}
		var nerr *NormalizationError
		if !errors.As(err, &nerr) {
			t.Errorf("case %d: expected *NormalizationError, got %T", i, err)
		}
	}
}

func TestResolveTicker(t *testing.T) {
	tickers := map[string]string{"bitcoin": "BTCUSDT"}
	got, err := ResolveTicker(tickers, "Bitcoin")
	if err != nil || got != "BTCUSDT" {
		t.Fatalf("expected BTCUSDT, got %q, %v", got, err)
	}
	if _, err := ResolveTicker(tickers, "dogecoin"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
}
