package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"SignalSentinel/internal/model"
)

const floatDelta = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatDelta
}

func seriesOf(prices []float64) model.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = model.PricePoint{Time: start.Add(time.Duration(i) * time.Hour), Price: p}
	}
	return model.PriceSeries{Symbol: "TEST", Points: pts}
}

func flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 4) {
		t.Errorf("expected 4, got %f", got)
	}
	if _, err := CalculateSMA([]float64{1, 2}, 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestEMASeries_SeedThenRecurse(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10}
	ema := EMASeries(values, 3)
	if len(ema) != 3 {
		t.Fatalf("expected 3 values, got %d", len(ema))
	}
	// seed = (2+4+6)/3 = 4, k = 0.5
	want := []float64{4, 6, 8}
	for i := range want {
		if !floatEquals(ema[i], want[i]) {
			t.Errorf("ema[%d]: expected %f, got %f", i, want[i], ema[i])
		}
	}
	if EMASeries(values, 6) != nil {
		t.Error("expected nil for short input")
	}
}

func TestCalculateRSI_WarmUp(t *testing.T) {
	for n := 0; n < MinRSIHistory; n++ {
		if _, err := CalculateRSI(ramp(n, 100, 1), RSIPeriod); !errors.Is(err, ErrInsufficientHistory) {
			t.Fatalf("n=%d: expected ErrInsufficientHistory, got %v", n, err)
		}
	}
	if _, err := CalculateRSI(ramp(MinRSIHistory, 100, 1), RSIPeriod); err != nil {
		t.Fatalf("expected RSI defined at %d prices: %v", MinRSIHistory, err)
	}
}

func TestCalculateRSI_NoLosses(t *testing.T) {
	rsi, err := CalculateRSI(ramp(40, 100, 1), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("expected 100 with zero average loss, got %f", rsi)
	}
}

func TestCalculateRSI_NoGains(t *testing.T) {
	rsi, err := CalculateRSI(ramp(40, 200, -1), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(rsi, 0) {
		t.Errorf("expected 0 with zero average gain, got %f", rsi)
	}
}

func TestCalculateRSI_AlternatingStaysNear50(t *testing.T) {
	prices := make([]float64, 101)
	for i := range prices {
		prices[i] = 100 + float64(i%2)
	}
	rsi, err := CalculateRSI(prices, RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rsi-50) > 5 {
		t.Errorf("expected RSI near 50 for alternating series, got %f", rsi)
	}
}

func TestCalculateRSI_Bounds(t *testing.T) {
	prices := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.2, 45.6, 46.3, 46.3, 46.0, 46.4, 46.2, 45.6, 46.2}
	rsi, err := CalculateRSI(prices, RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi < 0 || rsi > 100 {
		t.Errorf("rsi out of range: %f", rsi)
	}
}

func TestCalculateMACD_FlatSeriesIsZero(t *testing.T) {
	res, err := CalculateMACD(flat(200, 42), MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Line) > 1e-9 || math.Abs(res.Signal) > 1e-9 {
		t.Errorf("expected flat series to give zero macd/signal, got %f/%f", res.Line, res.Signal)
	}
}

func TestCalculateMACD_WarmUp(t *testing.T) {
	res, err := CalculateMACD(ramp(MACDSlowPeriod-1, 100, 1), MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if !errors.Is(err, ErrInsufficientHistory) || res.HasLine {
		t.Fatalf("expected undefined line below %d prices, got %+v, %v", MACDSlowPeriod, res, err)
	}

	res, err = CalculateMACD(ramp(MinMACDHistory-1, 100, 1), MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
	if !res.HasLine || res.HasSignal {
		t.Fatalf("expected line only, got %+v", res)
	}

	res, err = CalculateMACD(ramp(MinMACDHistory, 100, 1), MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if err != nil || !res.HasSignal {
		t.Fatalf("expected full macd at %d prices, got %+v, %v", MinMACDHistory, res, err)
	}
}

func TestCalculateMACD_Uptrend(t *testing.T) {
	res, err := CalculateMACD(ramp(100, 100, 1), MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Line <= 0 {
		t.Errorf("expected positive macd in steady uptrend, got %f", res.Line)
	}
}

func TestCalculateMACD_InvalidPeriods(t *testing.T) {
	if _, err := CalculateMACD(ramp(100, 1, 1), 26, 12, 9); err == nil {
		t.Error("expected error when fast >= slow")
	}
	if _, err := CalculateMACD(ramp(100, 1, 1), 0, 26, 9); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCompute_ShortSeriesUndefined(t *testing.T) {
	snap, err := Compute(seriesOf(ramp(10, 100, 1)))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
	if snap.HasRSI || snap.HasMACD || snap.HasSignal || snap.Complete() {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}

	snap, err = Compute(seriesOf(ramp(20, 100, 1)))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
	if !snap.HasRSI || snap.HasSignal {
		t.Errorf("expected rsi only, got %+v", snap)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	prices := make([]float64, 300)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/7)
	}
	series := seriesOf(prices)
	a, errA := Compute(series)
	b, errB := Compute(series)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("expected identical snapshots, got %+v and %+v", a, b)
	}
	if !a.Complete() {
		t.Errorf("expected complete snapshot, got %+v", a)
	}
}
