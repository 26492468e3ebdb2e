package calculator

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory is returned when a series is shorter than an indicator's warm-up window.
var ErrInsufficientHistory = errors.New("insufficient history")

// CalculateSMA computes the simple moving average of the last `period` prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma(%d) over %d prices: %w", period, len(prices), ErrInsufficientHistory)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// EMASeries returns the exponential moving average of values with smoothing 2/(period+1).
// The first element is the simple average of values[:period]; element i of the result
// lines up with values[period-1+i]. Returns nil when there are fewer than period values.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	seed, _ := CalculateSMA(values[:period], period)
	k := 2.0 / float64(period+1)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)
	prev := seed
	for i := period; i < len(values); i++ {
		prev = prev + k*(values[i]-prev)
		out = append(out, prev)
	}
	return out
}
