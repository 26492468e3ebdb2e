package calculator

import (
	"errors"
	"fmt"
)

// MACDResult carries the last MACD line and signal line values.
type MACDResult struct {
	Line      float64
	HasLine   bool
	Signal    float64
	HasSignal bool
}

// CalculateMACD computes MACD(fast, slow, signal) and returns the last values.
// When the line is defined but the signal line is not, the partial result is
// returned together with ErrInsufficientHistory.
func CalculateMACD(prices []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACDResult{}, errors.New("periods must be positive")
	}
	if fast >= slow {
		return MACDResult{}, errors.New("fast period must be shorter than slow period")
	}
	if len(prices) < slow {
		return MACDResult{}, fmt.Errorf("macd(%d,%d) over %d prices: %w", fast, slow, len(prices), ErrInsufficientHistory)
	}

	fastEMA := EMASeries(prices, fast)
	slowEMA := EMASeries(prices, slow)

	line := make([]float64, 0, len(prices)-slow+1)
	for i := slow - 1; i < len(prices); i++ {
		line = append(line, fastEMA[i-fast+1]-slowEMA[i-slow+1])
	}

	res := MACDResult{Line: line[len(line)-1], HasLine: true}
	if len(prices) < slow+signal {
		return res, fmt.Errorf("macd signal(%d) over %d prices: %w", signal, len(prices), ErrInsufficientHistory)
	}
	sig := EMASeries(line, signal)
	res.Signal = sig[len(sig)-1]
	res.HasSignal = true
	return res, nil
}
