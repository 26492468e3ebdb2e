package calculator

import (
	"errors"

	"SignalSentinel/internal/model"
)

const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9

	// MinRSIHistory and MinMACDHistory are the warm-up windows of Compute.
	MinRSIHistory  = RSIPeriod + 1
	MinMACDHistory = MACDSlowPeriod + MACDSignalPeriod
)

// Compute derives RSI(14) and MACD(12,26,9) from the series and keeps only the
// last value of each. Undefined indicators are left unset in the snapshot and
// reported through ErrInsufficientHistory; any other error is a programming bug.
func Compute(series model.PriceSeries) (model.IndicatorSnapshot, error) {
	prices := series.Prices()
	var snap model.IndicatorSnapshot
	var errs []error

	if rsi, err := CalculateRSI(prices, RSIPeriod); err != nil {
		errs = append(errs, err)
	} else {
		snap.RSI, snap.HasRSI = rsi, true
	}

	res, err := CalculateMACD(prices, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	if err != nil {
		errs = append(errs, err)
	}
	snap.MACD, snap.HasMACD = res.Line, res.HasLine
	snap.MACDSignal, snap.HasSignal = res.Signal, res.HasSignal

	return snap, errors.Join(errs...)
}
