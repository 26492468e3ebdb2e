package strategy

import (
	"math"

	"SignalSentinel/internal/model"
)

// Thresholds are the RSI levels that gate BUY and SELL signals.
type Thresholds struct {
	Oversold   float64
	Overbought float64
}

// DefaultThresholds is RSI < 30 for BUY and RSI > 70 for SELL.
var DefaultThresholds = Thresholds{Oversold: 30, Overbought: 70}

// Classifier turns an indicator snapshot into a signal. It holds no state
// between calls: the same crossing fires again on every cycle until it clears.
type Classifier struct {
	Thresholds Thresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{Thresholds: t}
}

// Classify applies the joint RSI + MACD rule. Undefined or non-finite inputs give SignalNone.
func (c *Classifier) Classify(snap model.IndicatorSnapshot, latestPrice float64) model.Signal {
	if !snap.Complete() || !finite(snap.RSI, snap.MACD, snap.MACDSignal, latestPrice) {
		return model.SignalNone
	}
	switch {
	case snap.RSI < c.Thresholds.Oversold && snap.MACD > snap.MACDSignal:
		return model.SignalBuy
	case snap.RSI > c.Thresholds.Overbought && snap.MACD < snap.MACDSignal:
		return model.SignalSell
	default:
		return model.SignalNone
	}
}

// Classify uses DefaultThresholds.
func Classify(snap model.IndicatorSnapshot, latestPrice float64) model.Signal {
	return (&Classifier{Thresholds: DefaultThresholds}).Classify(snap, latestPrice)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
