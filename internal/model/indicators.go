package model

// IndicatorSnapshot holds the last value of each indicator series for one asset.
// A value is only meaningful when its Has* flag is set.
type IndicatorSnapshot struct {
	RSI        float64
	HasRSI     bool
	MACD       float64
	HasMACD    bool
	MACDSignal float64
	HasSignal  bool
}

// Complete reports whether every indicator the classifier needs is defined.
func (s IndicatorSnapshot) Complete() bool {
	return s.HasRSI && s.HasMACD && s.HasSignal
}

// Bullish reports whether the MACD line sits above its signal line.
func (s IndicatorSnapshot) Bullish() bool {
	return s.HasMACD && s.HasSignal && s.MACD > s.MACDSignal
}
