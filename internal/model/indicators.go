package model

// IndicatorRow is one bar plus every derived indicator value for that bar.
// Any numeric field whose trailing window is not yet filled is NaN, never 0.
// Boolean flags are false whenever their inputs are NaN.
type IndicatorRow struct {
	PriceBar

	// Simple moving averages over the configured short/mid/long windows.
	MAShort float64
	MAMid   float64
	MALong  float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	RSIShort float64
	RSILong  float64

	RCIShort float64
	RCILong  float64

	RCIShortOverbought bool
	RCIShortOversold   bool
	RCILongOverbought  bool
	RCILongOversold    bool

	BBUpper    float64
	BBMiddle   float64
	BBLower    float64
	BBWidth    float64
	BBPercentB float64

	BBAboveUpper bool
	BBBelowLower bool
	BBInBand     bool
	BBSqueeze    bool

	Tenkan  float64
	Kijun   float64
	SenkouA float64
	SenkouB float64
	Chikou  float64

	AboveCloud bool
	BelowCloud bool
	InCloud    bool

	TenkanAboveKijun bool
	TenkanBelowKijun bool

	// Lagging-span comparison, stored on the bar it gates (the close
	// displacement bars back is the reference price).
	ChikouAbovePrice bool
	ChikouBelowPrice bool

	// Standing three-phase alignment states.
	SanyakuBullish bool
	SanyakuBearish bool
}

// CloudStatus renders the cloud position as a stable token for CSV output.
func (r *IndicatorRow) CloudStatus() string {
	switch {
	case r.AboveCloud:
		return "ABOVE"
	case r.BelowCloud:
		return "BELOW"
	case r.InCloud:
		return "IN"
	default:
		return ""
	}
}

// SanyakuStatus renders the standing three-phase state for CSV output.
func (r *IndicatorRow) SanyakuStatus() string {
	switch {
	case r.SanyakuBullish:
		return "BULLISH"
	case r.SanyakuBearish:
		return "BEARISH"
	default:
		return ""
	}
}
