package model

// Signal is a categorical rule outcome for one bar.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = ""
)

// SignalRow is an IndicatorRow plus the outcome of each rule set.
// The rule sets are independent; all are evaluated against the same bar.
type SignalRow struct {
	IndicatorRow

	MACDRSI Signal
	MACDRCI Signal
	BBMACD  Signal
}

// Instrument is the static roster metadata for one ticker.
type Instrument struct {
	Ticker  string
	Company string
	Theme   string
}

// InstrumentSeries is one instrument's full classified history.
type InstrumentSeries struct {
	Instrument
	Rows []SignalRow
}

// Latest returns the most recent row, or nil when the series is empty.
func (s *InstrumentSeries) Latest() *SignalRow {
	return s.At(0)
}

// At returns the row offset bars before the latest (0 = latest), or nil
// when the series is too short.
func (s *InstrumentSeries) At(offset int) *SignalRow {
	i := len(s.Rows) - 1 - offset
	if i < 0 {
		return nil
	}
	return &s.Rows[i]
}
