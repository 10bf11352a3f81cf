package signal

import (
	"math"

	"StockScan/internal/config"
	"StockScan/internal/model"
)

// Classifier applies the three rule sets to a series of indicator rows.
// Each rule is evaluated independently per bar; a bar whose required
// inputs are NaN classifies as neutral, never as an error.
type Classifier struct {
	rsiBuyCeiling float64
	rsiSellFloor  float64
	rciLevel      float64
	rciShortGate  float64
	crossWindow   int
}

func NewClassifier(cfg config.RulesConfig) *Classifier {
	return &Classifier{
		rsiBuyCeiling: cfg.RSIBuyCeiling,
		rsiSellFloor:  cfg.RSISellFloor,
		rciLevel:      cfg.RCILevel,
		rciShortGate:  cfg.RCIShortGate,
		crossWindow:   cfg.CrossWindow,
	}
}

// Classify returns one SignalRow per input row.
func (c *Classifier) Classify(rows []model.IndicatorRow) []model.SignalRow {
	out := make([]model.SignalRow, len(rows))
	for i := range rows {
		out[i].IndicatorRow = rows[i]
		out[i].MACDRSI = c.macdRSI(&rows[i])
		out[i].MACDRCI = c.macdRCI(rows, i)
		out[i].BBMACD = c.bbMACD(rows, i)
	}
	return out
}

// macdRSI requires momentum and both RSI windows to agree. The asymmetric
// thresholds are intentional: a buy needs the long RSI still cool, a sell
// needs it still hot.
func (c *Classifier) macdRSI(r *model.IndicatorRow) model.Signal {
	if anyNaN(r.MACD, r.MACDSignal, r.RSIShort, r.RSILong) {
		return model.SignalNone
	}
	if r.MACD > r.MACDSignal && r.RSIShort > r.RSILong && r.RSILong <= c.rsiBuyCeiling {
		return model.SignalBuy
	}
	if r.MACD < r.MACDSignal && r.RSIShort < r.RSILong && r.RSILong >= c.rsiSellFloor {
		return model.SignalSell
	}
	return model.SignalNone
}

// macdRCI looks for a consecutive-pair cross of the long RCI through the
// oversold (buy) or overbought (sell) level within the trailing window,
// confirmed by current MACD momentum and the short RCI gate.
func (c *Classifier) macdRCI(rows []model.IndicatorRow, i int) model.Signal {
	if i < c.crossWindow-1 {
		return model.SignalNone
	}
	cur := &rows[i]
	if anyNaN(cur.MACD, cur.MACDSignal, cur.RCIShort) {
		return model.SignalNone
	}

	crossedUp, crossedDown := false, false
	for j := i - c.crossWindow + 1; j < i; j++ {
		a, b := rows[j].RCILong, rows[j+1].RCILong
		if anyNaN(a, b) {
			continue
		}
		if a <= -c.rciLevel && b > -c.rciLevel {
			crossedUp = true
		}
		if a >= c.rciLevel && b < c.rciLevel {
			crossedDown = true
		}
	}

	if crossedUp && cur.MACD > cur.MACDSignal && cur.RCIShort >= c.rciShortGate {
		return model.SignalBuy
	}
	if crossedDown && cur.MACD < cur.MACDSignal && cur.RCIShort <= -c.rciShortGate {
		return model.SignalSell
	}
	return model.SignalNone
}

// bbMACD pairs the middle-band side with a MACD crossover detected at up
// to a two-bar lag: momentum positive now, negative two sessions back.
func (c *Classifier) bbMACD(rows []model.IndicatorRow, i int) model.Signal {
	if i < 2 {
		return model.SignalNone
	}
	cur := &rows[i]
	prev2 := &rows[i-2]
	if anyNaN(cur.Close, cur.BBMiddle, cur.MACD, cur.MACDSignal, prev2.MACD, prev2.MACDSignal) {
		return model.SignalNone
	}
	if cur.Close > cur.BBMiddle && cur.MACD > cur.MACDSignal && prev2.MACD < prev2.MACDSignal {
		return model.SignalBuy
	}
	if cur.Close < cur.BBMiddle && cur.MACD < cur.MACDSignal && prev2.MACD > prev2.MACDSignal {
		return model.SignalSell
	}
	return model.SignalNone
}

func anyNaN(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
