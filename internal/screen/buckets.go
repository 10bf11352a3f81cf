package screen

import (
	"math"

	"StockScan/internal/model"
	"StockScan/internal/store"
)

func sideSuffix(side model.Signal) string {
	if side == model.SignalBuy {
		return "buy"
	}
	return "sell"
}

func macdRSITable(side model.Signal) bucketSpec {
	return bucketSpec{
		name:    "macd_rsi_signal_result_" + sideSuffix(side),
		columns: metaColumns("MACD", "MACDSignal", "RSIShort", "RSILong"),
		preds: []Predicate{
			hasLatest,
			func(s *model.InstrumentSeries) bool { return s.Latest().MACDRSI == side },
			wickFilter(side),
		},
		project: func(s *model.InstrumentSeries) Hit {
			r := s.Latest()
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, r,
				store.FormatNumber(r.MACD), store.FormatNumber(r.MACDSignal),
				store.FormatNumber(r.RSIShort), store.FormatNumber(r.RSILong))}
		},
	}
}

func macdRCITable(side model.Signal) bucketSpec {
	return bucketSpec{
		name:    "macd_rci_signal_result_" + sideSuffix(side),
		columns: metaColumns("MACD", "MACDSignal", "RCIShort", "RCILong"),
		preds: []Predicate{
			hasLatest,
			func(s *model.InstrumentSeries) bool { return s.Latest().MACDRCI == side },
			wickFilter(side),
		},
		project: func(s *model.InstrumentSeries) Hit {
			r := s.Latest()
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, r,
				store.FormatNumber(r.MACD), store.FormatNumber(r.MACDSignal),
				store.FormatNumber(r.RCIShort), store.FormatNumber(r.RCILong))}
		},
	}
}

func bbMACDTable(side model.Signal) bucketSpec {
	return bucketSpec{
		name:    "macd_bb_signal_result_" + sideSuffix(side),
		columns: metaColumns("BBMiddle", "BBUpper", "BBLower", "MACD", "MACDSignal"),
		preds: []Predicate{
			hasLatest,
			func(s *model.InstrumentSeries) bool { return s.Latest().BBMACD == side },
			wickFilter(side),
		},
		project: func(s *model.InstrumentSeries) Hit {
			r := s.Latest()
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, r,
				store.FormatNumber(r.BBMiddle), store.FormatNumber(r.BBUpper),
				store.FormatNumber(r.BBLower),
				store.FormatNumber(r.MACD), store.FormatNumber(r.MACDSignal))}
		},
	}
}

// dualTable admits instruments where the MACD+RSI and MACD+RCI rules
// agree on the same side.
func dualTable(side model.Signal) bucketSpec {
	return bucketSpec{
		name:    "macd_rsi_rci_signal_result_" + sideSuffix(side),
		columns: metaColumns("MACD", "MACDSignal", "RSIShort", "RSILong", "RCIShort", "RCILong"),
		preds: []Predicate{
			hasLatest,
			func(s *model.InstrumentSeries) bool {
				r := s.Latest()
				return r.MACDRSI == side && r.MACDRCI == side
			},
			wickFilter(side),
		},
		project: func(s *model.InstrumentSeries) Hit {
			r := s.Latest()
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, r,
				store.FormatNumber(r.MACD), store.FormatNumber(r.MACDSignal),
				store.FormatNumber(r.RSIShort), store.FormatNumber(r.RSILong),
				store.FormatNumber(r.RCIShort), store.FormatNumber(r.RCILong))}
		},
	}
}

// strongTrend requires a full MA alignment, the close on the trend side
// of the short MA, a volume floor, and a short/mid gap that widened
// against the previous bar. Ranked by the gap as a share of price.
func (sc *Screener) strongTrend(bull bool) bucketSpec {
	name := "strong_buying_trend"
	if !bull {
		name = "strong_selling_trend"
	}
	pred := func(s *model.InstrumentSeries) bool {
		cur, prev := s.Latest(), s.At(1)
		if cur == nil || prev == nil {
			return false
		}
		if anyNaN(cur.MAShort, cur.MAMid, cur.MALong, prev.MAShort, prev.MAMid) {
			return false
		}
		if cur.Volume < sc.cfg.VolumeMin {
			return false
		}
		if bull {
			return cur.MAShort > cur.MAMid && cur.MAMid > cur.MALong &&
				cur.Close > cur.MAShort &&
				cur.MAShort-cur.MAMid > prev.MAShort-prev.MAMid
		}
		return cur.MAShort < cur.MAMid && cur.MAMid < cur.MALong &&
			cur.Close < cur.MAShort &&
			cur.MAMid-cur.MAShort > prev.MAMid-prev.MAShort
	}
	return bucketSpec{
		name:    name,
		columns: metaColumns("MAShort", "MAMid", "MALong", "Volume", "MADiffRatio"),
		preds:   []Predicate{pred},
		ranked:  true,
		project: func(s *model.InstrumentSeries) Hit {
			cur := s.Latest()
			diff := cur.MAShort - cur.MAMid
			if !bull {
				diff = cur.MAMid - cur.MAShort
			}
			ratio := 0.0
			if cur.Close != 0 {
				ratio = diff / cur.Close * 100
			}
			return Hit{Ticker: s.Ticker, rank: ratio, Cells: metaCells(s, cur,
				store.FormatNumber(cur.MAShort), store.FormatNumber(cur.MAMid),
				store.FormatNumber(cur.MALong), store.FormatVolume(cur.Volume),
				store.FormatNumber(ratio))}
		},
	}
}

// pullback looks for the short MA converging on a rising mid MA with the
// gap turning back in the bullish direction.
func (sc *Screener) pullback() bucketSpec {
	pred := func(s *model.InstrumentSeries) bool {
		cur, prev := s.Latest(), s.At(1)
		if cur == nil || prev == nil {
			return false
		}
		if anyNaN(cur.MAShort, cur.MAMid, prev.MAShort, prev.MAMid) {
			return false
		}
		if cur.Volume < sc.cfg.VolumeMin {
			return false
		}
		if math.Abs(cur.MAShort-cur.MAMid) > cur.Close*sc.cfg.PullbackGapPct/100 {
			return false
		}
		if cur.MAShort-cur.MAMid <= prev.MAShort-prev.MAMid {
			return false
		}
		if prev.MAMid <= 0 {
			return false
		}
		return (cur.MAMid-prev.MAMid)/prev.MAMid*100 >= sc.cfg.PullbackRisePct
	}
	return bucketSpec{
		name:    "push_mark",
		columns: metaColumns("MAShort", "MAMid", "GapPct", "MidRisePct", "Volume"),
		preds:   []Predicate{pred},
		project: func(s *model.InstrumentSeries) Hit {
			cur, prev := s.Latest(), s.At(1)
			gapPct := 0.0
			if cur.Close != 0 {
				gapPct = math.Abs(cur.MAShort-cur.MAMid) / cur.Close * 100
			}
			risePct := (cur.MAMid - prev.MAMid) / prev.MAMid * 100
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, cur,
				store.FormatNumber(cur.MAShort), store.FormatNumber(cur.MAMid),
				store.FormatNumber(gapPct), store.FormatNumber(risePct),
				store.FormatVolume(cur.Volume))}
		},
	}
}

// breakout admits closes at or above the prior window's maximum high,
// on a volume surge, with the close in the upper half of its own bar.
// The comparison window excludes the latest bar; the volume mean
// includes it.
func (sc *Screener) breakout() bucketSpec {
	stats := func(s *model.InstrumentSeries) (prevHigh, volRatio float64, ok bool) {
		n := len(s.Rows)
		lb := sc.cfg.BreakoutLookback
		if n < sc.cfg.BreakoutMinBars || n < lb+1 {
			return 0, 0, false
		}
		cur := &s.Rows[n-1]
		prevHigh = s.Rows[n-1-lb].High
		var volSum float64
		for i := n - 1 - lb; i < n; i++ {
			if i < n-1 && s.Rows[i].High > prevHigh {
				prevHigh = s.Rows[i].High
			}
			volSum += s.Rows[i].Volume
		}
		meanVol := volSum / float64(lb+1)
		if meanVol <= 0 {
			return 0, 0, false
		}
		volRatio = cur.Volume / meanVol
		return prevHigh, volRatio, true
	}
	pred := func(s *model.InstrumentSeries) bool {
		prevHigh, volRatio, ok := stats(s)
		if !ok {
			return false
		}
		cur := s.Latest()
		return cur.Close >= prevHigh &&
			volRatio > sc.cfg.BreakoutVolumeRatio &&
			cur.Volume >= sc.cfg.VolumeMin &&
			cur.Close > cur.Midpoint()
	}
	return bucketSpec{
		name:    "range_breakout",
		columns: metaColumns("PrevHigh", "VolumeRatio", "Volume"),
		preds:   []Predicate{pred},
		project: func(s *model.InstrumentSeries) Hit {
			prevHigh, volRatio, _ := stats(s)
			cur := s.Latest()
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, cur,
				store.FormatPrice(prevHigh), store.FormatNumber(volRatio),
				store.FormatVolume(cur.Volume))}
		},
	}
}

func goldenCross(prev, cur *model.SignalRow) bool {
	if anyNaN(prev.Tenkan, prev.Kijun, cur.Tenkan, cur.Kijun) {
		return false
	}
	return prev.Tenkan <= prev.Kijun && cur.Tenkan > cur.Kijun
}

func deadCross(prev, cur *model.SignalRow) bool {
	if anyNaN(prev.Tenkan, prev.Kijun, cur.Tenkan, cur.Kijun) {
		return false
	}
	return prev.Tenkan >= prev.Kijun && cur.Tenkan < cur.Kijun
}

// resistanceLevel is the nearer cloud edge: the lower edge when price is
// above the cloud, the upper edge when below, the span average inside.
func resistanceLevel(r *model.SignalRow) float64 {
	switch {
	case r.AboveCloud:
		return math.Min(r.SenkouA, r.SenkouB)
	case r.BelowCloud:
		return math.Max(r.SenkouA, r.SenkouB)
	case r.InCloud:
		return (r.SenkouA + r.SenkouB) / 2
	default:
		return math.NaN()
	}
}

// ichimokuCross buckets a fresh Tenkan/Kijun cross by direction and cloud
// position, gated by the lagging-span condition matching the direction.
func ichimokuCross(name string, golden, above bool) bucketSpec {
	pred := func(s *model.InstrumentSeries) bool {
		cur, prev := s.Latest(), s.At(1)
		if cur == nil || prev == nil {
			return false
		}
		if golden {
			if !goldenCross(prev, cur) || !cur.ChikouAbovePrice {
				return false
			}
		} else {
			if !deadCross(prev, cur) || !cur.ChikouBelowPrice {
				return false
			}
		}
		if above {
			return cur.AboveCloud
		}
		return cur.BelowCloud
	}
	return bucketSpec{
		name:    name,
		columns: metaColumns("Tenkan", "Kijun", "PrevTenkan", "PrevKijun", "Resistance"),
		preds:   []Predicate{pred},
		project: func(s *model.InstrumentSeries) Hit {
			cur, prev := s.Latest(), s.At(1)
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, cur,
				store.FormatNumber(cur.Tenkan), store.FormatNumber(cur.Kijun),
				store.FormatNumber(prev.Tenkan), store.FormatNumber(prev.Kijun),
				store.FormatNumber(resistanceLevel(cur)))}
		},
	}
}

// sanyakuOccurrence lists fresh three-phase alignments only: the standing
// state plus a same-bar Tenkan/Kijun cross in the matching direction.
func sanyakuOccurrence(bull bool) bucketSpec {
	name := "sanyaku_bullish"
	if !bull {
		name = "sanyaku_bearish"
	}
	pred := func(s *model.InstrumentSeries) bool {
		cur, prev := s.Latest(), s.At(1)
		if cur == nil || prev == nil {
			return false
		}
		if bull {
			return cur.SanyakuBullish && goldenCross(prev, cur)
		}
		return cur.SanyakuBearish && deadCross(prev, cur)
	}
	return bucketSpec{
		name:    name,
		columns: metaColumns("Tenkan", "Kijun", "Resistance"),
		preds:   []Predicate{pred},
		project: func(s *model.InstrumentSeries) Hit {
			cur := s.Latest()
			return Hit{Ticker: s.Ticker, Cells: metaCells(s, cur,
				store.FormatNumber(cur.Tenkan), store.FormatNumber(cur.Kijun),
				store.FormatNumber(resistanceLevel(cur)))}
		},
	}
}
