package indicator

import (
	"math"

	"github.com/markcheno/go-talib"

	"StockScan/internal/config"
	"StockScan/internal/model"
)

// Engine derives indicator rows from raw bars. Numerics follow the TA-Lib
// conventions backing the computations: simple-average EMA seeding and
// population standard deviation for the bands. Each output's lookback
// region is NaN, never zero.
type Engine struct {
	cfg config.IndicatorConfig
}

func NewEngine(cfg config.IndicatorConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Compute returns one IndicatorRow per bar. The input series is not modified.
func (e *Engine) Compute(bars model.PriceSeries) []model.IndicatorRow {
	n := len(bars)
	rows := make([]model.IndicatorRow, n)
	for i := range rows {
		rows[i].PriceBar = bars[i]
	}
	if n == 0 {
		return rows
	}

	cfg := e.cfg
	closes := bars.Closes()
	highs := bars.Highs()
	lows := bars.Lows()

	maShort := smaSeries(closes, cfg.MAShort)
	maMid := smaSeries(closes, cfg.MAMid)
	maLong := smaSeries(closes, cfg.MALong)
	macd, macdSig, macdHist := macdSeries(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	rsiShort := rsiSeries(closes, cfg.RSIShort)
	rsiLong := rsiSeries(closes, cfg.RSILong)
	rciShort := rci(closes, cfg.RCIShort)
	rciLong := rci(closes, cfg.RCILong)
	upper, middle, lower := bbandsSeries(closes, cfg.BBPeriod, cfg.BBStdDev)

	width := make([]float64, n)
	percentB := make([]float64, n)
	for i := 0; i < n; i++ {
		width[i] = upper[i] - lower[i]
		if width[i] == 0 || math.IsNaN(width[i]) {
			percentB[i] = math.NaN()
		} else {
			percentB[i] = (closes[i] - lower[i]) / width[i]
		}
	}
	widthMA := rollingMean(width, cfg.BBPeriod)

	lines := computeIchimoku(highs, lows, closes,
		cfg.IchimokuTenkan, cfg.IchimokuKijun, cfg.IchimokuSenkouB, cfg.IchimokuDisplacement)
	disp := cfg.IchimokuDisplacement

	for i := 0; i < n; i++ {
		r := &rows[i]
		r.MAShort, r.MAMid, r.MALong = maShort[i], maMid[i], maLong[i]
		r.MACD, r.MACDSignal, r.MACDHist = macd[i], macdSig[i], macdHist[i]
		r.RSIShort, r.RSILong = rsiShort[i], rsiLong[i]
		r.RCIShort, r.RCILong = rciShort[i], rciLong[i]

		// NaN comparisons are false, so undefined windows stay unflagged.
		r.RCIShortOverbought = rciShort[i] > 80
		r.RCIShortOversold = rciShort[i] < -80
		r.RCILongOverbought = rciLong[i] > 80
		r.RCILongOversold = rciLong[i] < -80

		r.BBUpper, r.BBMiddle, r.BBLower = upper[i], middle[i], lower[i]
		r.BBWidth, r.BBPercentB = width[i], percentB[i]
		if !math.IsNaN(upper[i]) && !math.IsNaN(lower[i]) {
			r.BBAboveUpper = closes[i] > upper[i]
			r.BBBelowLower = closes[i] < lower[i]
			r.BBInBand = !r.BBAboveUpper && !r.BBBelowLower
		}
		if !math.IsNaN(width[i]) && !math.IsNaN(widthMA[i]) {
			r.BBSqueeze = width[i] < cfg.BBSqueezeRatio*widthMA[i]
		}

		r.Tenkan, r.Kijun = lines.tenkan[i], lines.kijun[i]
		r.SenkouA, r.SenkouB = lines.senkouA[i], lines.senkouB[i]
		r.Chikou = lines.chikou[i]

		if !math.IsNaN(r.SenkouA) && !math.IsNaN(r.SenkouB) {
			top := math.Max(r.SenkouA, r.SenkouB)
			bottom := math.Min(r.SenkouA, r.SenkouB)
			switch {
			case closes[i] > top:
				r.AboveCloud = true
			case closes[i] < bottom:
				r.BelowCloud = true
			default:
				r.InCloud = true
			}
		}
		if !math.IsNaN(r.Tenkan) && !math.IsNaN(r.Kijun) {
			r.TenkanAboveKijun = r.Tenkan > r.Kijun
			r.TenkanBelowKijun = r.Tenkan < r.Kijun
		}
		if i >= disp {
			// The lagging span plotted at i-disp carries close[i]; its
			// reference price is the close disp bars back from here.
			r.ChikouAbovePrice = closes[i] > closes[i-disp]
			r.ChikouBelowPrice = closes[i] < closes[i-disp]
		}
		r.SanyakuBullish = r.AboveCloud && r.ChikouAbovePrice && r.TenkanAboveKijun
		r.SanyakuBearish = r.BelowCloud && r.ChikouBelowPrice && r.TenkanBelowKijun
	}
	return rows
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// maskLookback overwrites the warm-up region with NaN. TA-Lib fills it
// with zeros, which would read as fabricated prices downstream.
func maskLookback(vals []float64, lookback int) []float64 {
	for i := 0; i < lookback && i < len(vals); i++ {
		vals[i] = math.NaN()
	}
	return vals
}

func smaSeries(vals []float64, period int) []float64 {
	if period < 1 || len(vals) < period {
		return nanSlice(len(vals))
	}
	return maskLookback(talib.Sma(vals, period), period-1)
}

func rsiSeries(vals []float64, period int) []float64 {
	if period < 1 || len(vals) <= period {
		return nanSlice(len(vals))
	}
	return maskLookback(talib.Rsi(vals, period), period)
}

func macdSeries(vals []float64, fast, slow, signal int) (m, s, h []float64) {
	lookback := slow + signal - 2
	if len(vals) < slow+signal {
		return nanSlice(len(vals)), nanSlice(len(vals)), nanSlice(len(vals))
	}
	m, s, h = talib.Macd(vals, fast, slow, signal)
	return maskLookback(m, lookback), maskLookback(s, lookback), maskLookback(h, lookback)
}

func bbandsSeries(vals []float64, period int, dev float64) (u, m, l []float64) {
	if period < 2 || len(vals) < period {
		return nanSlice(len(vals)), nanSlice(len(vals)), nanSlice(len(vals))
	}
	u, m, l = talib.BBands(vals, period, dev, dev, talib.SMA)
	return maskLookback(u, period-1), maskLookback(m, period-1), maskLookback(l, period-1)
}

// rollingMean is a NaN-aware window mean: a window containing NaN stays
// NaN instead of poisoning every later window the way a running-total
// implementation would.
func rollingMean(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period < 1 || len(vals) < period {
		return out
	}
	for i := period - 1; i < len(vals); i++ {
		win := vals[i-period+1 : i+1]
		if hasNaN(win) {
			continue
		}
		sum := 0.0
		for _, v := range win {
			sum += v
		}
		out[i] = sum / float64(period)
	}
	return out
}
