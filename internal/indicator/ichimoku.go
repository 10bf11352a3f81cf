package indicator

type ichimokuLines struct {
	tenkan  []float64
	kijun   []float64
	senkouA []float64
	senkouB []float64
	chikou  []float64
}

// computeIchimoku builds the five lines. Senkou spans computed at bar i are
// stored at i+displacement; projections past the end of the series are
// dropped rather than overrunning. The Chikou span stores close[i] at
// i-displacement. All positions without a value stay NaN.
func computeIchimoku(highs, lows, closes []float64, tenkanP, kijunP, senkouBP, displacement int) ichimokuLines {
	n := len(closes)
	l := ichimokuLines{
		tenkan:  nanSlice(n),
		kijun:   nanSlice(n),
		senkouA: nanSlice(n),
		senkouB: nanSlice(n),
		chikou:  nanSlice(n),
	}

	for i := tenkanP - 1; i < n; i++ {
		l.tenkan[i] = midRange(highs, lows, tenkanP, i)
	}
	for i := kijunP - 1; i < n; i++ {
		l.kijun[i] = midRange(highs, lows, kijunP, i)
	}

	// Senkou A inherits NaN while either source line is undefined.
	for i := 0; i+displacement < n; i++ {
		l.senkouA[i+displacement] = (l.tenkan[i] + l.kijun[i]) / 2
	}
	for i := senkouBP - 1; i < n; i++ {
		if i+displacement < n {
			l.senkouB[i+displacement] = midRange(highs, lows, senkouBP, i)
		}
	}
	for i := displacement; i < n; i++ {
		l.chikou[i-displacement] = closes[i]
	}
	return l
}

// midRange is (highest high + lowest low) / 2 over the window ending at i.
func midRange(highs, lows []float64, period, i int) float64 {
	hi := highs[i-period+1]
	lo := lows[i-period+1]
	for j := i - period + 2; j <= i; j++ {
		if highs[j] > hi {
			hi = highs[j]
		}
		if lows[j] < lo {
			lo = lows[j]
		}
	}
	return (hi + lo) / 2
}
