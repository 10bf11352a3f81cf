package indicator

import (
	"math"
	"testing"

	"StockScan/internal/config"
	"StockScan/internal/model"
)

func testConfig() config.IndicatorConfig {
	return config.IndicatorConfig{
		MAShort: 5, MAMid: 25, MALong: 75,
		MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		RSIShort: 9, RSILong: 14,
		RCIShort: 9, RCILong: 26,
		BBPeriod: 20, BBStdDev: 2.0, BBSqueezeRatio: 0.8,
		IchimokuTenkan: 9, IchimokuKijun: 26, IchimokuSenkouB: 52, IchimokuDisplacement: 26,
	}
}

func barsFromCloses(closes []float64) model.PriceSeries {
	bars := make(model.PriceSeries, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{Open: c, High: c, Low: c, Close: c, Volume: 500000}
	}
	return bars
}

func ascendingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCompute_MovingAverages(t *testing.T) {
	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(ascendingCloses(120)))

	if !math.IsNaN(rows[3].MAShort) {
		t.Errorf("MAShort warm-up should be NaN, got %v", rows[3].MAShort)
	}
	// mean of closes 1..5
	if !approx(rows[4].MAShort, 3, 1e-9) {
		t.Errorf("MAShort at first defined bar: expected 3, got %v", rows[4].MAShort)
	}
	if !approx(rows[100].MAShort, 99, 1e-9) {
		t.Errorf("MAShort at bar 100: expected 99, got %v", rows[100].MAShort)
	}
	if !math.IsNaN(rows[73].MALong) {
		t.Errorf("MALong warm-up should be NaN, got %v", rows[73].MALong)
	}
	// mean of closes 1..75
	if !approx(rows[74].MALong, 38, 1e-9) {
		t.Errorf("MALong at first defined bar: expected 38, got %v", rows[74].MALong)
	}
}

func TestCompute_MACDLookback(t *testing.T) {
	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(ascendingCloses(120)))

	// 26 + 9 - 2 bars of warm-up for the 12/26/9 setup
	for i := 0; i <= 32; i++ {
		if !math.IsNaN(rows[i].MACD) || !math.IsNaN(rows[i].MACDSignal) {
			t.Fatalf("bar %d: MACD warm-up should be NaN", i)
		}
	}
	r := rows[33]
	if math.IsNaN(r.MACD) || math.IsNaN(r.MACDSignal) || math.IsNaN(r.MACDHist) {
		t.Fatal("bar 33: MACD should be defined")
	}
	if r.MACD <= 0 {
		t.Errorf("rising series should have positive MACD, got %v", r.MACD)
	}
	if !approx(r.MACDHist, r.MACD-r.MACDSignal, 1e-9) {
		t.Errorf("histogram should be MACD minus signal, got %v", r.MACDHist)
	}
}

func TestCompute_RSI(t *testing.T) {
	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(ascendingCloses(120)))

	if !math.IsNaN(rows[8].RSIShort) {
		t.Errorf("RSIShort warm-up should be NaN, got %v", rows[8].RSIShort)
	}
	for i := 9; i < len(rows); i++ {
		v := rows[i].RSIShort
		if math.IsNaN(v) {
			t.Fatalf("bar %d: RSIShort should be defined", i)
		}
		if v < 0 || v > 100 {
			t.Fatalf("bar %d: RSIShort out of range: %v", i, v)
		}
	}
	// a strictly rising series has no losses
	if !approx(rows[30].RSIShort, 100, 1e-6) {
		t.Errorf("all-gain series should score RSI 100, got %v", rows[30].RSIShort)
	}
}

func TestCompute_BollingerPercentB(t *testing.T) {
	// 18 alternating closes around 100 plus two exact 100s: the window
	// mean is 100 and the final close sits on the middle band.
	closes := make([]float64, 0, 20)
	for i := 0; i < 9; i++ {
		closes = append(closes, 98, 102)
	}
	closes = append(closes, 100, 100)

	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(closes))

	last := rows[len(rows)-1]
	if !approx(last.BBMiddle, 100, 1e-9) {
		t.Errorf("middle band should be the window mean, got %v", last.BBMiddle)
	}
	if !approx(last.BBPercentB, 0.5, 1e-9) {
		t.Errorf("close on the middle band should score %%B 0.5, got %v", last.BBPercentB)
	}
	if !last.BBInBand {
		t.Error("close between the bands should flag in-band")
	}
}

func TestCompute_FlatSeriesBands(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(closes))

	last := rows[len(rows)-1]
	if !approx(last.BBWidth, 0, 1e-9) {
		t.Errorf("flat series should have zero band width, got %v", last.BBWidth)
	}
	if !math.IsNaN(last.BBPercentB) {
		t.Errorf("zero-width bands should leave %%B undefined, got %v", last.BBPercentB)
	}
}

func TestCompute_ShortSeries(t *testing.T) {
	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(ascendingCloses(10)))

	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	last := rows[9]
	if !math.IsNaN(last.MACD) || !math.IsNaN(last.MALong) || !math.IsNaN(last.RCILong) {
		t.Error("indicators needing more history than supplied should stay NaN")
	}
	// ten closes is exactly enough for one 9-period RSI value
	if math.IsNaN(last.RSIShort) {
		t.Error("RSIShort should be defined on the final bar")
	}
	if !math.IsNaN(rows[8].RSIShort) {
		t.Errorf("RSIShort warm-up should be NaN, got %v", rows[8].RSIShort)
	}
}

func TestCompute_RCIFlags(t *testing.T) {
	e := NewEngine(testConfig())
	rows := e.Compute(barsFromCloses(ascendingCloses(40)))

	last := rows[39]
	if !approx(last.RCIShort, 100, 1e-9) {
		t.Errorf("rising series should score RCI +100, got %v", last.RCIShort)
	}
	if !last.RCIShortOverbought || last.RCIShortOversold {
		t.Error("RCI +100 should flag overbought only")
	}
}
