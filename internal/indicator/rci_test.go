package indicator

import (
	"math"
	"testing"
)

func TestRCI_MonotonicSeries(t *testing.T) {
	up := ascendingCloses(20)
	out := rci(up, 9)
	for i := 0; i < 8; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("bar %d: warm-up should be NaN, got %v", i, out[i])
		}
	}
	for i := 8; i < len(out); i++ {
		if !approx(out[i], 100, 1e-9) {
			t.Fatalf("bar %d: rising window should score +100, got %v", i, out[i])
		}
	}

	down := make([]float64, 20)
	for i := range down {
		down[i] = float64(20 - i)
	}
	out = rci(down, 9)
	if !approx(out[19], -100, 1e-9) {
		t.Errorf("falling window should score -100, got %v", out[19])
	}
}

func TestRCI_Bounds(t *testing.T) {
	closes := []float64{5, 9, 2, 7, 4, 8, 1, 6, 3, 10, 5, 7, 2, 9}
	out := rci(closes, 9)
	for i := 8; i < len(out); i++ {
		if out[i] < -100 || out[i] > 100 {
			t.Fatalf("bar %d: RCI out of range: %v", i, out[i])
		}
	}
}

func TestRCI_WindowWithNaN(t *testing.T) {
	closes := ascendingCloses(14)
	closes[3] = math.NaN()
	out := rci(closes, 9)
	// windows covering the NaN close stay undefined
	for i := 8; i <= 13; i++ {
		defined := !math.IsNaN(out[i])
		covers := i-8 <= 3
		if covers && defined {
			t.Fatalf("bar %d: window containing NaN should stay NaN, got %v", i, out[i])
		}
		if !covers && !defined {
			t.Fatalf("bar %d: window past the NaN should be defined", i)
		}
	}
}

func TestRCI_ShortInput(t *testing.T) {
	out := rci(ascendingCloses(5), 9)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Fatalf("bar %d: series shorter than the window should be all NaN, got %v", i, v)
		}
	}
}
