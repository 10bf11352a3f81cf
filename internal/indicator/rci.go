package indicator

import "sort"

// rci computes the rank correlation index over a trailing window.
//
// Ranking convention: time rank 1 is the oldest bar in the window and
// price rank 1 the lowest price; ties give the earlier bar the larger
// price rank (stable descending sort). A perfectly rising window scores
// +100, a perfectly falling one -100. Windows containing NaN stay NaN.
func rci(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period < 2 || len(closes) < period {
		return out
	}

	idx := make([]int, period)
	for i := period - 1; i < len(closes); i++ {
		win := closes[i-period+1 : i+1]
		if hasNaN(win) {
			continue
		}
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool { return win[idx[a]] > win[idx[b]] })

		var d2 float64
		for pos, j := range idx {
			timeRank := float64(j + 1)
			priceRank := float64(period - pos)
			diff := timeRank - priceRank
			d2 += diff * diff
		}
		p := float64(period)
		out[i] = (1 - 6*d2/(p*(p*p-1))) * 100
	}
	return out
}
