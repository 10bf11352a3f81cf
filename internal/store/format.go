package store

import (
	"math"
	"strconv"
)

// FormatNumber renders an indicator value rounded to two decimals.
// NaN and infinities render blank: an undefined value must never look
// like a real one in the artifacts.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	r := math.Round(v*100) / 100
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// FormatPrice renders a price field: whole prices as plain integers,
// anything else rounded to one decimal.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatVolume renders a share count as an integer.
func FormatVolume(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatInt(int64(v), 10)
}

// FormatRaw renders a full-precision value for the history artifacts.
func FormatRaw(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
