package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"subscriber-drivers/pkg/models"
)

// RollingSum returns the sum over the window ending at each position.
// The first window-1 positions are undefined. Each window is summed on its own
// so that identical windows always produce identical sums.
func RollingSum(values []float64, window int) []models.NullFloat {
	out := make([]models.NullFloat, len(values))
	if window < 1 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		out[i] = models.Some(floats.Sum(values[i-window+1 : i+1]))
	}
	return out
}

// RollingMean returns the arithmetic mean over the window ending at each position.
func RollingMean(values []float64, window int) []models.NullFloat {
	sums := RollingSum(values, window)
	out := make([]models.NullFloat, len(sums))
	for i, s := range sums {
		if s.Valid {
			out[i] = models.Some(s.Float64 / float64(window))
		}
	}
	return out
}

// RollingCorr returns the Pearson correlation of x and y over the window ending
// at each position. Positions with an incomplete window, or where either side is
// constant over the window, are undefined.
func RollingCorr(x, y []float64, window int) []models.NullFloat {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	out := make([]models.NullFloat, n)
	if window < 2 {
		return out
	}
	for i := window - 1; i < n; i++ {
		out[i] = Pearson(x[i-window+1:i+1], y[i-window+1:i+1])
	}
	return out
}

// Pearson computes the correlation coefficient of two equally sized samples.
// A constant sample has no correlation.
func Pearson(x, y []float64) models.NullFloat {
	if len(x) != len(y) || len(x) < 2 || constant(x) || constant(y) {
		return models.Null()
	}
	r := models.Some(stat.Correlation(x, y, nil))
	if !r.Valid {
		return r
	}
	return models.Some(Clamp(r.Float64, -1, 1))
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
