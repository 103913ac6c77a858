package stats

import (
	"gonum.org/v1/gonum/stat"

	"subscriber-drivers/pkg/models"
)

// Mean averages the defined values, skipping nulls. Undefined when nothing is defined.
func Mean(values []models.NullFloat) models.NullFloat {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			defined = append(defined, v.Float64)
		}
	}
	return MeanOf(defined)
}

// MeanOf averages plain values. Undefined for an empty slice.
func MeanOf(values []float64) models.NullFloat {
	if len(values) == 0 {
		return models.Null()
	}
	return models.Some(stat.Mean(values, nil))
}

// Last returns the final element, or null for an empty slice.
func Last(values []models.NullFloat) models.NullFloat {
	if len(values) == 0 {
		return models.Null()
	}
	return values[len(values)-1]
}

// Tail returns the last n elements (all of them if fewer).
func Tail[T any](values []T, n int) []T {
	if n >= len(values) {
		return values
	}
	if n <= 0 {
		return values[:0]
	}
	return values[len(values)-n:]
}

// SafeDiv divides n by d, undefined when d is zero.
func SafeDiv(n, d float64) models.NullFloat {
	if d == 0 {
		return models.Null()
	}
	return models.Some(n / d)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
