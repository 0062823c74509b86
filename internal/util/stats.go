package util

import (
	"math"
	"sort"
)

// Descriptive statistics over price series.
// All functions return NaN for an empty input, which callers report as absent data.

type Number interface {
	int64 | float64
}

func Max[T Number](values []T) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	ret := values[0]
	for _, v := range values[1:] {
		if ret < v {
			ret = v
		}
	}
	return float64(ret)
}

func Min[T Number](values []T) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	ret := values[0]
	for _, v := range values[1:] {
		if v < ret {
			ret = v
		}
	}
	return float64(ret)
}

// Average is floored.
func Average[T Number](values []T) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	ret := math.Floor(sum / float64(len(values)))
	if math.IsInf(ret, 0) {
		return math.NaN()
	}
	return ret
}

// Median is floored. The input is not reordered.
func Median[T Number](values []T) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return Average([]float64{sorted[mid-1], sorted[mid]})
	}
	return math.Floor(sorted[mid])
}

// StdDev is the floored population standard deviation around the floored average.
func StdDev[T Number](values []T) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	avg := Average(values)
	squareDiffs := make([]float64, len(values))
	for i, v := range values {
		diff := float64(v) - avg
		squareDiffs[i] = diff * diff
	}
	return math.Floor(math.Sqrt(Average(squareDiffs)))
}
