package towerflux

import "math"

// AggFunc reduces the values of one resampling bucket. NaN inputs are
// skipped; a bucket with no valid values yields NaN.
type AggFunc func(...float64) float64

func finite(inData []float64) []float64 {
	out := make([]float64, 0, len(inData))
	for _, val := range inData {
		if !math.IsNaN(val) {
			out = append(out, val)
		}
	}
	return out
}

func Mean(inData ...float64) float64 {
	vals := finite(inData)
	if len(vals) == 0 {
		return math.NaN()
	}
	return Sum(vals...) / float64(len(vals))
}

func Sum(inData ...float64) float64 {
	vals := finite(inData)
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, val := range vals {
		sum += val
	}
	return sum
}

func Max(inData ...float64) float64 {
	vals := finite(inData)
	if len(vals) == 0 {
		return math.NaN()
	}
	max := vals[0]
	for _, val := range vals[1:] {
		if val > max {
			max = val
		}
	}
	return max
}

func Min(inData ...float64) float64 {
	vals := finite(inData)
	if len(vals) == 0 {
		return math.NaN()
	}
	min := vals[0]
	for _, val := range vals[1:] {
		if val < min {
			min = val
		}
	}
	return min
}
