package gridflux

import (
	"fmt"
	"math"
)

// toFloat64s flattens any 1-D numeric slice returned by the netCDF reader.
func toFloat64s(v interface{}) ([]float64, error) {
	switch vals := v.(type) {
	case []float64:
		return append([]float64(nil), vals...), nil
	case []float32:
		return convertSlice(vals), nil
	case []int64:
		return convertSlice(vals), nil
	case []int32:
		return convertSlice(vals), nil
	case []int16:
		return convertSlice(vals), nil
	case []int8:
		return convertSlice(vals), nil
	case []uint64:
		return convertSlice(vals), nil
	case []uint32:
		return convertSlice(vals), nil
	case []uint16:
		return convertSlice(vals), nil
	case []uint8:
		return convertSlice(vals), nil
	}
	if f, ok := toFloat64(v); ok {
		return []float64{f}, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func convertSlice[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32](vals []T) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	}
	return 0, false
}

// cellValue picks [0][i][j] out of a single-time-step slice of a 3-D variable.
func cellValue(v interface{}, i int, j int) (float64, error) {
	switch vals := v.(type) {
	case [][][]float32:
		return float64(vals[0][i][j]), nil
	case [][][]float64:
		return vals[0][i][j], nil
	case [][][]int32:
		return float64(vals[0][i][j]), nil
	case [][][]int16:
		return float64(vals[0][i][j]), nil
	case [][][]int8:
		return float64(vals[0][i][j]), nil
	case [][][]int64:
		return float64(vals[0][i][j]), nil
	}
	return math.NaN(), fmt.Errorf("unsupported grid type %T", v)
}
