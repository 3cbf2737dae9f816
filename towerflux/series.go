package towerflux

import (
	"fmt"
	"math"
	"time"
)

// Series is a time-indexed flux series. Missing values are NaN. Operations
// return new series and never modify their input.
type Series struct {
	Name   string
	Units  string
	Times  []time.Time
	Values []float64
}

func (s Series) Len() int {
	return len(s.Times)
}

// Valid counts the non-missing values.
func (s Series) Valid() int {
	var n int
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func (s Series) String() string {
	if s.Len() == 0 {
		return fmt.Sprintf("%s: empty", s.Name)
	}
	return fmt.Sprintf("%s (%s): %d rows %s to %s", s.Name, s.Units, s.Len(),
		s.Times[0].Format(time.DateTime), s.Times[s.Len()-1].Format(time.DateTime))
}

func (s Series) clone() Series {
	out := Series{Name: s.Name, Units: s.Units}
	out.Times = append([]time.Time(nil), s.Times...)
	out.Values = append([]float64(nil), s.Values...)
	return out
}
