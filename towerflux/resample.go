package towerflux

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Convert multiplies every value by factor and relabels the units.
func Convert(s Series, factor float64, units string) Series {
	out := s.clone()
	for i := range out.Values {
		out.Values[i] *= factor
	}
	out.Units = units
	return out
}

// Resample groups the series into buckets of width interval and reduces each
// bucket with agg. Buckets are aligned to midnight UTC for any interval that
// divides a day. Every bucket between the first and last occupied one is
// emitted; empty buckets hold NaN. The input must be in time order.
func Resample(s Series, interval time.Duration, agg AggFunc) Series {
	out := Series{Name: s.Name, Units: s.Units}
	if s.Len() == 0 {
		return out
	}

	first := s.Times[0].Truncate(interval)
	last := s.Times[s.Len()-1].Truncate(interval)
	n := int(last.Sub(first)/interval) + 1
	buckets := make([][]float64, n)
	for i, t := range s.Times {
		k := int(t.Truncate(interval).Sub(first) / interval)
		if k < 0 || k >= n {
			logrus.Warnf("Skipping out of order timestamp %v", t)
			continue
		}
		buckets[k] = append(buckets[k], s.Values[i])
	}

	out.Times = make([]time.Time, n)
	out.Values = make([]float64, n)
	for k, vals := range buckets {
		out.Times[k] = first.Add(time.Duration(k) * interval)
		if len(vals) == 0 {
			out.Values[k] = math.NaN()
			continue
		}
		out.Values[k] = agg(vals...)
	}
	logrus.Debugf("Resampled %d rows into %d buckets of %v", s.Len(), n, interval)
	return out
}
