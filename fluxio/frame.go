// Package fluxio merges aligned flux series and writes them to disk.
package fluxio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"flux-tools/towerflux"
)

type Column struct {
	Name   string
	Values []float64
}

// Frame is a set of columns sharing one ascending time index.
type Frame struct {
	Times   []time.Time
	Columns []Column
}

func (f Frame) Len() int {
	return len(f.Times)
}

// Label builds a self-describing column name such as
// "MiCASA NEE (kgC m-2 s-1)".
func Label(source string, variable string, units string) string {
	if units == "" {
		return fmt.Sprintf("%s %s", source, variable)
	}
	return fmt.Sprintf("%s %s (%s)", source, variable, units)
}

// Merge outer-joins the series on time. Each series becomes a column named
// after it; timestamps a series lacks are NaN in its column.
func Merge(series ...towerflux.Series) Frame {
	index := make(map[time.Time]int)
	var frame Frame
	for _, s := range series {
		for _, t := range s.Times {
			t = t.UTC()
			if _, ok := index[t]; !ok {
				index[t] = -1
				frame.Times = append(frame.Times, t)
			}
		}
	}
	sort.Slice(frame.Times, func(i, j int) bool { return frame.Times[i].Before(frame.Times[j]) })
	for i, t := range frame.Times {
		index[t] = i
	}

	for _, s := range series {
		col := Column{Name: s.Name, Values: make([]float64, len(frame.Times))}
		for i := range col.Values {
			col.Values[i] = math.NaN()
		}
		for i, t := range s.Times {
			col.Values[index[t.UTC()]] = s.Values[i]
		}
		frame.Columns = append(frame.Columns, col)
	}
	return frame
}
