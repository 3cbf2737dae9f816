package gridflux

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var refLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// ParseTimeUnits splits a CF time units string such as
// "days since 1980-01-01 00:00:00" into a step and reference time.
func ParseTimeUnits(units string) (time.Duration, time.Time, error) {
	step, ref, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("time units %q are not of the form '<unit> since <date>'", units)
	}

	var d time.Duration
	switch strings.ToLower(strings.TrimSpace(step)) {
	case "seconds", "second", "secs", "sec", "s":
		d = time.Second
	case "minutes", "minute", "mins", "min":
		d = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		d = time.Hour
	case "days", "day", "d":
		d = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time step %q", step)
	}

	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, " 00:00")
	for _, layout := range refLayouts {
		if t, err := time.ParseInLocation(layout, ref, time.UTC); err == nil {
			return d, t.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unparseable reference date %q", ref)
}

// DecodeTimes converts offsets in the given CF units to UTC timestamps.
func DecodeTimes(offsets []float64, units string) ([]time.Time, error) {
	step, ref, err := ParseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(offsets))
	for i, v := range offsets {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("time value %d is %v", i, v)
		}
		out[i] = ref.Add(time.Duration(math.Round(v * float64(step))))
	}
	return out, nil
}
