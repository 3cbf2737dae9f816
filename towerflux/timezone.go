package towerflux

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"
	"github.com/sirupsen/logrus"
)

var ErrNoTimeZone = errors.New("no time zone found for coordinates")

type zoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// newFinder loads the boundary polygons shipped with tzf.
var newFinder = func() (zoneFinder, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ZoneName returns the IANA zone containing the coordinates.
func ZoneName(lat float64, lon float64) (string, error) {
	finder, err := newFinder()
	if err != nil {
		return "", err
	}
	name := finder.GetTimezoneName(lon, lat)
	if name == "" {
		return "", fmt.Errorf("%w (%v, %v)", ErrNoTimeZone, lat, lon)
	}
	logrus.Infof("Site (%v, %v) is in %s", lat, lon, name)
	return name, nil
}

// Location resolves the coordinates straight to a loaded zone.
func Location(lat float64, lon float64) (*time.Location, error) {
	name, err := ZoneName(lat, lon)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoTimeZone, name, err)
	}
	return loc, nil
}

// StandardOffset is the zone's UTC offset in seconds with daylight saving
// removed: the smaller of the January and July offsets of year.
func StandardOffset(loc *time.Location, year int) int {
	_, winter := time.Date(year, 1, 1, 0, 0, 0, 0, loc).Zone()
	_, summer := time.Date(year, 7, 1, 0, 0, 0, 0, loc).Zone()
	if winter > summer {
		return summer
	}
	return winter
}

// LocalStandardToUTC treats each naive timestamp as local standard time in
// loc and returns the series indexed in UTC. DST is never applied.
func LocalStandardToUTC(s Series, loc *time.Location) Series {
	out := s.clone()
	offsets := make(map[int]int)
	for i, t := range out.Times {
		off, ok := offsets[t.Year()]
		if !ok {
			off = StandardOffset(loc, t.Year())
			offsets[t.Year()] = off
		}
		wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		out.Times[i] = wall.Add(-time.Duration(off) * time.Second)
	}
	return out
}
