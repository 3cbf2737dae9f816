// Package gridflux assembles daily gridded flux files into one time series
// for the grid cell nearest a site.
package gridflux

import (
	"errors"
	"fmt"
	"math"
	"time"

	"flux-tools/towerflux"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"
)

const EarthRadius = 6371000

type Engine string

const (
	EngineNetCDF Engine = "netcdf"
	EngineGDAL   Engine = "gdal"
)

func ParseEngine(s string) (Engine, error) {
	switch e := Engine(s); e {
	case EngineNetCDF, EngineGDAL:
		return e, nil
	}
	return "", fmt.Errorf("unknown engine %q, choose netcdf or gdal", s)
}

// source is one opened file of the union.
type source interface {
	Times() []time.Time
	Lats() []float64
	Lons() []float64
	Units() string
	// ReadCell returns the cell's value for every time step in the file.
	ReadCell(latIdx int, lonIdx int) ([]float64, error)
	Close() error
}

// Dataset is the union of several files along time. Only coordinates are
// read on Open; values are read by Series for a single cell.
type Dataset struct {
	Variable string
	Units    string
	Lats     []float64
	Lons     []float64
	Paths    []string
	files    []source
}

// Cell is a grid cell picked for a site.
type Cell struct {
	LatIndex   int
	LonIndex   int
	Lat        float64
	Lon        float64
	DistanceKm float64
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d, %d] (%v, %v) %.2f km", c.LatIndex, c.LonIndex, c.Lat, c.Lon, c.DistanceKm)
}

// Open opens every path with the given engine. All files must share one
// grid. The caller must Close the dataset.
func Open(paths []string, variable string, engine Engine) (ds *Dataset, err error) {
	logrus.Debug("Entered Open")
	if len(paths) == 0 {
		return nil, errors.New("no gridded files to open")
	}
	ds = &Dataset{Variable: variable, Paths: paths}
	defer func() {
		if err != nil {
			err = errors.Join(err, ds.Close())
			ds = nil
		}
	}()

	for _, path := range paths {
		var src source
		switch engine {
		case EngineGDAL:
			src, err = openGDAL(path, variable)
		default:
			src, err = openNetCDF(path, variable)
		}
		if err != nil {
			return ds, err
		}
		ds.files = append(ds.files, src)

		if len(ds.files) == 1 {
			ds.Lats, ds.Lons, ds.Units = src.Lats(), src.Lons(), src.Units()
			continue
		}
		if !sameAxis(ds.Lats, src.Lats()) || !sameAxis(ds.Lons, src.Lons()) {
			return ds, fmt.Errorf("%s: grid differs from %s", path, paths[0])
		}
	}
	logrus.Infof("Opened %d files for %s, %d time steps", len(ds.files), variable, len(ds.Times()))
	return ds, nil
}

func sameAxis(a []float64, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-6 {
			return false
		}
	}
	return true
}

func (d *Dataset) Times() []time.Time {
	var times []time.Time
	for _, f := range d.files {
		times = append(times, f.Times()...)
	}
	return times
}

// Nearest picks the cell closest to (lat, lon) along each axis separately.
// Longitudes are wrapped onto a 0..360 axis when the grid uses one.
func (d *Dataset) Nearest(lat float64, lon float64) (Cell, error) {
	if len(d.Lats) == 0 || len(d.Lons) == 0 {
		return Cell{}, errors.New("grid has no cells")
	}
	lon = wrapLongitude(lon, d.Lons)
	c := Cell{LatIndex: nearestIndex(d.Lats, lat), LonIndex: nearestIndex(d.Lons, lon)}
	c.Lat, c.Lon = d.Lats[c.LatIndex], d.Lons[c.LonIndex]

	site := s2.LatLngFromDegrees(lat, lon)
	centre := s2.LatLngFromDegrees(c.Lat, c.Lon)
	c.DistanceKm = site.Distance(centre).Radians() * EarthRadius / 1000
	logrus.Infof("Nearest cell to (%v, %v) is %v", lat, lon, c)
	return c, nil
}

func wrapLongitude(lon float64, axis []float64) float64 {
	lo, hi := axis[0], axis[len(axis)-1]
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case hi > 180 && lon < 0:
		return lon + 360
	case lo < 0 && lon > 180:
		return lon - 360
	}
	return lon
}

// nearestIndex scans the axis, so it works for ascending and descending
// coordinates. A site halfway between two centres takes the larger
// coordinate value, whichever way the axis runs.
func nearestIndex(axis []float64, v float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, x := range axis {
		if d := math.Abs(x - v); d < bestDist || (d == bestDist && x > axis[best]) {
			best, bestDist = i, d
		}
	}
	return best
}

// Series reads the cell from every file in order, with the spatial
// dimensions dropped.
func (d *Dataset) Series(c Cell) (towerflux.Series, error) {
	logrus.Debug("Entered Series")
	s := towerflux.Series{Name: d.Variable, Units: d.Units}
	for _, f := range d.files {
		vals, err := f.ReadCell(c.LatIndex, c.LonIndex)
		if err != nil {
			return towerflux.Series{}, err
		}
		s.Times = append(s.Times, f.Times()...)
		s.Values = append(s.Values, vals...)
	}
	logrus.Debugf("Read %d values of %s", s.Len(), d.Variable)
	return s, nil
}

// Close releases every open file.
func (d *Dataset) Close() error {
	var err error
	for _, f := range d.files {
		err = errors.Join(err, f.Close())
	}
	d.files = nil
	return err
}
