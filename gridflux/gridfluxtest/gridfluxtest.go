// Package gridfluxtest writes small MiCASA-shaped netCDF files for tests.
package gridfluxtest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

const StepsPerDay = 8

type ValueFunc func(step int, latIdx int, lonIdx int) float32

// Daily describes one day of 3-hourly grids.
type Daily struct {
	Date      time.Time
	Lats      []float64
	Lons      []float64
	Variables map[string]ValueFunc
	Units     map[string]string
	FillValue *float32
}

// Path is where the MiCASA layout expects the file for date under root.
func Path(root string, date time.Time) string {
	return filepath.Join(root, date.Format("2006"), date.Format("01"),
		"MiCASA_v1_flux_x3600_y1800_3hrly_"+date.Format("20060102")+".nc4")
}

func attrs(keys []string, vals map[string]interface{}) (api.AttributeMap, error) {
	return util.NewOrderedMap(keys, vals)
}

// Write creates the file at path, making parent directories.
func Write(path string, d Daily) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}

	hours := make([]float64, StepsPerDay)
	for i := range hours {
		hours[i] = float64(3 * i)
	}
	timeAttrs, err := attrs([]string{"units"}, map[string]interface{}{
		"units": "hours since " + d.Date.Format("2006-01-02") + " 00:00:00",
	})
	if err != nil {
		return err
	}
	latAttrs, err := attrs([]string{"units"}, map[string]interface{}{"units": "degrees_north"})
	if err != nil {
		return err
	}
	lonAttrs, err := attrs([]string{"units"}, map[string]interface{}{"units": "degrees_east"})
	if err != nil {
		return err
	}
	coords := []struct {
		name  string
		vals  []float64
		attrs api.AttributeMap
	}{
		{"time", hours, timeAttrs},
		{"lat", d.Lats, latAttrs},
		{"lon", d.Lons, lonAttrs},
	}
	for _, c := range coords {
		if err := cw.AddVar(c.name, api.Variable{Values: c.vals, Dimensions: []string{c.name}, Attributes: c.attrs}); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}

	for name, fn := range d.Variables {
		grid := make([][][]float32, StepsPerDay)
		for t := range grid {
			grid[t] = make([][]float32, len(d.Lats))
			for i := range grid[t] {
				grid[t][i] = make([]float32, len(d.Lons))
				for j := range grid[t][i] {
					grid[t][i][j] = fn(t, i, j)
				}
			}
		}
		keys := []string{}
		vals := map[string]interface{}{}
		if u, ok := d.Units[name]; ok {
			keys = append(keys, "units")
			vals["units"] = u
		}
		if d.FillValue != nil {
			keys = append(keys, "_FillValue")
			vals["_FillValue"] = *d.FillValue
		}
		va, err := attrs(keys, vals)
		if err != nil {
			return err
		}
		if err := cw.AddVar(name, api.Variable{Values: grid, Dimensions: []string{"time", "lat", "lon"}, Attributes: va}); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return cw.Close()
}
