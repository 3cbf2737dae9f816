package gridflux

import (
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/sirupsen/logrus"
)

var (
	latNames = []string{"lat", "latitude"}
	lonNames = []string{"lon", "longitude"}
)

// ncSource reads one netCDF file. Coordinates are loaded on open; the
// variable itself is read one time step at a time.
type ncSource struct {
	path  string
	nc    api.Group
	vg    api.VarGetter
	times []time.Time
	lats  []float64
	lons  []float64
	units string
	pack  packing
}

// packing holds the CF attributes that map stored values to physical ones.
type packing struct {
	scale   float64
	offset  float64
	fill    []float64
	validLo float64
	validHi float64
}

func (p packing) unpack(raw float64) float64 {
	if math.IsNaN(raw) {
		return raw
	}
	for _, f := range p.fill {
		if raw == f {
			return math.NaN()
		}
	}
	if raw < p.validLo || raw > p.validHi {
		return math.NaN()
	}
	return raw*p.scale + p.offset
}

func openNetCDF(path string, variable string) (src *ncSource, err error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() {
		if err != nil {
			nc.Close()
		}
	}()
	src = &ncSource{path: path, nc: nc}

	src.vg, err = nc.GetVarGetter(variable)
	if err != nil {
		return nil, fmt.Errorf("%s: variable %s: %w", path, variable, err)
	}
	dims := src.vg.Dimensions()
	if len(dims) != 3 || dims[0] != "time" || !contains(latNames, dims[1]) || !contains(lonNames, dims[2]) {
		return nil, fmt.Errorf("%s: variable %s has dimensions %v, want (time, lat, lon)", path, variable, dims)
	}

	src.lats, _, err = coordValues(nc, dims[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.lons, _, err = coordValues(nc, dims[2])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	offsets, timeAttrs, err := coordValues(nc, "time")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	timeUnits, _ := attrString(timeAttrs, "units")
	src.times, err = DecodeTimes(offsets, timeUnits)
	if err != nil {
		return nil, fmt.Errorf("%s: time: %w", path, err)
	}

	attrs := src.vg.Attributes()
	src.units, _ = attrString(attrs, "units")
	src.pack = packing{scale: 1, validLo: math.Inf(-1), validHi: math.Inf(1)}
	if v, ok := attrFloat(attrs, "scale_factor"); ok {
		src.pack.scale = v
	}
	if v, ok := attrFloat(attrs, "add_offset"); ok {
		src.pack.offset = v
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(attrs, key); ok {
			src.pack.fill = append(src.pack.fill, v)
		}
	}
	if v, ok := attrFloat(attrs, "valid_min"); ok {
		src.pack.validLo = v
	}
	if v, ok := attrFloat(attrs, "valid_max"); ok {
		src.pack.validHi = v
	}

	logrus.Debugf("Opened %s: %d times, %d x %d grid", path, len(src.times), len(src.lats), len(src.lons))
	return src, nil
}

func coordValues(nc api.Group, name string) ([]float64, api.AttributeMap, error) {
	vr, err := nc.GetVariable(name)
	if err != nil {
		return nil, nil, fmt.Errorf("coordinate %s: %w", name, err)
	}
	vals, err := toFloat64s(vr.Values)
	if err != nil {
		return nil, nil, fmt.Errorf("coordinate %s: %w", name, err)
	}
	return vals, vr.Attributes, nil
}

func attrString(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	if f, ok := toFloat64(v); ok {
		return f, true
	}
	vals, err := toFloat64s(v)
	if err != nil || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (s *ncSource) Times() []time.Time { return s.times }
func (s *ncSource) Lats() []float64    { return s.lats }
func (s *ncSource) Lons() []float64    { return s.lons }
func (s *ncSource) Units() string      { return s.units }

func (s *ncSource) ReadCell(latIdx int, lonIdx int) ([]float64, error) {
	out := make([]float64, len(s.times))
	for t := range s.times {
		slice, err := s.vg.GetSlice(int64(t), int64(t+1))
		if err != nil {
			return nil, fmt.Errorf("%s: time step %d: %w", s.path, t, err)
		}
		raw, err := cellValue(slice, latIdx, lonIdx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
		out[t] = s.pack.unpack(raw)
	}
	return out, nil
}

func (s *ncSource) Close() error {
	s.nc.Close()
	return nil
}
