package gridflux

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

// gdalSource reads a gridded variable through GDAL. The netCDF driver exposes
// each time step as a band and the lat/lon axes through the geotransform.
type gdalSource struct {
	path  string
	ds    *godal.Dataset
	bands []godal.Band
	times []time.Time
	lats  []float64
	lons  []float64
	units string
	pack  packing
}

// gdalName builds the subdataset name GDAL needs to pick one variable out of
// a netCDF file. Other formats are opened as-is.
func gdalName(path string, variable string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4", ".nc3", ".cdf", ".h5":
		return fmt.Sprintf("NETCDF:%q:%s", path, variable)
	}
	return path
}

func openGDAL(path string, variable string) (src *gdalSource, err error) {
	godal.RegisterAll()
	ds, err := godal.Open(gdalName(path, variable))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ds.Close())
		}
	}()
	src = &gdalSource{path: path, ds: ds, bands: ds.Bands()}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	struc := ds.Structure()
	src.lons = make([]float64, struc.SizeX)
	for i := range src.lons {
		src.lons[i] = gt[0] + (float64(i)+0.5)*gt[1]
	}
	src.lats = make([]float64, struc.SizeY)
	for j := range src.lats {
		src.lats[j] = gt[3] + (float64(j)+0.5)*gt[5]
	}

	timeUnits := ds.Metadata("time#units")
	if timeUnits == "" {
		return nil, fmt.Errorf("%s: no time#units metadata", path)
	}
	offsets := make([]float64, len(src.bands))
	for i, band := range src.bands {
		raw := band.Metadata("NETCDF_DIM_time")
		offsets[i], err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: band %d time %q: %w", path, i+1, raw, err)
		}
	}
	src.times, err = DecodeTimes(offsets, timeUnits)
	if err != nil {
		return nil, fmt.Errorf("%s: time: %w", path, err)
	}

	src.pack = packing{scale: 1, validLo: math.Inf(-1), validHi: math.Inf(1)}
	if len(src.bands) > 0 {
		band := src.bands[0]
		src.units = band.Metadata("units")
		if nd, ok := band.NoData(); ok {
			src.pack.fill = []float64{nd}
		}
		// the netCDF driver copies the variable's packing attributes onto each band
		if src.pack.scale, err = bandFloat(band, "scale_factor", 1); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if src.pack.offset, err = bandFloat(band, "add_offset", 0); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if src.units == "" {
		src.units = ds.Metadata(variable + "#units")
	}

	logrus.Debugf("Opened %s with GDAL: %d bands, %d x %d grid", path, len(src.bands), struc.SizeY, struc.SizeX)
	return src, nil
}

func bandFloat(band godal.Band, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(band.Metadata(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("band %s %q: %w", key, raw, err)
	}
	return v, nil
}

func (s *gdalSource) Times() []time.Time { return s.times }
func (s *gdalSource) Lats() []float64    { return s.lats }
func (s *gdalSource) Lons() []float64    { return s.lons }
func (s *gdalSource) Units() string      { return s.units }

func (s *gdalSource) ReadCell(latIdx int, lonIdx int) ([]float64, error) {
	out := make([]float64, len(s.bands))
	buf := make([]float64, 1)
	for i, band := range s.bands {
		if err := band.Read(lonIdx, latIdx, buf, 1, 1); err != nil {
			return nil, fmt.Errorf("%s: band %d: %w", s.path, i+1, err)
		}
		out[i] = s.pack.unpack(buf[0])
	}
	return out, nil
}

func (s *gdalSource) Close() error {
	return s.ds.Close()
}
