package gridflux

import (
	"math"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setUpBands writes a 2x2 GeoTIFF with one band per time step, tagged the
// way GDAL's netCDF driver tags subdataset bands. Extra metadata is set on
// every band.
func setUpBands(t testing.TB, extra map[string]string) string {
	godal.RegisterAll()
	t.Helper()

	path := filepath.Join(t.TempDir(), "nee.tif")
	ds, err := godal.Create(godal.GTiff, path, 3, godal.Float64, 2, 2)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform([6]float64{-88.1, 0.1, 0, 40.1, 0, -0.1}))
	require.NoError(t, ds.SetMetadata("time#units", "hours since 2020-01-01 00:00:00"))

	for i, band := range ds.Bands() {
		buf := []float64{float64(i*10 + 1), float64(i*10 + 2), float64(i*10 + 3), float64(i*10 + 4)}
		require.NoError(t, band.Write(0, 0, buf, 2, 2))
		require.NoError(t, band.SetNoData(-9999))
		require.NoError(t, band.SetMetadata("NETCDF_DIM_time", strconv.Itoa(3*i)))
		require.NoError(t, band.SetMetadata("units", "kg m-2 s-1"))
		for k, v := range extra {
			require.NoError(t, band.SetMetadata(k, v))
		}
	}
	require.NoError(t, ds.Bands()[2].Write(1, 1, []float64{-9999}, 1, 1))
	require.NoError(t, ds.Close())
	return path
}

func TestGDALEngine(t *testing.T) {
	path := setUpBands(t, nil)

	ds, err := Open([]string{path}, "NEE", EngineGDAL)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, ds.Close())
	}()

	assert.Equal(t, "kg m-2 s-1", ds.Units)
	assert.InDeltaSlice(t, []float64{40.05, 39.95}, ds.Lats, 1e-9)
	assert.InDeltaSlice(t, []float64{-88.05, -87.95}, ds.Lons, 1e-9)
	assert.Equal(t, time.Date(2020, 1, 1, 6, 0, 0, 0, time.UTC), ds.Times()[2])

	cell, err := ds.Nearest(39.96, -87.96)
	require.NoError(t, err)
	assert.Equal(t, Cell{LatIndex: 1, LonIndex: 1, Lat: ds.Lats[1], Lon: ds.Lons[1], DistanceKm: cell.DistanceKm}, cell)

	s, err := ds.Series(cell)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Values[0])
	assert.Equal(t, 14.0, s.Values[1])
	assert.True(t, math.IsNaN(s.Values[2]))
}

func TestGDALEngineUnpacks(t *testing.T) {
	path := setUpBands(t, map[string]string{"scale_factor": "0.5", "add_offset": "10"})

	ds, err := Open([]string{path}, "NEE", EngineGDAL)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, ds.Close())
	}()

	s, err := ds.Series(Cell{LatIndex: 1, LonIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, 12.0, s.Values[0])
	assert.Equal(t, 17.0, s.Values[1])
	// NoData is matched before unpacking
	assert.True(t, math.IsNaN(s.Values[2]))
}

func TestGDALEngineBadScale(t *testing.T) {
	path := setUpBands(t, map[string]string{"scale_factor": "half"})

	_, err := Open([]string{path}, "NEE", EngineGDAL)
	assert.ErrorContains(t, err, "scale_factor")
}

func TestGDALName(t *testing.T) {
	assert.Equal(t, `NETCDF:"/data/a.nc4":NEE`, gdalName("/data/a.nc4", "NEE"))
	assert.Equal(t, "/data/a.tif", gdalName("/data/a.tif", "NEE"))
}
