package gridflux

import (
	"math"
	"testing"
	"time"

	"flux-tools/gridflux/gridfluxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLats = []float64{39.85, 39.95, 40.05, 40.15}
	testLons = []float64{-88.15, -88.05, -87.95}
)

// cellCode encodes the position in the value so reads can be checked.
func cellCode(day int) gridfluxtest.ValueFunc {
	return func(step, i, j int) float32 {
		return float32(day*1000 + step*100 + i*10 + j)
	}
}

func writeDay(t *testing.T, root string, date time.Time, fill *float32) string {
	t.Helper()
	path := gridfluxtest.Path(root, date)
	err := gridfluxtest.Write(path, gridfluxtest.Daily{
		Date:      date,
		Lats:      testLats,
		Lons:      testLons,
		Variables: map[string]gridfluxtest.ValueFunc{"NEE": cellCode(date.Day()), "NPP": cellCode(0)},
		Units:     map[string]string{"NEE": "kg m-2 s-1"},
		FillValue: fill,
	})
	require.NoError(t, err)
	return path
}

func TestOpenUnion(t *testing.T) {
	root := t.TempDir()
	d1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	paths := []string{writeDay(t, root, d1, nil), writeDay(t, root, d2, nil)}

	ds, err := Open(paths, "NEE", EngineNetCDF)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, ds.Close())
	}()

	assert.Equal(t, "kg m-2 s-1", ds.Units)
	times := ds.Times()
	require.Len(t, times, 2*gridfluxtest.StepsPerDay)
	assert.Equal(t, d1, times[0])
	assert.Equal(t, d2.Add(21*time.Hour), times[len(times)-1])

	cell, err := ds.Nearest(40.01, -88.04)
	require.NoError(t, err)
	assert.Equal(t, 2, cell.LatIndex)
	assert.Equal(t, 1, cell.LonIndex)
	assert.InDelta(t, 4.5, cell.DistanceKm, 0.2)

	s, err := ds.Series(cell)
	require.NoError(t, err)
	require.Equal(t, len(times), s.Len())
	assert.Equal(t, times, s.Times)
	assert.Equal(t, 1021.0, s.Values[0])
	assert.Equal(t, 1721.0, s.Values[7])
	assert.Equal(t, 2021.0, s.Values[8])
	assert.Equal(t, "NEE", s.Name)
}

func TestSeriesFillValue(t *testing.T) {
	root := t.TempDir()
	fill := float32(1011)
	path := writeDay(t, root, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), &fill)

	ds, err := Open([]string{path}, "NEE", EngineNetCDF)
	require.NoError(t, err)
	defer ds.Close()

	s, err := ds.Series(Cell{LatIndex: 1, LonIndex: 1})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Values[0]))
	assert.Equal(t, 1111.0, s.Values[1])
}

func TestOpenErrors(t *testing.T) {
	root := t.TempDir()
	path := writeDay(t, root, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := Open(nil, "NEE", EngineNetCDF)
	assert.Error(t, err)

	_, err = Open([]string{path}, "FIRE", EngineNetCDF)
	assert.ErrorContains(t, err, "FIRE")

	_, err = Open([]string{path}, "lat", EngineNetCDF)
	assert.ErrorContains(t, err, "dimensions")

	other := gridfluxtest.Path(t.TempDir(), time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, gridfluxtest.Write(other, gridfluxtest.Daily{
		Date:      time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Lats:      []float64{0, 1},
		Lons:      []float64{0, 1},
		Variables: map[string]gridfluxtest.ValueFunc{"NEE": cellCode(2)},
	}))
	_, err = Open([]string{path, other}, "NEE", EngineNetCDF)
	assert.ErrorContains(t, err, "grid differs")
}

func TestNearestWrapsLongitude(t *testing.T) {
	ds := &Dataset{Lats: []float64{10, 0, -10}, Lons: []float64{0, 90, 180, 270}}

	cell, err := ds.Nearest(-4, -85)
	require.NoError(t, err)
	assert.Equal(t, 1, cell.LatIndex)
	assert.Equal(t, 3, cell.LonIndex)
	assert.Equal(t, 270.0, cell.Lon)
}

func TestNearestTieTakesLargerCoordinate(t *testing.T) {
	root := t.TempDir()
	path := gridfluxtest.Path(root, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, gridfluxtest.Write(path, gridfluxtest.Daily{
		Date:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Lats:      []float64{39.85, 39.95, 40.05, 40.15},
		Lons:      []float64{-88.15, -88.05, -87.95, -87.85},
		Variables: map[string]gridfluxtest.ValueFunc{"NEE": cellCode(1)},
	}))
	ds, err := Open([]string{path}, "NEE", EngineNetCDF)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, ds.Close())
	}()

	// 0.1 degree centres sit at x.x5, so (40.0, -88.0) is an exact tie on both axes.
	cell, err := ds.Nearest(40.0, -88.0)
	require.NoError(t, err)
	assert.Equal(t, 40.05, cell.Lat)
	assert.Equal(t, -87.95, cell.Lon)
	assert.Equal(t, 2, cell.LatIndex)
	assert.Equal(t, 2, cell.LonIndex)

	// North-up rasters give a descending latitude axis.
	desc := &Dataset{Lats: []float64{40.15, 40.05, 39.95, 39.85}, Lons: []float64{-88.15, -88.05, -87.95, -87.85}}
	cell, err = desc.Nearest(40.0, -88.0)
	require.NoError(t, err)
	assert.Equal(t, 1, cell.LatIndex)
	assert.Equal(t, 40.05, cell.Lat)
	assert.Equal(t, -87.95, cell.Lon)
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("gdal")
	require.NoError(t, err)
	assert.Equal(t, EngineGDAL, e)
	_, err = ParseEngine("xarray")
	assert.Error(t, err)
}
