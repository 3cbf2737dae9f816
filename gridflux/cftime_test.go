package gridflux

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeUnits(t *testing.T) {
	cases := []struct {
		units string
		step  time.Duration
		ref   time.Time
	}{
		{"hours since 2020-01-01 00:00:00", time.Hour, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"days since 1980-01-01", 24 * time.Hour, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"minutes since 2001-01-01T00:00:00Z", time.Minute, time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"seconds since 1970-1-1 0:0:0", time.Second, time.Unix(0, 0).UTC()},
		{"hours since 1900-01-01 00:00:00.0", time.Hour, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		step, ref, err := ParseTimeUnits(c.units)
		require.NoError(t, err, c.units)
		assert.Equal(t, c.step, step, c.units)
		assert.True(t, c.ref.Equal(ref), "%s: got %v", c.units, ref)
	}

	_, _, err := ParseTimeUnits("hours")
	assert.Error(t, err)
	_, _, err = ParseTimeUnits("fortnights since 2020-01-01")
	assert.Error(t, err)
	_, _, err = ParseTimeUnits("days since yesterday")
	assert.Error(t, err)
}

func TestDecodeTimes(t *testing.T) {
	times, err := DecodeTimes([]float64{0, 0.125, 1.5}, "days since 2020-01-01 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 3, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 12, 0, 0, 0, time.UTC),
	}, times)
}
