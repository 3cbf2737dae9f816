// Package towerflux loads AmeriFlux FLUXNET subset files, converts their
// units and aligns them in time.
package towerflux

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultColumn = "NEE_VUT_REF"
	TargetUnits   = "kgC m-2 s-1"

	// FLUXNET fill value for missing data.
	missingValue = -9999

	// umol CO2 m-2 s-1 to kgC m-2 s-1
	UmolCO2ToKgC = 1e-6 * 12.01 * 1e-3
	// gC m-2 d-1 to kgC m-2 s-1
	GramsCPerDayToKgCPerSecond = 1e-3 / 86400
)

type Resolution string

const (
	HalfHourly Resolution = "HH"
	Daily      Resolution = "DD"
)

var ErrResolution = errors.New("time resolution must be HH or DD")

func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(s); r {
	case HalfHourly, Daily:
		return r, nil
	}
	return "", fmt.Errorf("%w, got %q", ErrResolution, s)
}

func (r Resolution) TimestampColumn() string {
	if r == Daily {
		return "TIMESTAMP"
	}
	return "TIMESTAMP_START"
}

func (r Resolution) Layout() string {
	if r == Daily {
		return "20060102"
	}
	return "200601021504"
}

// Factor converts the native NEE units of the resolution into TargetUnits.
func (r Resolution) Factor() float64 {
	if r == Daily {
		return GramsCPerDayToKgCPerSecond
	}
	return UmolCO2ToKgC
}

func (r Resolution) NativeUnits() string {
	if r == Daily {
		return "gC m-2 d-1"
	}
	return "umolCO2 m-2 s-1"
}

// Interval is the bucket width the resolution is resampled to so that it
// lines up with the 3-hourly grid.
func (r Resolution) Interval() time.Duration {
	if r == Daily {
		return 24 * time.Hour
	}
	return 3 * time.Hour
}

// TowerPattern is the glob for a site's FLUXNET subset file under root.
func TowerPattern(root string, siteID string, res Resolution) string {
	return filepath.Join(root,
		"AMF_"+siteID+"_FLUXNET_SUBSET_*",
		"AMF_"+siteID+"_FLUXNET_SUBSET_"+string(res)+"_*.csv")
}

// LoadFile reads column from the FLUXNET file at path.
func LoadFile(path string, res Resolution, column string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()
	s, err := Load(f, res, column)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load parses a FLUXNET CSV. Timestamps are naive wall-clock times and are
// stored in the UTC location until a time zone is applied.
func Load(r io.Reader, res Resolution, column string) (Series, error) {
	logrus.Debug("Entered Load")
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return Series{}, fmt.Errorf("reading header: %w", err)
	}
	tsIdx, valIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case res.TimestampColumn():
			tsIdx = i
		case column:
			valIdx = i
		}
	}
	if tsIdx < 0 {
		return Series{}, fmt.Errorf("missing column %q", res.TimestampColumn())
	}
	if valIdx < 0 {
		return Series{}, fmt.Errorf("missing column %q", column)
	}

	s := Series{Name: column, Units: res.NativeUnits()}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, err
		}
		line, _ := cr.FieldPos(tsIdx)
		ts, err := time.ParseInLocation(res.Layout(), strings.TrimSpace(rec[tsIdx]), time.UTC)
		if err != nil {
			return Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := parseValue(rec[valIdx])
		if err != nil {
			return Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		s.Times = append(s.Times, ts)
		s.Values = append(s.Values, v)
	}
	logrus.Debugf("Loaded %d rows of %s", s.Len(), column)
	return s, nil
}

func parseValue(field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if v == missingValue {
		return math.NaN(), nil
	}
	return v, nil
}
