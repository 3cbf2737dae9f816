// Package sitemeta reads the AmeriFlux site search export and resolves a
// site identifier to its coordinates.
package sitemeta

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"
)

const (
	ColSiteID    = "Site ID"
	ColName      = "Name"
	ColLatitude  = "Latitude (degrees)"
	ColLongitude = "Longitude (degrees)"
)

var (
	ErrSiteNotFound  = errors.New("site not found")
	ErrAmbiguousSite = errors.New("site matches more than one row")
)

type Site struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

func (s Site) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(s.Lat, s.Lon)
}

func (s Site) String() string {
	return fmt.Sprintf("%s (%v, %v)", s.ID, s.Lat, s.Lon)
}

// Table holds the raw rows of the metadata file. Coordinates are only parsed
// for the row that is looked up, so a malformed row elsewhere in the export
// does not stop a run.
type Table struct {
	header map[string]int
	rows   [][]string
}

func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	t := &Table{header: make(map[string]int, len(header))}
	for i, name := range header {
		t.header[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range []string{ColSiteID, ColLatitude, ColLongitude} {
		if _, ok := t.header[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	t.rows, err = cr.ReadAll()
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Read %d site rows", len(t.rows))
	return t, nil
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Lookup returns the one row whose site id equals id.
func (t *Table) Lookup(id string) (Site, error) {
	var match []string
	n := 0
	for _, row := range t.rows {
		if t.field(row, ColSiteID) == id {
			match = row
			n++
		}
	}
	switch {
	case n == 0:
		return Site{}, fmt.Errorf("%w: %s", ErrSiteNotFound, id)
	case n > 1:
		return Site{}, fmt.Errorf("%w: %s (%d rows)", ErrAmbiguousSite, id, n)
	}

	lat, err := strconv.ParseFloat(t.field(match, ColLatitude), 64)
	if err != nil {
		return Site{}, fmt.Errorf("site %s latitude: %w", id, err)
	}
	lon, err := strconv.ParseFloat(t.field(match, ColLongitude), 64)
	if err != nil {
		return Site{}, fmt.Errorf("site %s longitude: %w", id, err)
	}
	site := Site{ID: id, Name: t.field(match, ColName), Lat: lat, Lon: lon}
	if !site.LatLng().IsValid() {
		return Site{}, fmt.Errorf("site %s has out of range coordinates (%v, %v)", id, lat, lon)
	}
	return site, nil
}

func (t *Table) field(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Resolve loads the table at path and looks up id.
func Resolve(path string, id string) (Site, error) {
	t, err := Load(path)
	if err != nil {
		return Site{}, err
	}
	return t.Lookup(id)
}
