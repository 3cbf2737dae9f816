package fluxio

import (
	"encoding/json"
	"io"
	"time"
)

// Manifest records where an output file came from.
type Manifest struct {
	Site       string    `json:"site"`
	SiteName   string    `json:"site_name,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	TimeZone   string    `json:"time_zone,omitempty"`
	Resolution string    `json:"resolution"`
	Variable   string    `json:"variable"`
	CellLat    float64   `json:"cell_latitude"`
	CellLon    float64   `json:"cell_longitude"`
	DistanceKm float64   `json:"cell_distance_km"`
	TowerFile  string    `json:"tower_file"`
	GridFiles  []string  `json:"grid_files"`
	Output     string    `json:"output"`
	Rows       int       `json:"rows"`
	CreatedAt  time.Time `json:"created_at"`
}

func WriteManifest(m Manifest, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeManifest(w, m)
	})
}

func EncodeManifest(w io.Writer, m Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
