package extract

import (
	"errors"
	"fmt"

	"flux-tools/gridflux"
	"flux-tools/towerflux"
)

const (
	DefaultMetaPath  = "ameriflux-data/AmeriFlux-site-search-results-202410071335.tsv"
	DefaultTowerRoot = "ameriflux-data"
	DefaultGridRoot  = "micasa-data/daily-0.1deg-final/holding/3hrly"
	DefaultOutputDir = "output"

	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

var ErrCellTooFar = errors.New("nearest grid cell is beyond the distance limit")

// ConfigOpts carries everything a run needs besides its positional
// arguments.
type ConfigOpts struct {
	MetaPath      string
	TowerRoot     string
	GridRoot      string
	OutputDir     string
	Engine        gridflux.Engine
	Format        string
	AggFunc       towerflux.AggFunc
	FluxColumn    string
	MaxDistanceKm float64
	Manifest      bool
	MetricsFile   string
}

func DefaultConfig() ConfigOpts {
	return ConfigOpts{
		MetaPath:   DefaultMetaPath,
		TowerRoot:  DefaultTowerRoot,
		GridRoot:   DefaultGridRoot,
		OutputDir:  DefaultOutputDir,
		Engine:     gridflux.EngineNetCDF,
		Format:     FormatCSV,
		AggFunc:    towerflux.Mean,
		FluxColumn: towerflux.DefaultColumn,
	}
}

func (c ConfigOpts) validate() error {
	if c.Format != FormatCSV && c.Format != FormatParquet {
		return fmt.Errorf("unknown output format %q, choose csv or parquet", c.Format)
	}
	if _, err := gridflux.ParseEngine(string(c.Engine)); err != nil {
		return err
	}
	if c.AggFunc == nil {
		return errors.New("no aggregation function")
	}
	if c.FluxColumn == "" {
		return errors.New("no flux column")
	}
	return nil
}
