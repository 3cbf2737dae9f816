// Package extract runs the site extraction pipelines: resolve the site,
// locate its files, load and convert the tower series, pull the nearest grid
// cell and write the merged result.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"flux-tools/fluxio"
	"flux-tools/gridflux"
	"flux-tools/locate"
	"flux-tools/sitemeta"
	"flux-tools/towerflux"

	"github.com/sirupsen/logrus"
)

const (
	towerSource = "FluxNET"
	gridSource  = "MiCASA"

	// MiCASA variable extracted by the micasa command.
	micasaVariable = "NEE"
)

// output is a frame ready to write along with its provenance.
type output struct {
	path     string
	frame    fluxio.Frame
	manifest fluxio.Manifest
}

type run struct {
	cfg     ConfigOpts
	metrics *Metrics
	start   time.Time
}

func newRun(cfg ConfigOpts, command string, siteID string) (*run, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &run{cfg: cfg, metrics: NewMetrics(command, siteID), start: clock.Now()}, nil
}

// Micasa extracts half-hourly tower NEE resampled to 3 hours next to the
// nearest MiCASA NEE cell, writing <site>_micasa. It returns the written paths.
func Micasa(cfg ConfigOpts, siteID string) ([]string, error) {
	r, err := newRun(cfg, "micasa", siteID)
	if err != nil {
		return nil, err
	}
	site, err := sitemeta.Resolve(cfg.MetaPath, siteID)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Resolved site %v", site)

	tower, towerPath, err := r.loadTower(site, towerflux.HalfHourly, nil)
	if err != nil {
		return nil, err
	}
	gridPaths, err := r.gridFiles(tower)
	if err != nil {
		return nil, err
	}
	grid, cell, err := r.extractCell(gridPaths, micasaVariable, site)
	if err != nil {
		return nil, err
	}

	frame := fluxio.Merge(tower, grid)
	out := output{
		path:     r.outputPath(siteID + "_micasa"),
		frame:    frame,
		manifest: r.manifest(site, "", towerflux.HalfHourly, micasaVariable, cell, towerPath, gridPaths),
	}
	return r.write("time", out)
}

// Compare converts the tower series from local standard time to UTC, then
// writes one file per requested grid variable, <site>_<variable>_<res>.
// Nothing is written unless every variable succeeds.
func Compare(cfg ConfigOpts, siteID string, res towerflux.Resolution, variables []string) ([]string, error) {
	r, err := newRun(cfg, "compare", siteID)
	if err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return nil, fmt.Errorf("no grid variables requested")
	}
	site, err := sitemeta.Resolve(cfg.MetaPath, siteID)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Resolved site %v", site)

	loc, err := towerflux.Location(site.Lat, site.Lon)
	if err != nil {
		return nil, err
	}
	tower, towerPath, err := r.loadTower(site, res, loc)
	if err != nil {
		return nil, err
	}
	gridPaths, err := r.gridFiles(tower)
	if err != nil {
		return nil, err
	}

	var outs []output
	for _, variable := range variables {
		grid, cell, err := r.extractCell(gridPaths, variable, site)
		if err != nil {
			return nil, err
		}
		if res == towerflux.Daily {
			grid = towerflux.Resample(grid, res.Interval(), towerflux.Mean)
		}
		outs = append(outs, output{
			path:     r.outputPath(fmt.Sprintf("%s_%s_%s", siteID, variable, res)),
			frame:    fluxio.Merge(tower, grid),
			manifest: r.manifest(site, loc.String(), res, variable, cell, towerPath, gridPaths),
		})
	}
	return r.write("time_utc", outs...)
}

// loadTower locates, loads, converts and resamples the tower series. A
// non-nil loc shifts the naive timestamps from local standard time to UTC
// before resampling.
func (r *run) loadTower(site sitemeta.Site, res towerflux.Resolution, loc *time.Location) (towerflux.Series, string, error) {
	logrus.Debug("Entered loadTower")
	path, err := locate.SingleMatch(towerflux.TowerPattern(r.cfg.TowerRoot, site.ID, res))
	if err != nil {
		return towerflux.Series{}, "", err
	}
	s, err := towerflux.LoadFile(path, res, r.cfg.FluxColumn)
	if err != nil {
		return towerflux.Series{}, "", err
	}
	if s.Len() == 0 {
		return towerflux.Series{}, "", fmt.Errorf("%s: no rows", path)
	}
	r.metrics.TowerRows.Set(float64(s.Len()))
	logrus.Infof("Loaded %v", s)

	s = towerflux.Convert(s, res.Factor(), towerflux.TargetUnits)
	if loc != nil {
		s = towerflux.LocalStandardToUTC(s, loc)
	}
	s = towerflux.Resample(s, res.Interval(), r.cfg.AggFunc)
	s.Name = fluxio.Label(towerSource, quantity(r.cfg.FluxColumn), s.Units)
	return s, path, nil
}

// quantity strips the FLUXNET method suffixes: NEE_VUT_REF -> NEE.
func quantity(column string) string {
	q, _, _ := strings.Cut(column, "_")
	return q
}

func (r *run) gridFiles(tower towerflux.Series) ([]string, error) {
	paths, err := gridflux.DailyFiles(r.cfg.GridRoot, gridflux.Dates(tower.Times))
	if err != nil {
		return nil, err
	}
	r.metrics.GridFiles.Set(float64(len(paths)))
	return paths, nil
}

// extractCell opens the daily files as one dataset, picks the cell nearest
// the site and reads its series. The files are closed before returning.
func (r *run) extractCell(paths []string, variable string, site sitemeta.Site) (s towerflux.Series, cell gridflux.Cell, err error) {
	logrus.Debug("Entered extractCell")
	ds, err := gridflux.Open(paths, variable, r.cfg.Engine)
	if err != nil {
		return s, cell, err
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cell, err = ds.Nearest(site.Lat, site.Lon)
	if err != nil {
		return s, cell, err
	}
	r.metrics.CellDistanceKm.WithLabelValues(variable).Set(cell.DistanceKm)
	if r.cfg.MaxDistanceKm > 0 && cell.DistanceKm > r.cfg.MaxDistanceKm {
		return s, cell, fmt.Errorf("%w: %s is %.2f km from %s (limit %.2f km)",
			ErrCellTooFar, cell, cell.DistanceKm, site.ID, r.cfg.MaxDistanceKm)
	}

	s, err = ds.Series(cell)
	if err != nil {
		return s, cell, err
	}
	units := s.Units
	if units == "" {
		units = towerflux.TargetUnits
	}
	s.Name = fluxio.Label(gridSource, variable, units)
	return s, cell, nil
}

func (r *run) outputPath(stem string) string {
	ext := ".csv"
	if r.cfg.Format == FormatParquet {
		ext = ".parquet"
	}
	return filepath.Join(r.cfg.OutputDir, stem+ext)
}

func (r *run) manifest(site sitemeta.Site, zone string, res towerflux.Resolution, variable string,
	cell gridflux.Cell, towerPath string, gridPaths []string) fluxio.Manifest {
	return fluxio.Manifest{
		Site:       site.ID,
		SiteName:   site.Name,
		Latitude:   site.Lat,
		Longitude:  site.Lon,
		TimeZone:   zone,
		Resolution: string(res),
		Variable:   variable,
		CellLat:    cell.Lat,
		CellLon:    cell.Lon,
		DistanceKm: cell.DistanceKm,
		TowerFile:  towerPath,
		GridFiles:  gridPaths,
	}
}

// write is the only stage that touches the output directory.
func (r *run) write(timeHeader string, outs ...output) (_ []string, err error) {
	logrus.Debug("Entered write")
	var batch fluxio.Batch
	defer func() {
		if err != nil {
			err = errors.Join(err, batch.Discard())
		}
	}()

	for _, out := range outs {
		frame := out.frame
		if err := batch.Add(out.path, func(w io.Writer) error {
			if r.cfg.Format == FormatParquet {
				return fluxio.EncodeParquet(w, frame)
			}
			return fluxio.EncodeCSV(w, frame, timeHeader)
		}); err != nil {
			return nil, err
		}
		r.metrics.RowsWritten.Add(float64(frame.Len()))
		r.metrics.FilesWritten.Inc()

		if r.cfg.Manifest {
			m := out.manifest
			m.Output = out.path
			m.Rows = frame.Len()
			m.CreatedAt = clock.Now().UTC()
			mpath := strings.TrimSuffix(out.path, filepath.Ext(out.path)) + ".json"
			if err := batch.Add(mpath, func(w io.Writer) error {
				return fluxio.EncodeManifest(w, m)
			}); err != nil {
				return nil, err
			}
		}
	}

	now := clock.Now()
	r.metrics.RunDuration.Set(now.Sub(r.start).Seconds())
	r.metrics.LastSuccessTime.Set(float64(now.Unix()))
	if r.cfg.MetricsFile != "" {
		if err := batch.Add(r.cfg.MetricsFile, r.metrics.WriteText); err != nil {
			return nil, err
		}
	}

	written, err := batch.Commit()
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		logrus.Infof("Wrote %d rows to %s", out.frame.Len(), out.path)
	}
	if r.cfg.MetricsFile != "" {
		logrus.Infof("Wrote metrics to %s", r.cfg.MetricsFile)
		written = written[:len(written)-1]
	}
	return written, nil
}
