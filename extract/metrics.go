package extract

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics describes one run. Each run gets its own registry so the textfile
// holds only this run's values.
type Metrics struct {
	registry *prometheus.Registry

	TowerRows       prometheus.Gauge
	GridFiles       prometheus.Gauge
	CellDistanceKm  *prometheus.GaugeVec // labels: variable
	RowsWritten     prometheus.Counter
	FilesWritten    prometheus.Counter
	RunDuration     prometheus.Gauge
	LastSuccessTime prometheus.Gauge
}

func NewMetrics(command string, site string) *Metrics {
	labels := prometheus.Labels{"command": command, "site": site}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TowerRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flux_tools",
			Name:        "tower_rows",
			Help:        "Rows read from the tower file.",
			ConstLabels: labels,
		}),
		GridFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flux_tools",
			Name:        "grid_files",
			Help:        "Daily gridded files opened.",
			ConstLabels: labels,
		}),
		CellDistanceKm: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "flux_tools",
			Name:        "cell_distance_km",
			Help:        "Distance from the site to the centre of the selected grid cell.",
			ConstLabels: labels,
		}, []string{"variable"}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flux_tools",
			Name:        "rows_written_total",
			Help:        "Rows written across all output files.",
			ConstLabels: labels,
		}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flux_tools",
			Name:        "files_written_total",
			Help:        "Output files written.",
			ConstLabels: labels,
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flux_tools",
			Name:        "run_duration_seconds",
			Help:        "Wall time of the run.",
			ConstLabels: labels,
		}),
		LastSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flux_tools",
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time the run finished successfully.",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(
		m.TowerRows,
		m.GridFiles,
		m.CellDistanceKm,
		m.RowsWritten,
		m.FilesWritten,
		m.RunDuration,
		m.LastSuccessTime,
	)
	return m
}

// WriteText writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteText(w io.Writer) error {
	mfs, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
