// Package observability collects per-run Prometheus metrics and writes them
// as a node_exporter textfile.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

const namespace = "campaign_ab"

// Metrics holds the metrics of a single analysis run. Each instance owns its
// registry so runs never share state.
type Metrics struct {
	reg *prometheus.Registry

	// Loader
	RowsLoaded *prometheus.CounterVec

	// Pipeline
	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	LastRun       prometheus.Gauge

	// Results
	TestsRun     *prometheus.CounterVec
	TestPValue   *prometheus.GaugeVec
	KPI          *prometheus.GaugeVec
	FilesWritten *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		RowsLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_loaded_total",
			Help:      "Daily rows loaded per variant",
		}, []string{"variant"}),

		StageRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by status",
		}, []string{"stage", "status"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished",
		}),

		TestsRun: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "tests_total",
			Help:      "Significance tests by outcome",
		}, []string{"metric", "outcome"}),
		TestPValue: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "p_value",
			Help:      "Two-sided p-value of the last test per metric",
		}, []string{"metric"}),
		KPI: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "kpi",
			Name:      "value",
			Help:      "Defined KPI values per variant",
		}, []string{"variant", "kpi"}),
		FilesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "files_written_total",
			Help:      "Output files written by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) RecordRows(v models.Variant, n int) {
	m.RowsLoaded.WithLabelValues(string(v)).Add(float64(n))
}

// RecordStage records one stage run; status is "ok" or "error".
func (m *Metrics) RecordStage(stage string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageRuns.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) RecordTest(r models.SignificanceResult) {
	outcome := "not_significant"
	switch {
	case !r.Ok():
		outcome = "error"
	case r.Significant:
		outcome = "significant"
	}
	m.TestsRun.WithLabelValues(r.Metric, outcome).Inc()
	if r.Ok() {
		m.TestPValue.WithLabelValues(r.Metric).Set(r.PValue)
	}
}

// RecordKPIs exports the defined ratios of s; undefined ones are left unset.
func (m *Metrics) RecordKPIs(s models.KPISummary) {
	for name, r := range map[string]models.Ratio{
		"ctr":             s.CTR,
		"conversion_rate": s.ConversionRate,
		"cpa":             s.CPA,
		"roas":            s.ROAS,
		"cpc":             s.CPC,
	} {
		if r.Valid {
			m.KPI.WithLabelValues(string(s.Variant), name).Set(r.Value)
		}
	}
}

func (m *Metrics) RecordFiles(kind string, n int) {
	m.FilesWritten.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile stamps the run time and writes the registry to path.
func (m *Metrics) WriteTextfile(path string, now time.Time) error {
	m.LastRun.Set(float64(now.Unix()))
	return prometheus.WriteToTextfile(path, m.reg)
}
