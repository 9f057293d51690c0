// Package pipeline runs one analysis: load, KPIs, significance tests, report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/AngelCh415/campaign-ab/internal/charts"
	"github.com/AngelCh415/campaign-ab/internal/config"
	"github.com/AngelCh415/campaign-ab/internal/ingest"
	"github.com/AngelCh415/campaign-ab/internal/metrics"
	"github.com/AngelCh415/campaign-ab/internal/models"
	"github.com/AngelCh415/campaign-ab/internal/observability"
	"github.com/AngelCh415/campaign-ab/internal/report"
	"github.com/AngelCh415/campaign-ab/internal/stats"
	"github.com/AngelCh415/campaign-ab/internal/store"
	"github.com/AngelCh415/campaign-ab/internal/utils"
)

const (
	StageLoad   = "load"
	StageKPI    = "kpi"
	StageStats  = "stats"
	StageReport = "report"
	StageCharts = "charts"
)

type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
	m   *observability.Metrics
	now func() time.Time
}

// Result lists what a run produced.
type Result struct {
	RunID       string
	Report      *report.Report
	Tables      []string
	Charts      []string
	MetricsFile string
}

// New builds a pipeline. The console summary goes to out; nil discards it.
func New(cfg *config.Config, log *zap.Logger, out io.Writer) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{cfg: cfg, log: log, out: out, m: observability.NewMetrics(), now: time.Now}
}

func (p *Pipeline) Metrics() *observability.Metrics { return p.m }

// Run executes every stage once. Input and output errors abort the run; a failed
// significance test is recorded in the report and the run goes on.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = utils.WithRunID(ctx)
	res := &Result{RunID: utils.RunID(ctx)}
	log := p.log.With(zap.String("run_id", res.RunID))
	log.Info("run started",
		zap.String("control", p.cfg.Input.ControlPath),
		zap.String("test", p.cfg.Input.TestPath))

	st := store.NewMemoryStore()
	err := p.stage(ctx, log, StageLoad, func() error {
		data, err := ingest.NewLoader(st, log, p.cfg.Input).Run(ctx)
		if err != nil {
			return err
		}
		for _, v := range models.Variants {
			p.m.RecordRows(v, data[v].Len())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		sums  []models.KPISummary
		daily []models.DailyMetrics
	)
	err = p.stage(ctx, log, StageKPI, func() error {
		svc := metrics.NewService(st, p.cfg.OrderValue)
		sums = svc.Summaries()
		for _, s := range sums {
			p.m.RecordKPIs(s)
			log.Info("kpis computed",
				zap.String("variant", string(s.Variant)),
				zap.String("ctr", s.CTR.String()),
				zap.String("conversion_rate", s.ConversionRate.String()),
				zap.String("cpa", s.CPA.String()),
				zap.String("roas", s.ROAS.String()))
		}
		for _, v := range models.Variants {
			daily = append(daily, svc.Daily(v)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var tests []models.SignificanceResult
	err = p.stage(ctx, log, StageStats, func() error {
		tests = p.significance(log, st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, log, StageReport, func() error {
		rep, err := report.Build(sums, tests, daily)
		if err != nil {
			return err
		}
		res.Report = rep
		res.Tables, err = rep.WriteTables(p.cfg.Output.ResultsDir)
		p.m.RecordFiles("table", len(res.Tables))
		if err != nil {
			return err
		}
		return rep.Console(p.out)
	})
	if err != nil {
		return nil, err
	}

	if p.cfg.Output.Charts {
		err = p.stage(ctx, log, StageCharts, func() error {
			var err error
			res.Charts, err = charts.NewRenderer(p.cfg.Output.ImagesDir, log).Render(res.Report)
			p.m.RecordFiles("chart", len(res.Charts))
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if name := p.cfg.Output.MetricsFile; name != "" {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.cfg.Output.ResultsDir, name)
		}
		if err := p.m.WriteTextfile(path, p.now()); err != nil {
			return nil, fmt.Errorf("metrics file: %w", err)
		}
		res.MetricsFile = path
	}

	log.Info("run finished",
		zap.Int("tables", len(res.Tables)),
		zap.Int("charts", len(res.Charts)))
	return res, nil
}

// significance runs one test per configured counter. Config validation
// guarantees every name parses.
func (p *Pipeline) significance(log *zap.Logger, st *store.MemoryStore) []models.SignificanceResult {
	tester := stats.NewTester(p.cfg.Significance.Alpha, p.cfg.Significance.EqualVariance)
	out := make([]models.SignificanceResult, 0, len(p.cfg.Significance.Metrics))
	for _, name := range p.cfg.Significance.Metrics {
		c, ok := models.ParseCounter(name)
		if !ok {
			continue
		}
		r, err := tester.Compare(c.Label(), st.Series(models.Control, c), st.Series(models.Test, c))
		p.m.RecordTest(r)
		out = append(out, r)
		if err != nil {
			fields := []zap.Field{zap.String("metric", r.Metric), zap.Error(err)}
			var ide *stats.InsufficientDataError
			if errors.As(err, &ide) {
				fields = append(fields, zap.String("variant", ide.Sample), zap.Int("n", ide.N))
			}
			log.Warn("significance test failed", fields...)
			continue
		}
		log.Info("significance test",
			zap.String("metric", r.Metric),
			zap.String("method", r.Method),
			zap.Float64("t", r.Statistic),
			zap.Float64("df", r.DF),
			zap.Float64("p_value", r.PValue),
			zap.Bool("significant", r.Significant))
	}
	return out
}

func (p *Pipeline) stage(ctx context.Context, log *zap.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	took := time.Since(start)
	p.m.RecordStage(name, err, took)
	if err != nil {
		log.Error("stage failed", zap.String("stage", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug("stage done", zap.String("stage", name), zap.Duration("took", took))
	return nil
}
