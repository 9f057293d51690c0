// Package report turns KPI summaries and test results into the output tables.
package report

import (
	"fmt"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

const (
	KPISummaryFile    = "kpi_summary.csv"
	TestsFile         = "statistical_tests.csv"
	FunnelFile        = "funnel.csv"
	KPIComparisonFile = "kpi_comparison.csv"
	DailyFile         = "daily_metrics.csv"
)

// Report is everything the writers and the console need, in output order.
type Report struct {
	Summaries  []models.KPISummary
	Tests      []models.SignificanceResult
	Funnels    []models.Funnel
	Detailed   []models.Funnel
	Comparison []models.KPIComparison
	Daily      []models.DailyMetrics
}

// Build assembles the report. Summaries must contain both variants.
func Build(sums []models.KPISummary, tests []models.SignificanceResult, daily []models.DailyMetrics) (*Report, error) {
	byVariant := make(map[models.Variant]models.KPISummary, len(sums))
	for _, s := range sums {
		byVariant[s.Variant] = s
	}
	r := &Report{Tests: tests, Daily: daily}
	for _, v := range models.Variants {
		s, ok := byVariant[v]
		if !ok {
			return nil, fmt.Errorf("report: missing %s summary", v)
		}
		r.Summaries = append(r.Summaries, s)
		r.Funnels = append(r.Funnels, BuildFunnel(v, s.Totals, CoreStages))
		r.Detailed = append(r.Detailed, BuildFunnel(v, s.Totals, DetailedStages))
	}
	r.Comparison = Compare(byVariant[models.Control], byVariant[models.Test])
	return r, nil
}

// Summary returns the KPI summary of v.
func (r *Report) Summary(v models.Variant) (models.KPISummary, bool) {
	for _, s := range r.Summaries {
		if s.Variant == v {
			return s, true
		}
	}
	return models.KPISummary{}, false
}

// Funnel returns the funnel of v from set (r.Funnels or r.Detailed).
func Funnel(set []models.Funnel, v models.Variant) (models.Funnel, bool) {
	for _, f := range set {
		if f.Variant == v {
			return f, true
		}
	}
	return models.Funnel{}, false
}
