package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

const dateLayout = "2006-01-02"

// WriteTables writes every CSV table into dir and returns the paths, in write order.
func (r *Report) WriteTables(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("results dir: %w", err)
	}
	writers := []struct {
		name  string
		write func(string) error
	}{
		{KPISummaryFile, func(p string) error { return WriteKPISummary(p, r.Summaries) }},
		{TestsFile, func(p string) error { return WriteTests(p, r.Tests) }},
		{FunnelFile, func(p string) error { return WriteFunnels(p, r.Funnels) }},
		{KPIComparisonFile, func(p string) error { return WriteComparison(p, r.Comparison) }},
		{DailyFile, func(p string) error { return WriteDaily(p, r.Daily) }},
	}
	paths := make([]string, 0, len(writers))
	for _, w := range writers {
		p := filepath.Join(dir, w.name)
		if err := w.write(p); err != nil {
			return paths, fmt.Errorf("write %s: %w", w.name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func WriteKPISummary(path string, sums []models.KPISummary) error {
	header := []string{
		"variant",
		"days",
		"spend",
		"impressions",
		"reach",
		"website_clicks",
		"searches",
		"view_content",
		"add_to_cart",
		"checkout",
		"purchases",
		"order_value",
		"revenue",
		"ctr_pct",
		"conversion_rate_pct",
		"cpa",
		"roas",
		"cpc",
	}
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		t := s.Totals
		rows = append(rows, []string{
			string(s.Variant),
			strconv.Itoa(t.Days),
			t.Spend.StringFixed(2),
			fmtInt(t.Impressions),
			fmtInt(t.Reach),
			fmtInt(t.WebsiteClicks),
			fmtInt(t.Searches),
			fmtInt(t.ViewContent),
			fmtInt(t.AddToCart),
			fmtInt(t.Checkout),
			fmtInt(t.Purchases),
			s.OrderValue.StringFixed(2),
			s.Revenue.StringFixed(2),
			s.CTR.Scale(100).String(),
			s.ConversionRate.Scale(100).String(),
			s.CPA.String(),
			s.ROAS.String(),
			s.CPC.String(),
		})
	}
	return writeCSV(path, header, rows)
}

func WriteTests(path string, tests []models.SignificanceResult) error {
	header := []string{
		"metric",
		"method",
		"mean_control",
		"mean_test",
		"t_statistic",
		"df",
		"p_value",
		"alpha",
		"significant",
		"ci_low",
		"ci_high",
		"error",
	}
	rows := make([][]string, 0, len(tests))
	for _, r := range tests {
		if !r.Ok() {
			rows = append(rows, []string{
				r.Metric, r.Method,
				models.Undefined, models.Undefined, models.Undefined, models.Undefined, models.Undefined,
				fmtFloat(r.Alpha), "false",
				models.Undefined, models.Undefined,
				r.Err,
			})
			continue
		}
		rows = append(rows, []string{
			r.Metric,
			r.Method,
			fmtFloat(r.MeanControl),
			fmtFloat(r.MeanTest),
			fmtFloat(r.Statistic),
			fmtFloat(r.DF),
			fmtP(r.PValue),
			fmtFloat(r.Alpha),
			strconv.FormatBool(r.Significant),
			fmtFloat(r.CILow),
			fmtFloat(r.CIHigh),
			"",
		})
	}
	return writeCSV(path, header, rows)
}

func WriteFunnels(path string, funnels []models.Funnel) error {
	header := []string{"variant", "stage", "count", "pct_of_first", "step_rate"}
	var rows [][]string
	for _, f := range funnels {
		for _, s := range f.Stages {
			rows = append(rows, []string{
				string(f.Variant),
				s.Name,
				fmtInt(s.Count),
				s.PctOfFirst.Scale(100).String(),
				s.StepRate.Scale(100).String(),
			})
		}
	}
	return writeCSV(path, header, rows)
}

func WriteComparison(path string, cmp []models.KPIComparison) error {
	header := []string{"kpi", "control", "test", "difference", "lift_pct"}
	rows := make([][]string, 0, len(cmp))
	for _, c := range cmp {
		rows = append(rows, []string{
			c.KPI,
			c.Control.String(),
			c.Test.String(),
			c.Diff.String(),
			c.Lift.Scale(100).String(),
		})
	}
	return writeCSV(path, header, rows)
}

func WriteDaily(path string, daily []models.DailyMetrics) error {
	header := []string{
		"date",
		"variant",
		"spend",
		"impressions",
		"reach",
		"website_clicks",
		"purchases",
		"ctr_pct",
		"conversion_rate_pct",
		"cpa",
		"roas",
	}
	rows := make([][]string, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, []string{
			d.Date.Format(dateLayout),
			string(d.Variant),
			d.Spend.StringFixed(2),
			fmtInt(d.Impressions),
			fmtInt(d.Reach),
			fmtInt(d.WebsiteClicks),
			fmtInt(d.Purchases),
			d.CTR.Scale(100).String(),
			d.ConversionRate.Scale(100).String(),
			d.CPA.String(),
			d.ROAS.String(),
		})
	}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func fmtInt(n int64) string { return strconv.FormatInt(n, 10) }

func fmtFloat(x float64) string { return models.Defined(x).String() }

// p-values keep significant digits instead of fixed decimals
func fmtP(p float64) string {
	if !models.Defined(p).Valid {
		return models.Undefined
	}
	return strconv.FormatFloat(p, 'g', 8, 64)
}
