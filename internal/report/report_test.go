package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-ab/internal/metrics"
	"github.com/AngelCh415/campaign-ab/internal/models"
)

var (
	controlTotals = models.Totals{
		Days: 30, Spend: decimal.NewFromInt(68679), Impressions: 3177233, Reach: 2576503,
		WebsiteClicks: 154303, Searches: 110979, ViewContent: 84323, AddToCart: 51266,
		Checkout: 36679, Purchases: 15161,
	}
	testTotals = models.Totals{
		Days: 30, Spend: decimal.NewFromInt(76892), Impressions: 2237544, Reach: 1604747,
		WebsiteClicks: 180970, Searches: 126115, ViewContent: 96940, AddToCart: 58949,
		Checkout: 41445, Purchases: 15637,
	}
)

func summaries() []models.KPISummary {
	fifty := decimal.NewFromInt(50)
	return []models.KPISummary{
		metrics.Summarize(models.Control, controlTotals, fifty),
		metrics.Summarize(models.Test, testTotals, fifty),
	}
}

func sampleTests() []models.SignificanceResult {
	return []models.SignificanceResult{
		{
			Metric: "Daily Purchases", Method: "welch", Statistic: -0.21353169290722304,
			DF: 57.603601826475774, PValue: 0.8316662533073949, Alpha: 0.05,
			MeanControl: 505.3667, MeanTest: 521.2333, CILow: -164.6, CIHigh: 132.9,
		},
		{Metric: "Daily Website Clicks", Method: "welch", Alpha: 0.05, Err: "insufficient data: sample \"test\" has 1 observation(s), need at least 2"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestBuildFunnelCore(t *testing.T) {
	f := BuildFunnel(models.Control, controlTotals, CoreStages)
	require.Len(t, f.Stages, 5)

	names := make([]string, 0, len(f.Stages))
	for _, s := range f.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Impressions", "Website Clicks", "Add to Cart", "Checkout", "Purchases"}, names)

	first := f.Stages[0]
	assert.Equal(t, int64(3177233), first.Count)
	assert.False(t, first.StepRate.Valid)
	assert.Equal(t, 1.0, first.PctOfFirst.Value)

	assert.Equal(t, "4.856521", f.Stages[1].StepRate.Scale(100).String())
	assert.Equal(t, "71.546444", f.Stages[3].StepRate.Scale(100).String())
	assert.Equal(t, "0.477176", f.Stages[4].PctOfFirst.Scale(100).String())
}

func TestBuildFunnelDetailed(t *testing.T) {
	f := BuildFunnel(models.Test, testTotals, DetailedStages)
	require.Len(t, f.Stages, 8)
	assert.Equal(t, "Reach", f.Stages[1].Name)
	assert.Equal(t, int64(126115), f.Stages[3].Count)
	assert.Equal(t, int64(15637), f.Stages[7].Count)
}

func TestBuildFunnelZeroStages(t *testing.T) {
	f := BuildFunnel(models.Control, models.Totals{Purchases: 3}, CoreStages)
	for _, s := range f.Stages {
		assert.False(t, s.PctOfFirst.Valid, s.Name)
	}
	// purchases after an empty checkout stage
	assert.False(t, f.Stages[4].StepRate.Valid)
	assert.Equal(t, models.Undefined, f.Stages[4].StepRate.String())
}

func TestCompare(t *testing.T) {
	s := summaries()
	cmp := Compare(s[0], s[1])
	require.Len(t, cmp, 5)

	byKPI := map[string]models.KPIComparison{}
	for _, c := range cmp {
		byKPI[c.KPI] = c
	}
	ctr := byKPI["CTR (%)"]
	assert.Equal(t, "4.856521", ctr.Control.String())
	assert.Equal(t, "8.087886", ctr.Test.String())
	assert.Equal(t, "3.231364", ctr.Diff.String())
	assert.Equal(t, "66.536601", ctr.Lift.Scale(100).String())

	roas := byKPI["ROAS"]
	assert.Less(t, roas.Diff.Value, 0.0)
	assert.Equal(t, "-7.876932", roas.Lift.Scale(100).String())

	cpa := byKPI["CPA (USD)"]
	assert.Equal(t, "8.550444", cpa.Lift.Scale(100).String())
}

func TestCompareUndefined(t *testing.T) {
	fifty := decimal.NewFromInt(50)
	empty := metrics.Summarize(models.Control, models.Totals{}, fifty)
	full := metrics.Summarize(models.Test, testTotals, fifty)

	for _, c := range Compare(empty, full) {
		assert.False(t, c.Control.Valid, c.KPI)
		assert.False(t, c.Diff.Valid, c.KPI)
		assert.False(t, c.Lift.Valid, c.KPI)
	}
}

func TestBuildRequiresBothVariants(t *testing.T) {
	_, err := Build(summaries()[:1], nil, nil)
	assert.Error(t, err)

	r, err := Build(summaries(), sampleTests(), nil)
	require.NoError(t, err)
	assert.Len(t, r.Funnels, 2)
	assert.Len(t, r.Detailed, 2)
	assert.Len(t, r.Comparison, 5)

	s, ok := r.Summary(models.Test)
	require.True(t, ok)
	assert.Equal(t, int64(15637), s.Totals.Purchases)

	f, ok := Funnel(r.Detailed, models.Control)
	require.True(t, ok)
	assert.Len(t, f.Stages, 8)
}

func TestWriteTables(t *testing.T) {
	day := time.Date(2019, 8, 1, 0, 0, 0, 0, time.UTC)
	daily := []models.DailyMetrics{{
		Date: day, Variant: models.Control, Spend: decimal.NewFromInt(2280),
		Impressions: 82702, Reach: 56930, WebsiteClicks: 7016, Purchases: 0,
		CTR: models.DivInt(7016, 82702), ConversionRate: models.DivInt(0, 56930),
		CPA: models.Div(2280, 0), ROAS: models.Div(0, 2280),
	}}
	r, err := Build(summaries(), sampleTests(), daily)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "results")
	paths, err := r.WriteTables(dir)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	assert.Equal(t, filepath.Join(dir, KPISummaryFile), paths[0])

	kpi := readCSV(t, paths[0])
	require.Len(t, kpi, 3)
	assert.Equal(t, "variant", kpi[0][0])
	assert.Equal(t, []string{
		"control", "30", "68679.00", "3177233", "2576503", "154303", "110979", "84323",
		"51266", "36679", "15161", "50.00", "758050.00",
		"4.856521", "0.588433", "4.529978", "11.037581", "0.445092",
	}, kpi[1])

	tests := readCSV(t, paths[1])
	require.Len(t, tests, 3)
	assert.Equal(t, "Daily Purchases", tests[1][0])
	assert.Equal(t, "0.83166625", tests[1][6])
	assert.Equal(t, "false", tests[1][8])
	assert.Equal(t, "", tests[1][11])
	assert.Equal(t, models.Undefined, tests[2][6])
	assert.Contains(t, tests[2][11], "insufficient data")

	funnel := readCSV(t, paths[2])
	require.Len(t, funnel, 1+2*len(CoreStages))
	assert.Equal(t, []string{"control", "Impressions", "3177233", "100.000000", models.Undefined}, funnel[1])

	cmp := readCSV(t, paths[3])
	assert.Len(t, cmp, 6)

	d := readCSV(t, paths[4])
	require.Len(t, d, 2)
	assert.Equal(t, "2019-08-01", d[1][0])
	assert.Equal(t, "0.000000", d[1][8])
	assert.Equal(t, models.Undefined, d[1][9])
}

func TestWriteTablesIsDeterministic(t *testing.T) {
	r, err := Build(summaries(), sampleTests(), nil)
	require.NoError(t, err)

	a, err := r.WriteTables(filepath.Join(t.TempDir(), "a"))
	require.NoError(t, err)
	b, err := r.WriteTables(filepath.Join(t.TempDir(), "b"))
	require.NoError(t, err)
	for i := range a {
		x, err := os.ReadFile(a[i])
		require.NoError(t, err)
		y, err := os.ReadFile(b[i])
		require.NoError(t, err)
		assert.Equal(t, x, y, filepath.Base(a[i]))
	}
}

func TestConsole(t *testing.T) {
	r, err := Build(summaries(), sampleTests(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Console(&buf))
	out := buf.String()
	assert.Contains(t, out, "Key Performance Indicators")
	assert.Contains(t, out, "Statistical Tests")
	assert.Contains(t, out, "CTR (%)")
	assert.Contains(t, out, "+66.54%")
	assert.Contains(t, out, "not significant")
	assert.Contains(t, out, "insufficient data")
}
