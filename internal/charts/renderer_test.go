package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AngelCh415/campaign-ab/internal/metrics"
	"github.com/AngelCh415/campaign-ab/internal/models"
	"github.com/AngelCh415/campaign-ab/internal/report"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func buildReport(t *testing.T, control, test models.Totals) *report.Report {
	t.Helper()
	fifty := decimal.NewFromInt(50)
	rep, err := report.Build([]models.KPISummary{
		metrics.Summarize(models.Control, control, fifty),
		metrics.Summarize(models.Test, test, fifty),
	}, nil, nil)
	require.NoError(t, err)
	return rep
}

func TestRenderWritesAllCharts(t *testing.T) {
	rep := buildReport(t,
		models.Totals{Days: 30, Spend: decimal.NewFromInt(68679), Impressions: 3177233, Reach: 2576503,
			WebsiteClicks: 154303, Searches: 110979, ViewContent: 84323, AddToCart: 51266, Checkout: 36679, Purchases: 15161},
		models.Totals{Days: 30, Spend: decimal.NewFromInt(76892), Impressions: 2237544, Reach: 1604747,
			WebsiteClicks: 180970, Searches: 126115, ViewContent: 96940, AddToCart: 58949, Checkout: 41445, Purchases: 15637},
	)

	core, logs := observer.New(zapcore.DebugLevel)
	dir := filepath.Join(t.TempDir(), "images")
	paths, err := NewRenderer(dir, zap.New(core)).Render(rep)
	require.NoError(t, err)

	want := []string{KPIDashboardFile, PerformanceDashboardFile, ConversionRateFile, CPAFile, FunnelFile}
	require.Len(t, paths, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), paths[i])
		b, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, pngMagic), name)
	}
	assert.Equal(t, len(want), logs.FilterMessage("chart written").Len())
}

func TestRenderWithUndefinedRatios(t *testing.T) {
	rep := buildReport(t, models.Totals{}, models.Totals{Days: 1, Impressions: 10, WebsiteClicks: 1})

	paths, err := NewRenderer(t.TempDir(), nil).Render(rep)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestValueLabels(t *testing.T) {
	lbl, err := valueLabels([]bar{
		{value: models.Defined(4.529978)},
		{value: models.Ratio{}},
	}, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"4.53", models.Undefined}, lbl.Labels)
	assert.Equal(t, 0.0, lbl.XYs[1].Y)
	assert.Equal(t, 1.0, lbl.XYs[1].X)
}

func TestHeadroom(t *testing.T) {
	assert.Equal(t, 1.0, headroom(0))
	assert.InDelta(t, 11.5, headroom(10), 1e-12)
}

func TestFunnelPlotOrdersFirstStageOnTop(t *testing.T) {
	f := report.BuildFunnel(models.Test, models.Totals{Impressions: 100, Reach: 80, WebsiteClicks: 10, Purchases: 1}, report.DetailedStages)
	p, err := funnelPlot(f)
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Title.Text)
	assert.Equal(t, 0.0, p.X.Min)
}
