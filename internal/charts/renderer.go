// Package charts renders the comparison dashboards as PNG files.
package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/AngelCh415/campaign-ab/internal/models"
	"github.com/AngelCh415/campaign-ab/internal/report"
)

const (
	KPIDashboardFile         = "kpi_dashboard.png"
	PerformanceDashboardFile = "performance_dashboard.png"
	ConversionRateFile       = "conversion_rate_comparison.png"
	CPAFile                  = "cpa_comparison.png"
	FunnelFile               = "funnel_analysis.png"
)

var variantColors = map[models.Variant]color.Color{
	models.Control: color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff},
	models.Test:    color.RGBA{R: 0xdd, G: 0x84, B: 0x52, A: 0xff},
}

type Renderer struct {
	dir string
	log *zap.Logger
}

func NewRenderer(dir string, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{dir: dir, log: log}
}

// Render writes the fixed set of charts and returns their paths in write order.
func (r *Renderer) Render(rep *report.Report) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("images dir: %w", err)
	}
	steps := []struct {
		name string
		draw func(string, *report.Report) error
	}{
		{KPIDashboardFile, kpiDashboard},
		{PerformanceDashboardFile, performanceDashboard},
		{ConversionRateFile, conversionRateChart},
		{CPAFile, cpaChart},
		{FunnelFile, funnelChart},
	}
	paths := make([]string, 0, len(steps))
	for _, s := range steps {
		p := filepath.Join(r.dir, s.name)
		if err := s.draw(p, rep); err != nil {
			return paths, fmt.Errorf("chart %s: %w", s.name, err)
		}
		r.log.Debug("chart written", zap.String("path", p))
		paths = append(paths, p)
	}
	return paths, nil
}

// panel is one bar-chart tile: a value per variant.
type panel struct {
	title  string
	ylabel string
	prec   int
	value  func(models.KPISummary) models.Ratio
}

var (
	pConversion = panel{"Conversion Rate", "%", 2, func(k models.KPISummary) models.Ratio { return k.ConversionRate.Scale(100) }}
	pCPA        = panel{"Cost per Acquisition", "USD", 2, func(k models.KPISummary) models.Ratio { return k.CPA }}
	pCTR        = panel{"Click-Through Rate", "%", 2, func(k models.KPISummary) models.Ratio { return k.CTR.Scale(100) }}
	pROAS       = panel{"Return on Ad Spend", "x", 2, func(k models.KPISummary) models.Ratio { return k.ROAS }}
	pSpend      = panel{"Total Spend", "USD", 0, func(k models.KPISummary) models.Ratio {
		return models.Defined(k.Totals.Spend.InexactFloat64())
	}}
	pPurchases = panel{"Total Purchases", "purchases", 0, func(k models.KPISummary) models.Ratio {
		return models.Defined(float64(k.Totals.Purchases))
	}}
)

func kpiDashboard(path string, rep *report.Report) error {
	return dashboard(path, rep, "Campaign KPI Comparison", [][]panel{
		{pConversion, pCPA},
		{pCTR, pROAS},
	})
}

func performanceDashboard(path string, rep *report.Report) error {
	return dashboard(path, rep, "Campaign Performance", [][]panel{
		{pSpend, pPurchases},
		{pCTR, pROAS},
	})
}

func conversionRateChart(path string, rep *report.Report) error {
	p, err := panelPlot(pConversion, rep)
	if err != nil {
		return err
	}
	p.Title.Text = "Conversion Rate: Control vs Test"
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func cpaChart(path string, rep *report.Report) error {
	p, err := panelPlot(pCPA, rep)
	if err != nil {
		return err
	}
	p.Title.Text = "Cost per Acquisition: Control vs Test"
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func dashboard(path string, rep *report.Report, title string, grid [][]panel) error {
	plots := make([][]*plot.Plot, len(grid))
	for i, row := range grid {
		plots[i] = make([]*plot.Plot, len(row))
		for j, pn := range row {
			p, err := panelPlot(pn, rep)
			if err != nil {
				return err
			}
			plots[i][j] = p
		}
	}
	return savePNG(path, 10*vg.Inch, 8*vg.Inch, title, plots)
}

func panelPlot(pn panel, rep *report.Report) (*plot.Plot, error) {
	labels := make([]string, 0, len(models.Variants))
	bars := make([]bar, 0, len(models.Variants))
	for _, v := range models.Variants {
		s, ok := rep.Summary(v)
		if !ok {
			return nil, fmt.Errorf("missing %s summary", v)
		}
		labels = append(labels, v.Title())
		bars = append(bars, bar{value: pn.value(s), color: variantColors[v]})
	}
	p := plot.New()
	p.Title.Text = pn.title
	p.Y.Label.Text = pn.ylabel
	if err := addBars(p, bars, pn.prec); err != nil {
		return nil, err
	}
	p.NominalX(labels...)
	return p, nil
}

func savePNG(path string, w, h vg.Length, title string, plots [][]*plot.Plot) (err error) {
	img := vgimg.New(w, h)
	dc := draw.New(img)

	top := vg.Points(10)
	if title != "" {
		t := plot.New()
		t.Title.Text = title
		top = t.Title.TextStyle.Height(title) + vg.Points(16)
		dc.FillText(t.Title.TextStyle, vg.Point{X: dc.Center().X, Y: dc.Max.Y - vg.Points(8)}, title)
	}

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Points(20),
		PadY:      vg.Points(20),
		PadTop:    top,
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(f)
	return err
}
