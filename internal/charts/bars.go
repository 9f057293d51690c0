package charts

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/AngelCh415/campaign-ab/internal/models"
	"github.com/AngelCh415/campaign-ab/internal/report"
)

type bar struct {
	value models.Ratio
	color color.Color
}

// addBars draws one vertical bar per value at x = 0..n-1, each labelled with
// its value. Undefined values are drawn at 0 and labelled "undefined".
func addBars(p *plot.Plot, bars []bar, prec int) error {
	peak := 0.0
	for i, b := range bars {
		v := b.value.Or(0)
		bc, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(50))
		if err != nil {
			return err
		}
		bc.XMin = float64(i)
		bc.Color = b.color
		bc.LineStyle.Width = 0
		p.Add(bc)
		if v > peak {
			peak = v
		}
	}

	lbl, err := valueLabels(bars, prec, false)
	if err != nil {
		return err
	}
	lbl.Offset = vg.Point{X: -vg.Points(12), Y: vg.Points(4)}
	p.Add(lbl)

	p.Y.Min = 0
	p.Y.Max = headroom(peak)
	return nil
}

func valueLabels(bars []bar, prec int, horizontal bool) (*plotter.Labels, error) {
	xy := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(bars)),
		Labels: make([]string, len(bars)),
	}
	for i, b := range bars {
		v := b.value.Or(0)
		if horizontal {
			xy.XYs[i] = plotter.XY{X: v, Y: float64(i)}
		} else {
			xy.XYs[i] = plotter.XY{X: float64(i), Y: v}
		}
		xy.Labels[i] = b.value.Format(prec)
	}
	return plotter.NewLabels(xy)
}

// headroom leaves space above the tallest bar for its label.
func headroom(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	return peak * 1.15
}

// funnelChart draws the detailed funnel as % of impressions, one panel per variant.
func funnelChart(path string, rep *report.Report) error {
	row := make([]*plot.Plot, 0, len(models.Variants))
	for _, v := range models.Variants {
		f, ok := report.Funnel(rep.Detailed, v)
		if !ok {
			continue
		}
		p, err := funnelPlot(f)
		if err != nil {
			return err
		}
		row = append(row, p)
	}
	return savePNG(path, 14*vg.Inch, 6*vg.Inch, "Conversion Funnel (% of impressions)", [][]*plot.Plot{row})
}

func funnelPlot(f models.Funnel) (*plot.Plot, error) {
	n := len(f.Stages)
	// first stage on top
	values := make(plotter.Values, n)
	names := make([]string, n)
	bars := make([]bar, n)
	peak := 0.0
	for i, s := range f.Stages {
		at := n - 1 - i
		pct := s.PctOfFirst.Scale(100)
		values[at] = pct.Or(0)
		names[at] = s.Name
		bars[at] = bar{value: pct}
		if values[at] > peak {
			peak = values[at]
		}
	}

	bc, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bc.Horizontal = true
	bc.Color = variantColors[f.Variant]
	bc.LineStyle.Width = 0

	lbl, err := valueLabels(bars, 2, true)
	if err != nil {
		return nil, err
	}
	lbl.Offset = vg.Point{X: vg.Points(4), Y: -vg.Points(4)}

	p := plot.New()
	p.Title.Text = f.Variant.Title()
	p.X.Label.Text = "% of impressions"
	p.Add(bc, lbl)
	p.NominalY(names...)
	p.X.Min = 0
	p.X.Max = headroom(peak) + 10
	return p, nil
}
