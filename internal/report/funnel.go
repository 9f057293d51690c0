package report

import (
	"github.com/AngelCh415/campaign-ab/internal/models"
)

type Stage struct {
	Name  string
	Count func(models.Totals) int64
}

var (
	stImpressions = Stage{"Impressions", func(t models.Totals) int64 { return t.Impressions }}
	stReach       = Stage{"Reach", func(t models.Totals) int64 { return t.Reach }}
	stClicks      = Stage{"Website Clicks", func(t models.Totals) int64 { return t.WebsiteClicks }}
	stSearches    = Stage{"Searches", func(t models.Totals) int64 { return t.Searches }}
	stViewContent = Stage{"View Content", func(t models.Totals) int64 { return t.ViewContent }}
	stAddToCart   = Stage{"Add to Cart", func(t models.Totals) int64 { return t.AddToCart }}
	stCheckout    = Stage{"Checkout", func(t models.Totals) int64 { return t.Checkout }}
	stPurchases   = Stage{"Purchases", func(t models.Totals) int64 { return t.Purchases }}
)

// CoreStages is the impression-to-purchase funnel written to funnel.csv.
var CoreStages = []Stage{stImpressions, stClicks, stAddToCart, stCheckout, stPurchases}

// DetailedStages adds every intermediate counter; used by the funnel chart.
var DetailedStages = []Stage{stImpressions, stReach, stClicks, stSearches, stViewContent, stAddToCart, stCheckout, stPurchases}

// BuildFunnel sums each stage over the window. PctOfFirst is relative to the
// first stage, StepRate to the previous one (undefined for the first stage).
func BuildFunnel(v models.Variant, t models.Totals, stages []Stage) models.Funnel {
	f := models.Funnel{Variant: v, Stages: make([]models.FunnelStage, 0, len(stages))}
	var first, prev int64
	for i, s := range stages {
		n := s.Count(t)
		fs := models.FunnelStage{Name: s.Name, Count: n}
		if i == 0 {
			first = n
		} else {
			fs.StepRate = models.DivInt(n, prev)
		}
		fs.PctOfFirst = models.DivInt(n, first)
		f.Stages = append(f.Stages, fs)
		prev = n
	}
	return f
}
