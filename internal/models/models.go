package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Variant string

const (
	Control Variant = "control"
	Test    Variant = "test"
)

// Variants is the fixed comparison order: control first.
var Variants = []Variant{Control, Test}

func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case Control:
		return Control, nil
	case Test:
		return Test, nil
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// Title is the display label used in tables and charts.
func (v Variant) Title() string {
	if v == "" {
		return ""
	}
	return strings.ToUpper(string(v[:1])) + string(v[1:])
}

type CampaignRecord struct {
	Date          time.Time
	Spend         decimal.Decimal
	Impressions   int64
	Reach         int64
	WebsiteClicks int64
	Searches      int64
	ViewContent   int64
	AddToCart     int64
	Checkout      int64
	Purchases     int64
}

type VariantDataset struct {
	Variant Variant
	Records []CampaignRecord
}

func (d VariantDataset) Len() int { return len(d.Records) }

type Totals struct {
	Days          int
	Spend         decimal.Decimal
	Impressions   int64
	Reach         int64
	WebsiteClicks int64
	Searches      int64
	ViewContent   int64
	AddToCart     int64
	Checkout      int64
	Purchases     int64
}

func (t *Totals) Add(r CampaignRecord) {
	t.Days++
	t.Spend = t.Spend.Add(r.Spend)
	t.Impressions += r.Impressions
	t.Reach += r.Reach
	t.WebsiteClicks += r.WebsiteClicks
	t.Searches += r.Searches
	t.ViewContent += r.ViewContent
	t.AddToCart += r.AddToCart
	t.Checkout += r.Checkout
	t.Purchases += r.Purchases
}

type KPISummary struct {
	Variant        Variant
	Totals         Totals
	OrderValue     decimal.Decimal
	Revenue        decimal.Decimal
	CTR            Ratio
	ConversionRate Ratio
	CPA            Ratio
	ROAS           Ratio
	CPC            Ratio
}

type DailyMetrics struct {
	Date           time.Time
	Variant        Variant
	Spend          decimal.Decimal
	Impressions    int64
	Reach          int64
	WebsiteClicks  int64
	Purchases      int64
	CTR            Ratio
	ConversionRate Ratio
	CPA            Ratio
	ROAS           Ratio
}

type SignificanceResult struct {
	Metric      string
	Method      string
	Statistic   float64
	DF          float64
	PValue      float64
	Alpha       float64
	Significant bool
	MeanControl float64
	MeanTest    float64
	// CI of MeanControl-MeanTest at 1-Alpha
	CriticalT float64
	CILow     float64
	CIHigh    float64
	Err       string
}

// Ok reports whether the test produced a statistic.
func (r SignificanceResult) Ok() bool { return r.Err == "" }

type FunnelStage struct {
	Name       string
	Count      int64
	PctOfFirst Ratio
	StepRate   Ratio
}

type Funnel struct {
	Variant Variant
	Stages  []FunnelStage
}

type KPIComparison struct {
	KPI     string
	Control Ratio
	Test    Ratio
	Diff    Ratio
	Lift    Ratio
}
