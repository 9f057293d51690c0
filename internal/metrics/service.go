package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/AngelCh415/campaign-ab/internal/models"
	"github.com/AngelCh415/campaign-ab/internal/store"
)

type Service struct {
	st         *store.MemoryStore
	orderValue decimal.Decimal
}

func NewService(st *store.MemoryStore, orderValue float64) *Service {
	return &Service{st: st, orderValue: decimal.NewFromFloat(orderValue)}
}

// Summary aggregates the whole window of v and derives the KPIs from the totals.
func (s *Service) Summary(v models.Variant) models.KPISummary {
	return Summarize(v, s.st.Totals(v), s.orderValue)
}

func (s *Service) Summaries() []models.KPISummary {
	out := make([]models.KPISummary, 0, len(models.Variants))
	for _, v := range models.Variants {
		out = append(out, s.Summary(v))
	}
	return out
}

// Daily returns one KPI row per day for v, date ordered.
func (s *Service) Daily(v models.Variant) []models.DailyMetrics {
	ds := s.st.Dataset(v)
	rows := make([]models.DailyMetrics, 0, ds.Len())
	for _, r := range ds.Records {
		spend := r.Spend.InexactFloat64()
		revenue := s.orderValue.Mul(decimal.NewFromInt(r.Purchases)).InexactFloat64()
		// métricas derivadas
		rows = append(rows, models.DailyMetrics{
			Date:           r.Date,
			Variant:        v,
			Spend:          r.Spend,
			Impressions:    r.Impressions,
			Reach:          r.Reach,
			WebsiteClicks:  r.WebsiteClicks,
			Purchases:      r.Purchases,
			CTR:            models.DivInt(r.WebsiteClicks, r.Impressions),
			ConversionRate: models.DivInt(r.Purchases, r.Reach),
			CPA:            models.Div(spend, float64(r.Purchases)),
			ROAS:           models.Div(revenue, spend),
		})
	}
	return rows
}

// Summarize derives KPIs from summed totals. Zero denominators yield undefined ratios.
func Summarize(v models.Variant, t models.Totals, orderValue decimal.Decimal) models.KPISummary {
	revenue := orderValue.Mul(decimal.NewFromInt(t.Purchases))
	spend := t.Spend.InexactFloat64()
	return models.KPISummary{
		Variant:        v,
		Totals:         t,
		OrderValue:     orderValue,
		Revenue:        revenue,
		CTR:            models.DivInt(t.WebsiteClicks, t.Impressions),
		ConversionRate: models.DivInt(t.Purchases, t.Reach),
		CPA:            models.Div(spend, float64(t.Purchases)),
		ROAS:           models.Div(revenue.InexactFloat64(), spend),
		CPC:            models.Div(spend, float64(t.WebsiteClicks)),
	}
}
