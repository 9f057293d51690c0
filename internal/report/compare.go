package report

import (
	"github.com/AngelCh415/campaign-ab/internal/models"
)

type kpi struct {
	name string
	get  func(models.KPISummary) models.Ratio
}

// percentages are expressed in points, the rest as-is
var comparedKPIs = []kpi{
	{"CTR (%)", func(k models.KPISummary) models.Ratio { return k.CTR.Scale(100) }},
	{"Conversion Rate (%)", func(k models.KPISummary) models.Ratio { return k.ConversionRate.Scale(100) }},
	{"CPA (USD)", func(k models.KPISummary) models.Ratio { return k.CPA }},
	{"ROAS", func(k models.KPISummary) models.Ratio { return k.ROAS }},
	{"CPC (USD)", func(k models.KPISummary) models.Ratio { return k.CPC }},
}

// Compare lines up control and test per KPI. Diff is test-control, Lift is Diff/control.
func Compare(control, test models.KPISummary) []models.KPIComparison {
	out := make([]models.KPIComparison, 0, len(comparedKPIs))
	for _, k := range comparedKPIs {
		c, t := k.get(control), k.get(test)
		diff := t.Sub(c)
		lift := models.Ratio{}
		if diff.Valid {
			lift = models.Div(diff.Value, c.Value)
		}
		out = append(out, models.KPIComparison{KPI: k.name, Control: c, Test: t, Diff: diff, Lift: lift})
	}
	return out
}
