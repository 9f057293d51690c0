package stats

import (
	"errors"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

// Tester applies one method and one significance threshold to every comparison.
type Tester struct {
	alpha  float64
	method Method
}

func NewTester(alpha float64, equalVariance bool) *Tester {
	m := Welch
	if equalVariance {
		m = Student
	}
	return &Tester{alpha: alpha, method: m}
}

func (t *Tester) Method() Method { return t.method }
func (t *Tester) Alpha() float64 { return t.alpha }

// Compare tests control against test. On error the returned result carries the
// error text and is never significant.
func (t *Tester) Compare(metric string, control, test []float64) (models.SignificanceResult, error) {
	out := models.SignificanceResult{Metric: metric, Method: string(t.method), Alpha: t.alpha}
	res, err := TTest(control, test, t.method)
	if err != nil {
		var ide *InsufficientDataError
		if errors.As(err, &ide) {
			ide.Sample = sampleName(ide.Sample)
		}
		out.Err = err.Error()
		return out, err
	}
	out.Statistic = res.T
	out.DF = res.DF
	out.PValue = res.P
	out.Significant = res.P < t.alpha
	out.MeanControl = res.MeanA
	out.MeanTest = res.MeanB
	out.CriticalT = CriticalT(t.alpha, res.DF)
	diff := res.MeanA - res.MeanB
	out.CILow = diff - out.CriticalT*res.SE
	out.CIHigh = diff + out.CriticalT*res.SE
	return out, nil
}

func sampleName(s string) string {
	switch s {
	case "a":
		return string(models.Control)
	case "b":
		return string(models.Test)
	}
	return s
}
