// Package stats compares two independent samples with a two-sided t-test.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

type Method string

const (
	// Welch does not assume equal variances (Welch–Satterthwaite degrees of freedom).
	Welch Method = "welch"
	// Student pools the variances.
	Student Method = "student"
)

var ErrZeroVariance = errors.New("zero variance in both samples")

// InsufficientDataError is returned when a sample has fewer than two observations.
type InsufficientDataError struct {
	Sample string
	N      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: sample %q has %d observation(s), need at least 2", e.Sample, e.N)
}

type TTestResult struct {
	Method Method
	T      float64
	DF     float64
	P      float64
	MeanA  float64
	MeanB  float64
	// SE is the standard error of MeanA-MeanB.
	SE float64
}

// TTest runs an independent two-sample t-test of a against b.
func TTest(a, b []float64, m Method) (TTestResult, error) {
	if len(a) < 2 {
		return TTestResult{}, &InsufficientDataError{Sample: "a", N: len(a)}
	}
	if len(b) < 2 {
		return TTestResult{}, &InsufficientDataError{Sample: "b", N: len(b)}
	}
	na, nb := float64(len(a)), float64(len(b))
	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)

	res := TTestResult{Method: m, MeanA: ma, MeanB: mb}
	switch m {
	case Student:
		res.DF = na + nb - 2
		pooled := ((na-1)*va + (nb-1)*vb) / res.DF
		res.SE = math.Sqrt(pooled * (1/na + 1/nb))
	case Welch:
		qa, qb := va/na, vb/nb
		res.SE = math.Sqrt(qa + qb)
		if qa+qb > 0 {
			res.DF = (qa + qb) * (qa + qb) / (qa*qa/(na-1) + qb*qb/(nb-1))
		}
	default:
		return TTestResult{}, fmt.Errorf("unknown t-test method %q", m)
	}
	if res.SE == 0 {
		return TTestResult{}, ErrZeroVariance
	}

	res.T = (ma - mb) / res.SE
	res.P = twoSidedP(res.T, res.DF)
	return res, nil
}

// twoSidedP is P(|T| >= |t|) for Student's t with df degrees of freedom.
func twoSidedP(t, df float64) float64 {
	return mathext.RegIncBeta(df/2, 0.5, df/(df+t*t))
}

// CriticalT is the two-sided critical value at significance alpha.
func CriticalT(alpha, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)
}
