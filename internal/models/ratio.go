package models

import (
	"math"
	"strconv"
)

// Undefined is how a Ratio without a value is rendered in every table and label.
const Undefined = "undefined"

// Ratio is a derived value that may be undefined (zero denominator).
// The zero value is undefined.
type Ratio struct {
	Value float64
	Valid bool
}

func Defined(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}
	}
	return Ratio{Value: v, Valid: true}
}

func Div(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Defined(num / den)
}

func DivInt(num, den int64) Ratio { return Div(float64(num), float64(den)) }

// Scale multiplies a defined ratio, e.g. by 100 for percentages.
func (r Ratio) Scale(f float64) Ratio {
	if !r.Valid {
		return r
	}
	return Defined(r.Value * f)
}

func (r Ratio) Sub(o Ratio) Ratio {
	if !r.Valid || !o.Valid {
		return Ratio{}
	}
	return Defined(r.Value - o.Value)
}

// Or returns the value, or def when undefined.
func (r Ratio) Or(def float64) float64 {
	if !r.Valid {
		return def
	}
	return r.Value
}

// Format renders with a fixed number of decimals, or Undefined.
func (r Ratio) Format(prec int) string {
	if !r.Valid {
		return Undefined
	}
	return strconv.FormatFloat(r.Value, 'f', prec, 64)
}

func (r Ratio) String() string { return r.Format(6) }
