package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivZeroIsUndefined(t *testing.T) {
	r := DivInt(10, 0)
	assert.False(t, r.Valid)
	assert.Equal(t, Undefined, r.String())
	assert.Equal(t, -1.0, r.Or(-1))
}

func TestDefinedRejectsNaNAndInf(t *testing.T) {
	assert.False(t, Defined(math.NaN()).Valid)
	assert.False(t, Defined(math.Inf(1)).Valid)
	assert.True(t, Defined(0).Valid)
}

func TestRatioArithmetic(t *testing.T) {
	a := DivInt(1, 4)
	require.True(t, a.Valid)
	assert.Equal(t, "25.00", a.Scale(100).Format(2))
	assert.Equal(t, "0.150000", a.Sub(Defined(0.1)).String())
	assert.False(t, a.Sub(Ratio{}).Valid)
	assert.False(t, Ratio{}.Scale(100).Valid)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("  Control ")
	require.NoError(t, err)
	assert.Equal(t, Control, v)
	assert.Equal(t, "Test", Test.Title())

	_, err = ParseVariant("holdout")
	assert.Error(t, err)
}
