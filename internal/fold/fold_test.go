package fold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"prog8core/internal/value"
)

func lit(t value.DataType, n int64) value.Literal {
	return value.NewInteger(t, n, value.Position{})
}

func TestEvaluateAdditiveIdentity(t *testing.T) {
	a := lit(value.UBYTE, 42)
	zero := lit(value.UBYTE, 0)
	r, err := Evaluate(a, "+", zero, nil, value.Position{})
	require.NoError(t, err)
	assert.True(t, r.Equal(a, nil))
}

func TestEvaluateMultiplicativeIdentity(t *testing.T) {
	a := lit(value.UWORD, 1000)
	one := lit(value.UBYTE, 1)
	r, err := Evaluate(a, "*", one, nil, value.Position{})
	require.NoError(t, err)
	assert.True(t, r.Equal(a, nil))
}

func TestEvaluateAddThenSubtractRoundTripsFloat(t *testing.T) {
	a := value.NewFloat(3.5, value.Position{})
	b := value.NewFloat(1.25, value.Position{})
	sum, err := Evaluate(a, "+", b, nil, value.Position{})
	require.NoError(t, err)
	back, err := Evaluate(sum, "-", b, nil, value.Position{})
	require.NoError(t, err)
	af, _ := a.AsNumericValue()
	bf, _ := back.AsNumericValue()
	assert.InDelta(t, af, bf, 0.0001)
}

func TestEvaluateIntegerDivisionByZero(t *testing.T) {
	a := lit(value.UBYTE, 10)
	zero := lit(value.UBYTE, 0)
	_, err := Evaluate(a, "/", zero, nil, value.Position{})
	assert.Error(t, err)
}

func TestEvaluateFloatDivisionByZero(t *testing.T) {
	a := value.NewFloat(1.0, value.Position{})
	zero := value.NewFloat(0.0, value.Position{})
	_, err := Evaluate(a, "/", zero, nil, value.Position{})
	assert.Error(t, err)
}

func TestEvaluateModuloRejectsSignedOperands(t *testing.T) {
	a := lit(value.BYTE, 10)
	b := lit(value.UBYTE, 3)
	_, err := Evaluate(a, "%", b, nil, value.Position{})
	assert.Error(t, err)
}

func TestEvaluateModuloAcceptsUnsignedOperands(t *testing.T) {
	a := lit(value.UBYTE, 10)
	b := lit(value.UBYTE, 3)
	r, err := Evaluate(a, "%", b, nil, value.Position{})
	require.NoError(t, err)
	iv, _ := r.AsIntegerValue()
	assert.Equal(t, int64(1), iv)
}

func TestStringRepeatWithinLimit(t *testing.T) {
	h := value.NewHeap()
	id := h.AddString("ab", value.STR)
	s := value.NewHeapLiteral(value.STR, id, value.Position{})
	n := lit(value.UBYTE, 3)
	r, err := Evaluate(s, "*", n, h, value.Position{})
	require.NoError(t, err)
	rid, _ := r.HeapID()
	entry, ok := h.String(rid)
	require.True(t, ok)
	assert.Equal(t, "ababab", entry.Value)
}

func TestStringRepeatExceedsMaxLengthErrors(t *testing.T) {
	h := value.NewHeap()
	id := h.AddString("abcdefghij", value.STR)
	s := value.NewHeapLiteral(value.STR, id, value.Position{})
	n := lit(value.UBYTE, 30)
	_, err := Evaluate(s, "*", n, h, value.Position{})
	assert.Error(t, err)
}

func TestUnaryMinusOnMostNegativeByteOverflows(t *testing.T) {
	operand := lit(value.BYTE, -128)
	_, err := EvaluateUnary("-", operand, value.Position{})
	assert.Error(t, err, "-128 negated overflows BYTE's own range and must be rejected, not promoted to UBYTE")
}

func TestUnaryMinusOnOrdinaryByteNegates(t *testing.T) {
	operand := lit(value.BYTE, -5)
	r, err := EvaluateUnary("-", operand, value.Position{})
	require.NoError(t, err)
	iv, _ := r.AsIntegerValue()
	assert.Equal(t, int64(5), iv)
	assert.Equal(t, value.BYTE, r.Type)
}

func TestUnaryMinusRejectsUnsignedOperand(t *testing.T) {
	operand := lit(value.UBYTE, 5)
	_, err := EvaluateUnary("-", operand, value.Position{})
	assert.Error(t, err)
}

func TestUnaryBitwiseInvertPreservesType(t *testing.T) {
	operand := lit(value.UBYTE, 0)
	r, err := EvaluateUnary("~", operand, value.Position{})
	require.NoError(t, err)
	assert.Equal(t, value.UBYTE, r.Type)
	iv, _ := r.AsIntegerValue()
	assert.Equal(t, int64(255), iv)
}

func TestShiftRightIsArithmeticForSignedLogicalForUnsigned(t *testing.T) {
	signed := lit(value.BYTE, -8)
	one := lit(value.UBYTE, 1)
	r, err := Evaluate(signed, ">>", one, nil, value.Position{})
	require.NoError(t, err)
	iv, _ := r.AsIntegerValue()
	assert.Equal(t, int64(-4), iv)

	unsigned := lit(value.UBYTE, 0x80)
	r2, err := Evaluate(unsigned, ">>", one, nil, value.Position{})
	require.NoError(t, err)
	iv2, _ := r2.AsIntegerValue()
	assert.Equal(t, int64(0x40), iv2)
}

func TestCompareEqualityIsCrossTypeNumeric(t *testing.T) {
	a := lit(value.UBYTE, 5)
	b := lit(value.UWORD, 5)
	r, err := Evaluate(a, "==", b, nil, value.Position{})
	require.NoError(t, err)
	assert.True(t, r.AsBooleanValue())
}
