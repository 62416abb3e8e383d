package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalIntegerPicksSmallestType(t *testing.T) {
	pos := Position{File: "t.prog", Line: 1, Column: 1}

	cases := []struct {
		n        int64
		wantType DataType
	}{
		{0, UBYTE},
		{255, UBYTE},
		{-1, BYTE},
		{-128, BYTE},
		{256, UWORD},
		{65535, UWORD},
		{-129, WORD},
		{-32768, WORD},
	}

	for _, c := range cases {
		lit, err := OptimalInteger(c.n, pos)
		require.NoError(t, err)
		assert.Equal(t, c.wantType, lit.Type, "n=%d", c.n)

		// OptimalInteger never narrows: result's range must contain n (§8).
		min, max, ok := IntegerRange(lit.Type)
		require.True(t, ok)
		assert.GreaterOrEqual(t, c.n, min)
		assert.LessOrEqual(t, c.n, max)
	}
}

func TestOptimalIntegerOverflowIsFatal(t *testing.T) {
	pos := Position{File: "t.prog", Line: 1, Column: 1}
	_, err := OptimalInteger(65536, pos)
	assert.Error(t, err)
	_, err = OptimalInteger(-32769, pos)
	assert.Error(t, err)
}

func TestOptimalNumericPromotesToFloatOnFraction(t *testing.T) {
	pos := Position{File: "t.prog", Line: 1, Column: 1}
	lit, err := OptimalNumeric(3.5, pos)
	require.NoError(t, err)
	assert.Equal(t, FLOAT, lit.Type)

	lit, err = OptimalNumeric(7, pos)
	require.NoError(t, err)
	assert.Equal(t, UBYTE, lit.Type)
}

func TestAsIntegerValueSignExtends(t *testing.T) {
	pos := Position{}
	lit := NewInteger(BYTE, -1, pos)
	iv, ok := lit.AsIntegerValue()
	require.True(t, ok)
	assert.Equal(t, int64(-1), iv)
}

func TestLiteralEqualCrossType(t *testing.T) {
	pos := Position{}
	a := NewInteger(UBYTE, 5, pos)
	b := NewInteger(UWORD, 5, pos)
	assert.True(t, a.Equal(b, nil))
}

func TestHeapStableIDsAndSentinel(t *testing.T) {
	h := NewHeap()
	id1 := h.AddString("hello", STR)
	id2 := h.AddString("world", STR)
	assert.NotEqual(t, id1, id2)

	s1 := h.StringSentinel()
	s2 := h.StringSentinel()
	assert.Equal(t, s1, s2, "sentinel is allocated once and reused")

	entry, ok := h.String(id1)
	require.True(t, ok)
	assert.Equal(t, "hello", entry.Value)
}

func TestHeapEqualByContentNotID(t *testing.T) {
	h := NewHeap()
	id1 := h.AddString("same", STR)
	id2 := h.AddString("same", STR)
	assert.NotEqual(t, id1, id2)
	assert.True(t, h.Equal(id1, id2), "equal content, different ids, still equal at the language level")
}
