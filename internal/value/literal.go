package value

import (
	"fmt"
	"math"
)

// Literal is a tagged value carrying exactly one of bytevalue, wordvalue,
// floatvalue, or a HeapID referencing a string/array on the heap (§3). The
// populated field is always consistent with Type.
type Literal struct {
	Type     DataType
	Pos      Position
	byteVal  int64 // holds UBYTE/BYTE
	wordVal  int64 // holds UWORD/WORD
	floatVal float64
	heapID   HeapID
	isHeap   bool
}

// NewInteger constructs an integer literal of the given type without bounds
// checking; callers that need validation should use FromNumber.
func NewInteger(t DataType, n int64, pos Position) Literal {
	lit := Literal{Type: t, Pos: pos}
	if t.IsByte() {
		lit.byteVal = n
	} else {
		lit.wordVal = n
	}
	return lit
}

// NewFloat constructs a FLOAT literal.
func NewFloat(f float64, pos Position) Literal {
	return Literal{Type: FLOAT, Pos: pos, floatVal: f}
}

// NewHeapLiteral constructs a STR/STR_S/array-typed literal referencing id.
func NewHeapLiteral(t DataType, id HeapID, pos Position) Literal {
	return Literal{Type: t, Pos: pos, heapID: id, isHeap: true}
}

// HeapID returns the literal's heap reference and whether it has one.
func (l Literal) HeapID() (HeapID, bool) { return l.heapID, l.isHeap }

// AsIntegerValue returns the literal's value sign-extended per its declared
// type, when the type is integral.
func (l Literal) AsIntegerValue() (int64, bool) {
	switch l.Type {
	case UBYTE:
		return l.byteVal & 0xFF, true
	case BYTE:
		v := l.byteVal & 0xFF
		if v > MaxByte {
			v -= 256
		}
		return v, true
	case UWORD:
		return l.wordVal & 0xFFFF, true
	case WORD:
		v := l.wordVal & 0xFFFF
		if v > MaxWord {
			v -= 65536
		}
		return v, true
	default:
		return 0, false
	}
}

// AsNumericValue float-coerces the literal, including FLOAT values.
func (l Literal) AsNumericValue() (float64, bool) {
	if l.Type == FLOAT {
		return l.floatVal, true
	}
	if iv, ok := l.AsIntegerValue(); ok {
		return float64(iv), true
	}
	return 0, false
}

// AsBooleanValue reports the literal's truthiness (nonzero), per the
// "logical operates on truthiness" rule (§4.D).
func (l Literal) AsBooleanValue() bool {
	if n, ok := l.AsNumericValue(); ok {
		return n != 0
	}
	return false
}

// ExceedsError is returned by the optimalXxx/fromXxx constructors on
// overflow (§4.A: "overflow is a fatal error").
type ExceedsError struct {
	Value float64
	Pos   Position
}

func (e *ExceedsError) Error() string {
	return fmt.Sprintf("%s: value %v is out of range for any numeric type", e.Pos, e.Value)
}

// OptimalInteger picks the smallest integer type that contains n:
// UBYTE if 0<=n<=255, BYTE if -128<=n<0, UWORD if 0<=n<=65535, WORD if
// -32768<=n<0. Overflow is a fatal error (§4.A).
func OptimalInteger(n int64, pos Position) (Literal, error) {
	switch {
	case n >= 0 && n <= MaxUByte:
		return NewInteger(UBYTE, n, pos), nil
	case n < 0 && n >= MinByte:
		return NewInteger(BYTE, n, pos), nil
	case n >= 0 && n <= MaxUWord:
		return NewInteger(UWORD, n, pos), nil
	case n < 0 && n >= MinWord:
		return NewInteger(WORD, n, pos), nil
	default:
		return Literal{}, &ExceedsError{Value: float64(n), Pos: pos}
	}
}

// OptimalNumeric returns FLOAT if x has a fractional part or is out of
// integer range; otherwise it delegates to OptimalInteger (§4.A).
func OptimalNumeric(x float64, pos Position) (Literal, error) {
	if math.Trunc(x) != x || x < MinWord || x > MaxUWord {
		if math.Abs(x) > MaxFloatMagnitude {
			return Literal{}, &ExceedsError{Value: x, Pos: pos}
		}
		return NewFloat(x, pos), nil
	}
	return OptimalInteger(int64(x), pos)
}

// FromBoolean returns a UBYTE 1/0 literal.
func FromBoolean(b bool, pos Position) Literal {
	n := int64(0)
	if b {
		n = 1
	}
	return NewInteger(UBYTE, n, pos)
}

// FromNumber coerces n into the requested type with bounds checking.
func FromNumber(n float64, t DataType, pos Position) (Literal, error) {
	if t == FLOAT {
		if math.Abs(n) > MaxFloatMagnitude {
			return Literal{}, &ExceedsError{Value: n, Pos: pos}
		}
		return NewFloat(n, pos), nil
	}
	if math.Trunc(n) != n {
		return Literal{}, &ExceedsError{Value: n, Pos: pos}
	}
	min, max, ok := IntegerRange(t)
	if !ok {
		return Literal{}, &ExceedsError{Value: n, Pos: pos}
	}
	iv := int64(n)
	if iv < min || iv > max {
		return Literal{}, &ExceedsError{Value: n, Pos: pos}
	}
	return NewInteger(t, iv, pos), nil
}

// Equal reports whether two literal values are equal: cross-type numeric
// comparisons compare by numeric value, and heap-backed values compare by
// heap content (§4.A).
func (l Literal) Equal(other Literal, h *Heap) bool {
	if l.Type.IsNumeric() && other.Type.IsNumeric() {
		ln, _ := l.AsNumericValue()
		on, _ := other.AsNumericValue()
		return ln == on
	}
	if l.isHeap && other.isHeap {
		return h.Equal(l.heapID, other.heapID)
	}
	return false
}

func (l Literal) String() string {
	switch {
	case l.Type.IsFloat():
		return fmt.Sprintf("%g", l.floatVal)
	case l.Type.IsInteger():
		iv, _ := l.AsIntegerValue()
		return fmt.Sprintf("%d", iv)
	case l.isHeap:
		return fmt.Sprintf("<heap#%d>", l.heapID)
	default:
		return "<undefined literal>"
	}
}
