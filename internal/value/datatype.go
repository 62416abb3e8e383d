package value

// DataType is the closed set of platform data types. Grouped below into the
// membership predicates the checker and folder use throughout.
type DataType int

const (
	UNDEFINED_TYPE DataType = iota

	// Byte group
	UBYTE
	BYTE

	// Word group
	UWORD
	WORD

	// Float group (5-byte MFLPT)
	FLOAT

	// String group
	STR
	STR_S

	// Array group
	ARRAY_UB
	ARRAY_B
	ARRAY_UW
	ARRAY_W
	ARRAY_F
)

func (d DataType) String() string {
	switch d {
	case UBYTE:
		return "ubyte"
	case BYTE:
		return "byte"
	case UWORD:
		return "uword"
	case WORD:
		return "word"
	case FLOAT:
		return "float"
	case STR:
		return "str"
	case STR_S:
		return "str_s"
	case ARRAY_UB:
		return "ubyte[]"
	case ARRAY_B:
		return "byte[]"
	case ARRAY_UW:
		return "uword[]"
	case ARRAY_W:
		return "word[]"
	case ARRAY_F:
		return "float[]"
	default:
		return "<undefined>"
	}
}

// Numeric bounds. MFLPT: 5-byte Commodore float format, magnitude up to
// roughly 1.7014118345e38.
const (
	MaxUByte = 255
	MinUByte = 0
	MaxByte  = 127
	MinByte  = -128
	MaxUWord = 65535
	MinUWord = 0
	MaxWord  = 32767
	MinWord  = -32768

	MaxFloatMagnitude = 1.7014118345e38

	MaxStringLen = 255

	// Array cardinalities per element type (§3).
	MinArrayUBLen = 1
	MaxArrayUBLen = 256
	MinArrayBLen  = 1
	MaxArrayBLen  = 256
	MinArrayUWLen = 1
	MaxArrayUWLen = 128
	MinArrayWLen  = 1
	MaxArrayWLen  = 128
	MinArrayFLen  = 1
	MaxArrayFLen  = 51
)

// IsByte reports membership in the Byte group {UBYTE, BYTE}.
func (d DataType) IsByte() bool { return d == UBYTE || d == BYTE }

// IsWord reports membership in the Word group {UWORD, WORD}.
func (d DataType) IsWord() bool { return d == UWORD || d == WORD }

// IsFloat reports d == FLOAT.
func (d DataType) IsFloat() bool { return d == FLOAT }

// IsInteger reports membership in Byte ∪ Word.
func (d DataType) IsInteger() bool { return d.IsByte() || d.IsWord() }

// IsNumeric reports membership in Byte ∪ Word ∪ {FLOAT}.
func (d DataType) IsNumeric() bool { return d.IsInteger() || d.IsFloat() }

// IsSigned reports whether the integer type is a signed one. Only meaningful
// for integer types.
func (d DataType) IsSigned() bool { return d == BYTE || d == WORD }

// IsString reports membership in the String group {STR, STR_S}.
func (d DataType) IsString() bool { return d == STR || d == STR_S }

// IsArray reports membership in the Array group.
func (d DataType) IsArray() bool {
	switch d {
	case ARRAY_UB, ARRAY_B, ARRAY_UW, ARRAY_W, ARRAY_F:
		return true
	default:
		return false
	}
}

// IsIterable reports membership in String ∪ Array.
func (d DataType) IsIterable() bool { return d.IsString() || d.IsArray() }

// BitWidth returns the storage width of a Byte/Word-group type (8 or 16),
// or 0 for any type this doesn't apply to. Used by the optimizer to bound
// shift-amount rewrites to the target's own width rather than a fixed 16
// (§4.F: "beyond the word width").
func (d DataType) BitWidth() int {
	switch {
	case d.IsByte():
		return 8
	case d.IsWord():
		return 16
	default:
		return 0
	}
}

// ElementType returns the scalar type of an array type's elements; the zero
// value UNDEFINED_TYPE is returned for non-array types.
func (d DataType) ElementType() DataType {
	switch d {
	case ARRAY_UB:
		return UBYTE
	case ARRAY_B:
		return BYTE
	case ARRAY_UW:
		return UWORD
	case ARRAY_W:
		return WORD
	case ARRAY_F:
		return FLOAT
	default:
		return UNDEFINED_TYPE
	}
}

// ArrayTypeOf returns the array type whose elements are of type elem, and
// false if elem does not head an array group.
func ArrayTypeOf(elem DataType) (DataType, bool) {
	switch elem {
	case UBYTE:
		return ARRAY_UB, true
	case BYTE:
		return ARRAY_B, true
	case UWORD:
		return ARRAY_UW, true
	case WORD:
		return ARRAY_W, true
	case FLOAT:
		return ARRAY_F, true
	default:
		return UNDEFINED_TYPE, false
	}
}

// ArrayBounds returns the minimum/maximum element count allowed for an array
// type, per §3's per-type size bounds.
func ArrayBounds(arrayType DataType) (min, max int, ok bool) {
	switch arrayType {
	case ARRAY_UB:
		return MinArrayUBLen, MaxArrayUBLen, true
	case ARRAY_B:
		return MinArrayBLen, MaxArrayBLen, true
	case ARRAY_UW:
		return MinArrayUWLen, MaxArrayUWLen, true
	case ARRAY_W:
		return MinArrayWLen, MaxArrayWLen, true
	case ARRAY_F:
		return MinArrayFLen, MaxArrayFLen, true
	default:
		return 0, 0, false
	}
}

// IntegerRange returns the inclusive bounds of an integer DataType.
func IntegerRange(t DataType) (min, max int64, ok bool) {
	switch t {
	case UBYTE:
		return MinUByte, MaxUByte, true
	case BYTE:
		return MinByte, MaxByte, true
	case UWORD:
		return MinUWord, MaxUWord, true
	case WORD:
		return MinWord, MaxWord, true
	default:
		return 0, 0, false
	}
}
