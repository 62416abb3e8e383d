package value

import "fmt"

// HeapID is a stable identifier for an entry on the heap. IDs are never
// reused or compacted once issued (§3, §5).
type HeapID int

// StringEntry is a heap-resident string literal.
type StringEntry struct {
	Value string
	Type  DataType // STR or STR_S
}

// ArrayEntry is a heap-resident integer array literal. AddressOf marks cells
// that are `&scopedname` references rather than plain integers, per the
// heap/IR textual format (§6).
type ArrayEntry struct {
	Type      DataType // ARRAY_UB, ARRAY_B, ARRAY_UW, or ARRAY_W
	Values    []int64
	AddressOf []bool // parallel to Values; true where the cell is an address-of reference (only its integer value is stored, not the name)
}

// DoubleArrayEntry is a heap-resident float array literal (ARRAY_F).
type DoubleArrayEntry struct {
	Values []float64
}

// kind distinguishes which of the three payload slots below is populated.
type kind int

const (
	kindString kind = iota
	kindArray
	kindDoubleArray
)

type entry struct {
	kind   kind
	str    StringEntry
	array  ArrayEntry
	double DoubleArrayEntry
}

// Heap is the process-scope, append-only table of string/array literals
// referred to by id from LiteralValue (§3, §5). The zero value is not ready
// for use; call NewHeap.
type Heap struct {
	entries  []entry
	sentinel HeapID
	hasSent  bool
}

// NewHeap constructs an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// AddString appends a string entry and returns its id.
func (h *Heap) AddString(s string, t DataType) HeapID {
	h.entries = append(h.entries, entry{kind: kindString, str: StringEntry{Value: s, Type: t}})
	return HeapID(len(h.entries) - 1)
}

// AddArray appends an integer array entry and returns its id.
func (h *Heap) AddArray(t DataType, values []int64, addressOf []bool) HeapID {
	h.entries = append(h.entries, entry{kind: kindArray, array: ArrayEntry{Type: t, Values: values, AddressOf: addressOf}})
	return HeapID(len(h.entries) - 1)
}

// AddDoubleArray appends a float array entry and returns its id.
func (h *Heap) AddDoubleArray(values []float64) HeapID {
	h.entries = append(h.entries, entry{kind: kindDoubleArray, double: DoubleArrayEntry{Values: values}})
	return HeapID(len(h.entries) - 1)
}

// StringSentinel returns the id of the shared empty-string sentinel,
// allocating it on first use (§3: "a single string sentinel ... allocated on
// first use and reused as default initializer").
func (h *Heap) StringSentinel() HeapID {
	if !h.hasSent {
		h.sentinel = h.AddString("", STR)
		h.hasSent = true
	}
	return h.sentinel
}

// String looks up a string entry; ok is false if id is out of range or not a
// string entry.
func (h *Heap) String(id HeapID) (StringEntry, bool) {
	e, ok := h.get(id)
	if !ok || e.kind != kindString {
		return StringEntry{}, false
	}
	return e.str, true
}

// Array looks up an integer array entry.
func (h *Heap) Array(id HeapID) (ArrayEntry, bool) {
	e, ok := h.get(id)
	if !ok || e.kind != kindArray {
		return ArrayEntry{}, false
	}
	return e.array, true
}

// DoubleArray looks up a float array entry.
func (h *Heap) DoubleArray(id HeapID) (DoubleArrayEntry, bool) {
	e, ok := h.get(id)
	if !ok || e.kind != kindDoubleArray {
		return DoubleArrayEntry{}, false
	}
	return e.double, true
}

func (h *Heap) get(id HeapID) (entry, bool) {
	if id < 0 || int(id) >= len(h.entries) {
		return entry{}, false
	}
	return h.entries[id], true
}

// Len returns the number of entries on the heap.
func (h *Heap) Len() int { return len(h.entries) }

// Equal reports whether two heap entries hold equal content, independent of
// id (§9, Open Questions: "strings with equal content but different ids are
// equal at the language level").
func (h *Heap) Equal(a, b HeapID) bool {
	ea, ok1 := h.get(a)
	eb, ok2 := h.get(b)
	if !ok1 || !ok2 || ea.kind != eb.kind {
		return false
	}
	switch ea.kind {
	case kindString:
		return ea.str.Value == eb.str.Value && ea.str.Type == eb.str.Type
	case kindArray:
		if ea.array.Type != eb.array.Type || len(ea.array.Values) != len(eb.array.Values) {
			return false
		}
		for i := range ea.array.Values {
			if ea.array.Values[i] != eb.array.Values[i] || ea.array.AddressOf[i] != eb.array.AddressOf[i] {
				return false
			}
		}
		return true
	case kindDoubleArray:
		if len(ea.double.Values) != len(eb.double.Values) {
			return false
		}
		for i := range ea.double.Values {
			if ea.double.Values[i] != eb.double.Values[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (h *Heap) describe(id HeapID) string {
	e, ok := h.get(id)
	if !ok {
		return fmt.Sprintf("<bad heap id %d>", id)
	}
	switch e.kind {
	case kindString:
		return fmt.Sprintf("%q", e.str.Value)
	case kindArray:
		return fmt.Sprintf("%v", e.array.Values)
	case kindDoubleArray:
		return fmt.Sprintf("%v", e.double.Values)
	default:
		return "?"
	}
}
