package value

import (
	"encoding/json"
	"fmt"
)

// literalWire is the JSON interchange shape for a Literal: the external AST
// producer (§1: parsing is out of scope for this core) hands literals across
// the process boundary this way, one populated value field matching Type,
// mirroring the constructor split (NewInteger/NewFloat/NewHeapLiteral) this
// package already exposes.
type literalWire struct {
	Type   DataType `json:"type"`
	Pos    Position `json:"pos"`
	Int    int64    `json:"int,omitempty"`
	Float  float64  `json:"float,omitempty"`
	Heap   HeapID   `json:"heap,omitempty"`
	IsHeap bool     `json:"is_heap,omitempty"`
}

// MarshalJSON implements json.Marshaler. Literal's payload fields are
// unexported, so the default reflection-based encoding would silently drop
// the value; this picks the one populated field out via the existing public
// accessors instead.
func (l Literal) MarshalJSON() ([]byte, error) {
	w := literalWire{Type: l.Type, Pos: l.Pos}
	if id, ok := l.HeapID(); ok {
		w.Heap = id
		w.IsHeap = true
	} else if l.Type.IsFloat() {
		w.Float, _ = l.AsNumericValue()
	} else {
		w.Int, _ = l.AsIntegerValue()
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler, rebuilding the literal through
// the same constructors callers outside this package use.
func (l *Literal) UnmarshalJSON(data []byte) error {
	var w literalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.IsHeap:
		*l = NewHeapLiteral(w.Type, w.Heap, w.Pos)
	case w.Type.IsFloat():
		*l = NewFloat(w.Float, w.Pos)
	default:
		*l = NewInteger(w.Type, w.Int, w.Pos)
	}
	return nil
}

// HeapEntryWire is the JSON interchange shape of one heap entry; the entry
// kind (string/array/double array) is carried by which field is populated,
// matching Heap's own three-accessor shape (String/Array/DoubleArray).
type HeapEntryWire struct {
	String      *StringEntry      `json:"string,omitempty"`
	Array       *ArrayEntry       `json:"array,omitempty"`
	DoubleArray *DoubleArrayEntry `json:"double_array,omitempty"`
}

// EncodeHeap lists h's entries in id order, so decoding them back through
// the Add* methods in the same order reproduces the same ids.
func EncodeHeap(h *Heap) []HeapEntryWire {
	out := make([]HeapEntryWire, 0, h.Len())
	for id := 0; id < h.Len(); id++ {
		hid := HeapID(id)
		if s, ok := h.String(hid); ok {
			s := s
			out = append(out, HeapEntryWire{String: &s})
			continue
		}
		if a, ok := h.Array(hid); ok {
			a := a
			out = append(out, HeapEntryWire{Array: &a})
			continue
		}
		if d, ok := h.DoubleArray(hid); ok {
			d := d
			out = append(out, HeapEntryWire{DoubleArray: &d})
			continue
		}
	}
	return out
}

// DecodeHeap rebuilds a Heap from EncodeHeap's output.
func DecodeHeap(wire []HeapEntryWire) (*Heap, error) {
	h := NewHeap()
	for i, w := range wire {
		switch {
		case w.String != nil:
			h.AddString(w.String.Value, w.String.Type)
		case w.Array != nil:
			h.AddArray(w.Array.Type, w.Array.Values, w.Array.AddressOf)
		case w.DoubleArray != nil:
			h.AddDoubleArray(w.DoubleArray.Values)
		default:
			return nil, fmt.Errorf("value: heap entry %d has no populated payload", i)
		}
	}
	return h, nil
}
