// Package literal holds self-describing typed values: a shape plus a raw
// little-endian data buffer. Literals are what a snapshot records for a
// computation's arguments and expected result, and what the backend
// transfers to and from device memory.
package literal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"recomp/internal/shape"
)

// ErrMalformed is returned when a serialized literal record cannot be
// decoded into a valid literal.
var ErrMalformed = errors.New("malformed literal")

// Literal is a typed value: a shape and its raw element data.
type Literal struct {
	Shape shape.Shape
	Data  []byte
}

// New returns a zero-filled literal of the given shape.
func New(s shape.Shape) *Literal {
	return &Literal{Shape: s, Data: make([]byte, s.ByteSize())}
}

// FromFloat64s builds a literal of the given shape from float64 values,
// converting to the shape's element type. The value count must match the
// shape's element count.
func FromFloat64s(s shape.Shape, values []float64) (*Literal, error) {
	if len(values) != s.NumElements() {
		return nil, fmt.Errorf("%w: %d values for shape %s", ErrMalformed, len(values), s)
	}
	l := New(s)
	for i, v := range values {
		l.SetElement(i, v)
	}
	return l, nil
}

// Clone returns a deep copy of the literal.
func (l *Literal) Clone() *Literal {
	data := make([]byte, len(l.Data))
	copy(data, l.Data)
	return &Literal{Shape: l.Shape, Data: data}
}

// Equal reports whether two literals have the same shape and data.
func (l *Literal) Equal(o *Literal) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.Shape.Equal(o.Shape) && string(l.Data) == string(o.Data)
}

// Element returns the i-th element converted to float64.
func (l *Literal) Element(i int) float64 {
	off := i * l.Shape.Type.Size()
	switch l.Shape.Type {
	case shape.Pred:
		if l.Data[off] != 0 {
			return 1
		}
		return 0
	case shape.S32:
		return float64(int32(binary.LittleEndian.Uint32(l.Data[off:])))
	case shape.S64:
		return float64(int64(binary.LittleEndian.Uint64(l.Data[off:])))
	case shape.F32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(l.Data[off:])))
	case shape.F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(l.Data[off:]))
	}
	return 0
}

// SetElement stores v into the i-th element, converting to the literal's
// element type.
func (l *Literal) SetElement(i int, v float64) {
	off := i * l.Shape.Type.Size()
	switch l.Shape.Type {
	case shape.Pred:
		if v != 0 {
			l.Data[off] = 1
		} else {
			l.Data[off] = 0
		}
	case shape.S32:
		binary.LittleEndian.PutUint32(l.Data[off:], uint32(int32(v)))
	case shape.S64:
		binary.LittleEndian.PutUint64(l.Data[off:], uint64(int64(v)))
	case shape.F32:
		binary.LittleEndian.PutUint32(l.Data[off:], math.Float32bits(float32(v)))
	case shape.F64:
		binary.LittleEndian.PutUint64(l.Data[off:], math.Float64bits(v))
	}
}

// String renders the literal's values in nested-brace form, e.g.
// "{{1, 2}, {3, 4}}" for a 2x2 literal, or "5" for a scalar.
func (l *Literal) String() string {
	var sb strings.Builder
	idx := 0
	l.render(&sb, l.Shape.Dims, &idx)
	return sb.String()
}

func (l *Literal) render(sb *strings.Builder, dims []int, idx *int) {
	if len(dims) == 0 {
		sb.WriteString(l.formatElement(*idx))
		*idx++
		return
	}
	sb.WriteString("{")
	for i := 0; i < dims[0]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		l.render(sb, dims[1:], idx)
	}
	sb.WriteString("}")
}

func (l *Literal) formatElement(i int) string {
	v := l.Element(i)
	switch l.Shape.Type {
	case shape.Pred:
		if v != 0 {
			return "true"
		}
		return "false"
	case shape.S32, shape.S64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%g", v)
	}
}
