// Package shape describes the element type and dimensions of a
// computation value. Shapes are written in the compact textual form
// "f32[2,3]"; a scalar has empty brackets, e.g. "s32[]".
package shape

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidShape is returned when a shape string cannot be parsed.
var ErrInvalidShape = errors.New("invalid shape")

// DType identifies the element type of a value.
type DType string

const (
	Pred DType = "pred" // boolean, 1 byte per element
	S32  DType = "s32"  // signed 32-bit integer
	S64  DType = "s64"  // signed 64-bit integer
	F32  DType = "f32"  // 32-bit float
	F64  DType = "f64"  // 64-bit float
)

// Size returns the per-element byte width, or 0 for an unknown type.
func (t DType) Size() int {
	switch t {
	case Pred:
		return 1
	case S32, F32:
		return 4
	case S64, F64:
		return 8
	}
	return 0
}

// Valid reports whether t is one of the supported element types.
func (t DType) Valid() bool {
	return t.Size() != 0
}

// IsFloat reports whether t is a floating-point type.
func (t DType) IsFloat() bool {
	return t == F32 || t == F64
}

// Shape is the element type plus dimension sizes of a value.
// A Shape with no dimensions is a scalar.
type Shape struct {
	Type DType `json:"type"`
	Dims []int `json:"dims,omitempty"`
}

// Of builds a shape from an element type and dimension sizes.
func Of(t DType, dims ...int) Shape {
	return Shape{Type: t, Dims: dims}
}

// IsScalar reports whether the shape has rank zero.
func (s Shape) IsScalar() bool {
	return len(s.Dims) == 0
}

// NumElements returns the total element count. A scalar has one element;
// any zero-sized dimension makes the count zero.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// ByteSize returns the raw buffer size needed to hold the shape's data.
func (s Shape) ByteSize() int {
	return s.NumElements() * s.Type.Size()
}

// Equal reports whether two shapes have the same type and dimensions.
func (s Shape) Equal(o Shape) bool {
	if s.Type != o.Type || len(s.Dims) != len(o.Dims) {
		return false
	}
	for i, d := range s.Dims {
		if o.Dims[i] != d {
			return false
		}
	}
	return true
}

// String renders the shape in its textual form, e.g. "f32[2,3]".
func (s Shape) String() string {
	dims := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		dims[i] = strconv.Itoa(d)
	}
	return string(s.Type) + "[" + strings.Join(dims, ",") + "]"
}

// Validate checks that the shape has a supported element type and
// non-negative dimensions.
func (s Shape) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("%w: unknown element type %q", ErrInvalidShape, string(s.Type))
	}
	for _, d := range s.Dims {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension %d", ErrInvalidShape, d)
		}
	}
	return nil
}

// shapeRegex matches the textual shape form: type name, then a bracketed
// comma-separated dimension list (possibly empty).
var shapeRegex = regexp.MustCompile(`^([a-z][a-z0-9]*)\[([0-9,]*)\]$`)

// Parse parses the textual shape form produced by String.
func Parse(text string) (Shape, error) {
	m := shapeRegex.FindStringSubmatch(text)
	if m == nil {
		return Shape{}, fmt.Errorf("%w: %q", ErrInvalidShape, text)
	}

	s := Shape{Type: DType(m[1])}
	if !s.Type.Valid() {
		return Shape{}, fmt.Errorf("%w: unknown element type %q", ErrInvalidShape, m[1])
	}

	if m[2] != "" {
		for _, part := range strings.Split(m[2], ",") {
			if part == "" {
				return Shape{}, fmt.Errorf("%w: %q", ErrInvalidShape, text)
			}
			d, err := strconv.Atoi(part)
			if err != nil {
				return Shape{}, fmt.Errorf("%w: %q", ErrInvalidShape, text)
			}
			s.Dims = append(s.Dims, d)
		}
	}

	return s, nil
}
