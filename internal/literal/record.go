package literal

import (
	"fmt"

	"recomp/internal/shape"
)

// Record is the portable serialized form of a literal: a textual shape
// plus the raw data buffer. Inside JSON snapshot files the data field is
// base64-encoded by encoding/json.
type Record struct {
	Shape string `json:"shape"`
	Data  []byte `json:"data,omitempty"`
}

// Encode converts a literal to its portable record form.
func Encode(l *Literal) Record {
	return Record{Shape: l.Shape.String(), Data: l.Data}
}

// Decode converts a record back into a literal. It fails with
// ErrMalformed if the shape string does not parse or the data length does
// not match the shape's byte size.
func Decode(r Record) (*Literal, error) {
	s, err := parseRecordShape(r.Shape)
	if err != nil {
		return nil, err
	}
	if len(r.Data) != s.ByteSize() {
		return nil, fmt.Errorf("%w: shape %s needs %d bytes, record has %d",
			ErrMalformed, s, s.ByteSize(), len(r.Data))
	}
	data := make([]byte, len(r.Data))
	copy(data, r.Data)
	return &Literal{Shape: s, Data: data}, nil
}

// parseRecordShape parses a record's shape string, mapping parse failures
// to ErrMalformed so callers see one decode error class.
func parseRecordShape(text string) (shape.Shape, error) {
	s, err := shape.Parse(text)
	if err != nil {
		return shape.Shape{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}
