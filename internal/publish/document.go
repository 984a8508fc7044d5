package publish

import (
	"encoding/json"
	"fmt"
)

// Document is an insertion-ordered JSON object of scalar fields.
//
// It is built by the caller per publish cycle and not retained by the
// publisher after the call returns. Unlike a map, field order is stable:
// discovery consumers and humans diffing retained messages see the keys
// in the order they were set.
type Document struct {
	fields []field
}

type field struct {
	key   string
	value any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Set adds a field, or replaces the value of an existing key in place
// (the original position is kept). Returns the document for chaining.
func (d *Document) Set(key string, value any) *Document {
	for i := range d.fields {
		if d.fields[i].key == key {
			d.fields[i].value = value
			return d
		}
	}
	d.fields = append(d.fields, field{key: key, value: value})
	return d
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// Encode serializes the document to compact JSON.
//
// Each key and value is encoded exactly once; the parts are measured and
// the output buffer allocated at the exact final size before assembly.
// Values must be scalars (strings, booleans, integer or float kinds);
// anything else fails with ErrUnsupportedValue.
func (d *Document) Encode() ([]byte, error) {
	keys := make([][]byte, len(d.fields))
	vals := make([][]byte, len(d.fields))

	size := 2 // braces
	for i, f := range d.fields {
		if !scalar(f.value) {
			return nil, fmt.Errorf("%w: field %q has type %T", ErrUnsupportedValue, f.key, f.value)
		}

		kb, err := json.Marshal(f.key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", f.key, err)
		}
		vb, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", f.key, err)
		}

		keys[i] = kb
		vals[i] = vb
		size += len(kb) + 1 + len(vb) // key, colon, value
		if i > 0 {
			size++ // comma
		}
	}

	buf := make([]byte, 0, size)
	buf = append(buf, '{')
	for i := range d.fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, keys[i]...)
		buf = append(buf, ':')
		buf = append(buf, vals[i]...)
	}
	buf = append(buf, '}')

	if len(buf) != size {
		return nil, fmt.Errorf("%w: measured %d bytes, wrote %d", ErrEncodeMismatch, size, len(buf))
	}
	return buf, nil
}

// scalar reports whether v is an accepted scalar field value.
func scalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		json.Number:
		return true
	default:
		return false
	}
}
