package sensortype

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Record is a normalized record: declared fields only, in declared order,
// with coerced values. The zero Record is empty.
type Record struct {
	names  []string
	values map[string]any
}

// Get returns the value of a field.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the field names in declared order.
func (r Record) Names() []string {
	cpy := make([]string, len(r.names))
	copy(cpy, r.names)
	return cpy
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// All iterates fields in declared order.
func (r Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range r.names {
			if !yield(name, r.values[name]) {
				return
			}
		}
	}
}

// Map returns a deep copy of the record as a plain map.
func (r Record) Map() map[string]any {
	return deepCopyMap(r.values)
}

// Equal reports whether two records have the same fields, order and values.
func (r Record) Equal(other Record) bool {
	if len(r.names) != len(other.names) {
		return false
	}
	for i, name := range r.names {
		if other.names[i] != name {
			return false
		}
	}
	a, errA := json.Marshal(r)
	b, errB := json.Marshal(other)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) clone() Record {
	return Record{names: r.Names(), values: deepCopyMap(r.values)}
}
