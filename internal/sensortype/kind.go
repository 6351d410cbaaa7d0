package sensortype

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the value kind a field accepts.
type Kind string

// Field kinds.
const (
	KindAny     Kind = "any"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// AllKinds returns every supported kind.
func AllKinds() []Kind {
	return []Kind{KindAny, KindString, KindNumber, KindBoolean}
}

// ParseKind converts a declaration string to a Kind.
// An empty string maps to KindAny.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindAny:
		return KindAny, nil
	case KindString:
		return KindString, nil
	case KindNumber:
		return KindNumber, nil
	case KindBoolean, "bool":
		return KindBoolean, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidSchema, s)
}

// coerceFunc converts a raw value to its normalized form.
// ok is false when the value cannot represent the kind.
type coerceFunc func(v any) (out any, ok bool)

var coercers = map[Kind]coerceFunc{
	KindAny:     coerceAny,
	KindString:  coerceString,
	KindNumber:  coerceNumber,
	KindBoolean: coerceBoolean,
}

func coerceAny(v any) (any, bool) {
	return deepCopyValue(v), true
}

func coerceString(v any) (any, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case fmt.Stringer:
		return val.String(), true
	case map[string]any, []any:
		if data, err := json.Marshal(val); err == nil {
			return string(data), true
		}
	}
	return fmt.Sprint(v), true
}

func coerceNumber(v any) (any, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return nil, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func coerceBoolean(v any) (any, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

// observedKind names the kind of a raw value for TypeMismatch diagnostics.
func observedKind(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		if _, ok := coerceNumber(val); !ok {
			return "non-finite number"
		}
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// deepCopyValue recursively copies nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}
