package sensortype

import "sort"

// ValidateOption configures a validation pass.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	strict bool
}

// Strict reports fields absent from the schema as ReasonUnexpected.
// By default unknown fields are dropped silently.
func Strict() ValidateOption {
	return func(o *validateOptions) { o.strict = true }
}

// Validate checks raw against specs and returns the normalized record.
//
// Every problem is collected: the returned error is a FieldErrors listing
// missing required fields and kind mismatches in declared order, followed by
// unexpected fields (strict mode only) in lexical order. A nil raw map is
// treated as empty. A field whose value is nil counts as absent.
func Validate(specs []FieldSpec, raw map[string]any, opts ...ValidateOption) (Record, error) {
	var o validateOptions
	for _, opt := range opts {
		opt(&o)
	}

	var errs FieldErrors
	rec := Record{
		names:  make([]string, 0, len(specs)),
		values: make(map[string]any, len(specs)),
	}

	for _, spec := range specs {
		v, present := raw[spec.Name]
		if !present || v == nil {
			if spec.Required {
				errs = append(errs, FieldError{Name: spec.Name, Reason: ReasonMissing})
			}
			continue
		}

		kind := spec.Kind
		if kind == "" {
			kind = KindAny
		}
		coerce, ok := coercers[kind]
		if !ok {
			// Schemas normalise kinds; only hand-built specs reach here.
			coerce = coerceAny
		}

		out, ok := coerce(v)
		if !ok {
			errs = append(errs, FieldError{
				Name:     spec.Name,
				Reason:   ReasonTypeMismatch,
				Expected: kind,
				Actual:   observedKind(v),
			})
			continue
		}

		rec.names = append(rec.names, spec.Name)
		rec.values[spec.Name] = out
	}

	if o.strict {
		errs = append(errs, unexpectedFields(specs, raw)...)
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return rec, nil
}

func unexpectedFields(specs []FieldSpec, raw map[string]any) FieldErrors {
	declared := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		declared[spec.Name] = struct{}{}
	}

	var names []string
	for name := range raw {
		if _, ok := declared[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	errs := make(FieldErrors, 0, len(names))
	for _, name := range names {
		errs = append(errs, FieldError{Name: name, Reason: ReasonUnexpected})
	}
	return errs
}
