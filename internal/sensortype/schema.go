package sensortype

import "fmt"

// Group names one of the two field namespaces of a sensor type.
type Group string

// Field groups.
const (
	GroupConfig Group = "config"
	GroupState  Group = "state"
)

// FieldSpec declares one schema field.
type FieldSpec struct {
	Name     string `json:"name" yaml:"name"`
	Required bool   `json:"required" yaml:"required"`
	Kind     Kind   `json:"kind" yaml:"kind"`
}

// Field returns a required field of kind any.
func Field(name string) FieldSpec {
	return FieldSpec{Name: name, Required: true, Kind: KindAny}
}

// Fields returns required fields of kind any for each bare name.
func Fields(names ...string) []FieldSpec {
	specs := make([]FieldSpec, len(names))
	for i, n := range names {
		specs[i] = Field(n)
	}
	return specs
}

// Of returns a copy of f with the given kind.
func (f FieldSpec) Of(kind Kind) FieldSpec {
	f.Kind = kind
	return f
}

// Optional returns a copy of f that may be absent.
func (f FieldSpec) Optional() FieldSpec {
	f.Required = false
	return f
}

// Declaration is the per-type input to NewSchema: ordered config and state fields.
type Declaration struct {
	Config []FieldSpec
	State  []FieldSpec
}

// Schema is the immutable field declaration of one sensor type.
type Schema struct {
	config []FieldSpec
	state  []FieldSpec
	index  map[Group]map[string]int
}

// NewSchema builds a Schema from a declaration.
// Returns a *SchemaError (matching ErrInvalidSchema) for duplicate or empty
// names and unknown kinds.
func NewSchema(decl Declaration) (*Schema, error) {
	s := &Schema{index: make(map[Group]map[string]int, 2)}

	var err error
	if s.config, err = normalizeGroup(GroupConfig, decl.Config); err != nil {
		return nil, err
	}
	if s.state, err = normalizeGroup(GroupState, decl.State); err != nil {
		return nil, err
	}

	for _, g := range []Group{GroupConfig, GroupState} {
		fields := s.group(g)
		idx := make(map[string]int, len(fields))
		for i, f := range fields {
			idx[f.Name] = i
		}
		s.index[g] = idx
	}
	return s, nil
}

func normalizeGroup(g Group, specs []FieldSpec) ([]FieldSpec, error) {
	out := make([]FieldSpec, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for i, f := range specs {
		if f.Name == "" {
			return nil, &SchemaError{Group: g, Reason: fmt.Sprintf("field %d has no name", i)}
		}
		if _, dup := seen[f.Name]; dup {
			return nil, &SchemaError{Group: g, Field: f.Name, Reason: "duplicate field name"}
		}
		seen[f.Name] = struct{}{}

		kind, err := ParseKind(string(f.Kind))
		if err != nil {
			return nil, &SchemaError{Group: g, Field: f.Name, Reason: fmt.Sprintf("unknown kind %q", f.Kind)}
		}
		f.Kind = kind
		out = append(out, f)
	}
	return out, nil
}

func (s *Schema) group(g Group) []FieldSpec {
	switch g {
	case GroupConfig:
		return s.config
	case GroupState:
		return s.state
	}
	return nil
}

// Fields returns the ordered fields of a group. The slice is a copy.
func (s *Schema) Fields(g Group) []FieldSpec {
	fields := s.group(g)
	cpy := make([]FieldSpec, len(fields))
	copy(cpy, fields)
	return cpy
}

// Has reports whether the group declares a field with the given name.
func (s *Schema) Has(g Group, name string) bool {
	_, ok := s.index[g][name]
	return ok
}

// Field returns the spec for name in group g.
func (s *Schema) Field(g Group, name string) (FieldSpec, bool) {
	i, ok := s.index[g][name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.group(g)[i], true
}
