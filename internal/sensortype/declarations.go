package sensortype

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a sensor type catalog:
//
//	sensor_types:
//	  - type: CLIPGenericStatus
//	    config: [on, battery, url]
//	    state:
//	      - name: status
//	        kind: number
type catalogFile struct {
	SensorTypes []catalogEntry `yaml:"sensor_types"`
}

type catalogEntry struct {
	Type   string      `yaml:"type"`
	Config []fieldDecl `yaml:"config"`
	State  []fieldDecl `yaml:"state"`
}

// fieldDecl accepts either a bare field name or a mapping with
// name, kind and required keys. Bare names are required and of kind any.
type fieldDecl FieldSpec

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *fieldDecl) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = fieldDecl(Field(node.Value))
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name     string `yaml:"name"`
			Kind     string `yaml:"kind"`
			Required *bool  `yaml:"required"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		spec := Field(raw.Name)
		spec.Kind = Kind(raw.Kind)
		if raw.Required != nil {
			spec.Required = *raw.Required
		}
		*f = fieldDecl(spec)
		return nil
	}
	return fmt.Errorf("line %d: field must be a name or a mapping", node.Line)
}

// ParseDeclarations decodes a YAML catalog.
// Kinds are checked later by NewSchema during registration.
func ParseDeclarations(data []byte) ([]TypeDeclaration, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing catalog: %w", ErrInvalidSchema, err)
	}

	decls := make([]TypeDeclaration, 0, len(file.SensorTypes))
	for i, entry := range file.SensorTypes {
		if entry.Type == "" {
			return nil, fmt.Errorf("%w: catalog entry %d has no type", ErrInvalidSchema, i)
		}
		decls = append(decls, TypeDeclaration{
			Type: entry.Type,
			Declaration: Declaration{
				Config: toSpecs(entry.Config),
				State:  toSpecs(entry.State),
			},
		})
	}
	return decls, nil
}

// LoadDeclarations reads a YAML catalog file.
func LoadDeclarations(path string) ([]TypeDeclaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseDeclarations(data)
}

func toSpecs(decls []fieldDecl) []FieldSpec {
	specs := make([]FieldSpec, len(decls))
	for i, d := range decls {
		specs[i] = FieldSpec(d)
	}
	return specs
}
