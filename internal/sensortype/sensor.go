package sensortype

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Sensor is a validated runtime sensor instance.
//
// Config and State always conform to the schema of TypeID. They change only
// through UpdateConfig and UpdateState, which validate before mutating.
// Sensor is not safe for concurrent mutation.
type Sensor struct {
	TypeID string `json:"type"`
	Config Record `json:"config"`
	State  Record `json:"state"`

	schema *Schema
	strict bool
}

// Schema returns the schema the sensor was validated against.
func (s *Sensor) Schema() *Schema {
	return s.schema
}

// UpdateConfig merges patch over the current config and replaces it if the
// result validates. A nil value in patch removes that field.
// On failure the sensor is unchanged and the FieldErrors are returned.
func (s *Sensor) UpdateConfig(patch map[string]any) error {
	rec, err := s.merge(GroupConfig, s.Config, patch)
	if err != nil {
		return err
	}
	s.Config = rec
	return nil
}

// UpdateState merges patch over the current state and replaces it if the
// result validates. A nil value in patch removes that field.
func (s *Sensor) UpdateState(patch map[string]any) error {
	rec, err := s.merge(GroupState, s.State, patch)
	if err != nil {
		return err
	}
	s.State = rec
	return nil
}

func (s *Sensor) merge(g Group, current Record, patch map[string]any) (Record, error) {
	merged := current.Map()
	if merged == nil {
		merged = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	var opts []ValidateOption
	if s.strict {
		opts = append(opts, Strict())
	}
	return Validate(s.schema.group(g), merged, opts...)
}

// Clone returns a deep copy of the sensor.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}
	cpy := *s
	cpy.Config = s.Config.clone()
	cpy.State = s.State.clone()
	return &cpy
}

// DecodeConfig decodes the config record into out, matching json tags.
//
// Example:
//
//	var cfg struct {
//	    On      bool    `json:"on"`
//	    Battery float64 `json:"battery"`
//	}
//	err := s.DecodeConfig(&cfg)
func (s *Sensor) DecodeConfig(out any) error {
	return decodeRecord(s.Config, out)
}

// DecodeState decodes the state record into out, matching json tags.
func (s *Sensor) DecodeState(out any) error {
	return decodeRecord(s.State, out)
}

func decodeRecord(rec Record, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(rec.Map()); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}
