package sensor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nerrad567/gray-logic-sensors/internal/sensortype"
)

// Limits on caller-supplied identifiers.
const (
	MaxNameLength = 100
	MaxIDLength   = 128

	// ReservedID is the topic level used for registrations.
	ReservedID = "register"
)

// Operation names a validation entry point reported to the Observer.
type Operation string

// Operations.
const (
	OpCreate       Operation = "create"
	OpUpdateConfig Operation = "update_config"
	OpUpdateState  Operation = "update_state"
	OpRehydrate    Operation = "rehydrate"
)

// Sensor is a managed sensor: identity and timestamps around a validated
// sensortype.Sensor. Values returned by the Manager are copies.
type Sensor struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	Config         sensortype.Record `json:"config"`
	State          sensortype.Record `json:"state"`
	StateUpdatedAt *time.Time        `json:"state_updated_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	typed *sensortype.Sensor
}

// DecodeConfig decodes the config record into out, matching json tags.
func (s *Sensor) DecodeConfig(out any) error {
	return s.typed.DecodeConfig(out)
}

// DecodeState decodes the state record into out, matching json tags.
func (s *Sensor) DecodeState(out any) error {
	return s.typed.DecodeState(out)
}

// Schema returns the schema of the sensor's type.
func (s *Sensor) Schema() *sensortype.Schema {
	return s.typed.Schema()
}

// Clone returns a deep copy.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}
	cpy := *s
	cpy.typed = s.typed.Clone()
	cpy.sync()
	if s.StateUpdatedAt != nil {
		t := *s.StateUpdatedAt
		cpy.StateUpdatedAt = &t
	}
	return &cpy
}

// sync mirrors the typed records onto the exported fields.
func (s *Sensor) sync() {
	s.Type = s.typed.TypeID
	s.Config = s.typed.Config
	s.State = s.typed.State
}

func (s *Sensor) stored() *StoredSensor {
	return &StoredSensor{
		ID:             s.ID,
		Name:           s.Name,
		Type:           s.Type,
		Config:         s.Config.Map(),
		State:          s.State.Map(),
		StateUpdatedAt: s.StateUpdatedAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// CreateRequest is the input to Manager.Create.
type CreateRequest struct {
	// ID is optional; a UUID is generated when empty.
	ID     string         `json:"id,omitempty"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
	State  map[string]any `json:"state"`
}

// StoredSensor is the persisted form of a sensor. Config and State hold the
// normalized records as plain maps.
type StoredSensor struct {
	ID             string
	Name           string
	Type           string
	Config         map[string]any
	State          map[string]any
	StateUpdatedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateName trims name and checks it is non-empty and at most MaxNameLength runes.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// ValidID reports whether id can be used as a sensor ID: non-empty, at most
// MaxIDLength bytes, not ReservedID and free of MQTT separators, wildcards,
// whitespace and control characters.
func ValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength || id == ReservedID {
		return false
	}
	for _, r := range id {
		switch {
		case r == '/' || r == '+' || r == '#':
			return false
		case r <= ' ' || r == 0x7f:
			return false
		}
	}
	return true
}
