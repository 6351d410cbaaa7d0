package sensortype

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the sensortype package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, sensortype.ErrUnknownType) {
//	    // reject the registration request
//	}
var (
	// ErrInvalidSchema is returned when a schema declaration is malformed.
	ErrInvalidSchema = errors.New("sensortype: invalid schema")

	// ErrDuplicateType is returned when registering a type ID that already exists.
	ErrDuplicateType = errors.New("sensortype: duplicate type")

	// ErrUnknownType is returned when a type ID has not been registered.
	ErrUnknownType = errors.New("sensortype: unknown type")

	// ErrInvalidRecord is returned when a raw record fails validation.
	ErrInvalidRecord = errors.New("sensortype: invalid record")

	// ErrInvalidConfig is returned when a sensor's config group fails validation.
	ErrInvalidConfig = errors.New("sensortype: invalid config")

	// ErrInvalidState is returned when a sensor's state group fails validation.
	ErrInvalidState = errors.New("sensortype: invalid state")
)

// SchemaError describes a malformed schema declaration.
type SchemaError struct {
	Group  Group
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidSchema, e.Group, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s: %s", ErrInvalidSchema, e.Group, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrInvalidSchema }

// Reason classifies a FieldError.
type Reason string

// Field error reasons.
const (
	ReasonMissing      Reason = "missing"
	ReasonTypeMismatch Reason = "type_mismatch"
	ReasonUnexpected   Reason = "unexpected"
)

// FieldError describes one problem with one field of a raw record.
// Expected and Actual are only set for ReasonTypeMismatch.
type FieldError struct {
	Name     string `json:"name"`
	Reason   Reason `json:"reason"`
	Expected Kind   `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

func (e FieldError) Error() string {
	switch e.Reason {
	case ReasonTypeMismatch:
		return fmt.Sprintf("%s: expected %s, got %s", e.Name, e.Expected, e.Actual)
	case ReasonMissing:
		return e.Name + ": required field missing"
	case ReasonUnexpected:
		return e.Name + ": unexpected field"
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// FieldErrors is the ordered list of problems found in one validation pass.
type FieldErrors []FieldError

func (errs FieldErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRecord, strings.Join(parts, "; "))
}

// Is reports whether target is ErrInvalidRecord.
func (errs FieldErrors) Is(target error) bool {
	return target == ErrInvalidRecord
}

// Has reports whether the list contains an error for name with the given reason.
func (errs FieldErrors) Has(name string, reason Reason) bool {
	for _, e := range errs {
		if e.Name == name && e.Reason == reason {
			return true
		}
	}
	return false
}

// CreationReason is a bit set describing why Factory.Create failed.
type CreationReason uint8

// Creation failure reasons. InvalidConfig and InvalidState combine.
const (
	ReasonUnknownType CreationReason = 1 << iota
	ReasonInvalidConfig
	ReasonInvalidState
)

func (r CreationReason) String() string {
	var parts []string
	if r&ReasonUnknownType != 0 {
		parts = append(parts, "unknown_type")
	}
	if r&ReasonInvalidConfig != 0 {
		parts = append(parts, "invalid_config")
	}
	if r&ReasonInvalidState != 0 {
		parts = append(parts, "invalid_state")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (r CreationReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// CreationError is returned by Factory.Create. It carries every field
// problem found in the config and state payloads.
type CreationError struct {
	TypeID       string         `json:"type"`
	Reason       CreationReason `json:"reason"`
	ConfigErrors FieldErrors    `json:"config_errors,omitempty"`
	StateErrors  FieldErrors    `json:"state_errors,omitempty"`
}

func (e *CreationError) Error() string {
	if e.Reason&ReasonUnknownType != 0 {
		return fmt.Sprintf("%s: %q", ErrUnknownType, e.TypeID)
	}
	var parts []string
	if len(e.ConfigErrors) > 0 {
		parts = append(parts, "config: "+joinFieldErrors(e.ConfigErrors))
	}
	if len(e.StateErrors) > 0 {
		parts = append(parts, "state: "+joinFieldErrors(e.StateErrors))
	}
	return fmt.Sprintf("sensortype: creating %q: %s", e.TypeID, strings.Join(parts, "; "))
}

// Unwrap exposes the sentinel errors matching Reason to errors.Is.
func (e *CreationError) Unwrap() []error {
	var errs []error
	if e.Reason&ReasonUnknownType != 0 {
		errs = append(errs, ErrUnknownType)
	}
	if e.Reason&ReasonInvalidConfig != 0 {
		errs = append(errs, ErrInvalidConfig)
	}
	if e.Reason&ReasonInvalidState != 0 {
		errs = append(errs, ErrInvalidState)
	}
	return errs
}

// JSON returns the error encoded for an API response or MQTT diagnostic.
func (e *CreationError) JSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"reason":"` + e.Reason.String() + `"}`)
	}
	return data
}

func joinFieldErrors(errs FieldErrors) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, ", ")
}
