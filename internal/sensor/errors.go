package sensor

import "errors"

// Domain-specific errors for sensor management.
// Validation failures surface the sensortype errors unchanged
// (ErrUnknownType, ErrInvalidConfig, ErrInvalidState, ErrInvalidRecord).
var (
	// ErrSensorNotFound is returned when a sensor ID does not exist.
	ErrSensorNotFound = errors.New("sensor: not found")

	// ErrSensorExists is returned when creating a sensor with an ID already in use.
	ErrSensorExists = errors.New("sensor: already exists")

	// ErrInvalidName is returned when a sensor name is empty or too long.
	ErrInvalidName = errors.New("sensor: invalid name")

	// ErrInvalidID is returned when a caller-supplied ID cannot be used as an
	// MQTT topic level or is reserved.
	ErrInvalidID = errors.New("sensor: invalid id")
)
