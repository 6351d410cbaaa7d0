package ingest

import "errors"

var (
	// ErrPayloadTooLarge is returned for payloads above MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("ingest: payload too large")

	// ErrNotObject is returned when a payload is not a JSON object.
	ErrNotObject = errors.New("ingest: payload must be a JSON object")

	// ErrUnknownTopic is returned for topics outside the sensor hierarchy.
	ErrUnknownTopic = errors.New("ingest: unknown topic")
)
