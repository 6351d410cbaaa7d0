// Package diagnostics reports sensor validation outcomes to Prometheus and
// InfluxDB. It implements sensor.Observer.
package diagnostics

import (
	"errors"

	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-sensors/internal/sensor"
	"github.com/nerrad567/gray-logic-sensors/internal/sensortype"
)

// Result labels.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// UnknownType replaces the type label of rejections for unregistered types,
// which come straight from untrusted payloads.
const UnknownType = "unknown"

// Counters is satisfied by *metrics.Metrics.
type Counters interface {
	Validation(typeID, operation, result string)
	FieldErrors(typeID, reason string, n int)
}

// EventWriter is satisfied by *influxdb.Client.
type EventWriter interface {
	WriteValidation(ev influxdb.ValidationEvent)
}

// Outcome summarizes a validation error.
type Outcome struct {
	Result     string
	Reason     string
	Missing    int
	Mismatch   int
	Unexpected int
}

// Classify turns an error returned by the sensor manager into an Outcome.
// Validation failures are "rejected"; anything else (store errors, bad
// names) is "error".
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Result: ResultAccepted}
	}

	var cerr *sensortype.CreationError
	if errors.As(err, &cerr) {
		o := Outcome{Result: ResultRejected, Reason: cerr.Reason.String()}
		o.count(cerr.ConfigErrors)
		o.count(cerr.StateErrors)
		return o
	}

	var fe sensortype.FieldErrors
	if errors.As(err, &fe) {
		o := Outcome{Result: ResultRejected, Reason: "invalid_record"}
		switch {
		case errors.Is(err, sensortype.ErrInvalidConfig):
			o.Reason = sensortype.ReasonInvalidConfig.String()
		case errors.Is(err, sensortype.ErrInvalidState):
			o.Reason = sensortype.ReasonInvalidState.String()
		}
		o.count(fe)
		return o
	}

	return Outcome{Result: ResultError}
}

func (o *Outcome) count(errs sensortype.FieldErrors) {
	for _, e := range errs {
		switch e.Reason {
		case sensortype.ReasonMissing:
			o.Missing++
		case sensortype.ReasonTypeMismatch:
			o.Mismatch++
		case sensortype.ReasonUnexpected:
			o.Unexpected++
		}
	}
}

// Observer fans validation outcomes out to counters and events.
// Either sink may be nil.
type Observer struct {
	counters Counters
	events   EventWriter
}

// New creates an Observer.
func New(counters Counters, events EventWriter) *Observer {
	return &Observer{counters: counters, events: events}
}

// Accepted implements sensor.Observer.
func (o *Observer) Accepted(typeID string, op sensor.Operation) {
	o.record(typeID, op, Outcome{Result: ResultAccepted})
}

// Rejected implements sensor.Observer.
func (o *Observer) Rejected(typeID string, op sensor.Operation, err error) {
	if errors.Is(err, sensortype.ErrUnknownType) {
		typeID = UnknownType
	}
	o.record(typeID, op, Classify(err))
}

func (o *Observer) record(typeID string, op sensor.Operation, out Outcome) {
	if o.counters != nil {
		o.counters.Validation(typeID, string(op), out.Result)
		o.counters.FieldErrors(typeID, string(sensortype.ReasonMissing), out.Missing)
		o.counters.FieldErrors(typeID, string(sensortype.ReasonTypeMismatch), out.Mismatch)
		o.counters.FieldErrors(typeID, string(sensortype.ReasonUnexpected), out.Unexpected)
	}
	if o.events != nil {
		o.events.WriteValidation(influxdb.ValidationEvent{
			TypeID:     typeID,
			Operation:  string(op),
			Result:     out.Result,
			Reason:     out.Reason,
			Missing:    out.Missing,
			Mismatch:   out.Mismatch,
			Unexpected: out.Unexpected,
		})
	}
}

var _ sensor.Observer = (*Observer)(nil)
