package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementValidation is the measurement name for validation outcomes.
const MeasurementValidation = "sensor_validation"

// ValidationEvent is one factory or update outcome.
type ValidationEvent struct {
	TypeID     string
	Operation  string // create, update_config, update_state, rehydrate
	Result     string // accepted, rejected, error
	Reason     string // e.g. "invalid_config|invalid_state"; empty when accepted
	Missing    int
	Mismatch   int
	Unexpected int
	Time       time.Time
}

// WriteValidation queues a sensor_validation point. Writes are non-blocking
// and silently dropped when the client is not connected.
//
// Tags: type, operation, result. Fields: count, missing, type_mismatch,
// unexpected and, when set, reason.
func (c *Client) WriteValidation(ev ValidationEvent) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(validationPoint(ev))
}

func validationPoint(ev ValidationEvent) *write.Point {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fields := map[string]any{
		"count":         1,
		"missing":       ev.Missing,
		"type_mismatch": ev.Mismatch,
		"unexpected":    ev.Unexpected,
	}
	if ev.Reason != "" {
		fields["reason"] = ev.Reason
	}

	return write.NewPoint(MeasurementValidation,
		map[string]string{
			"type":      ev.TypeID,
			"operation": ev.Operation,
			"result":    ev.Result,
		},
		fields, ts)
}
