package diagnostics

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-sensors/internal/sensor"
	"github.com/nerrad567/gray-logic-sensors/internal/sensortype"
)

type fakeEvents struct {
	events []influxdb.ValidationEvent
}

func (f *fakeEvents) WriteValidation(ev influxdb.ValidationEvent) {
	f.events = append(f.events, ev)
}

func TestClassify(t *testing.T) {
	creation := &sensortype.CreationError{
		TypeID: "CLIPGenericStatus",
		Reason: sensortype.ReasonInvalidConfig | sensortype.ReasonInvalidState,
		ConfigErrors: sensortype.FieldErrors{
			{Name: "on", Reason: sensortype.ReasonTypeMismatch, Expected: sensortype.KindBoolean, Actual: "string"},
		},
		StateErrors: sensortype.FieldErrors{
			{Name: "status", Reason: sensortype.ReasonMissing},
		},
	}
	update := fmt.Errorf("%w: %w", sensortype.ErrInvalidState,
		sensortype.FieldErrors{{Name: "x", Reason: sensortype.ReasonUnexpected}})

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, Outcome{Result: ResultAccepted}},
		{"creation", creation, Outcome{Result: ResultRejected, Reason: "invalid_config|invalid_state", Missing: 1, Mismatch: 1}},
		{"unknown type", &sensortype.CreationError{TypeID: "X", Reason: sensortype.ReasonUnknownType},
			Outcome{Result: ResultRejected, Reason: "unknown_type"}},
		{"update", update, Outcome{Result: ResultRejected, Reason: "invalid_state", Unexpected: 1}},
		{"store", errors.New("disk full"), Outcome{Result: ResultError}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	events := &fakeEvents{}
	obs := New(m, events)

	obs.Accepted("ZLLSwitch", sensor.OpCreate)
	obs.Rejected("ZLLSwitch", sensor.OpUpdateState, fmt.Errorf("%w: %w", sensortype.ErrInvalidState,
		sensortype.FieldErrors{{Name: "buttonevent", Reason: sensortype.ReasonMissing}}))

	want := `
# HELP graylogic_sensors_validations_total Sensor create and update validations by type, operation and result.
# TYPE graylogic_sensors_validations_total counter
graylogic_sensors_validations_total{operation="create",result="accepted",type="ZLLSwitch"} 1
graylogic_sensors_validations_total{operation="update_state",result="rejected",type="ZLLSwitch"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "graylogic_sensors_validations_total"); err != nil {
		t.Error(err)
	}

	if len(events.events) != 2 {
		t.Fatalf("events = %d, want 2", len(events.events))
	}
	if ev := events.events[1]; ev.Result != ResultRejected || ev.Reason != "invalid_state" || ev.Missing != 1 {
		t.Errorf("event = %+v", ev)
	}
}

func TestObserver_UnknownTypesShareOneLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	events := &fakeEvents{}
	obs := New(metrics.New(reg), events)

	for i := range 50 {
		typeID := fmt.Sprintf("Bogus%d", i)
		obs.Rejected(typeID, sensor.OpCreate,
			&sensortype.CreationError{TypeID: typeID, Reason: sensortype.ReasonUnknownType})
	}

	n, err := testutil.GatherAndCount(reg, "graylogic_sensors_validations_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("validations_total series = %d, want 1", n)
	}

	want := `
# HELP graylogic_sensors_validations_total Sensor create and update validations by type, operation and result.
# TYPE graylogic_sensors_validations_total counter
graylogic_sensors_validations_total{operation="create",result="rejected",type="unknown"} 50
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "graylogic_sensors_validations_total"); err != nil {
		t.Error(err)
	}
	for _, ev := range events.events {
		if ev.TypeID != UnknownType {
			t.Fatalf("event TypeID = %q, want %q", ev.TypeID, UnknownType)
		}
	}
}

func TestObserver_NilSinks(t *testing.T) {
	obs := New(nil, nil)
	obs.Accepted("X", sensor.OpCreate)
	obs.Rejected("X", sensor.OpCreate, errors.New("x"))
}
