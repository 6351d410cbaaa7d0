package sensortype

import (
	"errors"
	"testing"
)

func newTestSensor(t *testing.T, opts ...FactoryOption) *Sensor {
	t.Helper()
	s, err := newTestFactory(t, opts...).Create("GenericStatus",
		map[string]any{"on": true, "battery": 80},
		map[string]any{"status": "idle"},
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return s
}

func TestSensor_UpdateState(t *testing.T) {
	s := newTestSensor(t)

	if err := s.UpdateState(map[string]any{"status": 3}); err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}
	if v, _ := s.State.Get("status"); v != "3" {
		t.Errorf("status = %v, want \"3\"", v)
	}
}

func TestSensor_UpdateConfigMerges(t *testing.T) {
	s := newTestSensor(t)

	if err := s.UpdateConfig(map[string]any{"battery": "42"}); err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if v, _ := s.Config.Get("on"); v != true {
		t.Errorf("on = %v, want untouched true", v)
	}
	if v, _ := s.Config.Get("battery"); v != 42.0 {
		t.Errorf("battery = %v, want 42", v)
	}
}

func TestSensor_FailedUpdateLeavesSensorUnchanged(t *testing.T) {
	s := newTestSensor(t)

	err := s.UpdateConfig(map[string]any{"on": "maybe", "battery": "low"})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("UpdateConfig() error = %v, want ErrInvalidRecord", err)
	}
	var fe FieldErrors
	if !errors.As(err, &fe) || len(fe) != 2 {
		t.Errorf("errors = %v, want two field errors", err)
	}

	if v, _ := s.Config.Get("on"); v != true {
		t.Errorf("on = %v after failed update", v)
	}
	if v, _ := s.Config.Get("battery"); v != 80.0 {
		t.Errorf("battery = %v after failed update", v)
	}
}

func TestSensor_NilRemovesField(t *testing.T) {
	s := newTestSensor(t)

	err := s.UpdateState(map[string]any{"status": nil})
	var fe FieldErrors
	if !errors.As(err, &fe) || !fe.Has("status", ReasonMissing) {
		t.Errorf("UpdateState(nil required) error = %v, want status missing", err)
	}
}

func TestSensor_StrictUpdate(t *testing.T) {
	s := newTestSensor(t, WithStrict(true))

	err := s.UpdateState(map[string]any{"status": "ok", "bogus": 1})
	var fe FieldErrors
	if !errors.As(err, &fe) || !fe.Has("bogus", ReasonUnexpected) {
		t.Errorf("UpdateState() error = %v, want bogus unexpected", err)
	}
}

func TestSensor_Clone(t *testing.T) {
	s := newTestSensor(t)
	cpy := s.Clone()

	if err := cpy.UpdateState(map[string]any{"status": "busy"}); err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}
	if v, _ := s.State.Get("status"); v != "idle" {
		t.Errorf("original status = %v, want idle", v)
	}
	if cpy.Schema() != s.Schema() {
		t.Error("clone does not share the schema")
	}
}

func TestSensor_Decode(t *testing.T) {
	s := newTestSensor(t)

	var cfg struct {
		On      bool    `json:"on"`
		Battery float64 `json:"battery"`
	}
	if err := s.DecodeConfig(&cfg); err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if !cfg.On || cfg.Battery != 80 {
		t.Errorf("decoded config = %+v", cfg)
	}

	var state struct {
		Status string `json:"status"`
	}
	if err := s.DecodeState(&state); err != nil {
		t.Fatalf("DecodeState() error = %v", err)
	}
	if state.Status != "idle" {
		t.Errorf("decoded state = %+v", state)
	}
}
