package sensortype

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

// newTestFactory registers the schema used throughout the factory tests:
// config=[on(boolean), battery(number)], state=[status(string)].
func newTestFactory(t *testing.T, opts ...FactoryOption) *Factory {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister("GenericStatus", Declaration{
		Config: []FieldSpec{
			Field("on").Of(KindBoolean),
			Field("battery").Of(KindNumber),
		},
		State: []FieldSpec{Field("status").Of(KindString)},
	})
	return NewFactory(reg, opts...)
}

func creationError(t *testing.T, err error) *CreationError {
	t.Helper()
	var cerr *CreationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v (%T), want *CreationError", err, err)
	}
	return cerr
}

func TestFactory_Create(t *testing.T) {
	f := newTestFactory(t)

	s, err := f.Create("GenericStatus",
		map[string]any{"on": "true", "battery": "55"},
		map[string]any{"status": 2},
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if s.TypeID != "GenericStatus" {
		t.Errorf("TypeID = %q", s.TypeID)
	}
	if v, _ := s.Config.Get("on"); v != true {
		t.Errorf("config.on = %v, want true", v)
	}
	if v, _ := s.Config.Get("battery"); v != 55.0 {
		t.Errorf("config.battery = %v, want 55", v)
	}
	if v, _ := s.State.Get("status"); v != "2" {
		t.Errorf("state.status = %v, want \"2\"", v)
	}
}

func TestFactory_CreateInvalidStateOnly(t *testing.T) {
	f := newTestFactory(t)

	_, err := f.Create("GenericStatus",
		map[string]any{"on": "true", "battery": "55"},
		map[string]any{},
	)

	cerr := creationError(t, err)
	if cerr.Reason != ReasonInvalidState {
		t.Errorf("Reason = %v, want invalid_state", cerr.Reason)
	}
	if len(cerr.ConfigErrors) != 0 {
		t.Errorf("ConfigErrors = %+v, want none", cerr.ConfigErrors)
	}
	want := FieldErrors{{Name: "status", Reason: ReasonMissing}}
	if !slices.Equal(cerr.StateErrors, want) {
		t.Errorf("StateErrors = %+v, want %+v", cerr.StateErrors, want)
	}
	if !errors.Is(err, ErrInvalidState) || errors.Is(err, ErrInvalidConfig) {
		t.Errorf("errors.Is mismatch for %v", err)
	}
}

func TestFactory_CreateInvalidConfigOnly(t *testing.T) {
	f := newTestFactory(t)

	_, err := f.Create("GenericStatus",
		map[string]any{"on": "notabool"},
		map[string]any{"status": "ok"},
	)

	cerr := creationError(t, err)
	if cerr.Reason != ReasonInvalidConfig {
		t.Errorf("Reason = %v, want invalid_config", cerr.Reason)
	}
	want := FieldErrors{
		{Name: "on", Reason: ReasonTypeMismatch, Expected: KindBoolean, Actual: "string"},
		{Name: "battery", Reason: ReasonMissing},
	}
	if !slices.Equal(cerr.ConfigErrors, want) {
		t.Errorf("ConfigErrors = %+v, want %+v", cerr.ConfigErrors, want)
	}
}

func TestFactory_CreateBothGroupsInvalid(t *testing.T) {
	f := newTestFactory(t)

	_, err := f.Create("GenericStatus",
		map[string]any{"battery": "full"},
		nil,
	)

	cerr := creationError(t, err)
	if cerr.Reason != ReasonInvalidConfig|ReasonInvalidState {
		t.Errorf("Reason = %v, want invalid_config|invalid_state", cerr.Reason)
	}
	if len(cerr.ConfigErrors) != 2 || len(cerr.StateErrors) != 1 {
		t.Errorf("ConfigErrors = %+v, StateErrors = %+v", cerr.ConfigErrors, cerr.StateErrors)
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidState) {
		t.Errorf("errors.Is should match both sentinels: %v", err)
	}
}

func TestFactory_CreateUnknownType(t *testing.T) {
	f := newTestFactory(t)

	s, err := f.Create("NoSuchType", map[string]any{}, map[string]any{})
	if s != nil {
		t.Error("Create() returned a sensor for an unknown type")
	}

	cerr := creationError(t, err)
	if cerr.Reason != ReasonUnknownType {
		t.Errorf("Reason = %v, want unknown_type", cerr.Reason)
	}
	if cerr.ConfigErrors != nil || cerr.StateErrors != nil {
		t.Error("validation ran for an unknown type")
	}
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("errors.Is(err, ErrUnknownType) = false for %v", err)
	}
}

func TestFactory_Strict(t *testing.T) {
	f := newTestFactory(t, WithStrict(true))

	_, err := f.Create("GenericStatus",
		map[string]any{"on": true, "battery": 1, "colour": "red"},
		map[string]any{"status": "ok"},
	)
	cerr := creationError(t, err)
	if !cerr.ConfigErrors.Has("colour", ReasonUnexpected) {
		t.Errorf("ConfigErrors = %+v, want colour unexpected", cerr.ConfigErrors)
	}
}

func TestCreationError_JSON(t *testing.T) {
	f := newTestFactory(t)
	_, err := f.Create("GenericStatus", map[string]any{"on": true, "battery": 1}, map[string]any{})
	cerr := creationError(t, err)

	var decoded struct {
		Type        string `json:"type"`
		Reason      string `json:"reason"`
		StateErrors []struct {
			Name   string `json:"name"`
			Reason string `json:"reason"`
		} `json:"state_errors"`
	}
	if err := json.Unmarshal(cerr.JSON(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Type != "GenericStatus" || decoded.Reason != "invalid_state" {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.StateErrors) != 1 || decoded.StateErrors[0].Reason != "missing" {
		t.Errorf("state_errors = %+v", decoded.StateErrors)
	}
}

func TestFactory_ConcurrentCreate(t *testing.T) {
	f := newTestFactory(t)
	done := make(chan error, 16)

	for i := 0; i < cap(done); i++ {
		go func() {
			_, err := f.Create("GenericStatus",
				map[string]any{"on": true, "battery": 3},
				map[string]any{"status": "ok"},
			)
			done <- err
		}()
	}
	for i := 0; i < cap(done); i++ {
		if err := <-done; err != nil {
			t.Errorf("Create() error = %v", err)
		}
	}
}
