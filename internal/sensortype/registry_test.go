package sensortype

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
)

func mustSchema(t *testing.T, decl Declaration) *Schema {
	t.Helper()
	s, err := NewSchema(decl)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return s
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	schema := mustSchema(t, Declaration{Config: Fields("on"), State: Fields("status")})

	if err := reg.Register("CLIPGenericStatus", schema); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := reg.Lookup("CLIPGenericStatus")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != schema {
		t.Error("Lookup() returned a different schema")
	}
}

func TestRegistry_DuplicateKeepsFirst(t *testing.T) {
	reg := NewRegistry()
	first := mustSchema(t, Declaration{State: Fields("status")})
	second := mustSchema(t, Declaration{State: Fields("flag")})

	if err := reg.Register("CLIPGenericStatus", first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := reg.Register("CLIPGenericStatus", second)
	if !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("second Register() error = %v, want ErrDuplicateType", err)
	}

	got, err := reg.Lookup("CLIPGenericStatus")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != first || !got.Has(GroupState, "status") {
		t.Error("first registration was replaced")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Lookup("NoSuchType")
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Lookup() error = %v, want ErrUnknownType", err)
	}
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("", mustSchema(t, Declaration{})); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("Register(empty id) error = %v, want ErrInvalidSchema", err)
	}
	if err := reg.Register("X", nil); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("Register(nil schema) error = %v, want ErrInvalidSchema", err)
	}
	if err := reg.RegisterDeclaration("X", Declaration{Config: Fields("a", "a")}); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("RegisterDeclaration(dup fields) error = %v, want ErrInvalidSchema", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("A", Declaration{State: Fields("x")})

	defer func() {
		if recover() == nil {
			t.Error("MustRegister() did not panic on duplicate")
		}
	}()
	reg.MustRegister("A", Declaration{State: Fields("x")})
}

func TestRegistry_ListInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	ids := []string{"ZLLTemperature", "CLIPGenericStatus", "Daylight"}
	for _, id := range ids {
		reg.MustRegister(id, Declaration{})
	}

	got := slices.Collect(reg.List())
	if !slices.Equal(got, ids) {
		t.Errorf("List() = %v, want %v", got, ids)
	}
}

func TestRegistry_ListRestartableSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("A", Declaration{})
	reg.MustRegister("B", Declaration{})

	seq := reg.List()

	// Early termination must not break later iterations.
	for id := range seq {
		if id != "A" {
			t.Errorf("first id = %q, want A", id)
		}
		break
	}

	// Registering during iteration does not affect the running snapshot.
	var seen []string
	for id := range seq {
		if id == "A" {
			reg.MustRegister("C", Declaration{})
		}
		seen = append(seen, id)
	}
	if !slices.Equal(seen, []string{"A", "B"}) {
		t.Errorf("iteration during registration = %v, want [A B]", seen)
	}

	// A fresh iteration sees the new entry.
	if got := slices.Collect(seq); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("second iteration = %v, want [A B C]", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = reg.RegisterDeclaration(fmt.Sprintf("type-%d", i), Declaration{State: Fields("v")})
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.Lookup(fmt.Sprintf("type-%d", i))
			for range reg.List() {
			}
		}(i)
	}
	wg.Wait()

	if reg.Len() != 20 {
		t.Errorf("Len() = %d, want 20", reg.Len())
	}
}
