package sensortype

import (
	"errors"
	"testing"
)

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name    string
		decl    Declaration
		wantErr error
	}{
		{
			name: "bare names",
			decl: Declaration{
				Config: Fields("on", "battery", "url"),
				State:  Fields("status"),
			},
		},
		{
			name: "same name in both groups",
			decl: Declaration{
				Config: Fields("on"),
				State:  Fields("on"),
			},
		},
		{
			name: "empty groups",
			decl: Declaration{},
		},
		{
			name: "duplicate config field",
			decl: Declaration{
				Config: Fields("on", "battery", "on"),
			},
			wantErr: ErrInvalidSchema,
		},
		{
			name: "duplicate state field",
			decl: Declaration{
				State: []FieldSpec{Field("status"), Field("status").Of(KindNumber)},
			},
			wantErr: ErrInvalidSchema,
		},
		{
			name: "empty field name",
			decl: Declaration{
				Config: []FieldSpec{{Name: ""}},
			},
			wantErr: ErrInvalidSchema,
		},
		{
			name: "unknown kind",
			decl: Declaration{
				Config: []FieldSpec{{Name: "on", Kind: "colour"}},
			},
			wantErr: ErrInvalidSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.decl)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewSchema() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSchema() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSchema_DuplicateReportsField(t *testing.T) {
	_, err := NewSchema(Declaration{Config: Fields("on", "on")})

	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %T, want *SchemaError", err)
	}
	if serr.Group != GroupConfig || serr.Field != "on" {
		t.Errorf("SchemaError = %+v, want group config field on", serr)
	}
}

func TestSchema_FieldsDefaultsAndOrder(t *testing.T) {
	s, err := NewSchema(Declaration{
		Config: []FieldSpec{
			{Name: "on", Required: true},
			Field("battery").Of(KindNumber).Optional(),
			Field("url").Of(KindString),
		},
	})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	fields := s.Fields(GroupConfig)
	want := []FieldSpec{
		{Name: "on", Required: true, Kind: KindAny},
		{Name: "battery", Required: false, Kind: KindNumber},
		{Name: "url", Required: true, Kind: KindString},
	}
	if len(fields) != len(want) {
		t.Fatalf("len(Fields) = %d, want %d", len(fields), len(want))
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("Fields[%d] = %+v, want %+v", i, fields[i], want[i])
		}
	}
}

func TestSchema_FieldsReturnsCopy(t *testing.T) {
	s, err := NewSchema(Declaration{State: Fields("status")})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	fields := s.Fields(GroupState)
	fields[0].Name = "mutated"

	if got := s.Fields(GroupState)[0].Name; got != "status" {
		t.Errorf("schema mutated through Fields(): name = %q", got)
	}
}

func TestSchema_Has(t *testing.T) {
	s, err := NewSchema(Declaration{
		Config: Fields("on", "battery"),
		State:  Fields("status"),
	})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	tests := []struct {
		group Group
		name  string
		want  bool
	}{
		{GroupConfig, "on", true},
		{GroupConfig, "battery", true},
		{GroupConfig, "status", false},
		{GroupState, "status", true},
		{GroupState, "on", false},
		{Group("other"), "on", false},
	}
	for _, tt := range tests {
		if got := s.Has(tt.group, tt.name); got != tt.want {
			t.Errorf("Has(%s, %s) = %v, want %v", tt.group, tt.name, got, tt.want)
		}
	}

	if spec, ok := s.Field(GroupConfig, "battery"); !ok || spec.Name != "battery" {
		t.Errorf("Field(config, battery) = %+v, %v", spec, ok)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"", KindAny, false},
		{"any", KindAny, false},
		{"String", KindString, false},
		{"number", KindNumber, false},
		{"boolean", KindBoolean, false},
		{"bool", KindBoolean, false},
		{"integer", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
