package sensortype

import (
	"errors"
	"fmt"
)

// Built-in sensor type IDs.
const (
	TypeCLIPGenericStatus = "CLIPGenericStatus"
	TypeCLIPGenericFlag   = "CLIPGenericFlag"
	TypeCLIPOpenClose     = "CLIPOpenClose"
	TypeCLIPPresence      = "CLIPPresence"
	TypeCLIPTemperature   = "CLIPTemperature"
	TypeCLIPHumidity      = "CLIPHumidity"
	TypeCLIPLightLevel    = "CLIPLightLevel"
	TypeCLIPSwitch        = "CLIPSwitch"
	TypeDaylight          = "Daylight"
	TypeZGPSwitch         = "ZGPSwitch"
	TypeZLLSwitch         = "ZLLSwitch"
	TypeZLLPresence       = "ZLLPresence"
	TypeZLLTemperature    = "ZLLTemperature"
	TypeZLLLightLevel     = "ZLLLightLevel"
)

// TypeDeclaration pairs a type ID with its field declaration.
type TypeDeclaration struct {
	Type string
	Declaration
}

// clipConfig is the config group shared by CLIP (software) sensors.
func clipConfig(extra ...FieldSpec) []FieldSpec {
	return append([]FieldSpec{
		Field("on").Of(KindBoolean),
		Field("battery").Of(KindNumber).Optional(),
		Field("url").Of(KindString).Optional(),
	}, extra...)
}

// zllConfig is the config group shared by ZigBee Light Link sensors.
func zllConfig(extra ...FieldSpec) []FieldSpec {
	return append([]FieldSpec{
		Field("on").Of(KindBoolean),
		Field("battery").Of(KindNumber).Optional(),
		Field("reachable").Of(KindBoolean).Optional(),
		Field("alert").Of(KindString).Optional(),
		Field("ledindication").Of(KindBoolean).Optional(),
		Field("usertest").Of(KindBoolean).Optional(),
		Field("pending").Optional(),
	}, extra...)
}

func lightLevelThresholds() []FieldSpec {
	return []FieldSpec{
		Field("tholddark").Of(KindNumber).Optional(),
		Field("tholdoffset").Of(KindNumber).Optional(),
	}
}

func lightLevelState() []FieldSpec {
	return []FieldSpec{
		Field("lightlevel").Of(KindNumber),
		Field("dark").Of(KindBoolean),
		Field("daylight").Of(KindBoolean),
	}
}

// Builtins returns the built-in sensor type declarations in registration order.
func Builtins() []TypeDeclaration {
	return []TypeDeclaration{
		// Bare names: every field required, any kind.
		{TypeCLIPGenericStatus, Declaration{
			Config: Fields("on", "battery", "url"),
			State:  Fields("status"),
		}},
		{TypeCLIPGenericFlag, Declaration{
			Config: clipConfig(),
			State:  []FieldSpec{Field("flag").Of(KindBoolean)},
		}},
		{TypeCLIPOpenClose, Declaration{
			Config: clipConfig(),
			State:  []FieldSpec{Field("open").Of(KindBoolean)},
		}},
		{TypeCLIPPresence, Declaration{
			Config: clipConfig(),
			State:  []FieldSpec{Field("presence").Of(KindBoolean)},
		}},
		{TypeCLIPTemperature, Declaration{
			Config: clipConfig(),
			State:  []FieldSpec{Field("temperature").Of(KindNumber)},
		}},
		{TypeCLIPHumidity, Declaration{
			Config: clipConfig(),
			State:  []FieldSpec{Field("humidity").Of(KindNumber)},
		}},
		{TypeCLIPLightLevel, Declaration{
			Config: clipConfig(lightLevelThresholds()...),
			State:  lightLevelState(),
		}},
		{TypeCLIPSwitch, Declaration{
			Config: clipConfig(),
			State:  []FieldSpec{Field("buttonevent").Of(KindNumber)},
		}},
		{TypeDaylight, Declaration{
			Config: []FieldSpec{
				Field("on").Of(KindBoolean),
				Field("configured").Of(KindBoolean).Optional(),
				Field("sunriseoffset").Of(KindNumber).Optional(),
				Field("sunsetoffset").Of(KindNumber).Optional(),
				Field("long").Of(KindString).Optional(),
				Field("lat").Of(KindString).Optional(),
			},
			// daylight is null until the location is configured
			State: []FieldSpec{Field("daylight").Of(KindBoolean).Optional()},
		}},
		{TypeZGPSwitch, Declaration{
			Config: []FieldSpec{Field("on").Of(KindBoolean)},
			State:  []FieldSpec{Field("buttonevent").Of(KindNumber)},
		}},
		{TypeZLLSwitch, Declaration{
			Config: []FieldSpec{
				Field("on").Of(KindBoolean),
				Field("battery").Of(KindNumber).Optional(),
				Field("reachable").Of(KindBoolean).Optional(),
				Field("pending").Optional(),
			},
			State: []FieldSpec{Field("buttonevent").Of(KindNumber)},
		}},
		{TypeZLLPresence, Declaration{
			Config: zllConfig(
				Field("sensitivity").Of(KindNumber).Optional(),
				Field("sensitivitymax").Of(KindNumber).Optional(),
			),
			State: []FieldSpec{Field("presence").Of(KindBoolean)},
		}},
		{TypeZLLTemperature, Declaration{
			Config: zllConfig(),
			State:  []FieldSpec{Field("temperature").Of(KindNumber)},
		}},
		{TypeZLLLightLevel, Declaration{
			Config: zllConfig(lightLevelThresholds()...),
			State:  lightLevelState(),
		}},
	}
}

// RegisterBuiltins registers every built-in sensor type.
func RegisterBuiltins(reg *Registry) error {
	return RegisterAll(reg, Builtins())
}

// RegisterAll registers decls in order. It keeps going after a failure and
// returns every error joined, so one bad catalog entry does not hide others.
func RegisterAll(reg *Registry, decls []TypeDeclaration) error {
	var errs []error
	for _, d := range decls {
		if err := reg.RegisterDeclaration(d.Type, d.Declaration); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registering sensor types: %w", errors.Join(errs...))
	}
	return nil
}
