package sensortype

import "errors"

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithStrict makes every validation done by the factory and by the sensors it
// creates report unknown fields.
func WithStrict(strict bool) FactoryOption {
	return func(f *Factory) { f.strict = strict }
}

// Factory creates validated Sensors from raw payloads.
// It is safe for concurrent use.
type Factory struct {
	registry *Registry
	strict   bool
}

// NewFactory creates a factory resolving types through registry.
func NewFactory(registry *Registry, opts ...FactoryOption) *Factory {
	f := &Factory{registry: registry}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the registry the factory resolves types through.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// Strict reports whether the factory validates in strict mode.
func (f *Factory) Strict() bool {
	return f.strict
}

// Create validates rawConfig and rawState against the schema of typeID.
//
// Config and state are validated independently and both always run, so a
// *CreationError carries the problems of both groups. An unknown type fails
// before any validation.
func (f *Factory) Create(typeID string, rawConfig, rawState map[string]any) (*Sensor, error) {
	schema, err := f.registry.Lookup(typeID)
	if err != nil {
		return nil, &CreationError{TypeID: typeID, Reason: ReasonUnknownType}
	}

	opts := f.validateOptions()
	config, configErr := Validate(schema.config, rawConfig, opts...)
	state, stateErr := Validate(schema.state, rawState, opts...)

	if configErr != nil || stateErr != nil {
		cerr := &CreationError{TypeID: typeID}
		var fe FieldErrors
		if errors.As(configErr, &fe) {
			cerr.Reason |= ReasonInvalidConfig
			cerr.ConfigErrors = fe
		}
		if errors.As(stateErr, &fe) {
			cerr.Reason |= ReasonInvalidState
			cerr.StateErrors = fe
		}
		return nil, cerr
	}

	return &Sensor{
		TypeID: typeID,
		Config: config,
		State:  state,
		schema: schema,
		strict: f.strict,
	}, nil
}

func (f *Factory) validateOptions() []ValidateOption {
	if f.strict {
		return []ValidateOption{Strict()}
	}
	return nil
}
