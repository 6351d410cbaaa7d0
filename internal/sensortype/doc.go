// Package sensortype provides the Sensor Type Registry for Gray Logic.
//
// A sensor type (CLIPGenericStatus, ZLLTemperature, ...) is a row of data:
// an ordered list of config fields and an ordered list of state fields, each
// with a kind and a requiredness flag. Raw payloads arriving from bridges are
// validated against that schema before they can reach a Sensor.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                        Sensor Type Registry                          │
//	│                                                                      │
//	│  ┌────────────────┐   ┌────────────────┐   ┌──────────────────────┐  │
//	│  │    Factory     │──▶│    Registry    │──▶│       Schema         │  │
//	│  │  (factory.go)  │   │ (registry.go)  │   │     (schema.go)      │  │
//	│  │                │   │                │   │                      │  │
//	│  │ • Create       │   │ • Register     │   │ • config FieldSpecs  │  │
//	│  │ • aggregate    │   │ • Lookup       │   │ • state FieldSpecs   │  │
//	│  │   diagnostics  │   │ • List         │   └──────────────────────┘  │
//	│  └───────┬────────┘   └────────────────┘                             │
//	│          │            ┌────────────────┐   ┌──────────────────────┐  │
//	│          └───────────▶│   Validate     │──▶│  coercion table      │  │
//	│                       │(validation.go) │   │     (kind.go)        │  │
//	│                       └────────────────┘   └──────────────────────┘  │
//	└──────────────────────────────────────────────────────────────────────┘
//
// # Usage
//
//	reg := sensortype.NewRegistry()
//	if err := sensortype.RegisterBuiltins(reg); err != nil {
//	    return err
//	}
//
//	factory := sensortype.NewFactory(reg)
//	s, err := factory.Create("CLIPGenericStatus",
//	    map[string]any{"on": true, "battery": 55},
//	    map[string]any{"status": "ok"},
//	)
//	var cerr *sensortype.CreationError
//	if errors.As(err, &cerr) {
//	    // url is missing: cerr.ConfigErrors lists it
//	}
//
// # Error Aggregation
//
// Validation never stops at the first problem. A payload missing two
// required fields yields two FieldErrors, and Factory.Create reports config
// and state errors together when both groups are malformed.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Schema and Record are immutable.
// Validate and Factory.Create are pure and may be called concurrently.
// Sensor is not synchronised; its owner serialises mutations.
package sensortype
