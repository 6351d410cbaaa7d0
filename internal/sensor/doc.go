// Package sensor manages validated sensor instances for the service.
//
// A managed Sensor is a sensortype.Sensor with an ID, a display name and
// timestamps. The Manager validates every create and update through the
// sensortype.Factory before anything reaches the store:
//
//	┌──────────────┐  CreateRequest  ┌──────────────┐  Factory.Create  ┌────────────┐
//	│ ingest/MQTT  │ ──────────────▶ │   Manager    │ ───────────────▶ │ sensortype │
//	└──────────────┘                 │  (cache+mu)  │                  └────────────┘
//	                                 └──────┬───────┘
//	                                        │ Repository
//	                                 ┌──────▼───────┐
//	                                 │ SQLite table │
//	                                 │   sensors    │
//	                                 └──────────────┘
//
// Config and state are persisted as JSON objects. On startup RefreshCache
// revalidates every row against the current registry, so a sensor whose
// type disappeared from the catalog is skipped instead of served.
//
// Every validation outcome is reported to the Observer; the diagnostics
// package turns those into Prometheus counters and InfluxDB points.
//
// Usage:
//
//	repo := sensor.NewSQLiteRepository(db.DB)
//	mgr := sensor.NewManager(repo, factory)
//	mgr.SetLogger(logger.Component("sensor"))
//	if _, err := mgr.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	s, err := mgr.Create(ctx, sensor.CreateRequest{
//	    Name:   "Hall temperature",
//	    Type:   sensortype.TypeCLIPTemperature,
//	    Config: map[string]any{"on": true},
//	    State:  map[string]any{"temperature": 21.5},
//	})
package sensor
