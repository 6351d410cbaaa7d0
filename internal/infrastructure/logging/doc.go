// Package logging provides structured logging for the Gray Logic sensor service.
//
// It wraps log/slog so that every entry carries the same default fields
// (service, version) and honours the level and format set in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("sensor registered", "sensor_id", id, "type", typeID)
//
//	manager.SetLogger(logger.Component("sensor"))
//
// The *Logger satisfies the small Logger interfaces declared by the sensor,
// ingest, mqtt and database packages, so components never import slog directly.
//
// Never log MQTT passwords or InfluxDB tokens.
package logging
