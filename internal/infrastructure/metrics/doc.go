// Package metrics exports sensor service counters to Prometheus.
//
// Collectors (all prefixed graylogic_sensors_):
//
//	validations_total{type,operation,result}
//	field_errors_total{type,reason}
//	ingest_messages_total{topic,result}
//	managed
//	types_registered
//
// Serve runs the /metrics endpoint when metrics.enabled is set.
package metrics
