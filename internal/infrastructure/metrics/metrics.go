package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/config"
)

const (
	namespace       = "graylogic"
	subsystem       = "sensors"
	shutdownTimeout = 5 * time.Second
)

// Metrics holds the Prometheus collectors for the sensor service.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Metrics struct {
	registry prometheus.Gatherer

	validations *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	ingest      *prometheus.CounterVec
	sensors     prometheus.Gauge
	types       prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg gets a
// fresh registry that also carries the Go and process collectors.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: reg,
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validations_total",
			Help:      "Sensor create and update validations by type, operation and result.",
		}, []string{"type", "operation", "result"}),
		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "field_errors_total",
			Help:      "Individual field errors by sensor type and reason.",
		}, []string{"type", "reason"}),
		ingest: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ingest_messages_total",
			Help:      "MQTT messages handled by topic kind and result.",
		}, []string{"topic", "result"}),
		sensors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "managed",
			Help:      "Number of sensors currently held by the manager.",
		}),
		types: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "types_registered",
			Help:      "Number of sensor types in the registry.",
		}),
	}

	reg.MustRegister(m.validations, m.fieldErrors, m.ingest, m.sensors, m.types)
	return m
}

// Validation counts one validation outcome.
func (m *Metrics) Validation(typeID, operation, result string) {
	m.validations.WithLabelValues(typeID, operation, result).Inc()
}

// FieldErrors adds n field errors of the given reason for a sensor type.
func (m *Metrics) FieldErrors(typeID, reason string, n int) {
	if n > 0 {
		m.fieldErrors.WithLabelValues(typeID, reason).Add(float64(n))
	}
}

// IngestMessage counts one MQTT message.
func (m *Metrics) IngestMessage(topic, result string) {
	m.ingest.WithLabelValues(topic, result).Inc()
}

// SetSensors records the number of managed sensors.
func (m *Metrics) SetSensors(n int) {
	m.sensors.Set(float64(n))
}

// SetTypes records the number of registered sensor types.
func (m *Metrics) SetTypes(n int) {
	m.types.Set(float64(n))
}

// Handler returns the exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes Handler on cfg.Listen at cfg.Path until ctx is cancelled,
// then shuts the server down gracefully.
//
// Returns:
//   - error: nil after a clean shutdown, the listen error otherwise
func (m *Metrics) Serve(ctx context.Context, cfg config.MetricsConfig) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", cfg.Listen, err)
	}
	return m.serve(ctx, ln, cfg.Path)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: shutdownTimeout}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
