package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-sensors/internal/diagnostics"
	"github.com/nerrad567/gray-logic-sensors/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensors/internal/sensor"
	"github.com/nerrad567/gray-logic-sensors/internal/sensortype"
)

// MaxPayloadSize is the largest accepted inbound payload (64 KiB).
const MaxPayloadSize = 64 << 10

// Topic kinds used as the metrics label.
const (
	kindRegister = "register"
	kindState    = mqtt.LeafState
	kindConfig   = mqtt.LeafConfig
	kindUnknown  = "unknown"
)

// Client is the MQTT surface the handler needs. *mqtt.Client satisfies it.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// SensorManager is the subset of *sensor.Manager used for ingestion.
type SensorManager interface {
	Create(ctx context.Context, req sensor.CreateRequest) (*sensor.Sensor, error)
	UpdateConfig(ctx context.Context, id string, raw map[string]any) (*sensor.Sensor, error)
	UpdateState(ctx context.Context, id string, raw map[string]any) (*sensor.Sensor, error)
}

// MessageCounter is satisfied by *metrics.Metrics.
type MessageCounter interface {
	IngestMessage(topic, result string)
}

// Logger defines the logging interface used by the Handler.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

type noopCounter struct{}

func (noopCounter) IngestMessage(string, string) {}

// Diagnostic is published on the error topic when a payload is rejected.
type Diagnostic struct {
	ID           string                 `json:"id,omitempty"`
	Operation    string                 `json:"operation"`
	Error        string                 `json:"error"`
	Reason       string                 `json:"reason,omitempty"`
	ConfigErrors sensortype.FieldErrors `json:"config_errors,omitempty"`
	StateErrors  sensortype.FieldErrors `json:"state_errors,omitempty"`
	FieldErrors  sensortype.FieldErrors `json:"field_errors,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// Handler routes sensor topics to the manager and publishes the results.
//
//	graylogic/sensor/register     -> Manager.Create
//	graylogic/sensor/{id}/state   -> Manager.UpdateState
//	graylogic/sensor/{id}/config  -> Manager.UpdateConfig
//
// Accepted sensors are published retained on graylogic/sensor/{id}/normalized.
// Rejections publish a Diagnostic on graylogic/sensor/{id}/error, or on
// graylogic/sensor/register/error when the registration has no usable ID.
type Handler struct {
	client  Client
	manager SensorManager
	qos     byte
	logger  Logger
	counter MessageCounter
	topics  mqtt.Topics
	now     func() time.Time
}

// New creates a Handler publishing with the given QoS.
func New(client Client, manager SensorManager, qos byte) *Handler {
	return &Handler{
		client:  client,
		manager: manager,
		qos:     qos,
		logger:  noopLogger{},
		counter: noopCounter{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetLogger sets the logger for the handler.
func (h *Handler) SetLogger(logger Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// SetCounter sets the per-message counter.
func (h *Handler) SetCounter(counter MessageCounter) {
	if counter != nil {
		h.counter = counter
	}
}

// Start subscribes to the registration, state and config topics. Messages
// are processed with ctx until the client disconnects.
func (h *Handler) Start(ctx context.Context) error {
	handle := func(topic string, payload []byte) error {
		return h.HandleMessage(ctx, topic, payload)
	}
	for _, topic := range []string{
		h.topics.SensorRegister(),
		h.topics.AllSensorStates(),
		h.topics.AllSensorConfigs(),
	} {
		if err := h.client.Subscribe(topic, h.qos, handle); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

// HandleMessage processes one inbound message. It returns the rejection or
// publish error, if any; rejections have already been published as a
// Diagnostic when it returns.
func (h *Handler) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	if topic == h.topics.SensorRegister() {
		return h.handleRegister(ctx, payload)
	}

	id, leaf, ok := mqtt.ParseSensorTopic(topic)
	if !ok || (leaf != mqtt.LeafState && leaf != mqtt.LeafConfig) {
		h.counter.IngestMessage(kindUnknown, "ignored")
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	op := sensor.OpUpdateState
	update := h.manager.UpdateState
	if leaf == mqtt.LeafConfig {
		op = sensor.OpUpdateConfig
		update = h.manager.UpdateConfig
	}

	var raw map[string]any
	if err := decodeObject(payload, &raw); err != nil {
		return h.reject(leaf, id, op, err)
	}

	s, err := update(ctx, id, raw)
	if err != nil {
		return h.reject(leaf, id, op, err)
	}
	return h.accept(leaf, s)
}

func (h *Handler) handleRegister(ctx context.Context, payload []byte) error {
	var req sensor.CreateRequest
	if err := decodeObject(payload, &req); err != nil {
		return h.reject(kindRegister, "", sensor.OpCreate, err)
	}

	s, err := h.manager.Create(ctx, req)
	if err != nil {
		return h.reject(kindRegister, req.ID, sensor.OpCreate, err)
	}
	return h.accept(kindRegister, s)
}

func (h *Handler) accept(kind string, s *sensor.Sensor) error {
	h.counter.IngestMessage(kind, "accepted")

	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding sensor %s: %w", s.ID, err)
	}
	if err := h.client.Publish(h.topics.SensorNormalized(s.ID), body, h.qos, true); err != nil {
		h.logger.Warn("publishing normalized sensor failed", "sensor_id", s.ID, "error", err)
		return fmt.Errorf("publishing normalized sensor %s: %w", s.ID, err)
	}
	return nil
}

func (h *Handler) reject(kind, id string, op sensor.Operation, cause error) error {
	h.counter.IngestMessage(kind, "rejected")
	h.logger.Debug("sensor payload rejected", "sensor_id", id, "operation", string(op), "error", cause)

	diag := h.diagnostic(id, op, cause)
	topic := h.topics.SensorRegisterError()
	if sensor.ValidID(id) {
		topic = h.topics.SensorError(id)
	}

	body, err := json.Marshal(diag)
	if err == nil {
		err = h.client.Publish(topic, body, h.qos, false)
	}
	if err != nil {
		h.logger.Warn("publishing diagnostic failed", "topic", topic, "error", err)
		return errors.Join(cause, fmt.Errorf("publishing diagnostic: %w", err))
	}
	return cause
}

func (h *Handler) diagnostic(id string, op sensor.Operation, cause error) Diagnostic {
	d := Diagnostic{
		ID:        id,
		Operation: string(op),
		Error:     cause.Error(),
		Timestamp: h.now(),
	}
	if out := diagnostics.Classify(cause); out.Result == diagnostics.ResultRejected {
		d.Reason = out.Reason
	}

	var cerr *sensortype.CreationError
	var fe sensortype.FieldErrors
	switch {
	case errors.As(cause, &cerr):
		d.ConfigErrors = cerr.ConfigErrors
		d.StateErrors = cerr.StateErrors
	case errors.As(cause, &fe):
		d.FieldErrors = fe
	}
	return d
}

// decodeObject unmarshals payload into out after checking its size and that
// it holds a JSON object.
func decodeObject(payload []byte, out any) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	return nil
}
