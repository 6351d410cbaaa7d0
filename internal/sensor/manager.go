package sensor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-sensors/internal/sensortype"
)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer is told about every validation outcome. Implementations must be
// safe for concurrent use and must not block.
type Observer interface {
	Accepted(typeID string, op Operation)
	Rejected(typeID string, op Operation, err error)
}

type noopObserver struct{}

func (noopObserver) Accepted(string, Operation)        {}
func (noopObserver) Rejected(string, Operation, error) {}

// Manager owns the validated sensors of this process.
//
// The cache is loaded by RefreshCache on startup and is authoritative
// afterwards. Every mutation validates a clone, persists it and only then
// swaps it into the cache, so a failed validation or store write leaves
// both untouched. Mutations are serialized.
//
// All public methods are thread-safe.
type Manager struct {
	repo     Repository
	factory  *sensortype.Factory
	cache    map[string]*Sensor
	mu       sync.RWMutex
	logger   Logger
	observer Observer
	now      func() time.Time
}

// NewManager creates a manager persisting through repo and validating
// through factory.
func NewManager(repo Repository, factory *sensortype.Factory) *Manager {
	return &Manager{
		repo:     repo,
		factory:  factory,
		cache:    make(map[string]*Sensor),
		logger:   noopLogger{},
		observer: noopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// SetObserver sets the validation observer. Call before use.
func (m *Manager) SetObserver(observer Observer) {
	if observer == nil {
		observer = noopObserver{}
	}
	m.observer = observer
}

// RefreshCache reloads every stored sensor and revalidates it against the
// current registry. Rows that no longer validate (type removed or schema
// tightened) are logged and left out of the cache; they stay in the store.
//
// Returns:
//   - int: Number of rows skipped
//   - error: Only if the store cannot be read
func (m *Manager) RefreshCache(ctx context.Context) (int, error) {
	rows, err := m.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading sensors: %w", err)
	}

	cache := make(map[string]*Sensor, len(rows))
	skipped := 0
	for i := range rows {
		s, err := m.rehydrate(&rows[i])
		if err != nil {
			skipped++
			m.observer.Rejected(rows[i].Type, OpRehydrate, err)
			m.logger.Warn("stored sensor no longer validates",
				"sensor_id", rows[i].ID, "type", rows[i].Type, "error", err)
			continue
		}
		m.observer.Accepted(s.Type, OpRehydrate)
		cache[s.ID] = s
	}

	m.mu.Lock()
	m.cache = cache
	m.mu.Unlock()

	m.logger.Info("sensor cache refreshed", "count", len(cache), "skipped", skipped)
	return skipped, nil
}

func (m *Manager) rehydrate(row *StoredSensor) (*Sensor, error) {
	typed, err := m.factory.Create(row.Type, row.Config, row.State)
	if err != nil {
		return nil, err
	}
	s := &Sensor{
		ID:             row.ID,
		Name:           row.Name,
		StateUpdatedAt: row.StateUpdatedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		typed:          typed,
	}
	s.sync()
	return s, nil
}

// Create validates req through the factory and stores the new sensor.
//
// Returns:
//   - *Sensor: Copy of the created sensor
//   - error: ErrInvalidName, ErrInvalidID, ErrSensorExists, or the
//     *sensortype.CreationError describing every field problem
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Sensor, error) {
	name, err := ValidateName(req.Name)
	if err != nil {
		return nil, err
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	typed, err := m.factory.Create(req.Type, req.Config, req.State)
	if err != nil {
		m.observer.Rejected(req.Type, OpCreate, err)
		return nil, err
	}

	now := m.now()
	s := &Sensor{
		ID:             id,
		Name:           name,
		StateUpdatedAt: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
		typed:          typed,
	}
	s.sync()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cache[id]; exists {
		return nil, ErrSensorExists
	}
	if err := m.repo.Create(ctx, s.stored()); err != nil {
		if errors.Is(err, ErrSensorExists) {
			return nil, err
		}
		return nil, fmt.Errorf("storing sensor: %w", err)
	}

	m.cache[id] = s
	m.observer.Accepted(s.Type, OpCreate)
	m.logger.Info("sensor created", "sensor_id", id, "type", s.Type, "name", name)
	return s.Clone(), nil
}

// Get returns a copy of the sensor with the given ID. Sensors written to the
// store by another process are loaded and cached on first access.
func (m *Manager) Get(ctx context.Context, id string) (*Sensor, error) {
	m.mu.RLock()
	s, ok := m.cache[id]
	m.mu.RUnlock()
	if ok {
		return s.Clone(), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// loadLocked returns the cached sensor, loading it from the store on a miss.
// The caller holds m.mu for writing.
func (m *Manager) loadLocked(ctx context.Context, id string) (*Sensor, error) {
	if s, ok := m.cache[id]; ok {
		return s, nil
	}

	row, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := m.rehydrate(row)
	if err != nil {
		m.observer.Rejected(row.Type, OpRehydrate, err)
		return nil, fmt.Errorf("loading sensor %s: %w", id, err)
	}
	m.cache[id] = s
	return s, nil
}

// List returns copies of all sensors ordered by name, then ID.
func (m *Manager) List(_ context.Context) ([]*Sensor, error) {
	return m.collect(func(*Sensor) bool { return true }), nil
}

// ListByType returns copies of the sensors of one type ordered by name.
func (m *Manager) ListByType(_ context.Context, typeID string) ([]*Sensor, error) {
	return m.collect(func(s *Sensor) bool { return s.Type == typeID }), nil
}

func (m *Manager) collect(keep func(*Sensor) bool) []*Sensor {
	m.mu.RLock()
	out := make([]*Sensor, 0, len(m.cache))
	for _, s := range m.cache {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Sensor) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Count returns the number of cached sensors.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// UpdateConfig merges raw over the sensor's config. A nil value removes a
// field. On a validation failure the error wraps sensortype.ErrInvalidConfig
// and the sensortype.FieldErrors.
func (m *Manager) UpdateConfig(ctx context.Context, id string, raw map[string]any) (*Sensor, error) {
	return m.update(ctx, id, OpUpdateConfig, func(s *Sensor) error {
		if err := s.typed.UpdateConfig(raw); err != nil {
			return fmt.Errorf("%w: %w", sensortype.ErrInvalidConfig, err)
		}
		return nil
	})
}

// UpdateState merges raw over the sensor's state. A nil value removes a
// field. On a validation failure the error wraps sensortype.ErrInvalidState
// and the sensortype.FieldErrors.
func (m *Manager) UpdateState(ctx context.Context, id string, raw map[string]any) (*Sensor, error) {
	return m.update(ctx, id, OpUpdateState, func(s *Sensor) error {
		if err := s.typed.UpdateState(raw); err != nil {
			return fmt.Errorf("%w: %w", sensortype.ErrInvalidState, err)
		}
		now := m.now()
		s.StateUpdatedAt = &now
		return nil
	})
}

// Rename changes the display name of a sensor.
func (m *Manager) Rename(ctx context.Context, id, name string) (*Sensor, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	return m.update(ctx, id, "", func(s *Sensor) error {
		s.Name = name
		return nil
	})
}

// update applies mutate to a clone, persists the clone and swaps it in.
// Sensors not yet cached are loaded from the store first, as in Get.
// An empty op skips observer reporting.
func (m *Manager) update(ctx context.Context, id string, op Operation, mutate func(*Sensor) error) (*Sensor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.loadLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		if op != "" {
			m.observer.Rejected(current.Type, op, err)
		}
		return nil, err
	}
	next.sync()
	next.UpdatedAt = m.now()

	if err := m.repo.Update(ctx, next.stored()); err != nil {
		return nil, fmt.Errorf("storing sensor: %w", err)
	}

	m.cache[id] = next
	if op != "" {
		m.observer.Accepted(next.Type, op)
	}
	m.logger.Debug("sensor updated", "sensor_id", id, "operation", string(op))
	return next.Clone(), nil
}

// Delete removes a sensor from the store and the cache.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.repo.Delete(ctx, id)
	if err != nil && !errors.Is(err, ErrSensorNotFound) {
		return fmt.Errorf("deleting sensor: %w", err)
	}
	// A row removed behind our back still leaves the cache.
	delete(m.cache, id)
	if err != nil {
		return err
	}
	m.logger.Info("sensor deleted", "sensor_id", id)
	return nil
}
