package sensor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Repository persists sensors.
// Implementations return ErrSensorNotFound and ErrSensorExists where noted.
type Repository interface {
	// Get retrieves a sensor by ID. Returns ErrSensorNotFound if absent.
	Get(ctx context.Context, id string) (*StoredSensor, error)

	// List retrieves all sensors ordered by name.
	List(ctx context.Context) ([]StoredSensor, error)

	// Create inserts a sensor. Returns ErrSensorExists on an ID collision.
	Create(ctx context.Context, s *StoredSensor) error

	// Update replaces name, config, state and timestamps.
	// Returns ErrSensorNotFound if absent.
	Update(ctx context.Context, s *StoredSensor) error

	// Delete removes a sensor. Returns ErrSensorNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository on the sensors table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `
		SELECT id, name, type, config, state, state_updated_at, created_at, updated_at
		FROM sensors`

// Get retrieves a sensor by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*StoredSensor, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	s, err := scanSensor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("querying sensor by id: %w", err)
	}
	return s, nil
}

// List retrieves all sensors ordered by name, then ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]StoredSensor, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var sensors []StoredSensor
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensors: %w", err)
	}
	return sensors, nil
}

// Create inserts a sensor. Zero timestamps are set to now.
func (r *SQLiteRepository) Create(ctx context.Context, s *StoredSensor) error {
	configJSON, stateJSON, err := marshalRecords(s)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sensors (id, name, type, config, state, state_updated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Type, configJSON, stateJSON,
		formatTimePtr(s.StateUpdatedAt),
		s.CreatedAt.Format(time.RFC3339Nano),
		s.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrSensorExists
		}
		return fmt.Errorf("inserting sensor: %w", err)
	}
	return nil
}

// Update replaces the mutable columns of a sensor.
func (r *SQLiteRepository) Update(ctx context.Context, s *StoredSensor) error {
	configJSON, stateJSON, err := marshalRecords(s)
	if err != nil {
		return err
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE sensors
		SET name = ?, config = ?, state = ?, state_updated_at = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, configJSON, stateJSON,
		formatTimePtr(s.StateUpdatedAt),
		s.UpdatedAt.Format(time.RFC3339Nano),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sensor: %w", err)
	}
	return requireRow(result)
}

// Delete removes a sensor by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sensors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sensor: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

func marshalRecords(s *StoredSensor) (configJSON, stateJSON string, err error) {
	if configJSON, err = marshalObject(s.Config); err != nil {
		return "", "", fmt.Errorf("marshalling config: %w", err)
	}
	if stateJSON, err = marshalObject(s.State); err != nil {
		return "", "", fmt.Errorf("marshalling state: %w", err)
	}
	return configJSON, stateJSON, nil
}

func marshalObject(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSensor(scanner rowScanner) (*StoredSensor, error) {
	var s StoredSensor
	var configJSON, stateJSON, createdAt, updatedAt string
	var stateUpdatedAt sql.NullString

	if err := scanner.Scan(&s.ID, &s.Name, &s.Type, &configJSON, &stateJSON,
		&stateUpdatedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(configJSON), &s.Config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &s.State); err != nil {
		return nil, fmt.Errorf("unmarshalling state: %w", err)
	}

	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if stateUpdatedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, stateUpdatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing state_updated_at: %w", err)
		}
		s.StateUpdatedAt = &t
	}
	return &s, nil
}
