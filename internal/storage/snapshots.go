package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
)

// SnapshotRecord is a saved cube state.
type SnapshotRecord struct {
	SnapshotID string
	Name       string
	CreatedAt  time.Time
	Margin     float64
	Solved     bool
	State      cube.Snapshot
	Notes      *string
}

// SnapshotRepository provides CRUD operations for snapshots.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create stores a snapshot under a unique name and returns its ID.
func (r *SnapshotRepository) Create(name string, state cube.Snapshot, solved bool, notes string) (string, error) {
	return r.insert(r.db.DB, name, state, solved, notes)
}

// Replace stores a snapshot, overwriting any existing one with the same name.
func (r *SnapshotRepository) Replace(name string, state cube.Snapshot, solved bool, notes string) (string, error) {
	var id string
	err := r.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM snapshots WHERE name = ?", name); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		var err error
		id, err = r.insert(tx, name, state, solved, notes)
		return err
	})
	return id, err
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (r *SnapshotRepository) insert(ex execer, name string, state cube.Snapshot, solved bool, notes string) (string, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	id := uuid.New().String()
	_, err = ex.Exec(`
		INSERT INTO snapshots (snapshot_id, name, created_at, margin, solved, state_json, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, name, time.Now().UTC().Format(timeLayout), state.Margin, boolInt(solved), string(stateJSON), notesPtr)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	return id, nil
}

// Get retrieves a snapshot by ID or name.
func (r *SnapshotRepository) Get(idOrName string) (*SnapshotRecord, error) {
	row := r.db.QueryRow(`
		SELECT snapshot_id, name, created_at, margin, solved, state_json, notes
		FROM snapshots
		WHERE snapshot_id = ? OR name = ?
	`, idOrName, idOrName)

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot %q", ErrNotFound, idOrName)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all snapshots, newest first.
func (r *SnapshotRepository) List() ([]SnapshotRecord, error) {
	rows, err := r.db.Query(`
		SELECT snapshot_id, name, created_at, margin, solved, state_json, notes
		FROM snapshots
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot by ID or name.
func (r *SnapshotRepository) Delete(idOrName string) error {
	res, err := r.db.Exec("DELETE FROM snapshots WHERE snapshot_id = ? OR name = ?", idOrName, idOrName)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: snapshot %q", ErrNotFound, idOrName)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (*SnapshotRecord, error) {
	var (
		s         SnapshotRecord
		createdAt string
		solved    int
		stateJSON string
	)
	if err := sc.Scan(&s.SnapshotID, &s.Name, &createdAt, &s.Margin, &solved, &stateJSON, &s.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	s.CreatedAt = t
	s.Solved = solved != 0

	if err := json.Unmarshal([]byte(stateJSON), &s.State); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.SnapshotID, err)
	}
	return &s, nil
}
