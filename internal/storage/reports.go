package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DriftReport is one persisted drift measurement run.
type DriftReport struct {
	ReportID              string
	CreatedAt             time.Time
	Seed                  uint64
	Moves                 int
	Frames                int
	Speed                 float64
	OrientationSnap       bool
	MaxPositionDrift      float64
	MaxOrientationDrift   float64
	FinalPositionDrift    float64
	FinalOrientationDrift float64
	SolvedAfterInverse    bool
}

// ReportRepository provides access to drift reports.
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create stores a report and returns its ID. ReportID and CreatedAt are
// assigned here.
func (r *ReportRepository) Create(rep DriftReport) (string, error) {
	id := uuid.New().String()
	_, err := r.db.Exec(`
		INSERT INTO drift_reports (
			report_id, created_at, seed, moves, frames, speed, orientation_snap,
			max_position_drift, max_orientation_drift,
			final_position_drift, final_orientation_drift, solved_after_inverse
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, time.Now().UTC().Format(timeLayout), int64(rep.Seed), rep.Moves, rep.Frames, rep.Speed,
		boolInt(rep.OrientationSnap), rep.MaxPositionDrift, rep.MaxOrientationDrift,
		rep.FinalPositionDrift, rep.FinalOrientationDrift, boolInt(rep.SolvedAfterInverse))
	if err != nil {
		return "", fmt.Errorf("failed to create drift report: %w", err)
	}
	return id, nil
}

// List returns the most recent reports, newest first. limit <= 0 returns all.
func (r *ReportRepository) List(limit int) ([]DriftReport, error) {
	query := `
		SELECT report_id, created_at, seed, moves, frames, speed, orientation_snap,
			max_position_drift, max_orientation_drift,
			final_position_drift, final_orientation_drift, solved_after_inverse
		FROM drift_reports
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drift reports: %w", err)
	}
	defer rows.Close()

	var out []DriftReport
	for rows.Next() {
		var (
			rep                 DriftReport
			createdAt           string
			seed                int64
			snap, solvedInverse int
		)
		err := rows.Scan(&rep.ReportID, &createdAt, &seed, &rep.Moves, &rep.Frames, &rep.Speed, &snap,
			&rep.MaxPositionDrift, &rep.MaxOrientationDrift,
			&rep.FinalPositionDrift, &rep.FinalOrientationDrift, &solvedInverse)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drift report: %w", err)
		}
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		rep.CreatedAt = t
		rep.Seed = uint64(seed)
		rep.OrientationSnap = snap != 0
		rep.SolvedAfterInverse = solvedInverse != 0
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drift reports: %w", err)
	}
	return out, nil
}
