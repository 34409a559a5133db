package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GustavoCosta/typewriter/internal/models"
	"github.com/google/uuid"
)

// Run repository errors.
var (
	ErrRunNotFound = errors.New("run not found")
)

const runColumns = `id, script, loop, type_speed_ms, status, started_at, finished_at, actions, error`

// RunRepository handles run persistence.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run, assigning an ID, status and start time when missing.
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}
	if err := run.Validate(); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Script,
		boolToInt(run.Loop),
		run.TypeSpeed.Milliseconds(),
		string(run.Status),
		run.StartedAt.UTC().Format(timeFormat),
		formatOptionalTime(run.FinishedAt),
		run.Actions,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish records the final status of a run.
func (r *RunRepository) Finish(ctx context.Context, id string, status models.RunStatus, actions int, runErr string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ?, actions = ?, error = ? WHERE id = ?
	`,
		string(status),
		now.Format(timeFormat),
		actions,
		nullString(runErr),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var loop int
	var speedMS int64
	var status, startedAt string
	var finishedAt, runErr sql.NullString

	if err := row.Scan(
		&run.ID,
		&run.Script,
		&loop,
		&speedMS,
		&status,
		&startedAt,
		&finishedAt,
		&run.Actions,
		&runErr,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Loop = loop != 0
	run.TypeSpeed = time.Duration(speedMS) * time.Millisecond
	run.Status = models.RunStatus(status)
	if t, err := time.Parse(timeFormat, startedAt); err == nil {
		run.StartedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(timeFormat, finishedAt.String); err == nil {
			run.FinishedAt = &t
		}
	}
	if runErr.Valid {
		run.Error = runErr.String
	}
	return &run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func formatOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeFormat), Valid: true}
}
