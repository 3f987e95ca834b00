package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/shared"
)

const runColumns = "id, sequence, query, search_type, outcome, error_kind, elapsed_ms, response_ms, accelerated, created_at"

// RunFilter narrows [RunRepository.List]. Zero fields match everything.
type RunFilter struct {
	SearchType models.SearchType
	Outcome    models.RunOutcome
	Limit      int
}

// RunRepository persists finished runs.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run with a generated ID and sequence; both are written back to run.
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	run.Sequence = sequence

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.Query,
		string(run.SearchType),
		string(run.Outcome),
		string(run.ErrorKind),
		run.Elapsed.Milliseconds(),
		run.ResponseTime.Milliseconds(),
		run.Accelerated,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// LastSuccessful returns the most recent completed run of searchType that measured a response time.
func (r *RunRepository) LastSuccessful(searchType models.SearchType) (*models.Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE search_type = ? AND outcome = ? AND response_ms > 0
		ORDER BY sequence DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, string(searchType), string(models.RunCompleted)))
}

// List retrieves runs newest first.
func (r *RunRepository) List(filter RunFilter) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	args := []any{}

	if filter.SearchType != "" {
		query += " AND search_type = ?"
		args = append(args, string(filter.SearchType))
	}
	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(filter.Outcome))
	}

	query += " ORDER BY sequence DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Count returns the number of recorded runs.
func (r *RunRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

func (r *RunRepository) scanOne(row *sql.Row) (*models.Run, error) {
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		run        models.Run
		searchType string
		outcome    string
		errorKind  string
		elapsedMS  int64
		responseMS int64
	)

	err := s.Scan(&run.ID, &run.Sequence, &run.Query, &searchType, &outcome, &errorKind, &elapsedMS, &responseMS, &run.Accelerated, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.SearchType = models.SearchType(searchType)
	run.Outcome = models.RunOutcome(outcome)
	run.ErrorKind = models.ErrorKind(errorKind)
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.ResponseTime = time.Duration(responseMS) * time.Millisecond
	return &run, nil
}
