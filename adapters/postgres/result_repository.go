package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"divnest/domain/core"
	"divnest/domain/randtest"
	"divnest/ports"

	"github.com/jmoiron/sqlx"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// EnsureSchema creates the results table when it does not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS permutation_results (
			id TEXT PRIMARY KEY,
			call TEXT NOT NULL,
			observed DOUBLE PRECISION NOT NULL,
			simulated JSONB NOT NULL,
			alternative TEXT NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			requested INTEGER NOT NULL,
			degenerate INTEGER NOT NULL,
			summary JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// SaveResult stores a finished test result.
func (r *ResultRepositoryImpl) SaveResult(ctx context.Context, result *randtest.TestResult) error {
	simulatedJSON, _ := json.Marshal(result.Simulated)
	summaryJSON, _ := json.Marshal(result.Summary)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO permutation_results (
			id, call, observed, simulated, alternative, p_value,
			requested, degenerate, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		result.ID.String(), result.Call, result.Observed, simulatedJSON,
		string(result.Alternative), result.PValue, result.Requested,
		result.Degenerate, summaryJSON, result.CreatedAt.Time())
	return err
}

// GetResult retrieves one result by ID.
func (r *ResultRepositoryImpl) GetResult(ctx context.Context, id core.TestID) (*randtest.TestResult, error) {
	row := r.db.QueryRowxContext(ctx, `
		SELECT id, call, observed, simulated, alternative, p_value,
		       requested, degenerate, summary, created_at
		FROM permutation_results WHERE id = $1`, id.String())
	result, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
	}
	return result, err
}

// ListResults returns the most recent results, newest first.
func (r *ResultRepositoryImpl) ListResults(ctx context.Context, limit int) ([]*randtest.TestResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, call, observed, simulated, alternative, p_value,
		       requested, degenerate, summary, created_at
		FROM permutation_results ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*randtest.TestResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*randtest.TestResult, error) {
	var (
		result        randtest.TestResult
		id            string
		alternative   string
		simulatedJSON []byte
		summaryJSON   []byte
		createdAt     time.Time
	)
	err := row.Scan(&id, &result.Call, &result.Observed, &simulatedJSON,
		&alternative, &result.PValue, &result.Requested, &result.Degenerate,
		&summaryJSON, &createdAt)
	if err != nil {
		return nil, err
	}
	result.ID = core.TestID(id)
	result.Alternative = randtest.Alternative(alternative)
	result.CreatedAt = core.NewTimestamp(createdAt)
	if err := json.Unmarshal(simulatedJSON, &result.Simulated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(summaryJSON, &result.Summary); err != nil {
		return nil, err
	}
	return &result, nil
}
