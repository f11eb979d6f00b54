package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/realiYANG/rameyflow/internal/repository"
	"github.com/realiYANG/rameyflow/pkg/models"
)

//go:embed schema.sql
var schema string

// PostgresCalculationRepository implements CalculationRepository for PostgreSQL
type PostgresCalculationRepository struct {
	db *sql.DB
}

// NewPostgresCalculationRepository creates a new PostgreSQL calculation repository
func NewPostgresCalculationRepository(db *sql.DB) repository.CalculationRepository {
	return &PostgresCalculationRepository{db: db}
}

// EnsureSchema creates the tables if they do not exist
func (r *PostgresCalculationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Create inserts a new calculation record
func (r *PostgresCalculationRepository) Create(ctx context.Context, calc *models.Calculation) error {
	params, err := json.Marshal(calc.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	query := `
		INSERT INTO calculations (id, session_id, status, progress, parameters, dataset_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		calc.ID,
		calc.SessionID,
		calc.Status,
		calc.Progress,
		string(params),
		calc.DatasetKey,
		calc.CreatedAt,
		calc.UpdatedAt)

	return err
}

const selectCalculation = `
		SELECT id, session_id, status, progress, parameters, dataset_key, error_message, created_at, updated_at, completed_at
		FROM calculations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalculation(row rowScanner) (*models.Calculation, error) {
	var calc models.Calculation
	var params []byte
	var datasetKey, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&calc.ID,
		&calc.SessionID,
		&calc.Status,
		&calc.Progress,
		&params,
		&datasetKey,
		&errorMsg,
		&calc.CreatedAt,
		&calc.UpdatedAt,
		&completedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(params, &calc.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if datasetKey.Valid {
		calc.DatasetKey = &datasetKey.String
	}
	if errorMsg.Valid {
		calc.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		calc.CompletedAt = &completedAt.Time
	}

	return &calc, nil
}

// GetByID retrieves a calculation by ID
func (r *PostgresCalculationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Calculation, error) {
	calc, err := scanCalculation(r.db.QueryRowContext(ctx, selectCalculation+`
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("calculation %s: %w", id, repository.ErrNotFound)
	}
	return calc, err
}

// GetBySessionID retrieves calculations by session ID, newest first
func (r *PostgresCalculationRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Calculation, error) {
	rows, err := r.db.QueryContext(ctx, selectCalculation+`
		WHERE session_id = $1
		ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calcs := []*models.Calculation{}
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}

	return calcs, rows.Err()
}

// BeginProcessing moves a pending or failed calculation to processing and
// clears its previous error. Calculations already processing or completed
// are left untouched and reported as repository.ErrConflict.
func (r *PostgresCalculationRepository) BeginProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE calculations
		SET status = 'processing', progress = 0, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'failed')`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM calculations WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("calculation %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("calculation %s is %s: %w", id, status, repository.ErrConflict)
}

// UpdateStatus updates the status and progress of a calculation
func (r *PostgresCalculationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE calculations
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks a calculation failed with a message
func (r *PostgresCalculationRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE calculations
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores the result table of a calculation, replacing results
// left by an earlier run
func (r *PostgresCalculationRepository) StoreResults(ctx context.Context, results *models.CalculationResults) error {
	tableRows, err := json.Marshal(results.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal result rows: %w", err)
	}

	query := `
		INSERT INTO calculation_results (id, calculation_id, table_rows, sum_of_squares, result_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (calculation_id) DO UPDATE
		SET id = EXCLUDED.id, table_rows = EXCLUDED.table_rows, sum_of_squares = EXCLUDED.sum_of_squares,
		    result_key = EXCLUDED.result_key, created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.CalculationID,
		string(tableRows),
		results.SumOfSquares,
		results.ResultKey,
		results.CreatedAt)

	return err
}

// GetResults retrieves the results of a calculation
func (r *PostgresCalculationRepository) GetResults(ctx context.Context, calculationID uuid.UUID) (*models.CalculationResults, error) {
	query := `
		SELECT id, calculation_id, table_rows, sum_of_squares, result_key, created_at
		FROM calculation_results
		WHERE calculation_id = $1`

	var results models.CalculationResults
	var tableRows []byte
	var resultKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, calculationID).Scan(
		&results.ID,
		&results.CalculationID,
		&tableRows,
		&results.SumOfSquares,
		&resultKey,
		&results.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for calculation %s: %w", calculationID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tableRows, &results.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result rows: %w", err)
	}
	if resultKey.Valid {
		results.ResultKey = &resultKey.String
	}

	return &results, nil
}
