package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/realiYANG/rameyflow/pkg/models"
)

var (
	// ErrNotFound is returned when a calculation or its results do not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a calculation is not in a state that allows the change
	ErrConflict = errors.New("conflict")
)

// CalculationRepository defines the interface for calculation data operations
type CalculationRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, calc *models.Calculation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Calculation, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Calculation, error)
	BeginProcessing(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.CalculationResults) error
	GetResults(ctx context.Context, calculationID uuid.UUID) (*models.CalculationResults, error)
}
