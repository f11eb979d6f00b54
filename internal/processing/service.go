package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/realiYANG/rameyflow/internal/ramey"
	"github.com/realiYANG/rameyflow/internal/repository"
	"github.com/realiYANG/rameyflow/internal/storage"
	"github.com/realiYANG/rameyflow/internal/welllog"
	"github.com/realiYANG/rameyflow/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ResultKey returns the object key of a calculation's exported result table
func ResultKey(calculationID uuid.UUID) string {
	return fmt.Sprintf("results/%s.csv", calculationID)
}

type ProcessingService interface {
	Compute(ctx context.Context, parameters map[string]string, rows []models.MeasurementRow) (*models.ProfileResult, error)
	ProcessCalculation(ctx context.Context, calculationID uuid.UUID) error
}

type processingService struct {
	store           storage.ObjectStore
	repository      repository.CalculationRepository
	maxDatasetBytes int64
}

// NewProcessingService creates the processing service. Uploaded tables larger
// than maxDatasetBytes are rejected; zero or less disables the limit.
func NewProcessingService(store storage.ObjectStore, repo repository.CalculationRepository, maxDatasetBytes int64) ProcessingService {
	return &processingService{
		store:           store,
		repository:      repo,
		maxDatasetBytes: maxDatasetBytes,
	}
}

// Compute parses the parameter fields and tabulates the profiles for rows
func (s *processingService) Compute(ctx context.Context, parameters map[string]string, rows []models.MeasurementRow) (*models.ProfileResult, error) {
	params, err := ramey.ParseParameters(parameters)
	if err != nil {
		return nil, err
	}

	return tabulate(params, rows)
}

func tabulate(params models.ParameterSet, rows []models.MeasurementRow) (*models.ProfileResult, error) {
	computed, err := ramey.Calculate(params, rows)
	if err != nil {
		return nil, err
	}

	sum := ramey.SumOfSquares(computed)
	if math.IsInf(sum, 0) {
		return nil, fmt.Errorf("sum of squares: %w", ramey.ErrOverflow)
	}

	return &models.ProfileResult{
		Rows:         computed,
		SumOfSquares: sum,
		Plot:         ramey.PlotSeries(computed),
	}, nil
}

// ProcessCalculation runs a stored calculation over its uploaded table.
// Input and computation errors mark the calculation failed and return nil;
// storage and database errors are returned. A completed calculation is left
// as it is.
func (s *processingService) ProcessCalculation(ctx context.Context, calculationID uuid.UUID) error {
	logger := log.With().Str("calculationID", calculationID.String()).Logger()

	// Step 1: Get calculation details
	calc, err := s.repository.GetByID(ctx, calculationID)
	if err != nil {
		return err
	}
	if calc.Status == models.StatusCompleted {
		logger.Info().Msg("Calculation already completed, skipping")
		return nil
	}

	// Step 2: Update to processing status
	if err := s.repository.UpdateStatus(ctx, calculationID, models.StatusProcessing, 10); err != nil {
		return err
	}
	if calc.DatasetKey == nil {
		s.fail(ctx, logger, calculationID, "No measurement table attached")
		return nil
	}
	datasetKey := *calc.DatasetKey

	// Step 3: Download the measurement table
	if err := s.repository.UpdateStatus(ctx, calculationID, models.StatusProcessing, 30); err != nil {
		return err
	}
	data, err := s.store.DownloadFile(ctx, datasetKey, s.maxDatasetBytes)
	if err != nil {
		if errors.Is(err, storage.ErrObjectTooLarge) {
			logger.Warn().Err(err).Str("datasetKey", datasetKey).Msg("Measurement table rejected")
			s.fail(ctx, logger, calculationID, fmt.Sprintf("Measurement table too large. Maximum size is %d bytes.", s.maxDatasetBytes))
			return nil
		}
		return fmt.Errorf("failed to download measurement table %s: %w", datasetKey, err)
	}

	// Step 4: Parse the table
	rows, err := welllog.ParseCSV(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, ramey.ErrInvalidInput) {
			logger.Warn().Err(err).Msg("Measurement table rejected")
			s.fail(ctx, logger, calculationID, err.Error())
			return nil
		}
		return err
	}

	// Step 5: Calculate
	if err := s.repository.UpdateStatus(ctx, calculationID, models.StatusProcessing, 60); err != nil {
		return err
	}
	result, err := tabulate(calc.Parameters, rows)
	if err != nil {
		logger.Warn().Err(err).Int("rows", len(rows)).Msg("Profile calculation failed")
		s.fail(ctx, logger, calculationID, err.Error())
		return nil
	}

	// Step 6: Export the result table
	if err := s.repository.UpdateStatus(ctx, calculationID, models.StatusProcessing, 80); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := welllog.WriteCSV(&buf, result.Rows); err != nil {
		return fmt.Errorf("failed to export result table: %w", err)
	}
	resultKey := ResultKey(calculationID)
	if err := s.store.UploadFile(ctx, resultKey, "text/csv", buf.Bytes()); err != nil {
		return err
	}

	// Step 7: Store results
	if err := s.repository.UpdateStatus(ctx, calculationID, models.StatusProcessing, 90); err != nil {
		return err
	}
	results := &models.CalculationResults{
		ID:            uuid.New().String(),
		CalculationID: calc.ID,
		Rows:          result.Rows,
		SumOfSquares:  result.SumOfSquares,
		ResultKey:     &resultKey,
		CreatedAt:     time.Now(),
	}
	if err := s.repository.StoreResults(ctx, results); err != nil {
		return err
	}

	// Step 8: Mark complete
	if err := s.repository.UpdateStatus(ctx, calculationID, models.StatusCompleted, 100); err != nil {
		return err
	}

	// Step 9: Remove the uploaded table
	if err := s.store.DeleteFile(ctx, datasetKey); err != nil {
		logger.Warn().Err(err).Str("datasetKey", datasetKey).Msg("Failed to remove measurement table")
	}

	logger.Info().Int("rows", len(result.Rows)).Float64("sumOfSquares", result.SumOfSquares).Msg("Calculation completed")
	return nil
}

// fail records msg as the calculation's failure reason
func (s *processingService) fail(ctx context.Context, logger zerolog.Logger, calculationID uuid.UUID, msg string) {
	if err := s.repository.UpdateError(ctx, calculationID, msg); err != nil {
		logger.Error().Err(err).Str("reason", msg).Msg("Failed to mark calculation failed")
	}
}
