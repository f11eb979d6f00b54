package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/realiYANG/rameyflow/internal/processing"
	"github.com/realiYANG/rameyflow/internal/ramey"
	"github.com/realiYANG/rameyflow/internal/repository"
	"github.com/realiYANG/rameyflow/internal/storage"
	"github.com/realiYANG/rameyflow/pkg/models"
	"github.com/rs/zerolog/log"
)

// CalculationHandler handles profile and calculation HTTP requests
type CalculationHandler struct {
	repo            repository.CalculationRepository
	store           storage.ObjectStore
	processingSvc   processing.ProcessingService
	maxDatasetBytes int64
	uploadExpiry    time.Duration
}

// NewCalculationHandler creates a new calculation handler
func NewCalculationHandler(repo repository.CalculationRepository, store storage.ObjectStore, processingSvc processing.ProcessingService, maxDatasetBytes int64, uploadExpiry time.Duration) *CalculationHandler {
	return &CalculationHandler{
		repo:            repo,
		store:           store,
		processingSvc:   processingSvc,
		maxDatasetBytes: maxDatasetBytes,
		uploadExpiry:    uploadExpiry,
	}
}

// ListParameters returns the parameter form fields
func (h *CalculationHandler) ListParameters(ctx context.Context, _ *struct{}) (*models.ListParametersResponse, error) {
	resp := &models.ListParametersResponse{}
	resp.Body.Parameters = ramey.Catalog()
	return resp, nil
}

// ComputeProfiles computes the result table and plot for inline rows
func (h *CalculationHandler) ComputeProfiles(ctx context.Context, req *models.ComputeProfilesRequest) (*models.ComputeProfilesResponse, error) {
	log.Info().Int("rows", len(req.Body.Rows)).Msg("Computing profiles")

	rows, err := parseInlineRows(req.Body.Rows)
	if err != nil {
		return nil, calculationError(err)
	}

	result, err := h.processingSvc.Compute(ctx, req.Body.Parameters, rows)
	if err != nil {
		return nil, calculationError(err)
	}

	return &models.ComputeProfilesResponse{Body: result}, nil
}

// parseInlineRows reads the cells of inline rows. The first failing cell is
// reported as an *ramey.InvalidInputError.
func parseInlineRows(in []models.InlineRow) ([]models.MeasurementRow, error) {
	rows := make([]models.MeasurementRow, len(in))
	for i, row := range in {
		depth, err := ramey.ParseReal(string(row.Depth))
		if err != nil {
			return nil, &ramey.InvalidInputError{Field: fmt.Sprintf("rows[%d].depth", i), Value: string(row.Depth), Err: err}
		}
		measured, err := ramey.ParseReal(string(row.MeasuredTemperature))
		if err != nil {
			return nil, &ramey.InvalidInputError{Field: fmt.Sprintf("rows[%d].measured_temperature", i), Value: string(row.MeasuredTemperature), Err: err}
		}
		rows[i] = models.MeasurementRow{Depth: depth, MeasuredTemperature: measured}
	}
	return rows, nil
}

// CreateCalculation validates the parameters, records a calculation and returns an upload URL
func (h *CalculationHandler) CreateCalculation(ctx context.Context, req *models.CreateCalculationRequest) (*models.CreateCalculationResponse, error) {
	log.Info().Int64("fileSize", req.Body.FileSize).Str("sessionID", req.Body.SessionID).Msg("Creating new calculation")

	params, err := ramey.ParseParameters(req.Body.Parameters)
	if err != nil {
		return nil, calculationError(err)
	}

	if req.Body.FileSize < 1 {
		return nil, huma.Error400BadRequest("Measurement table is empty.", nil)
	}
	if h.maxDatasetBytes > 0 && req.Body.FileSize > h.maxDatasetBytes {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Measurement table too large. Maximum size is %d bytes.", h.maxDatasetBytes), nil)
	}

	calculationID := uuid.New()
	datasetKey := fmt.Sprintf("datasets/%s.csv", calculationID)

	log.Info().Str("datasetKey", datasetKey).Str("mimeType", req.Body.MimeType).Msg("Generating upload URL")
	uploadURL, err := h.store.GenerateUploadURL(ctx, datasetKey, req.Body.MimeType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest("Measurement table format not supported. Upload a CSV file.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	now := time.Now()
	calc := &models.Calculation{
		ID:         calculationID.String(),
		SessionID:  req.Body.SessionID,
		Status:     models.StatusPending,
		Progress:   0,
		Parameters: params,
		DatasetKey: &datasetKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.Create(ctx, calc); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create calculation", err)
	}

	log.Info().Str("calculationID", calc.ID).Msg("Calculation created, returning upload URL to client")
	return &models.CreateCalculationResponse{
		Body: models.CreateCalculationResponseBody{
			ID:        calc.ID,
			UploadURL: uploadURL,
			ExpiresIn: int(h.uploadExpiry.Seconds()),
		},
	}, nil
}

// GetCalculationStatus returns the current status of a calculation
func (h *CalculationHandler) GetCalculationStatus(ctx context.Context, req *models.GetCalculationStatusRequest) (*models.GetCalculationStatusResponse, error) {
	calculationID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid calculation ID", err)
	}

	calc, err := h.repo.GetByID(ctx, calculationID)
	if err != nil {
		return nil, lookupError(err)
	}

	var resultsID *string
	if calc.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, calculationID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetCalculationStatusResponse{
		Body: models.GetCalculationStatusResponseBody{
			ID:        calc.ID,
			Status:    calc.Status,
			Progress:  calc.Progress,
			Message:   h.generateStatusMessage(calc.Status, calc.Progress),
			Error:     calc.ErrorMsg,
			ResultsID: resultsID,
		},
	}, nil
}

// GetCalculationResults returns the result table, plot and a download URL of the exported CSV
func (h *CalculationHandler) GetCalculationResults(ctx context.Context, req *models.GetCalculationResultsRequest) (*models.GetCalculationResultsResponse, error) {
	calculationID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid calculation ID", err)
	}

	calc, err := h.repo.GetByID(ctx, calculationID)
	if err != nil {
		return nil, lookupError(err)
	}

	if calc.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Calculation not yet completed",
			fmt.Errorf("calculation status is %s", calc.Status))
	}

	results, err := h.repo.GetResults(ctx, calculationID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	var downloadURL string
	if results.ResultKey != nil {
		downloadURL, err = h.store.GenerateDownloadURL(ctx, *results.ResultKey)
		if err != nil {
			log.Warn().Err(err).Str("calculationID", calc.ID).Msg("Failed to sign result download URL")
		}
	}

	return &models.GetCalculationResultsResponse{
		Body: models.GetCalculationResultsResponseBody{
			ID:           results.ID,
			Parameters:   calc.Parameters,
			Rows:         results.Rows,
			SumOfSquares: results.SumOfSquares,
			Plot:         ramey.PlotSeries(results.Rows),
			DownloadURL:  downloadURL,
			CreatedAt:    results.CreatedAt,
		},
	}, nil
}

// ListCalculations returns the calculations of a session, newest first
func (h *CalculationHandler) ListCalculations(ctx context.Context, req *models.ListCalculationsRequest) (*models.ListCalculationsResponse, error) {
	calcs, err := h.repo.GetBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list calculations", err)
	}

	resp := &models.ListCalculationsResponse{}
	resp.Body.Calculations = make([]models.CalculationSummary, len(calcs))
	for i, calc := range calcs {
		resp.Body.Calculations[i] = models.CalculationSummary{
			ID:          calc.ID,
			Status:      calc.Status,
			Progress:    calc.Progress,
			Error:       calc.ErrorMsg,
			CreatedAt:   calc.CreatedAt,
			CompletedAt: calc.CompletedAt,
		}
	}
	return resp, nil
}

// StartProcessing starts processing an uploaded measurement table. Only
// pending and failed calculations can be started.
func (h *CalculationHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	log.Info().Str("calculationID", req.ID).Msg("Processing start request received")
	calculationID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid calculation ID", err)
	}

	if err := h.repo.BeginProcessing(ctx, calculationID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, huma.Error409Conflict("Calculation is already processing or completed", err)
		}
		return nil, lookupError(err)
	}

	// Start processing in background (don't wait for completion)
	go func() {
		logger := log.With().Str("calculationID", calculationID.String()).Logger()
		err := h.processingSvc.ProcessCalculation(context.Background(), calculationID)
		if err != nil {
			logger.Error().Err(err).Msg("Processing failed")
			if updateErr := h.repo.UpdateError(context.Background(), calculationID, fmt.Sprintf("Processing failed: %v", err)); updateErr != nil {
				logger.Error().Err(updateErr).Msg("Failed to mark calculation failed")
			}
		}
	}()

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

// calculationError maps parse and computation errors to HTTP errors
func calculationError(err error) error {
	switch {
	case errors.Is(err, ramey.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error(), err)
	case errors.Is(err, ramey.ErrDivisionByZero):
		return huma.Error422UnprocessableEntity("Thermal diffusivity multiplied by production time must not be zero.", err)
	case errors.Is(err, ramey.ErrOverflow):
		return huma.Error422UnprocessableEntity("Temperature computation overflowed. Check parameter magnitudes.", err)
	default:
		return huma.Error500InternalServerError("Failed to compute profiles", err)
	}
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return huma.Error404NotFound("Calculation not found", err)
	}
	return huma.Error500InternalServerError("Failed to load calculation", err)
}

// generateStatusMessage creates a human-readable status message
func (h *CalculationHandler) generateStatusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Waiting for measurement table upload..."
	case models.StatusProcessing:
		if progress < 30 {
			return "Starting calculation..."
		} else if progress < 60 {
			return "Reading measurement table..."
		} else if progress < 80 {
			return "Computing temperature profiles..."
		} else {
			return "Saving results..."
		}
	case models.StatusCompleted:
		return "Calculation complete!"
	case models.StatusFailed:
		return "Calculation failed. Please check the inputs and try again."
	default:
		return "Unknown status"
	}
}
