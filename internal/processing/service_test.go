package processing

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/realiYANG/rameyflow/internal/ramey"
	"github.com/realiYANG/rameyflow/internal/repository"
	"github.com/realiYANG/rameyflow/internal/storage"
	"github.com/realiYANG/rameyflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCalculationRepository implements repository.CalculationRepository for testing
type MockCalculationRepository struct {
	mock.Mock
}

func (m *MockCalculationRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCalculationRepository) Create(ctx context.Context, calc *models.Calculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockCalculationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Calculation, error) {
	args := m.Called(ctx, id)
	calc, _ := args.Get(0).(*models.Calculation)
	return calc, args.Error(1)
}

func (m *MockCalculationRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Calculation, error) {
	args := m.Called(ctx, sessionID)
	calcs, _ := args.Get(0).([]*models.Calculation)
	return calcs, args.Error(1)
}

func (m *MockCalculationRepository) BeginProcessing(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCalculationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockCalculationRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockCalculationRepository) StoreResults(ctx context.Context, results *models.CalculationResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockCalculationRepository) GetResults(ctx context.Context, calculationID uuid.UUID) (*models.CalculationResults, error) {
	args := m.Called(ctx, calculationID)
	results, _ := args.Get(0).(*models.CalculationResults)
	return results, args.Error(1)
}

// MockObjectStore implements storage.ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) DownloadFile(ctx context.Context, key string, maxBytes int64) ([]byte, error) {
	args := m.Called(ctx, key, maxBytes)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockObjectStore) UploadFile(ctx context.Context, key string, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockObjectStore) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func formValues() map[string]string {
	values := map[string]string{}
	for _, info := range ramey.Catalog() {
		values[info.Key] = "0"
	}
	values["depth1"] = "1000"
	values["temp1"] = "100"
	values["geo_gradient"] = "0.015"
	values["jt_effect"] = "2"
	values["flow_rate"] = "500"
	values["perforation_depth"] = "1000"
	values["thermal_diffusivity"] = "1.0"
	values["production_time"] = "10"
	return values
}

func wellParameters() models.ParameterSet {
	p, err := ramey.ParseParameters(formValues())
	if err != nil {
		panic(err)
	}
	return p
}

const wellTable = `Depth,Geothermal Temperature,Ramey Temperature,Measured Temperature,Difference Squared
1000,,,101,
2000,,,100115,
`

func TestCompute(t *testing.T) {
	svc := NewProcessingService(nil, nil, 0)

	result, err := svc.Compute(context.Background(), formValues(), []models.MeasurementRow{
		{Depth: 1000, MeasuredTemperature: 101},
		{Depth: 2000, MeasuredTemperature: 100120},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	assert.InDelta(t, 100.0, result.Rows[0].RameyTemperature, 1e-9)
	assert.InDelta(t, 115.0, result.Rows[1].GeothermalTemperature, 1e-9)
	assert.InDelta(t, 100115.0, result.Rows[1].RameyTemperature, 1e-9)
	assert.InDelta(t, 26.0, result.SumOfSquares, 1e-6)
	assert.Len(t, result.Plot.Series, 3)
}

func TestCompute_Errors(t *testing.T) {
	svc := NewProcessingService(nil, nil, 0)

	bad := formValues()
	bad["flow_rate"] = "fast"
	_, err := svc.Compute(context.Background(), bad, nil)
	assert.ErrorIs(t, err, ramey.ErrInvalidInput)

	zero := formValues()
	zero["thermal_diffusivity"] = "0"
	_, err = svc.Compute(context.Background(), zero, []models.MeasurementRow{{Depth: 1500, MeasuredTemperature: 120}})
	assert.ErrorIs(t, err, ramey.ErrDivisionByZero)

	result, err := svc.Compute(context.Background(), formValues(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, 0.0, result.SumOfSquares)
}

func TestCompute_SumOverflow(t *testing.T) {
	svc := NewProcessingService(nil, nil, 0)

	_, err := svc.Compute(context.Background(), formValues(), []models.MeasurementRow{
		{Depth: 1000, MeasuredTemperature: 1e154},
		{Depth: 1000, MeasuredTemperature: 1e154},
		{Depth: 1000, MeasuredTemperature: 1e154},
	})
	assert.ErrorIs(t, err, ramey.ErrOverflow)
}

func newCalculation(id uuid.UUID, params models.ParameterSet) *models.Calculation {
	key := fmt.Sprintf("datasets/%s.csv", id)
	return &models.Calculation{
		ID:         id.String(),
		SessionID:  "session-well-7",
		Status:     models.StatusPending,
		Parameters: params,
		DatasetKey: &key,
	}
}

const maxTableBytes = 1024

func TestProcessCalculation(t *testing.T) {
	id := uuid.New()
	calc := newCalculation(id, wellParameters())

	repo := &MockCalculationRepository{}
	store := &MockObjectStore{}

	repo.On("GetByID", mock.Anything, id).Return(calc, nil)
	repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, mock.AnythingOfType("int")).Return(nil)
	store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return([]byte(wellTable), nil)
	store.On("UploadFile", mock.Anything, ResultKey(id), "text/csv", mock.MatchedBy(func(data []byte) bool {
		return strings.Contains(string(data), "2000,115.00,100115.00,100115,0.00")
	})).Return(nil)
	repo.On("StoreResults", mock.Anything, mock.MatchedBy(func(r *models.CalculationResults) bool {
		return r.CalculationID == id.String() &&
			len(r.Rows) == 2 &&
			r.SumOfSquares == 1 &&
			r.ResultKey != nil && *r.ResultKey == ResultKey(id)
	})).Return(nil)
	repo.On("UpdateStatus", mock.Anything, id, models.StatusCompleted, 100).Return(nil)
	store.On("DeleteFile", mock.Anything, *calc.DatasetKey).Return(nil)

	svc := NewProcessingService(store, repo, maxTableBytes)
	require.NoError(t, svc.ProcessCalculation(context.Background(), id))

	repo.AssertExpectations(t)
	store.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateError", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessCalculation_DatasetCleanupFailureIsNotFatal(t *testing.T) {
	id := uuid.New()
	calc := newCalculation(id, wellParameters())

	repo := &MockCalculationRepository{}
	store := &MockObjectStore{}

	repo.On("GetByID", mock.Anything, id).Return(calc, nil)
	repo.On("UpdateStatus", mock.Anything, id, mock.Anything, mock.AnythingOfType("int")).Return(nil)
	store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return([]byte(wellTable), nil)
	store.On("UploadFile", mock.Anything, ResultKey(id), "text/csv", mock.Anything).Return(nil)
	repo.On("StoreResults", mock.Anything, mock.Anything).Return(nil)
	store.On("DeleteFile", mock.Anything, *calc.DatasetKey).Return(assert.AnError)

	svc := NewProcessingService(store, repo, maxTableBytes)
	require.NoError(t, svc.ProcessCalculation(context.Background(), id))

	repo.AssertCalled(t, "UpdateStatus", mock.Anything, id, models.StatusCompleted, 100)
	repo.AssertNotCalled(t, "UpdateError", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessCalculation_AlreadyCompleted(t *testing.T) {
	id := uuid.New()
	calc := newCalculation(id, wellParameters())
	calc.Status = models.StatusCompleted
	calc.Progress = 100

	repo := &MockCalculationRepository{}
	store := &MockObjectStore{}
	repo.On("GetByID", mock.Anything, id).Return(calc, nil)

	svc := NewProcessingService(store, repo, maxTableBytes)
	require.NoError(t, svc.ProcessCalculation(context.Background(), id))

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "StoreResults", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateError", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DownloadFile", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessCalculation_MarksFailed(t *testing.T) {
	tests := []struct {
		name        string
		params      func() models.ParameterSet
		table       string
		downloadErr error
		wantMsg     string
	}{
		{
			name:    "unparseable cell",
			params:  wellParameters,
			table:   "h\n1000,,,warm,\n",
			wantMsg: "line 2 column 4",
		},
		{
			name: "division by zero",
			params: func() models.ParameterSet {
				p := wellParameters()
				p.ProductionTime = 0
				return p
			},
			table:   wellTable,
			wantMsg: "division by zero",
		},
		{
			name:        "table over the size limit",
			params:      wellParameters,
			downloadErr: fmt.Errorf("datasets/x.csv is 2147483648 bytes: %w", storage.ErrObjectTooLarge),
			wantMsg:     "Maximum size is 1024 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			calc := newCalculation(id, tt.params())

			repo := &MockCalculationRepository{}
			store := &MockObjectStore{}

			repo.On("GetByID", mock.Anything, id).Return(calc, nil)
			repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, mock.AnythingOfType("int")).Return(nil)
			if tt.downloadErr != nil {
				store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return(nil, tt.downloadErr)
			} else {
				store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return([]byte(tt.table), nil)
			}
			repo.On("UpdateError", mock.Anything, id, mock.MatchedBy(func(msg string) bool {
				return strings.Contains(msg, tt.wantMsg)
			})).Return(nil)

			svc := NewProcessingService(store, repo, maxTableBytes)
			require.NoError(t, svc.ProcessCalculation(context.Background(), id))

			repo.AssertExpectations(t)
			store.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "DeleteFile", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "StoreResults", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessCalculation_FailureNotRecorded(t *testing.T) {
	id := uuid.New()
	calc := newCalculation(id, wellParameters())

	repo := &MockCalculationRepository{}
	store := &MockObjectStore{}

	repo.On("GetByID", mock.Anything, id).Return(calc, nil)
	repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, mock.AnythingOfType("int")).Return(nil)
	store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return([]byte("h\nabc,,,1,\n"), nil)
	repo.On("UpdateError", mock.Anything, id, mock.Anything).Return(assert.AnError)

	svc := NewProcessingService(store, repo, maxTableBytes)
	assert.NoError(t, svc.ProcessCalculation(context.Background(), id))
	repo.AssertExpectations(t)
}

func TestProcessCalculation_InfrastructureErrors(t *testing.T) {
	tests := []struct {
		name        string
		downloadErr error
		uploadErr   error
	}{
		{name: "download failure", downloadErr: assert.AnError},
		{name: "upload failure", uploadErr: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			calc := newCalculation(id, wellParameters())

			repo := &MockCalculationRepository{}
			store := &MockObjectStore{}

			repo.On("GetByID", mock.Anything, id).Return(calc, nil)
			repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, mock.AnythingOfType("int")).Return(nil)
			if tt.downloadErr != nil {
				store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return(nil, tt.downloadErr)
			} else {
				store.On("DownloadFile", mock.Anything, *calc.DatasetKey, int64(maxTableBytes)).Return([]byte(wellTable), nil)
			}
			store.On("UploadFile", mock.Anything, ResultKey(id), "text/csv", mock.Anything).Return(tt.uploadErr)

			svc := NewProcessingService(store, repo, maxTableBytes)
			err := svc.ProcessCalculation(context.Background(), id)
			assert.ErrorIs(t, err, assert.AnError)
			repo.AssertNotCalled(t, "UpdateError", mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "StoreResults", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessCalculation_UnknownCalculation(t *testing.T) {
	id := uuid.New()

	repo := &MockCalculationRepository{}
	repo.On("GetByID", mock.Anything, id).Return(nil, fmt.Errorf("calculation %s: %w", id, repository.ErrNotFound))

	svc := NewProcessingService(&MockObjectStore{}, repo, maxTableBytes)
	assert.ErrorIs(t, svc.ProcessCalculation(context.Background(), id), repository.ErrNotFound)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
