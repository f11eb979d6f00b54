package models

import (
	"encoding/json"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// ParameterInfo describes one input field of the parameter form
type ParameterInfo struct {
	Key   string `json:"key" doc:"Field key used in parameter maps"`
	Label string `json:"label" doc:"Human-readable label with unit"`
}

// ListParametersResponse lists the parameter form fields in display order
type ListParametersResponse struct {
	Body struct {
		Parameters []ParameterInfo `json:"parameters" doc:"Parameter fields in form order"`
	}
}

// Cell is a table value sent either as a JSON number or as numeric text.
// Its content is parsed by the calculator.
type Cell string

// UnmarshalJSON keeps strings unquoted and any other value as its raw text
func (c *Cell) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Cell(s)
		return nil
	}
	*c = Cell(data)
	return nil
}

// Schema accepts a number or a string
func (Cell) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		OneOf: []*huma.Schema{
			{Type: huma.TypeNumber},
			{Type: huma.TypeString},
		},
	}
}

// InlineRow is one measured row sent with an inline calculation
type InlineRow struct {
	Depth               Cell `json:"depth" doc:"True vertical depth in ft"`
	MeasuredTemperature Cell `json:"measured_temperature" doc:"Measured temperature in deg F"`
}

// ComputeProfilesRequestBody is the body of an inline profile calculation
type ComputeProfilesRequestBody struct {
	Parameters map[string]string `json:"parameters" required:"true" doc:"Parameter text fields keyed by parameter key"`
	Rows       []InlineRow       `json:"rows" required:"true" doc:"Measured depth/temperature rows"`
}

// ComputeProfilesRequest represents a request to compute profiles from inline data
type ComputeProfilesRequest struct {
	Body ComputeProfilesRequestBody
}

// ComputeProfilesResponse represents the computed table and plot
type ComputeProfilesResponse struct {
	Body *ProfileResult
}

// CreateCalculationRequestBody is the body of a create calculation request
type CreateCalculationRequestBody struct {
	SessionID  string            `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
	Parameters map[string]string `json:"parameters" required:"true" doc:"Parameter text fields keyed by parameter key"`
	FileSize   int64             `json:"file_size" required:"true" doc:"Measurement table size in bytes"`
	MimeType   string            `json:"mime_type" enum:"text/csv,text/plain,application/vnd.ms-excel,application/octet-stream" required:"true" doc:"Measurement table MIME type"`
}

// CreateCalculationRequest represents a request to create a new calculation
type CreateCalculationRequest struct {
	Body CreateCalculationRequestBody
}

// CreateCalculationResponseBody is the body of the create calculation response
type CreateCalculationResponseBody struct {
	ID        string `json:"id" doc:"Calculation unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed URL for the measurement table upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateCalculationResponse represents the response from creating a calculation
type CreateCalculationResponse struct {
	Body CreateCalculationResponseBody
}

// GetCalculationStatusRequest represents a request to get calculation status
type GetCalculationStatusRequest struct {
	ID string `path:"id" doc:"Calculation ID"`
}

// GetCalculationStatusResponseBody is the body of the status response
type GetCalculationStatusResponseBody struct {
	ID        string  `json:"id" doc:"Calculation ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Calculation status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Calculation progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	Error     *string `json:"error,omitempty" doc:"Failure reason when the calculation failed"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when the calculation completes"`
}

// GetCalculationStatusResponse represents the current status of a calculation
type GetCalculationStatusResponse struct {
	Body GetCalculationStatusResponseBody
}

// GetCalculationResultsRequest represents a request to get calculation results
type GetCalculationResultsRequest struct {
	ID string `path:"id" doc:"Calculation ID"`
}

// GetCalculationResultsResponseBody is the body of the results response
type GetCalculationResultsResponseBody struct {
	ID           string        `json:"id" doc:"Results ID"`
	Parameters   ParameterSet  `json:"parameters" doc:"Parameters the calculation ran with"`
	Rows         []ComputedRow `json:"rows" doc:"Result table"`
	SumOfSquares float64       `json:"sum_of_squares" doc:"Sum of the difference squared column"`
	Plot         Plot          `json:"plot" doc:"Geothermal, Ramey and measured series"`
	DownloadURL  string        `json:"download_url,omitempty" doc:"Pre-signed URL of the result table CSV"`
	CreatedAt    time.Time     `json:"created_at" doc:"Results creation timestamp"`
}

// GetCalculationResultsResponse represents the complete calculation results
type GetCalculationResultsResponse struct {
	Body GetCalculationResultsResponseBody
}

// ListCalculationsRequest represents a request to list a session's calculations
type ListCalculationsRequest struct {
	SessionID string `path:"sessionID" minLength:"10" maxLength:"50" doc:"Client session identifier"`
}

// CalculationSummary is one entry of a session's calculation list
type CalculationSummary struct {
	ID          string     `json:"id" doc:"Calculation ID"`
	Status      string     `json:"status" enum:"pending,processing,completed,failed" doc:"Calculation status"`
	Progress    int        `json:"progress" minimum:"0" maximum:"100" doc:"Calculation progress percentage"`
	Error       *string    `json:"error,omitempty" doc:"Failure reason when the calculation failed"`
	CreatedAt   time.Time  `json:"created_at" doc:"Calculation creation timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" doc:"Completion timestamp"`
}

// ListCalculationsResponse lists a session's calculations, newest first
type ListCalculationsResponse struct {
	Body struct {
		Calculations []CalculationSummary `json:"calculations" doc:"Calculations of the session, newest first"`
	}
}

// StartProcessingRequest represents a request to start processing an uploaded table
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Calculation ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}
