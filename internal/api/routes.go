package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/realiYANG/rameyflow/internal/api/handlers"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, calculationHandler *handlers.CalculationHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listParameters",
		Method:      http.MethodGet,
		Path:        "/api/parameters",
		Summary:     "List parameter fields",
		Description: "Returns the wellbore parameter fields in form order",
		Tags:        []string{"Profiles"},
	}, calculationHandler.ListParameters)

	huma.Register(api, huma.Operation{
		OperationID: "computeProfiles",
		Method:      http.MethodPost,
		Path:        "/api/profiles",
		Summary:     "Compute temperature profiles",
		Description: "Computes geothermal and Ramey temperatures, squared differences and plot series for inline measurement rows",
		Tags:        []string{"Profiles"},
	}, calculationHandler.ComputeProfiles)

	huma.Register(api, huma.Operation{
		OperationID: "createCalculation",
		Method:      http.MethodPost,
		Path:        "/api/calculations",
		Summary:     "Create a new calculation",
		Description: "Validates the parameters, creates a calculation record and returns an upload URL for the measurement table",
		Tags:        []string{"Calculations"},
	}, calculationHandler.CreateCalculation)

	huma.Register(api, huma.Operation{
		OperationID: "getCalculationStatus",
		Method:      http.MethodGet,
		Path:        "/api/calculations/{id}/status",
		Summary:     "Get calculation status",
		Description: "Returns the current status and progress of a calculation",
		Tags:        []string{"Calculations"},
	}, calculationHandler.GetCalculationStatus)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/calculations/{id}/process",
		Summary:     "Start processing calculation",
		Description: "Starts processing the uploaded measurement table",
		Tags:        []string{"Calculations"},
	}, calculationHandler.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "getCalculationResults",
		Method:      http.MethodGet,
		Path:        "/api/calculations/{id}/results",
		Summary:     "Get calculation results",
		Description: "Returns the result table, plot series and a download URL for the result CSV",
		Tags:        []string{"Calculations"},
	}, calculationHandler.GetCalculationResults)

	huma.Register(api, huma.Operation{
		OperationID: "listCalculations",
		Method:      http.MethodGet,
		Path:        "/api/sessions/{sessionID}/calculations",
		Summary:     "List session calculations",
		Description: "Returns the calculations created by a session, newest first",
		Tags:        []string{"Calculations"},
	}, calculationHandler.ListCalculations)
}
