package models

import (
	"time"
)

// Calculation statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ParameterSet holds the wellbore parameters entered on the form.
// Only the reference point, gradient, JT effect, flow rate, perforation depth,
// diffusivity and production time enter the profile formula; the remaining
// fields are carried through unchanged.
type ParameterSet struct {
	Depth1             float64 `json:"depth1" doc:"Reference depth (TVD ft)"`
	Temp1              float64 `json:"temp1" doc:"Temperature at reference depth (deg F)"`
	Depth2             float64 `json:"depth2" doc:"Second depth (TVD ft)"`
	BHT2               float64 `json:"bht2" doc:"Bottom hole temperature at depth 2 (deg F)"`
	GeoGradient        float64 `json:"geo_gradient" doc:"Geothermal gradient (deg F/ft)"`
	JTEffect           float64 `json:"jt_effect" doc:"Inflow Joule-Thomson effect"`
	FlowRate           float64 `json:"flow_rate" doc:"Flow rate (bopd)"`
	PerforationDepth   float64 `json:"perforation_depth" doc:"Perforation depth (ft)"`
	ThermalDiffusivity float64 `json:"thermal_diffusivity" doc:"Thermal diffusivity (sq ft/day)"`
	ProductionTime     float64 `json:"production_time" doc:"Time of production (days)"`
	CasingDiameter     float64 `json:"casing_diameter" doc:"Casing diameter (inches)"`
	FluidDensity       float64 `json:"fluid_density" doc:"Fluid density (gm/cc)"`
	FluidSpecificHeat  float64 `json:"fluid_specific_heat" doc:"Fluid specific heat (Btu/lb deg F)"`
	TimeFunction       float64 `json:"time_function" doc:"Time function f(t)"`
	RelaxationDistance float64 `json:"relaxation_distance" doc:"Relaxation distance (A)"`
	LeastSquaresFit    float64 `json:"least_squares_fit" doc:"Least squares fit to raw data"`
	SumOfSquares       float64 `json:"sum_of_squares" doc:"Sum of squares"`
}

// Calculation represents a calculation job over an uploaded measurement table (for internal use)
type Calculation struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	Status      string       `json:"status"`
	Progress    int          `json:"progress"`
	Parameters  ParameterSet `json:"parameters"`
	DatasetKey  *string      `json:"dataset_key,omitempty"`
	ErrorMsg    *string      `json:"error_message,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// CalculationResults represents the stored result table of a calculation
type CalculationResults struct {
	ID            string        `json:"id"`
	CalculationID string        `json:"calculation_id"`
	Rows          []ComputedRow `json:"rows"`
	SumOfSquares  float64       `json:"sum_of_squares"`
	ResultKey     *string       `json:"result_key,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
