package ramey

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/realiYANG/rameyflow/pkg/models"
)

var (
	errMissing   = errors.New("value is required")
	errNonFinite = errors.New("value must be finite")
)

type parameterField struct {
	key   string
	label string
	ptr   func(*models.ParameterSet) *float64
}

// fields is the parameter form in display order
var fields = []parameterField{
	{"depth1", "Depth 1 (TVD ft)", func(p *models.ParameterSet) *float64 { return &p.Depth1 }},
	{"temp1", "Temperature 1 (deg F)", func(p *models.ParameterSet) *float64 { return &p.Temp1 }},
	{"depth2", "Depth 2 (TVD ft)", func(p *models.ParameterSet) *float64 { return &p.Depth2 }},
	{"bht2", "BHT 2 (Deg F)", func(p *models.ParameterSet) *float64 { return &p.BHT2 }},
	{"geo_gradient", "Geothermal Gradient (Deg F/ft)", func(p *models.ParameterSet) *float64 { return &p.GeoGradient }},
	{"jt_effect", "Inflow JT Effect", func(p *models.ParameterSet) *float64 { return &p.JTEffect }},
	{"flow_rate", "Flow Rate (bopd)", func(p *models.ParameterSet) *float64 { return &p.FlowRate }},
	{"perforation_depth", "Perforation Depth", func(p *models.ParameterSet) *float64 { return &p.PerforationDepth }},
	{"thermal_diffusivity", "Thermal Diffusivity (sq ft/day)", func(p *models.ParameterSet) *float64 { return &p.ThermalDiffusivity }},
	{"production_time", "Time of Production (days)", func(p *models.ParameterSet) *float64 { return &p.ProductionTime }},
	{"casing_diameter", "Casing Diameter (inches)", func(p *models.ParameterSet) *float64 { return &p.CasingDiameter }},
	{"fluid_density", "Fluid Density (gm/cc)", func(p *models.ParameterSet) *float64 { return &p.FluidDensity }},
	{"fluid_specific_heat", "Fluid Specific Heat (Btu/lb DegF)", func(p *models.ParameterSet) *float64 { return &p.FluidSpecificHeat }},
	{"time_function", "Time Function Calculation f(t)", func(p *models.ParameterSet) *float64 { return &p.TimeFunction }},
	{"relaxation_distance", "Relaxation Distance (A)", func(p *models.ParameterSet) *float64 { return &p.RelaxationDistance }},
	{"least_squares_fit", "Least Squares Fit to Raw Data", func(p *models.ParameterSet) *float64 { return &p.LeastSquaresFit }},
	{"sum_of_squares", "Sum of Squares", func(p *models.ParameterSet) *float64 { return &p.SumOfSquares }},
}

// Catalog returns the parameter form fields in display order
func Catalog() []models.ParameterInfo {
	out := make([]models.ParameterInfo, len(fields))
	for i, f := range fields {
		out[i] = models.ParameterInfo{Key: f.key, Label: f.label}
	}
	return out
}

// ParseParameters converts the form's text fields into a ParameterSet.
// Every catalog key must be present. The first failing field, in form order,
// is reported as an *InvalidInputError.
func ParseParameters(values map[string]string) (models.ParameterSet, error) {
	var p models.ParameterSet
	for _, f := range fields {
		raw, ok := values[f.key]
		if !ok {
			return models.ParameterSet{}, &InvalidInputError{Field: f.key, Err: errMissing}
		}
		v, err := ParseReal(raw)
		if err != nil {
			return models.ParameterSet{}, &InvalidInputError{Field: f.key, Value: raw, Err: err}
		}
		*f.ptr(&p) = v
	}
	return p, nil
}

// ParseReal reads a finite real number, ignoring surrounding whitespace
func ParseReal(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errMissing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}
