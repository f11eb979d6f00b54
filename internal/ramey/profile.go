// Package ramey computes geothermal and Ramey flowing-temperature profiles
// against depth.
//
// The geothermal baseline is linear in depth from a reference point:
//
//	geothermal(d) = temp1 + geoGradient*(d - depth1)
//
// The Ramey estimate perturbs the baseline by a correction linear in the
// offset from the perforation and in flow rate:
//
//	ramey(d) = geothermal(d) + jtEffect*(d - perforationDepth)*flowRate / (thermalDiffusivity*productionTime)
//
// Casing diameter, fluid properties, time function and relaxation distance
// are accepted but do not enter the correction.
package ramey

import (
	"fmt"
	"math"

	"github.com/realiYANG/rameyflow/pkg/models"
)

// Plot labels
const (
	GeothermalSeries = "Geothermal Temperature"
	RameySeries      = "Ramey Temperature"
	MeasuredSeries   = "Measured Temperature"
	TemperatureLabel = "Temperature (deg F)"
	DepthLabel       = "Depth (ft)"
)

// Geothermal returns the undisturbed formation temperature at depth d
func Geothermal(p models.ParameterSet, d float64) float64 {
	return p.Temp1 + p.GeoGradient*(d-p.Depth1)
}

// ComputeProfiles evaluates the geothermal and Ramey temperatures for every depth.
// Both returned slices have len(depths) elements and are never nil.
func ComputeProfiles(p models.ParameterSet, depths []float64) (geothermal, ramey []float64, err error) {
	denom := p.ThermalDiffusivity * p.ProductionTime
	if denom == 0 {
		return nil, nil, ErrDivisionByZero
	}

	geothermal = make([]float64, len(depths))
	ramey = make([]float64, len(depths))
	for i, d := range depths {
		g := Geothermal(p, d)
		r := g + p.JTEffect*(d-p.PerforationDepth)*p.FlowRate/denom
		if !finite(g) || !finite(r) {
			return nil, nil, fmt.Errorf("depth %g: %w", d, ErrOverflow)
		}
		geothermal[i] = g
		ramey[i] = r
	}
	return geothermal, ramey, nil
}

// SquaredDifference returns (measured - ramey)^2
func SquaredDifference(measured, ramey float64) float64 {
	diff := measured - ramey
	return diff * diff
}

// Calculate builds the full result table for the measured rows
func Calculate(p models.ParameterSet, rows []models.MeasurementRow) ([]models.ComputedRow, error) {
	depths := make([]float64, len(rows))
	for i, row := range rows {
		depths[i] = row.Depth
	}

	geothermal, ramey, err := ComputeProfiles(p, depths)
	if err != nil {
		return nil, err
	}

	out := make([]models.ComputedRow, len(rows))
	for i, row := range rows {
		sq := SquaredDifference(row.MeasuredTemperature, ramey[i])
		if !finite(sq) {
			return nil, fmt.Errorf("depth %g: %w", row.Depth, ErrOverflow)
		}
		out[i] = models.ComputedRow{
			Depth:                 row.Depth,
			GeothermalTemperature: geothermal[i],
			RameyTemperature:      ramey[i],
			MeasuredTemperature:   row.MeasuredTemperature,
			DifferenceSquared:     sq,
		}
	}
	return out, nil
}

// SumOfSquares totals the difference squared column
func SumOfSquares(rows []models.ComputedRow) float64 {
	var sum float64
	for _, row := range rows {
		sum += row.DifferenceSquared
	}
	return sum
}

// PlotSeries lays the table out as three temperature-vs-depth series
func PlotSeries(rows []models.ComputedRow) models.Plot {
	geothermal := make([]models.Point, len(rows))
	ramey := make([]models.Point, len(rows))
	measured := make([]models.Point, len(rows))
	for i, row := range rows {
		geothermal[i] = models.Point{X: row.GeothermalTemperature, Y: row.Depth}
		ramey[i] = models.Point{X: row.RameyTemperature, Y: row.Depth}
		measured[i] = models.Point{X: row.MeasuredTemperature, Y: row.Depth}
	}

	return models.Plot{
		XLabel:  TemperatureLabel,
		YLabel:  DepthLabel,
		InvertY: true,
		Series: []models.Series{
			{Name: GeothermalSeries, Points: geothermal},
			{Name: RameySeries, Points: ramey},
			{Name: MeasuredSeries, Points: measured},
		},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
