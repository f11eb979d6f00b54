package models

// MeasurementRow is one row of a loaded measurement table
type MeasurementRow struct {
	Depth               float64 `json:"depth" doc:"True vertical depth in ft"`
	MeasuredTemperature float64 `json:"measured_temperature" doc:"Measured temperature in deg F"`
}

// ComputedRow is one row of the result table
type ComputedRow struct {
	Depth                 float64 `json:"depth" doc:"True vertical depth in ft"`
	GeothermalTemperature float64 `json:"geothermal_temperature" doc:"Undisturbed formation temperature in deg F"`
	RameyTemperature      float64 `json:"ramey_temperature" doc:"Estimated flowing temperature in deg F"`
	MeasuredTemperature   float64 `json:"measured_temperature" doc:"Measured temperature in deg F"`
	DifferenceSquared     float64 `json:"difference_squared" doc:"(measured - ramey)^2"`
}

// Point is a single (temperature, depth) sample of a plot series
type Point struct {
	X float64 `json:"x" doc:"Temperature in deg F"`
	Y float64 `json:"y" doc:"Depth in ft"`
}

// Series is a named line on the temperature/depth plot
type Series struct {
	Name   string  `json:"name" doc:"Series label"`
	Points []Point `json:"points" doc:"Series samples in table order"`
}

// Plot describes everything a renderer needs to draw the profile chart
type Plot struct {
	XLabel  string   `json:"x_label"`
	YLabel  string   `json:"y_label"`
	InvertY bool     `json:"invert_y" doc:"Depth increases downwards"`
	Series  []Series `json:"series"`
}

// ProfileResult is the tabulated and plotted outcome of one calculation
type ProfileResult struct {
	Rows         []ComputedRow `json:"rows" doc:"Result table"`
	SumOfSquares float64       `json:"sum_of_squares" doc:"Sum of the difference squared column"`
	Plot         Plot          `json:"plot" doc:"Geothermal, Ramey and measured series"`
}
