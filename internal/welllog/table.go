// Package welllog reads and writes the delimited depth/temperature table.
//
// The table has one header row and five columns: depth, geothermal
// temperature, Ramey temperature, measured temperature and difference
// squared. Only depth and measured temperature are read on load; the other
// columns are filled by the calculator.
package welllog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/realiYANG/rameyflow/internal/ramey"
	"github.com/realiYANG/rameyflow/pkg/models"
)

// Column positions in the table
const (
	DepthColumn      = 0
	GeothermalColumn = 1
	RameyColumn      = 2
	MeasuredColumn   = 3
	DiffColumn       = 4
)

// Header is the header row written by WriteCSV
var Header = []string{
	"Depth",
	"Geothermal Temperature",
	"Ramey Temperature",
	"Measured Temperature",
	"Difference Squared",
}

// headerLines is the number of physical lines skipped before any row is read
const headerLines = 1

// ParseCSV reads the measured rows of a table. The first physical line is the
// header and is skipped whatever it holds; after it, lines starting with '#'
// and blank lines are ignored. No rows are returned if any row fails to parse.
func ParseCSV(r io.Reader) ([]models.MeasurementRow, error) {
	br := bufio.NewReader(r)
	for i := 0; i < headerLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return []models.MeasurementRow{}, nil
			}
			return nil, fmt.Errorf("failed to read table header: %w", err)
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.ReuseRecord = true

	rows := []models.MeasurementRow{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &ramey.InvalidInputError{Field: fmt.Sprintf("line %d", parseErr.Line+headerLines), Err: parseErr.Err}
			}
			return nil, fmt.Errorf("failed to read table: %w", err)
		}

		line, _ := reader.FieldPos(0)
		line += headerLines
		if len(record) <= MeasuredColumn {
			return nil, &ramey.InvalidInputError{
				Field: fmt.Sprintf("line %d", line),
				Err:   fmt.Errorf("expected at least %d columns, got %d", MeasuredColumn+1, len(record)),
			}
		}

		depth, err := parseCell(record, DepthColumn, line)
		if err != nil {
			return nil, err
		}
		measured, err := parseCell(record, MeasuredColumn, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.MeasurementRow{Depth: depth, MeasuredTemperature: measured})
	}

	return rows, nil
}

func parseCell(record []string, col, line int) (float64, error) {
	v, err := ramey.ParseReal(record[col])
	if err != nil {
		return 0, &ramey.InvalidInputError{
			Field: fmt.Sprintf("line %d column %d", line, col+1),
			Value: record[col],
			Err:   err,
		}
	}
	return v, nil
}

// WriteCSV writes the result table with a header row. Computed columns are
// rounded to two decimals.
func WriteCSV(w io.Writer, rows []models.ComputedRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(Header))
	for _, row := range rows {
		record[DepthColumn] = strconv.FormatFloat(row.Depth, 'f', -1, 64)
		record[GeothermalColumn] = strconv.FormatFloat(row.GeothermalTemperature, 'f', 2, 64)
		record[RameyColumn] = strconv.FormatFloat(row.RameyTemperature, 'f', 2, 64)
		record[MeasuredColumn] = strconv.FormatFloat(row.MeasuredTemperature, 'f', -1, 64)
		record[DiffColumn] = strconv.FormatFloat(row.DifferenceSquared, 'f', 2, 64)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
