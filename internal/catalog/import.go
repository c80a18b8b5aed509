package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RowError is a field-level error on one CSV data row (1-based, excluding the
// header).
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult summarizes a catalog CSV import.
type ImportResult struct {
	TotalRows    int        `json:"total_rows"`
	ImportedRows int        `json:"imported_rows"`
	Errors       []RowError `json:"errors,omitempty"`
}

// Recognized header labels, normalized to lower case. "Material-ID" and
// "rho_kg_mm3" match the catalog CSV shipped with the original estimator.
var headerFields = map[string]string{
	"material-id": "material_id",
	"material_id": "material_id",
	"name":        "name",
	"rho_kg_mm3":  "density",
	"density":     "density",
	"cost_per_kg": "cost_per_kg",
	"kc":          "kc",
	"notes":       "notes",
}

// ImportCSV reads a material catalog CSV and upserts each valid row by
// material identifier. Rows with errors are skipped and reported; a bad row
// never aborts the rest of the import.
func (s *Store) ImportCSV(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse materials csv: %w", err)
	}
	if len(allRows) < 2 {
		return ImportResult{}, fmt.Errorf("materials csv must contain a header row and at least one data row")
	}

	fields := make([]string, len(allRows[0]))
	for i, h := range allRows[0] {
		fields[i] = headerFields[strings.ToLower(strings.TrimSpace(h))]
	}

	hasColumn := func(name string) bool {
		for _, f := range fields {
			if f == name {
				return true
			}
		}
		return false
	}
	if !hasColumn("material_id") || !hasColumn("density") {
		return ImportResult{}, fmt.Errorf("materials csv must contain material-id and rho_kg_mm3 columns")
	}

	result := ImportResult{TotalRows: len(allRows) - 1}

	for i, row := range allRows[1:] {
		rowNum := i + 1
		var m Material
		rowErrs := 0

		fieldErr := func(field, message string) {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Field: field, Message: message})
			rowErrs++
		}

		for col, value := range row {
			if col >= len(fields) {
				break
			}
			value = strings.TrimSpace(value)

			switch fields[col] {
			case "material_id":
				m.MaterialID = value
			case "name":
				m.Name = value
			case "notes":
				m.Notes = value
			case "density":
				m.DensityKgMM3 = parseNonNegative(value, "rho_kg_mm3", fieldErr)
			case "cost_per_kg":
				if value != "" {
					m.CostPerKg = parseNonNegative(value, "cost_per_kg", fieldErr)
				}
			case "kc":
				if value != "" {
					m.KC = parseNonNegative(value, "kc", fieldErr)
				}
			}
		}

		if m.MaterialID == "" {
			fieldErr("material_id", "is required")
		}
		if m.Name == "" {
			m.Name = m.MaterialID
		}

		if rowErrs > 0 {
			continue
		}

		if err := s.Upsert(m); err != nil {
			return result, fmt.Errorf("import row %d: %w", rowNum, err)
		}
		result.ImportedRows++
	}

	return result, nil
}

func parseNonNegative(raw, field string, fieldErr func(field, message string)) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fieldErr(field, "must be numeric")
		return 0
	}
	if value < 0 {
		fieldErr(field, "must be greater than or equal to 0")
		return 0
	}
	return value
}
