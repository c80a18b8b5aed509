// Package export renders a computed quote as a printable document: PDF,
// Excel workbook, or CSV. It has no opinion on the numbers; it formats what
// the estimation engine produced.
package export

import (
	"fmt"

	"github.com/atolye/machquote/internal/estimate"
)

// SummaryLine is one label/value pair in the block & volume summary.
type SummaryLine struct {
	Label string
	Value string
}

// CostRow is one line of the cost breakdown.
type CostRow struct {
	Component string
	Amount    float64
}

// Document holds all data needed to render a quote in any output format.
type Document struct {
	Title        string
	MaterialName string
	CreatedDate  string
	Currency     string

	Summary    []SummaryLine
	Operations []estimate.OperationResult
	Costs      []CostRow

	TotalTimeMin float64
	TotalCost    float64
}

// BuildDocument assembles a renderer-neutral quote document from one
// estimation run.
func BuildDocument(title, createdDate, currency string, job estimate.Job, res estimate.QuoteResult) Document {
	materialName := job.Material.Name
	if materialName == "" {
		materialName = job.Material.ID
	}

	summary := []SummaryLine{
		{"L × W × H (mm)", fmt.Sprintf("%g × %g × %g", job.Block.LengthMM, job.Block.WidthMM, job.Block.HeightMM)},
		{"Material", materialName},
		{"Raw volume (mm³)", fmt.Sprintf("%.0f", res.RawVolumeMM3)},
		{"Final volume (mm³)", fmt.Sprintf("%.0f", job.FinalVolumeMM3)},
		{"Chip volume (mm³)", fmt.Sprintf("%.0f", res.ChipVolumeMM3)},
		{"Raw mass (kg)", fmt.Sprintf("%.2f", res.RawMassKg)},
		{"Machining time (min)", fmt.Sprintf("%.2f", res.MachiningTimeMin)},
		{"Setup time (min)", fmt.Sprintf("%.0f", res.SetupTimeMin)},
		{"Total cycle (min)", fmt.Sprintf("%.2f", res.TotalTimeMin)},
	}

	costs := []CostRow{
		{"Material", res.MaterialCost},
		{"Machine", res.MachineCost},
		{"Tool wear", res.ToolCost},
		{"Setup labor", res.SetupCost},
		{"Overhead", res.Overhead},
	}

	return Document{
		Title:        title,
		MaterialName: materialName,
		CreatedDate:  createdDate,
		Currency:     currency,
		Summary:      summary,
		Operations:   res.Operations,
		Costs:        costs,
		TotalTimeMin: res.TotalTimeMin,
		TotalCost:    res.TotalCost,
	}
}
