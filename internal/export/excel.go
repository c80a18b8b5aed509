package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateExcel renders a quote document as an Excel workbook and returns the
// file contents as a byte slice.
func GenerateExcel(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are limited to 31 chars.
	sheetName := doc.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Quote"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	widths := []float64{26, 16, 12, 16, 16, 12}
	columns := []string{"A", "B", "C", "D", "E", "F"}
	for i, c := range columns {
		if err := f.SetColWidth(sheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create bold style: %w", err)
	}

	rowN := 1
	setCell := func(col string, value any) error {
		return f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, rowN), value)
	}

	// Title block.
	title := doc.Title
	if title == "" {
		title = "Machining Quote"
	}
	if err := setCell("A", title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowN), fmt.Sprintf("A%d", rowN), titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}
	rowN++
	_ = setCell("A", fmt.Sprintf("Material: %s", doc.MaterialName))
	rowN++
	_ = setCell("A", fmt.Sprintf("Date: %s", doc.CreatedDate))
	rowN += 2

	// Block & volume summary.
	for _, line := range doc.Summary {
		_ = setCell("A", line.Label)
		_ = setCell("B", line.Value)
		rowN++
	}
	rowN++

	// Operation table.
	opHeaders := []string{"Operation", "Feed (mm/min)", "ae (mm)", "MRR (mm3/min)", "Chip vol (mm3)", "Time (min)"}
	for i, h := range opHeaders {
		_ = setCell(columns[i], h)
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowN), fmt.Sprintf("F%d", rowN), headerStyle); err != nil {
		return nil, fmt.Errorf("style operation header: %w", err)
	}
	rowN++

	for _, op := range doc.Operations {
		_ = setCell("A", op.Name)
		_ = setCell("B", op.FeedMMMin)
		_ = setCell("C", op.RadialDepthMM)
		_ = setCell("D", op.MRRMM3Min)
		_ = setCell("E", op.ChipVolumeMM3)
		_ = setCell("F", op.TimeMin)
		rowN++
	}
	rowN++

	// Cost table.
	_ = setCell("A", "Cost Component")
	_ = setCell("B", fmt.Sprintf("Amount (%s)", doc.Currency))
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowN), fmt.Sprintf("B%d", rowN), headerStyle); err != nil {
		return nil, fmt.Errorf("style cost header: %w", err)
	}
	rowN++

	for _, c := range doc.Costs {
		_ = setCell("A", c.Component)
		_ = setCell("B", c.Amount)
		rowN++
	}

	_ = setCell("A", "Total Cost")
	_ = setCell("B", doc.TotalCost)
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowN), fmt.Sprintf("B%d", rowN), boldStyle); err != nil {
		return nil, fmt.Errorf("style total row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
