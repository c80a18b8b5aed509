package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GeneratePDF renders a quote document as a printable PDF using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, doc)
	addSummary(m, doc)
	addOperationsTable(m, doc)
	addCostTable(m, doc)
	addTotals(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return out.GetBytes(), nil
}

func addHeader(m core.Maroto, doc Document) {
	title := doc.Title
	if title == "" {
		title = "Machining Quote"
	}

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Material: %s", doc.MaterialName), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", doc.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func addSummary(m core.Maroto, doc Document) {
	addSectionTitle(m, "Block & Volume")

	for _, line := range doc.Summary {
		m.AddRows(
			row.New(6).Add(
				col.New(5).Add(
					text.New(line.Label, props.Text{Size: 9, Align: align.Left}),
				),
				col.New(7).Add(
					text.New(line.Value, props.Text{Size: 9, Align: align.Left, Style: fontstyle.Bold}),
				),
			),
		)
	}

	m.AddRows(row.New(4))
}

func addOperationsTable(m core.Maroto, doc Document) {
	addSectionTitle(m, "Cycle Time Breakdown")
	addTableHeader(m, []headerCell{
		{"Operation", 3, align.Left},
		{"Feed (mm/min)", 2, align.Center},
		{"aₑ (mm)", 1, align.Center},
		{"MRR (mm³/min)", 2, align.Center},
		{"Chip vol (mm³)", 2, align.Center},
		{"Time (min)", 2, align.Center},
	})

	for _, op := range doc.Operations {
		m.AddRows(
			row.New(6).Add(
				col.New(3).Add(text.New(op.Name, cellText(align.Left))),
				col.New(2).Add(text.New(fmt.Sprintf("%.1f", op.FeedMMMin), cellText(align.Right))),
				col.New(1).Add(text.New(fmt.Sprintf("%.2f", op.RadialDepthMM), cellText(align.Right))),
				col.New(2).Add(text.New(fmt.Sprintf("%.0f", op.MRRMM3Min), cellText(align.Right))),
				col.New(2).Add(text.New(fmt.Sprintf("%.0f", op.ChipVolumeMM3), cellText(align.Right))),
				col.New(2).Add(text.New(fmt.Sprintf("%.2f", op.TimeMin), cellText(align.Right))),
			),
		)
	}

	m.AddRows(row.New(4))
}

func addCostTable(m core.Maroto, doc Document) {
	addSectionTitle(m, "Cost Summary")
	addTableHeader(m, []headerCell{
		{"Cost Component", 8, align.Left},
		{fmt.Sprintf("Amount (%s)", doc.Currency), 4, align.Center},
	})

	for _, c := range doc.Costs {
		m.AddRows(
			row.New(6).Add(
				col.New(8).Add(text.New(c.Component, cellText(align.Left))),
				col.New(4).Add(text.New(fmt.Sprintf("%.2f", c.Amount), cellText(align.Right))),
			),
		)
	}

	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, doc Document) {
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(
				text.New("Total Cost", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Left}),
			),
			col.New(4).Add(
				text.New(fmt.Sprintf("%s %.2f", doc.Currency, doc.TotalCost), props.Text{
					Size:  11,
					Style: fontstyle.Bold,
					Align: align.Right,
				}),
			),
		),
	)
}

type headerCell struct {
	Label string
	Width int
	Align align.Type
}

func addSectionTitle(m core.Maroto, title string) {
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(title, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
	)
}

func addTableHeader(m core.Maroto, cells []headerCell) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}

	cols := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		cols = append(cols, col.New(c.Width).Add(
			text.New(c.Label, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Align: c.Align,
				Color: &props.Color{Red: 255, Green: 255, Blue: 255},
			}),
		).WithStyle(&props.Cell{BackgroundColor: headerBg}))
	}

	m.AddRows(row.New(7).Add(cols...))
}

func cellText(a align.Type) props.Text {
	return props.Text{Size: 8, Align: a}
}
