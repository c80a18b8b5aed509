package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the quote document as CSV: the operation rows followed by a
// blank line and the cost breakdown.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"operation", "feed_mm_min", "ae_mm", "mrr_mm3_min", "chip_volume_mm3", "time_min"}); err != nil {
		return fmt.Errorf("write operation header: %w", err)
	}
	for _, op := range doc.Operations {
		record := []string{
			op.Name,
			fmt.Sprintf("%.3f", op.FeedMMMin),
			fmt.Sprintf("%.3f", op.RadialDepthMM),
			fmt.Sprintf("%.3f", op.MRRMM3Min),
			fmt.Sprintf("%.3f", op.ChipVolumeMM3),
			fmt.Sprintf("%.4f", op.TimeMin),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write operation row: %w", err)
		}
	}

	if err := cw.Write([]string{""}); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	if err := cw.Write([]string{"cost_component", "amount"}); err != nil {
		return fmt.Errorf("write cost header: %w", err)
	}
	for _, c := range doc.Costs {
		if err := cw.Write([]string{c.Component, fmt.Sprintf("%.2f", c.Amount)}); err != nil {
			return fmt.Errorf("write cost row: %w", err)
		}
	}
	if err := cw.Write([]string{"Total", fmt.Sprintf("%.2f", doc.TotalCost)}); err != nil {
		return fmt.Errorf("write total row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
