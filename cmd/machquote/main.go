package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/atolye/machquote/internal/estimate"
	"github.com/atolye/machquote/internal/export"
)

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "machquote",
		Short: "Machining cost quote calculator",
		Long: `machquote computes a one-shot machining cost quote from raw block
geometry, a material, an operations table and shop rates.

The default operations table is a three-pass milling plan (rough, semi-rough,
finish); pass --ops to replace it with your own JSON table.

Examples:
  machquote --length 200 --width 150 --height 40 --material AL6061
  machquote --final-volume 680000 --price 5 --ops job.json --pdf quote.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
		SilenceUsage: true,
	}

	root.Flags().Float64VarP(&o.lengthMM, "length", "L", 200, "raw block length in mm")
	root.Flags().Float64VarP(&o.widthMM, "width", "W", 150, "raw block width in mm")
	root.Flags().Float64VarP(&o.heightMM, "height", "H", 40, "raw block height in mm")
	root.Flags().Float64Var(&o.finalVolumeMM3, "final-volume", 0, "final part volume in mm³")

	root.Flags().StringVarP(&o.materialID, "material", "m", "AL6061", "material ID from the builtin catalog")
	root.Flags().Float64Var(&o.densityKgMM3, "density", 0, "material density in kg/mm³ (overrides the catalog value)")
	root.Flags().Float64Var(&o.pricePerKg, "price", 0, "material price per kg")

	root.Flags().Float64Var(&o.machineRate, "machine-rate", 60, "machine hourly rate")
	root.Flags().Float64Var(&o.laborRate, "labor-rate", 40, "setup labor hourly rate")
	root.Flags().Float64Var(&o.toolCost, "tool-cost", 1.0, "tool wear cost per part")
	root.Flags().Float64Var(&o.overheadPercent, "overhead", 15, "overhead percentage applied to the subtotal")
	root.Flags().Float64Var(&o.setupTimeMin, "setup-min", 60, "setup time in minutes")

	root.Flags().StringVar(&o.opsPath, "ops", "", "JSON file with the operations table")
	root.Flags().StringVar(&o.feedMode, "feed-mode", "auto", "feed rate source: auto (teeth × RPM × f_z) or manual")
	root.Flags().StringVar(&o.radialMode, "ae-mode", "percent", "radial depth source: percent (of tool Ø) or absolute")

	root.Flags().StringVar(&o.title, "title", "Machining Quote", "quote title used in documents")
	root.Flags().StringVar(&o.currency, "currency", "USD", "currency code used in documents")

	root.Flags().StringVar(&o.csvPath, "csv", "", "write the quote to a CSV file")
	root.Flags().StringVar(&o.jsonPath, "json", "", "write the job and result to a JSON file")
	root.Flags().StringVar(&o.pdfPath, "pdf", "", "write the quote to a PDF file")
	root.Flags().StringVar(&o.xlsxPath, "xlsx", "", "write the quote to an Excel file")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	job, err := buildJob(o)
	if err != nil {
		return err
	}

	res := estimate.Estimate(job)

	printQuote(os.Stdout, job, res, o.currency)

	if err := writeOutputs(o, job, res); err != nil {
		return err
	}
	return nil
}

func printQuote(w io.Writer, job estimate.Job, res estimate.QuoteResult, currency string) {
	fmt.Fprintf(w, "Material: %s (ρ %.2e kg/mm³)\n", materialLabel(job.Material), job.Material.DensityKgMM3)
	fmt.Fprintf(w, "Raw block: %.0f × %.0f × %.0f mm = %.0f mm³ (%.2f kg)\n",
		job.Block.LengthMM, job.Block.WidthMM, job.Block.HeightMM, res.RawVolumeMM3, res.RawMassKg)
	fmt.Fprintf(w, "Chip volume: %.0f mm³\n\n", res.ChipVolumeMM3)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tFEED (mm/min)\ta_e (mm)\tMRR (mm³/min)\tCHIP (mm³)\tTIME (min)")
	for _, op := range res.Operations {
		fmt.Fprintf(tw, "%s\t%.0f\t%.2f\t%.0f\t%.0f\t%.2f\n",
			op.Name, op.FeedMMMin, op.RadialDepthMM, op.MRRMM3Min, op.ChipVolumeMM3, op.TimeMin)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nMachining time: %.2f min\n", res.MachiningTimeMin)
	fmt.Fprintf(w, "Setup time:     %.2f min\n", res.SetupTimeMin)
	fmt.Fprintf(w, "Total time:     %.2f min\n\n", res.TotalTimeMin)

	fmt.Fprintf(w, "Material cost:  %.2f %s\n", res.MaterialCost, currency)
	fmt.Fprintf(w, "Machine cost:   %.2f %s\n", res.MachineCost, currency)
	fmt.Fprintf(w, "Tool wear:      %.2f %s\n", res.ToolCost, currency)
	fmt.Fprintf(w, "Setup labor:    %.2f %s\n", res.SetupCost, currency)
	fmt.Fprintf(w, "Overhead:       %.2f %s\n", res.Overhead, currency)
	fmt.Fprintf(w, "TOTAL:          %.2f %s\n", res.TotalCost, currency)
}

func materialLabel(m estimate.Material) string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

func writeOutputs(o opts, job estimate.Job, res estimate.QuoteResult) error {
	if o.jsonPath != "" {
		payload := struct {
			Job    estimate.Job         `json:"job"`
			Result estimate.QuoteResult `json:"result"`
		}{Job: job, Result: res}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode quote json: %w", err)
		}
		if err := os.WriteFile(o.jsonPath, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.jsonPath, err)
		}
	}

	if o.csvPath == "" && o.pdfPath == "" && o.xlsxPath == "" {
		return nil
	}

	doc := export.BuildDocument(o.title, time.Now().Format("2006-01-02"), o.currency, job, res)

	if o.csvPath != "" {
		f, err := os.Create(o.csvPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", o.csvPath, err)
		}
		if err := export.WriteCSV(f, doc); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", o.csvPath, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", o.csvPath, err)
		}
	}

	if o.pdfPath != "" {
		data, err := export.GeneratePDF(doc)
		if err != nil {
			return fmt.Errorf("generate pdf: %w", err)
		}
		if err := os.WriteFile(o.pdfPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.pdfPath, err)
		}
	}

	if o.xlsxPath != "" {
		data, err := export.GenerateExcel(doc)
		if err != nil {
			return fmt.Errorf("generate xlsx: %w", err)
		}
		if err := os.WriteFile(o.xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.xlsxPath, err)
		}
	}

	return nil
}
