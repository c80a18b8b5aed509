package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atolye/machquote/internal/estimate"
)

func sampleDocument() Document {
	job := estimate.Job{
		Block:          estimate.Block{LengthMM: 200, WidthMM: 150, HeightMM: 40},
		FinalVolumeMM3: 680000,
		Material:       estimate.Material{ID: "AL6061", Name: "Aluminum 6061", DensityKgMM3: 2.70e-6},
		Operations: []estimate.Operation{{
			Name:           "Rough 3X",
			ToolDiameterMM: 12,
			Teeth:          3,
			RPM:            12000,
			FeedPerToothMM: 0.06,
			AxialDepthMM:   8,
			RadialDepthMM:  4,
			VolumeShare:    1.0,
		}},
		Costs: estimate.CostParams{
			MachineHourlyRate:  75,
			ToolCostPerPart:    8,
			MaterialPricePerKg: 5,
			OverheadPercent:    15,
		},
		RadialMode: estimate.RadialAbsolute,
	}
	res := estimate.Estimate(job)
	return BuildDocument("Bracket rev B", "2026-08-23", "USD", job, res)
}

func TestBuildDocument(t *testing.T) {
	doc := sampleDocument()

	assert.Equal(t, "Bracket rev B", doc.Title)
	assert.Equal(t, "Aluminum 6061", doc.MaterialName)
	require.Len(t, doc.Operations, 1)
	assert.Equal(t, "Rough 3X", doc.Operations[0].Name)
	require.Len(t, doc.Costs, 5)
	assert.Equal(t, "Material", doc.Costs[0].Component)
	assert.InDelta(t, 16.20, doc.Costs[0].Amount, 1e-9)
	assert.InDelta(t, 38.64, doc.TotalCost, 0.02)

	var labels []string
	for _, line := range doc.Summary {
		labels = append(labels, line.Label)
	}
	assert.Contains(t, labels, "Raw volume (mm³)")
	assert.Contains(t, labels, "Chip volume (mm³)")
}

func TestBuildDocument_FallsBackToMaterialID(t *testing.T) {
	job := estimate.Job{
		Block:    estimate.Block{LengthMM: 10, WidthMM: 10, HeightMM: 10},
		Material: estimate.Material{ID: "SS304"},
	}
	doc := BuildDocument("", "2026-08-23", "USD", job, estimate.Estimate(job))

	assert.Equal(t, "SS304", doc.MaterialName)
}

func TestGeneratePDF(t *testing.T) {
	result, err := GeneratePDF(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, result)

	// PDF files start with %PDF
	require.Greater(t, len(result), 4)
	assert.Equal(t, "%PDF-", string(result[:5]))
}

func TestGeneratePDF_EmptyOperations(t *testing.T) {
	doc := sampleDocument()
	doc.Operations = nil

	result, err := GeneratePDF(doc)
	require.NoError(t, err)
	require.NotEmpty(t, result)
}

func TestGenerateExcel(t *testing.T) {
	result, err := GenerateExcel(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, result)

	// xlsx files are zip archives and start with PK
	require.Greater(t, len(result), 2)
	assert.Equal(t, "PK", string(result[:2]))
}

func TestGenerateExcel_LongTitleIsTruncatedToSheetLimit(t *testing.T) {
	doc := sampleDocument()
	doc.Title = strings.Repeat("Very long quote title ", 4)

	result, err := GenerateExcel(doc)
	require.NoError(t, err)
	require.NotEmpty(t, result)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDocument()))

	out := buf.String()
	assert.Contains(t, out, "operation,feed_mm_min,ae_mm,mrr_mm3_min,chip_volume_mm3,time_min")
	assert.Contains(t, out, "Rough 3X,2160.000")
	assert.Contains(t, out, "cost_component,amount")
	assert.Contains(t, out, "Material,16.20")
	assert.Contains(t, out, "Total,")
}
