package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atolye/machquote/internal/estimate"
)

// builtinMaterials mirrors the seeded catalog so the CLI works without a
// database. Densities in kg/mm³.
var builtinMaterials = []estimate.Material{
	{ID: "AL6061", Name: "Aluminum 6061", DensityKgMM3: 2.70e-6},
	{ID: "AL7075", Name: "Aluminum 7075", DensityKgMM3: 2.81e-6},
	{ID: "AL5083", Name: "Aluminum 5083", DensityKgMM3: 2.65e-6},
	{ID: "ST1018", Name: "Steel 1018", DensityKgMM3: 7.85e-6},
	{ID: "SS304", Name: "Stainless 304", DensityKgMM3: 8.00e-6},
}

func builtinMaterial(id string) (estimate.Material, bool) {
	for _, m := range builtinMaterials {
		if strings.EqualFold(m.ID, id) {
			return m, true
		}
	}
	return estimate.Material{}, false
}

type opts struct {
	// block
	lengthMM       float64
	widthMM        float64
	heightMM       float64
	finalVolumeMM3 float64

	// material
	materialID   string
	densityKgMM3 float64
	pricePerKg   float64

	// rates
	machineRate     float64
	laborRate       float64
	toolCost        float64
	overheadPercent float64
	setupTimeMin    float64

	// operations
	opsPath    string
	feedMode   string
	radialMode string

	title    string
	currency string

	// outputs
	csvPath  string
	jsonPath string
	pdfPath  string
	xlsxPath string
}

// defaultOperations is the standard three-pass milling plan used when no
// operations file is given.
func defaultOperations() []estimate.Operation {
	return []estimate.Operation{
		{
			Name:           "Rough 3X",
			ToolDiameterMM: 12,
			Teeth:          3,
			RPM:            12000,
			FeedPerToothMM: 0.06,
			AxialDepthMM:   8,
			RadialDepthMM:  4,
			RadialPercent:  50,
			VolumeShare:    0.70,
		},
		{
			Name:           "Semi-rough 5X",
			ToolDiameterMM: 8,
			Teeth:          2,
			RPM:            16000,
			FeedPerToothMM: 0.04,
			AxialDepthMM:   6,
			RadialDepthMM:  2,
			RadialPercent:  50,
			VolumeShare:    0.25,
		},
		{
			Name:           "Finish",
			ToolDiameterMM: 6,
			Teeth:          2,
			RPM:            18000,
			FeedPerToothMM: 0.03,
			AxialDepthMM:   0.5,
			RadialDepthMM:  0.2,
			RadialPercent:  10,
			VolumeShare:    0.05,
		},
	}
}

// loadOperations reads the operations table from a JSON file. Both a bare
// array and an object with an "operations" key are accepted, so a saved quote
// request body can be reused as-is.
func loadOperations(path string) ([]estimate.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read operations file: %w", err)
	}

	var ops []estimate.Operation
	if err := json.Unmarshal(data, &ops); err == nil {
		return ops, nil
	}

	var wrapped struct {
		Operations []estimate.Operation `json:"operations"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse operations file %s: %w", path, err)
	}
	if len(wrapped.Operations) == 0 {
		return nil, fmt.Errorf("operations file %s contains no operations", path)
	}
	return wrapped.Operations, nil
}

// buildJob resolves flags into a validated engine input.
func buildJob(o opts) (estimate.Job, error) {
	feedMode, err := estimate.ParseFeedMode(o.feedMode)
	if err != nil {
		return estimate.Job{}, err
	}
	radialMode, err := estimate.ParseRadialMode(o.radialMode)
	if err != nil {
		return estimate.Job{}, err
	}

	material, found := builtinMaterial(o.materialID)
	if !found {
		if o.densityKgMM3 <= 0 {
			return estimate.Job{}, fmt.Errorf("unknown material %q; pass --density to use a custom material", o.materialID)
		}
		material = estimate.Material{ID: o.materialID}
	}
	if o.densityKgMM3 > 0 {
		material.DensityKgMM3 = o.densityKgMM3
	}

	ops := defaultOperations()
	if o.opsPath != "" {
		ops, err = loadOperations(o.opsPath)
		if err != nil {
			return estimate.Job{}, err
		}
	}

	job := estimate.Job{
		Block: estimate.Block{
			LengthMM: o.lengthMM,
			WidthMM:  o.widthMM,
			HeightMM: o.heightMM,
		},
		FinalVolumeMM3: o.finalVolumeMM3,
		Material:       material,
		Operations:     ops,
		Costs: estimate.CostParams{
			MachineHourlyRate:  o.machineRate,
			ToolCostPerPart:    o.toolCost,
			MaterialPricePerKg: o.pricePerKg,
			OverheadPercent:    o.overheadPercent,
			SetupTimeMin:       o.setupTimeMin,
			SetupLaborRate:     o.laborRate,
		},
		FeedMode:   feedMode,
		RadialMode: radialMode,
	}

	if errs := estimate.ValidateJob(job); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return estimate.Job{}, fmt.Errorf("invalid job:\n  %s", strings.Join(msgs, "\n  "))
	}

	return job, nil
}
