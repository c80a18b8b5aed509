package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atolye/machquote/internal/estimate"
)

// defaultOpts mirrors the flag defaults of the root command.
func defaultOpts() opts {
	return opts{
		lengthMM:        200,
		widthMM:         150,
		heightMM:        40,
		materialID:      "AL6061",
		machineRate:     60,
		laborRate:       40,
		toolCost:        1.0,
		overheadPercent: 15,
		setupTimeMin:    60,
		feedMode:        "auto",
		radialMode:      "percent",
		currency:        "USD",
	}
}

func TestBuildJob_Defaults(t *testing.T) {
	job, err := buildJob(defaultOpts())
	require.NoError(t, err)

	assert.Equal(t, "AL6061", job.Material.ID)
	assert.Equal(t, "Aluminum 6061", job.Material.Name)
	assert.InDelta(t, 2.70e-6, job.Material.DensityKgMM3, 1e-12)

	require.Len(t, job.Operations, 3)
	assert.Equal(t, "Rough 3X", job.Operations[0].Name)
	assert.Equal(t, "Finish", job.Operations[2].Name)

	var shares float64
	for _, op := range job.Operations {
		shares += op.VolumeShare
	}
	assert.InDelta(t, 1.0, shares, 1e-9)

	assert.Equal(t, estimate.FeedAuto, job.FeedMode)
	assert.Equal(t, estimate.RadialPercentOfDiameter, job.RadialMode)
	assert.Equal(t, 60.0, job.Costs.MachineHourlyRate)
	assert.Equal(t, 60.0, job.Costs.SetupTimeMin)
}

func TestBuildJob_DensityOverridesCatalog(t *testing.T) {
	o := defaultOpts()
	o.densityKgMM3 = 3.10e-6

	job, err := buildJob(o)
	require.NoError(t, err)

	assert.Equal(t, "AL6061", job.Material.ID)
	assert.InDelta(t, 3.10e-6, job.Material.DensityKgMM3, 1e-12)
}

func TestBuildJob_UnknownMaterialRequiresDensity(t *testing.T) {
	o := defaultOpts()
	o.materialID = "TI64"

	_, err := buildJob(o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TI64")
	assert.Contains(t, err.Error(), "--density")

	o.densityKgMM3 = 4.43e-6
	job, err := buildJob(o)
	require.NoError(t, err)
	assert.Equal(t, "TI64", job.Material.ID)
	assert.InDelta(t, 4.43e-6, job.Material.DensityKgMM3, 1e-12)
}

func TestBuildJob_RejectsBadModes(t *testing.T) {
	o := defaultOpts()
	o.feedMode = "turbo"
	_, err := buildJob(o)
	require.Error(t, err)

	o = defaultOpts()
	o.radialMode = "relative"
	_, err = buildJob(o)
	require.Error(t, err)
}

func TestBuildJob_ValidationNamesTheField(t *testing.T) {
	o := defaultOpts()
	o.lengthMM = -5

	_, err := buildJob(o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length_mm")
}

func TestBuiltinMaterialIsCaseInsensitive(t *testing.T) {
	m, ok := builtinMaterial("ss304")
	require.True(t, ok)
	assert.Equal(t, "SS304", m.ID)

	_, ok = builtinMaterial("UNKNOWN")
	assert.False(t, ok)
}

func TestLoadOperations_BareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "Slot", "tool_diameter_mm": 10, "teeth": 2, "rpm": 8000,
		 "feed_per_tooth_mm": 0.05, "ap_mm": 5, "ae_mm": 10, "volume_share": 1.0}
	]`), 0o644))

	ops, err := loadOperations(path)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "Slot", ops[0].Name)
	assert.Equal(t, 10.0, ops[0].RadialDepthMM)
}

func TestLoadOperations_WrappedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"block": {"length_mm": 100, "width_mm": 100, "height_mm": 20},
		"operations": [
			{"name": "Face", "tool_diameter_mm": 50, "teeth": 5, "rpm": 4000,
			 "feed_per_tooth_mm": 0.1, "ap_mm": 1, "ae_percent": 75, "volume_share": 1.0}
		]
	}`), 0o644))

	ops, err := loadOperations(path)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "Face", ops[0].Name)
	assert.Equal(t, 75.0, ops[0].RadialPercent)
}

func TestLoadOperations_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{nope`), 0o644))

	_, err := loadOperations(path)
	require.Error(t, err)

	_, err = loadOperations(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestBuildJob_OperationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "Pocket", "tool_diameter_mm": 8, "teeth": 3, "rpm": 10000,
		 "feed_per_tooth_mm": 0.04, "ap_mm": 4, "ae_percent": 40, "volume_share": 1.0}
	]`), 0o644))

	o := defaultOpts()
	o.opsPath = path

	job, err := buildJob(o)
	require.NoError(t, err)
	require.Len(t, job.Operations, 1)
	assert.Equal(t, "Pocket", job.Operations[0].Name)
}
