package estimate

import (
	"encoding/json"
	"fmt"
)

// Unit convention used across the engine:
//   - lengths in mm
//   - volumes in mm³
//   - feed rates in mm/min
//   - times in minutes
//   - mass in kg, density in kg/mm³
//   - money in the caller's currency
//
// Hourly rates are converted with /60 only inside Aggregate; nothing else
// hides a minutes/hours conversion.

// FeedMode selects how the feed rate of an operation is resolved.
type FeedMode int

const (
	// FeedAuto derives the feed rate from teeth × RPM × feed per tooth.
	FeedAuto FeedMode = iota
	// FeedManual uses the operation's explicit feed rate override.
	FeedManual
)

// RadialMode selects how the radial depth of cut (aₑ) is resolved.
type RadialMode int

const (
	// RadialPercentOfDiameter derives aₑ from a percentage of the tool diameter.
	RadialPercentOfDiameter RadialMode = iota
	// RadialAbsolute uses the operation's aₑ value in mm as given.
	RadialAbsolute
)

// MarshalJSON encodes the mode in its wire form ("auto"/"manual").
func (m FeedMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes "auto"/"manual"; unknown values are rejected.
func (m *FeedMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("feed mode: %w", err)
	}
	parsed, err := ParseFeedMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalJSON encodes the mode in its wire form ("percent"/"absolute").
func (m RadialMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes "percent"/"absolute"; unknown values are rejected.
func (m *RadialMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("radial mode: %w", err)
	}
	parsed, err := ParseRadialMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Material is immutable reference data resolved from the catalog before the
// engine runs.
type Material struct {
	ID           string  `json:"id"`
	Name         string  `json:"name,omitempty"`
	DensityKgMM3 float64 `json:"density_kg_mm3"`
	CostPerKg    float64 `json:"cost_per_kg,omitempty"`
	// KC is the specific cutting force coefficient (N/mm²); informational,
	// not used by the time model.
	KC float64 `json:"kc,omitempty"`
}

// Block describes the raw stock dimensions.
type Block struct {
	LengthMM float64 `json:"length_mm"`
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
}

// Operation is one row of the operations table.
type Operation struct {
	Name string `json:"name"`
	// ToolDiameterMM is the cutter diameter (Ø).
	ToolDiameterMM float64 `json:"tool_diameter_mm"`
	Teeth          int     `json:"teeth"`
	RPM            float64 `json:"rpm"`
	// FeedPerToothMM is f_z, advance per cutting edge per revolution.
	FeedPerToothMM float64 `json:"feed_per_tooth_mm"`
	// FeedOverrideMMMin is read only in FeedManual mode.
	FeedOverrideMMMin float64 `json:"feed_mm_min,omitempty"`
	// AxialDepthMM is a_p.
	AxialDepthMM float64 `json:"ap_mm"`
	// RadialDepthMM is aₑ, read only in RadialAbsolute mode.
	RadialDepthMM float64 `json:"ae_mm,omitempty"`
	// RadialPercent is aₑ as % of tool Ø, read only in RadialPercentOfDiameter mode.
	RadialPercent float64 `json:"ae_percent,omitempty"`
	// VolumeShare is the fraction of total chip volume removed by this row, in [0,1].
	VolumeShare float64 `json:"volume_share"`
}

// CostParams holds the shop cost rates applied during aggregation.
type CostParams struct {
	MachineHourlyRate  float64 `json:"machine_hourly_rate"`
	ToolCostPerPart    float64 `json:"tool_cost_per_part"`
	MaterialPricePerKg float64 `json:"material_price_per_kg"`
	OverheadPercent    float64 `json:"overhead_percent"`
	SetupTimeMin       float64 `json:"setup_time_min"`
	SetupLaborRate     float64 `json:"setup_labor_rate"`
}

// Job is the full input snapshot for one estimation run. The engine holds no
// state between runs; callers pass a fresh Job on every invocation.
type Job struct {
	Block          Block       `json:"block"`
	FinalVolumeMM3 float64     `json:"final_volume_mm3"`
	Material       Material    `json:"material"`
	Operations     []Operation `json:"operations"`
	Costs          CostParams  `json:"costs"`
	FeedMode       FeedMode    `json:"feed_mode"`
	RadialMode     RadialMode  `json:"radial_mode"`
}

// OperationResult is the derived row paired with one Operation.
type OperationResult struct {
	Name          string  `json:"name"`
	FeedMMMin     float64 `json:"feed_mm_min"`
	RadialDepthMM float64 `json:"ae_mm"`
	MRRMM3Min     float64 `json:"mrr_mm3_min"`
	ChipVolumeMM3 float64 `json:"chip_volume_mm3"`
	TimeMin       float64 `json:"time_min"`
}

// QuoteResult is the aggregated output of one estimation run.
type QuoteResult struct {
	RawVolumeMM3  float64 `json:"raw_volume_mm3"`
	ChipVolumeMM3 float64 `json:"chip_volume_mm3"`
	RawMassKg     float64 `json:"raw_mass_kg"`

	Operations []OperationResult `json:"operations"`

	MachiningTimeMin float64 `json:"machining_time_min"`
	SetupTimeMin     float64 `json:"setup_time_min"`
	TotalTimeMin     float64 `json:"total_time_min"`

	MaterialCost float64 `json:"material_cost"`
	MachineCost  float64 `json:"machine_cost"`
	SetupCost    float64 `json:"setup_cost"`
	ToolCost     float64 `json:"tool_cost"`
	Subtotal     float64 `json:"subtotal"`
	Overhead     float64 `json:"overhead"`
	TotalCost    float64 `json:"total_cost"`
}
