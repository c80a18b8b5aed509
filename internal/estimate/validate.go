package estimate

import "fmt"

// FieldError points at one invalid input field. Row is the zero-based index
// into the operations table, or -1 for job-level fields.
type FieldError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("operation %d: %s %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidateJob checks the structural validity of an input snapshot before it is
// handed to the engine. The engine itself treats all numeric fields as valid
// reals; everything a user can get wrong is reported here, one error per
// field, so the caller can point at the offending row and column.
func ValidateJob(job Job) []FieldError {
	var errs []FieldError

	jobErr := func(field, message string) {
		errs = append(errs, FieldError{Row: -1, Field: field, Message: message})
	}

	if job.Block.LengthMM <= 0 {
		jobErr("length_mm", "must be greater than 0")
	}
	if job.Block.WidthMM <= 0 {
		jobErr("width_mm", "must be greater than 0")
	}
	if job.Block.HeightMM <= 0 {
		jobErr("height_mm", "must be greater than 0")
	}
	if job.FinalVolumeMM3 < 0 {
		jobErr("final_volume_mm3", "must be greater than or equal to 0")
	}
	if job.Material.DensityKgMM3 < 0 {
		jobErr("density_kg_mm3", "must be greater than or equal to 0")
	}
	if job.Costs.OverheadPercent < 0 || job.Costs.OverheadPercent > 100 {
		jobErr("overhead_percent", "must be between 0 and 100")
	}
	if job.Costs.SetupTimeMin < 0 {
		jobErr("setup_time_min", "must be greater than or equal to 0")
	}
	if len(job.Operations) == 0 {
		jobErr("operations", "at least one operation is required")
	}

	for i, op := range job.Operations {
		opErr := func(field, message string) {
			errs = append(errs, FieldError{Row: i, Field: field, Message: message})
		}

		if op.ToolDiameterMM < 0 {
			opErr("tool_diameter_mm", "must be greater than or equal to 0")
		}
		if op.Teeth < 0 {
			opErr("teeth", "must be greater than or equal to 0")
		}
		if op.RPM < 0 {
			opErr("rpm", "must be greater than or equal to 0")
		}
		if op.FeedPerToothMM < 0 {
			opErr("feed_per_tooth_mm", "must be greater than or equal to 0")
		}
		if op.FeedOverrideMMMin < 0 {
			opErr("feed_mm_min", "must be greater than or equal to 0")
		}
		if op.AxialDepthMM < 0 {
			opErr("ap_mm", "must be greater than or equal to 0")
		}
		if op.RadialDepthMM < 0 {
			opErr("ae_mm", "must be greater than or equal to 0")
		}
		if op.RadialPercent < 0 || op.RadialPercent > 100 {
			opErr("ae_percent", "must be between 0 and 100")
		}
		if op.VolumeShare < 0 || op.VolumeShare > 1 {
			opErr("volume_share", "must be between 0 and 1")
		}
	}

	return errs
}

// ParseFeedMode converts the wire form of a feed mode into its enum value.
func ParseFeedMode(s string) (FeedMode, error) {
	switch s {
	case "auto", "":
		return FeedAuto, nil
	case "manual":
		return FeedManual, nil
	}
	return FeedAuto, fmt.Errorf("unknown feed mode %q (want auto or manual)", s)
}

// ParseRadialMode converts the wire form of an aₑ mode into its enum value.
func ParseRadialMode(s string) (RadialMode, error) {
	switch s {
	case "percent", "":
		return RadialPercentOfDiameter, nil
	case "absolute":
		return RadialAbsolute, nil
	}
	return RadialPercentOfDiameter, fmt.Errorf("unknown radial mode %q (want percent or absolute)", s)
}

// String returns the wire form accepted by ParseFeedMode.
func (m FeedMode) String() string {
	if m == FeedManual {
		return "manual"
	}
	return "auto"
}

// String returns the wire form accepted by ParseRadialMode.
func (m RadialMode) String() string {
	if m == RadialAbsolute {
		return "absolute"
	}
	return "percent"
}
