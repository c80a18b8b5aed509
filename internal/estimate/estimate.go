// Package estimate computes machining cycle times and cost quotes from raw
// block geometry, a material, an operations table and shop cost rates.
package estimate

// Volumes derives the raw block volume and the chip volume to be removed.
// A final volume larger than the block clamps the chip volume to zero; it is
// treated as "nothing to remove", not as an input error.
func Volumes(b Block, finalVolumeMM3 float64) (rawMM3, chipMM3 float64) {
	rawMM3 = b.LengthMM * b.WidthMM * b.HeightMM
	chipMM3 = rawMM3 - finalVolumeMM3
	if chipMM3 < 0 {
		chipMM3 = 0
	}
	return rawMM3, chipMM3
}

// ComputeOperation resolves feed and radial depth for one operation row and
// derives its removal rate, removed volume and machining time.
//
// A zero or negative MRR (any of feed, a_p, aₑ being zero) degenerates to zero
// time. A malformed row must never take down the whole quote, so there is no
// error path here.
func ComputeOperation(op Operation, feedMode FeedMode, radialMode RadialMode, chipVolumeMM3 float64) OperationResult {
	feed := op.FeedOverrideMMMin
	if feedMode == FeedAuto {
		feed = float64(op.Teeth) * op.RPM * op.FeedPerToothMM
	}

	ae := op.RadialDepthMM
	if radialMode == RadialPercentOfDiameter {
		ae = op.ToolDiameterMM * op.RadialPercent / 100
	}

	mrr := feed * op.AxialDepthMM * ae
	chip := chipVolumeMM3 * op.VolumeShare

	var timeMin float64
	if mrr > 0 {
		timeMin = chip / mrr
	}

	return OperationResult{
		Name:          op.Name,
		FeedMMMin:     feed,
		RadialDepthMM: ae,
		MRRMM3Min:     mrr,
		ChipVolumeMM3: chip,
		TimeMin:       timeMin,
	}
}

// Aggregate sums per-operation times and combines them with the shop rates
// into the final cost breakdown.
func Aggregate(results []OperationResult, costs CostParams, material Material, rawVolumeMM3 float64) QuoteResult {
	var machiningMin float64
	for _, r := range results {
		machiningMin += r.TimeMin
	}

	rawMass := rawVolumeMM3 * material.DensityKgMM3
	materialCost := rawMass * costs.MaterialPricePerKg
	machineCost := (machiningMin / 60) * costs.MachineHourlyRate
	setupCost := (costs.SetupTimeMin / 60) * costs.SetupLaborRate

	subtotal := materialCost + machineCost + costs.ToolCostPerPart + setupCost
	overhead := subtotal * (costs.OverheadPercent / 100)

	return QuoteResult{
		RawVolumeMM3:     rawVolumeMM3,
		RawMassKg:        rawMass,
		Operations:       results,
		MachiningTimeMin: machiningMin,
		SetupTimeMin:     costs.SetupTimeMin,
		TotalTimeMin:     machiningMin + costs.SetupTimeMin,
		MaterialCost:     materialCost,
		MachineCost:      machineCost,
		SetupCost:        setupCost,
		ToolCost:         costs.ToolCostPerPart,
		Subtotal:         subtotal,
		Overhead:         overhead,
		TotalCost:        subtotal + overhead,
	}
}

// Estimate runs the full pipeline for one input snapshot: volumes, the
// per-operation loop, then aggregation. It is a pure function of job.
func Estimate(job Job) QuoteResult {
	raw, chip := Volumes(job.Block, job.FinalVolumeMM3)

	results := make([]OperationResult, 0, len(job.Operations))
	for _, op := range job.Operations {
		results = append(results, ComputeOperation(op, job.FeedMode, job.RadialMode, chip))
	}

	out := Aggregate(results, job.Costs, job.Material, raw)
	out.ChipVolumeMM3 = chip
	return out
}
