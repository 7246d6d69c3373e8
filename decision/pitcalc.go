package decision

// PitStopCalculator sizes pit-stop time-loss and risk estimates that the
// pit-strategy trigger places in Decision.Context; it does not affect the
// prompt's time limit or its option descriptions. Adapted from the teacher's
// strategy.PitStopCalculator/TrackData/PositionTracker machinery: the same
// shape (a small database of track-level pit-lane constants plus simple,
// explainable heuristics), re-themed from F1 DRS/undercut language to oval
// NASCAR pit strategy and driven by the engine's own CarState rather than
// simulator telemetry polling.
type PitStopCalculator struct {
	pitLaneEntrySec   float64
	pitLaneTravelSec  float64
	stationarySec     float64
	pitLaneExitSec    float64
}

// NewPitStopCalculator returns a calculator with oval-track pit-lane
// defaults: shorter pit road than a road course, no DRS/overtaking-zone
// concepts.
func NewPitStopCalculator() *PitStopCalculator {
	return &PitStopCalculator{
		pitLaneEntrySec:  2.5,
		pitLaneTravelSec: 9.0,
		stationarySec:    12.0, // matches car.PitTrackTimeCost(PitFull)
		pitLaneExitSec:   3.0,
	}
}

// EstimatePitLossSeconds returns the total time lost to a full pit stop,
// mirroring the teacher's PitLossCalculation breakdown without the road-
// course-specific pit-lane-speed-delta machinery an oval doesn't need.
func (c *PitStopCalculator) EstimatePitLossSeconds() float64 {
	return c.pitLaneEntrySec + c.pitLaneTravelSec + c.stationarySec + c.pitLaneExitSec
}

// RiskFactors returns a short list of plain-English risk factors for the
// current tire/fuel state, surfaced verbatim in Decision.Context, mirroring
// the teacher's PitRiskFactor list at a much smaller scale.
func (c *PitStopCalculator) RiskFactors(tirePct, fuelPct float64) []string {
	var risks []string
	if tirePct < 30 {
		risks = append(risks, "tire wear critical — lap times degrading fast")
	}
	if fuelPct < 15 {
		risks = append(risks, "fuel shortage risk if stop is delayed further")
	}
	if len(risks) == 0 {
		risks = append(risks, "no immediate risk factors")
	}
	return risks
}
