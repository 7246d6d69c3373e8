package physics

import "gonum.org/v1/gonum/stat"

// LapTimeStats summarizes a driver's completed-lap history for telemetry and
// as a secondary (never primary) signal into the decision engine's trigger
// confidence, per §4.2.1. Computed on demand from a caller-held lap-time
// slice; this package holds no lap history itself.
type LapTimeStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Count  int
}

// ComputeLapTimeStats summarizes laps using gonum/stat, mirroring the
// statistics usage in the reference pricing model. Returns the zero value
// for an empty slice.
func ComputeLapTimeStats(laps []float64) LapTimeStats {
	if len(laps) == 0 {
		return LapTimeStats{}
	}

	mean := stat.Mean(laps, nil)
	var stddev float64
	if len(laps) > 1 {
		stddev = stat.StdDev(laps, nil)
	}

	min, max := laps[0], laps[0]
	for _, v := range laps[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return LapTimeStats{Mean: mean, StdDev: stddev, Min: min, Max: max, Count: len(laps)}
}
