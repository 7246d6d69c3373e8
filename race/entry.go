package race

import (
	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/car"
	"github.com/aspen-motorsports/racestrategy/driver"
)

// tireBucket buckets a tire percentage into 5-point-wide buckets for cache-
// invalidation purposes, per §4.5's "tire-bucket transition ≥5%" rule.
func tireBucket(tirePct float64) int {
	return int(tirePct / 5)
}

// mentalSignature is a scalar summary of a MentalState used only to detect
// "mental-state jump" cache invalidation; it carries no other meaning.
func mentalSignature(m driver.MentalState) float64 {
	return m.Get(driver.Confidence) + m.Get(driver.Frustration) + m.Get(driver.MentalFocus) + m.Get(driver.Distraction)
}

// mentalJumpThreshold is how far mentalSignature must move between two laps
// before the lap-time cache invalidates early, in addition to the end-of-lap
// recompute that always happens.
const mentalJumpThreshold = 15.0

// lapHistoryMaxLen bounds the recent-lap-time window physics.LapTimeStats is
// computed over; older laps fall off rather than accumulating for a race's
// whole duration.
const lapHistoryMaxLen = 20

// entry is the engine's exclusively-owned, per-driver race-scoped state:
// CarState and lap-progress live here, never on driver.Driver, per the
// ownership rule of SPEC_FULL.md §3/§4.4.
type entry struct {
	driver *driver.Driver
	car    car.State
	mental driver.MentalState

	lapProgress   float64
	lapsCompleted int

	cachedLapTime     float64
	lapTimeValid      bool
	tireBucketAtCache int
	mentalSumAtCache  float64

	draftActive bool
	position    int

	isAI         bool
	aiController *ai.Controller

	lapsStuckBehind int
	lapsLed         int
	cleanLapStreak  int
	lapHistory      []float64
}

// recordLap appends t to the entry's recent-lap-time window, used to feed
// physics.ComputeLapTimeStats, dropping the oldest entry once lapHistoryMaxLen
// is exceeded.
func (e *entry) recordLap(t float64) {
	e.lapHistory = append(e.lapHistory, t)
	if len(e.lapHistory) > lapHistoryMaxLen {
		e.lapHistory = e.lapHistory[len(e.lapHistory)-lapHistoryMaxLen:]
	}
}

func newEntry(d *driver.Driver, isAI bool, controller *ai.Controller) *entry {
	return &entry{
		driver:       d,
		car:          car.NewState(),
		mental:       d.MentalBaseline,
		isAI:         isAI,
		aiController: controller,
	}
}

// checkCacheInvalidation drops the cached lap time if tire has crossed a
// 5-point bucket or mental state has jumped since the cache was last filled.
// Pit completions invalidate explicitly at the call site since a full pit
// resets tire/fuel outright.
func (e *entry) checkCacheInvalidation() {
	if !e.lapTimeValid {
		return
	}
	if tireBucket(e.car.TirePct) != e.tireBucketAtCache {
		e.lapTimeValid = false
		return
	}
	if abs(mentalSignature(e.mental)-e.mentalSumAtCache) >= mentalJumpThreshold {
		e.lapTimeValid = false
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
