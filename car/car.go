// Package car models the per-race, per-driver physical state of the car:
// tires, fuel, damage, and laps since the last pit stop. Nothing outside the
// race engine mutates CarState directly — see SPEC_FULL.md §4.4.
package car

// PitKind selects which service a pit stop performs.
type PitKind int

const (
	PitFull PitKind = iota
	PitFuelOnly
	PitTiresOnly
)

// State is one driver's car for the current race.
type State struct {
	TirePct      float64 // 100 = new
	FuelPct      float64
	DamagePct    float64
	LapsSincePit int
	InPitThisLap bool
}

// NewState returns a fresh car: full tires, full fuel, no damage.
func NewState() State {
	return State{TirePct: 100, FuelPct: 100, DamagePct: 0, LapsSincePit: 0}
}

// ApplyLapWear subtracts tire and fuel wear for one completed lap and
// increments LapsSincePit. deltaTire/deltaFuel are non-negative amounts
// computed by the physics kernel; this method only applies and clamps them.
func (s *State) ApplyLapWear(deltaTire, deltaFuel float64) {
	s.TirePct = clamp(s.TirePct-deltaTire, 0, 100)
	s.FuelPct = clamp(s.FuelPct-deltaFuel, 0, 100)
	s.LapsSincePit++
}

// ApplyDamage adds damage, clamped to [0,100]. Damage is never repaired by a
// standard pit stop (§4.4).
func (s *State) ApplyDamage(delta float64) {
	if delta <= 0 {
		return
	}
	s.DamagePct = clamp(s.DamagePct+delta, 0, 100)
}

// ApplyPit performs the given pit service. Each kind resets LapsSincePit to
// zero; full resets tire and fuel to 100; fuel-only resets only fuel;
// tires-only resets only tire. Damage is untouched by every kind.
func (s *State) ApplyPit(kind PitKind) {
	s.LapsSincePit = 0
	s.InPitThisLap = true
	switch kind {
	case PitFull:
		s.TirePct = 100
		s.FuelPct = 100
	case PitFuelOnly:
		s.FuelPct = 100
	case PitTiresOnly:
		s.TirePct = 100
	}
}

// ResetLapFlag clears InPitThisLap at the start of a new lap.
func (s *State) ResetLapFlag() {
	s.InPitThisLap = false
}

// PitTrackTimeCost returns the approximate track-time cost, in seconds, of
// the given pit kind, per §4.4.
func PitTrackTimeCost(kind PitKind) float64 {
	switch kind {
	case PitFull:
		return 12
	case PitFuelOnly:
		return 6
	case PitTiresOnly:
		return 8
	default:
		return 12
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
