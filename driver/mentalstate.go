package driver

// MentalAxis enumerates the four mental-state dimensions of §3.
type MentalAxis int

const (
	Confidence MentalAxis = iota
	Frustration
	MentalFocus
	Distraction
	mentalAxisCount
)

func (a MentalAxis) String() string {
	switch a {
	case Confidence:
		return "confidence"
	case Frustration:
		return "frustration"
	case MentalFocus:
		return "focus"
	case Distraction:
		return "distraction"
	default:
		return "unknown"
	}
}

// MentalState holds the four bounded mental-state scalars.
type MentalState [int(mentalAxisCount)]float64

// NewMentalState returns a MentalState with all axes at the given baseline.
func NewMentalState(confidence, frustration, focus, distraction float64) MentalState {
	var m MentalState
	m[Confidence] = clamp(confidence, 0, 100)
	m[Frustration] = clamp(frustration, 0, 100)
	m[MentalFocus] = clamp(focus, 0, 100)
	m[Distraction] = clamp(distraction, 0, 100)
	return m
}

// Get returns the current value of axis.
func (m MentalState) Get(axis MentalAxis) float64 {
	return m[axis]
}

// Apply adds delta to axis and clamps the result to [0,100]. Per §4.3's
// failure modes, out-of-range deltas are silently clamped, never an error.
func (m *MentalState) Apply(axis MentalAxis, delta float64) {
	m[axis] = clamp(m[axis]+delta, 0, 100)
}

// RecoverTowardBaseline nudges every axis one step toward its resting
// baseline, per lap. baseline holds the at-rest value for each axis
// (typically the driver's starting mental state); each step closes the
// fraction of the remaining gap given by recoveryRate, 5% at composure 0
// rising linearly to 10% at composure 100 (§4.3: composure ranges recovery
// 1.0x-2.0x of a base rate).
func (m *MentalState) RecoverTowardBaseline(baseline MentalState, composure float64) {
	rate := recoveryRate(composure)
	for axis := MentalAxis(0); axis < mentalAxisCount; axis++ {
		current := m[axis]
		target := baseline[axis]
		if current == target {
			continue
		}
		step := (target - current) * rate
		m[axis] = clamp(current+step, 0, 100)
	}
}

// recoveryRate maps composure (0-100) onto the 1.0x-2.0x base recovery
// multiplier from §4.3, expressed as a per-lap fractional step toward
// baseline so repeated application converges smoothly rather than
// overshooting in one lap.
func recoveryRate(composure float64) float64 {
	composure = clamp(composure, 0, 100)
	multiplier := 1.0 + composure/100 // 1.0x .. 2.0x
	const baseStep = 0.05
	return baseStep * multiplier
}
