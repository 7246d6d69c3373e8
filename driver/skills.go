// Package driver models the persistent, cross-race parts of a competitor:
// their ten skills, four-axis mental state, and career statistics. Car state
// and lap-progress counters — anything that resets every race — live in the
// car and race packages instead; see the ownership note in SPEC_FULL.md §3.
package driver

import "github.com/aspen-motorsports/racestrategy/progression"

// SkillAxis enumerates the ten skill dimensions of §3/§4.3.
type SkillAxis int

const (
	Racecraft SkillAxis = iota
	Consistency
	Aggression
	Focus
	Stamina
	Composure
	DraftSense
	TireManagement
	FuelManagement
	PitStrategy
	skillAxisCount
)

func (a SkillAxis) String() string {
	switch a {
	case Racecraft:
		return "racecraft"
	case Consistency:
		return "consistency"
	case Aggression:
		return "aggression"
	case Focus:
		return "focus"
	case Stamina:
		return "stamina"
	case Composure:
		return "composure"
	case DraftSense:
		return "draft_sense"
	case TireManagement:
		return "tire_management"
	case FuelManagement:
		return "fuel_management"
	case PitStrategy:
		return "pit_strategy"
	default:
		return "unknown"
	}
}

// Skill is one axis's current value and accumulated XP.
type Skill struct {
	Value float64 // 0..100, derived from XP via the level curve
	XP    float64 // >=0, monotonically non-decreasing
}

// Skills holds all ten skill axes.
type Skills [int(skillAxisCount)]Skill

// Get returns the current value of axis.
func (s Skills) Get(axis SkillAxis) float64 {
	return s[axis].Value
}

// XP returns the accumulated XP of axis.
func (s Skills) XP(axis SkillAxis) float64 {
	return s[axis].XP
}

// AwardXP adds amount XP to axis and recomputes its clamped value from the
// level curve. A negative amount is a no-op per §4.3's failure modes.
func (s *Skills) AwardXP(axis SkillAxis, amount float64) {
	if amount <= 0 {
		return
	}
	s[axis].XP += amount
	s[axis].Value = clamp(progression.ValueFromXP(s[axis].XP), 0, 100)
}

// NewSkills builds a Skills set with every axis at the given starting value,
// back-filling XP to the minimum that yields that value under the level
// curve. Used to seed rookies/veterans at a known baseline.
func NewSkills(baseline float64) Skills {
	baseline = clamp(baseline, 0, 100)
	var s Skills
	xp := progression.XPRequiredForValue(baseline)
	for i := range s {
		s[i] = Skill{Value: baseline, XP: xp}
	}
	return s
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
