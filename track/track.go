// Package track models the closed-loop geometry cars drive around: an
// ordered sequence of turns and straights with banking and grip. A Track is
// immutable once built; section geometry may come from hand-authored data or
// a parametric generator, but nothing in this package ever mutates a Track
// after construction.
package track

import (
	"math"

	"github.com/aspen-motorsports/racestrategy/raceerr"
)

// BankingCurve selects how banking is interpolated across a section's
// lateral axis, from the inside edge (lateral 0) to the outside edge
// (lateral 1).
type BankingCurve int

const (
	BankingLinear BankingCurve = iota
	BankingCubic
	BankingEaseInOut
)

// SectionKind distinguishes a Turn from a Straight.
type SectionKind int

const (
	SectionTurn SectionKind = iota
	SectionStraight
)

// Section is one contiguous piece of the closed loop. Exactly one of the
// Turn-specific or Straight-specific fields is meaningful, selected by Kind —
// this is the tagged-union pattern called for in §9: absence of a field
// (e.g. RadiusFt on a Straight) is semantically meaningful, not accidental.
type Section struct {
	Kind         SectionKind
	RadiusFt     float64 // Turn only
	ArcDeg       float64 // Turn only
	LengthFt     float64 // Straight only
	BankingInner float64 // degrees
	BankingOuter float64 // degrees
	Curve        BankingCurve

	// lengthFt is the section's length along the racing line, computed at
	// build time for both kinds so progress math never special-cases Kind.
	lengthFt float64
}

// LengthFeet returns the section's racing-line length in feet.
func (s Section) LengthFeet() float64 {
	return s.lengthFt
}

// Track is an immutable closed loop of Sections.
type Track struct {
	Name         string
	Class        Class
	LaneWidthFt  float64
	sections     []Section
	cumulative   []float64 // cumulative length in feet at the *start* of section i
	totalLengFt  float64
	lengthMiles  float64
}

// Class buckets a track by scale, selecting the track-class-specific
// constants in the physics kernel (corner/straight speeds, grip, base_wear,
// base_burn); k_tire is one constant shared by every class.
type Class int

const (
	ClassShort Class = iota // < 1 mile, e.g. Bristol/Martinsville-style bullrings
	ClassIntermediate
	ClassSuperspeedway // Daytona/Talladega-style, strongest draft effect
)

const feetPerMile = 5280.0

// Builder accumulates sections before constructing an immutable Track.
type Builder struct {
	name        string
	class       Class
	laneWidthFt float64
	sections    []Section
}

// NewBuilder starts building a named track of the given class.
func NewBuilder(name string, class Class) *Builder {
	return &Builder{name: name, class: class, laneWidthFt: 40}
}

// LaneWidth overrides the default lane width (feet) used for lane-offset
// clamping by renderers; the engine itself never consumes this value.
func (b *Builder) LaneWidth(ft float64) *Builder {
	b.laneWidthFt = ft
	return b
}

// AddTurn appends a turn section.
func (b *Builder) AddTurn(radiusFt, arcDeg, bankingInner, bankingOuter float64, curve BankingCurve) *Builder {
	b.sections = append(b.sections, Section{
		Kind:         SectionTurn,
		RadiusFt:     radiusFt,
		ArcDeg:       arcDeg,
		BankingInner: bankingInner,
		BankingOuter: bankingOuter,
		Curve:        curve,
	})
	return b
}

// AddStraight appends a straight section.
func (b *Builder) AddStraight(lengthFt, bankingInner, bankingOuter float64, curve BankingCurve) *Builder {
	b.sections = append(b.sections, Section{
		Kind:         SectionStraight,
		LengthFt:     lengthFt,
		BankingInner: bankingInner,
		BankingOuter: bankingOuter,
		Curve:        curve,
	})
	return b
}

// Build validates the accumulated sections against the §3 invariants and
// returns an immutable Track, or a KindConfiguration *raceerr.RaceError whose
// Code starts with "INVALID_GEOMETRY:".
func (b *Builder) Build(declaredLengthMiles float64) (*Track, error) {
	if len(b.sections) == 0 {
		return nil, invalidGeometry("EMPTY_TRACK", "track has no sections")
	}

	var arcSum float64
	var lengthSum float64
	sections := make([]Section, len(b.sections))
	cumulative := make([]float64, len(b.sections))

	for i, s := range b.sections {
		if s.BankingOuter < s.BankingInner {
			return nil, invalidGeometry("BANKING_INVERTED", "banking_outer must be >= banking_inner")
		}
		if s.BankingInner < 0 || s.BankingInner > 35 || s.BankingOuter < 0 || s.BankingOuter > 35 {
			return nil, invalidGeometry("BANKING_OUT_OF_RANGE", "banking must be within 0-35 degrees")
		}

		switch s.Kind {
		case SectionTurn:
			if s.RadiusFt <= 0 {
				return nil, invalidGeometry("ZERO_RADIUS", "turn radius must be positive")
			}
			if s.ArcDeg <= 0 {
				return nil, invalidGeometry("ZERO_ARC", "turn arc must be positive")
			}
			s.lengthFt = s.RadiusFt * s.ArcDeg * math.Pi / 180
			arcSum += s.ArcDeg
		case SectionStraight:
			if s.LengthFt <= 0 {
				return nil, invalidGeometry("ZERO_LENGTH", "straight length must be positive")
			}
			s.lengthFt = s.LengthFt
		}

		cumulative[i] = lengthSum
		lengthSum += s.lengthFt
		sections[i] = s
	}

	if math.Abs(arcSum-360) > 3.6 { // within 1% of 360
		return nil, invalidGeometry("OPEN_LOOP", "turn arcs do not sum to ~360 degrees")
	}

	declaredFt := declaredLengthMiles * feetPerMile
	if declaredFt > 0 {
		deviation := math.Abs(lengthSum-declaredFt) / declaredFt
		if deviation > 0.01 {
			return nil, invalidGeometry("LENGTH_MISMATCH", "computed length does not match declared length within 1%")
		}
	}

	return &Track{
		Name:        b.name,
		Class:       b.class,
		LaneWidthFt: b.laneWidthFt,
		sections:    sections,
		cumulative:  cumulative,
		totalLengFt: lengthSum,
		lengthMiles: lengthSum / feetPerMile,
	}, nil
}

func invalidGeometry(code, msg string) error {
	return raceerr.New(raceerr.KindConfiguration, "INVALID_GEOMETRY:"+code, msg)
}

// Length returns the track's racing-line length in miles.
func (t *Track) Length() float64 {
	return t.lengthMiles
}

// LengthFeet returns the track's racing-line length in feet.
func (t *Track) LengthFeet() float64 {
	return t.totalLengFt
}

// SectionCount returns the number of sections in the loop.
func (t *Track) SectionCount() int {
	return len(t.sections)
}

// Sections returns a copy of the loop's sections in track order, for
// consumers (the physics kernel) that need to walk the whole geometry rather
// than sample a single progress point.
func (t *Track) Sections() []Section {
	out := make([]Section, len(t.sections))
	copy(out, t.sections)
	return out
}

// SectionRef identifies a section and the driver's local progress within it.
type SectionRef struct {
	Index        int
	Section      Section
	LocalProgress float64 // 0..1 within this section
}

// SectionAt maps a global progress p ∈ [0,1) to the section containing it and
// the local progress within that section.
func (t *Track) SectionAt(p float64) SectionRef {
	p = wrapProgress(p)
	target := p * t.totalLengFt

	idx := len(t.sections) - 1
	for i := range t.sections {
		start := t.cumulative[i]
		end := start + t.sections[i].lengthFt
		if target >= start && target < end {
			idx = i
			break
		}
	}

	start := t.cumulative[idx]
	local := (target - start) / t.sections[idx].lengthFt
	if local < 0 {
		local = 0
	}
	if local >= 1 {
		local = math.Nextafter(1, 0)
	}

	return SectionRef{Index: idx, Section: t.sections[idx], LocalProgress: local}
}

// BankingAt returns the banking angle (degrees) at progress p and lateral
// position lateral ∈ [0,1) (0 = inside edge, 1 = outside edge), interpolated
// per the section's configured curve.
func (t *Track) BankingAt(p, lateral float64) float64 {
	ref := t.SectionAt(p)
	return interpolateBanking(ref.Section, clamp01(lateral))
}

func interpolateBanking(s Section, lateral float64) float64 {
	switch s.Curve {
	case BankingCubic:
		eased := lateral * lateral * lateral
		return s.BankingInner + (s.BankingOuter-s.BankingInner)*eased
	case BankingEaseInOut:
		var eased float64
		if lateral < 0.5 {
			eased = 4 * lateral * lateral * lateral
		} else {
			f := -2*lateral + 2
			eased = 1 - (f*f*f)/2
		}
		return s.BankingInner + (s.BankingOuter-s.BankingInner)*eased
	default: // BankingLinear
		return s.BankingInner + (s.BankingOuter-s.BankingInner)*lateral
	}
}

// EffectiveGrip returns the grip coefficient in [0,1] at progress p. Turns
// with higher banking offer marginally more grip headroom; straights are
// grip-neutral. This is a simple, documented model rather than a full tire-
// contact-patch simulation, which is out of this module's scope.
func (t *Track) EffectiveGrip(p float64) float64 {
	ref := t.SectionAt(p)
	if ref.Section.Kind != SectionTurn {
		return 1.0
	}
	avgBanking := (ref.Section.BankingInner + ref.Section.BankingOuter) / 2
	grip := 0.90 + (avgBanking/35)*0.10
	return clamp01(grip)
}

func wrapProgress(p float64) float64 {
	p = math.Mod(p, 1.0)
	if p < 0 {
		p += 1.0
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
