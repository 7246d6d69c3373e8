// Package physics is the pure, side-effect-free kernel that turns a driver's
// skills and mental state, a car's condition, and a track's geometry into lap
// times, wear, burn, and mistake draws. Every function here is a function of
// its arguments alone; the only randomness enters through an rng.Source
// passed in by the caller, never a package-level generator.
package physics

import (
	"math"

	"github.com/aspen-motorsports/racestrategy/car"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/rng"
	"github.com/aspen-motorsports/racestrategy/track"
)

const feetPerMile = 5280.0

// BaseDraftPct is the fraction of baseline straight-section speed gained by
// drafting, before the draft_sense scaling. Expressed as a fraction of speed
// rather than a flat mph figure because straight speeds vary roughly 5x
// between a short track and a superspeedway; a flat mph bonus calibrated for
// Bristol would be negligible at Daytona and vice versa.
const BaseDraftPct = 0.015

// k_tire and the fuel-weight coefficient are shared across track classes; the
// track-class-specific levers are VRefMPH/VTopMPH/Mu (cornering character)
// and BaseWear/BaseBurn (per-class tire/fuel consumption).
const (
	kTire           = 0.08
	fuelWeightCoeff = 0.0001
)

// Profile holds the track-class-specific constants the kernel needs:
// reference corner speed and straight top speed (mph) and an effective
// tire-road friction coefficient. Values are tuned per class, not per
// individual track, matching §4.2's "table-driven, calibrated against §8's
// canonical examples" direction.
type Profile struct {
	VRefMPH  float64
	VTopMPH  float64
	Mu       float64
	BaseWear float64 // tire percentage points lost per lap, before modifiers
	BaseBurn float64 // fuel percentage points burned per lap, before modifiers
}

// DefaultProfile returns the calibrated Profile for a track class.
func DefaultProfile(class track.Class) Profile {
	switch class {
	case track.ClassShort:
		return Profile{VRefMPH: 76, VTopMPH: 136, Mu: 0.90, BaseWear: 2.2, BaseBurn: 1.6}
	case track.ClassIntermediate:
		return Profile{VRefMPH: 95, VTopMPH: 165, Mu: 0.85, BaseWear: 1.6, BaseBurn: 1.3}
	case track.ClassSuperspeedway:
		return Profile{VRefMPH: 142, VTopMPH: 195, Mu: 0.75, BaseWear: 1.0, BaseBurn: 1.8}
	default:
		return Profile{VRefMPH: 90, VTopMPH: 160, Mu: 0.85, BaseWear: 1.6, BaseBurn: 1.4}
	}
}

func mphToFtS(mph float64) float64 {
	return mph * feetPerMile / 3600
}

// CornerSpeed returns the cornering speed in ft/s at the given banking angle
// (degrees) and friction coefficient mu, scaled from the profile's reference
// corner speed. grip ∈ [0,1] scales the result directly (track.EffectiveGrip).
func CornerSpeed(vRefMPH, bankingDeg, mu, grip float64) float64 {
	t := math.Tan(bankingDeg * math.Pi / 180)
	denom := 1 - mu*t
	if denom < 0.05 {
		denom = 0.05
	}
	factor := (t + mu) / denom
	if factor < 0.05 {
		factor = 0.05
	}
	if grip <= 0 {
		grip = 0.01
	}
	return mphToFtS(vRefMPH) * math.Sqrt(factor) * grip
}

// LapInputs bundles the per-lap state a lap-time computation draws on.
type LapInputs struct {
	Skills      driver.Skills
	Mental      driver.MentalState
	Car         car.State
	DraftActive bool
}

// skillAxisCount mirrors the ten axes enumerated in driver.SkillAxis; the
// driver package does not export its count, so it is restated here.
const skillAxisCount = 10

func validateLapInputs(in LapInputs) error {
	for axis := driver.SkillAxis(0); axis < skillAxisCount; axis++ {
		v := in.Skills.Get(axis)
		if math.IsNaN(v) || v < 0 || v > 100 {
			return raceerr.New(raceerr.KindInvalidInput, "SKILL_OUT_OF_RANGE", "skill value outside 0-100")
		}
	}
	if in.Car.TirePct < 0 || in.Car.TirePct > 100 || math.IsNaN(in.Car.TirePct) {
		return raceerr.New(raceerr.KindInvalidInput, "TIRE_OUT_OF_RANGE", "tire_pct outside 0-100")
	}
	if in.Car.FuelPct < 0 || math.IsNaN(in.Car.FuelPct) {
		return raceerr.New(raceerr.KindInvalidInput, "FUEL_OUT_OF_RANGE", "fuel_pct negative")
	}
	return nil
}

// LapTime computes the base (pre-jitter) lap time in seconds for one driver
// around one full lap of t, under the given Profile and LapInputs.
//
// The racecraft and confidence modifiers are applied as divisors, and the
// frustration/distraction penalties as (1+penalty) multipliers, rather than
// the naive reading of the chained-multiplier formula: skill and confidence
// are speed factors (higher means faster, i.e. less time), and a "penalty"
// by definition adds time rather than removing it. Applying them as literal
// multipliers-of-(1-x) would make higher racecraft or confidence produce a
// slower lap and higher frustration a faster one, which contradicts the
// lap-time monotonicity properties this kernel must satisfy.
func LapTime(t *track.Track, profile Profile, in LapInputs) (float64, error) {
	if err := validateLapInputs(in); err != nil {
		return 0, err
	}

	var base float64
	for _, s := range t.Sections() {
		switch s.Kind {
		case track.SectionTurn:
			banking := (s.BankingInner + s.BankingOuter) / 2
			v := CornerSpeed(profile.VRefMPH, banking, profile.Mu, 1.0)
			base += s.LengthFeet() / v
		case track.SectionStraight:
			v := mphToFtS(profile.VTopMPH)
			if in.DraftActive {
				bonus := BaseDraftPct * (1 + in.Skills.Get(driver.DraftSense)/200)
				v *= 1 + bonus
			}
			base += s.LengthFeet() / v
		}
	}

	racecraftMod := 1 + ((in.Skills.Get(driver.Racecraft)-50)/50)*0.02
	confidenceMod := 1 + ((in.Mental.Get(driver.Confidence)-50)/50)*0.05

	var frustrationPenalty float64
	if f := in.Mental.Get(driver.Frustration); f > 30 {
		frustrationPenalty = (f / 100) * 0.10
	}
	var distractionPenalty float64
	if d := in.Mental.Get(driver.Distraction); d > 30 {
		distractionPenalty = (d / 100) * 0.05
	}

	tireMod := 1 + (1-in.Car.TirePct/100)*kTire
	fuelMod := 1 + in.Car.FuelPct*fuelWeightCoeff

	final := base / (racecraftMod * confidenceMod)
	final *= 1 + frustrationPenalty
	final *= 1 + distractionPenalty
	final *= tireMod
	final *= fuelMod

	return final, nil
}

// LapVariance draws a symmetric jitter in seconds from rngSrc, with
// half-width shrinking as consistency rises: 0.5 - (consistency/100)*0.4.
// Purely a function of consistency; never informed by rolling lap-time
// statistics (see LapTimeStats), which are diagnostic-only per §4.2.
func LapVariance(consistency float64, rngSrc rng.Source) float64 {
	halfWidth := 0.5 - (consistency/100)*0.4
	if halfWidth < 0.1 {
		halfWidth = 0.1
	}
	return rngSrc.Range(-halfWidth, halfWidth)
}

// TireWearPerLap returns the tire percentage points consumed by one lap.
func TireWearPerLap(profile Profile, aggression, tireManagement float64) float64 {
	aggressionBonus := 0.0
	if aggression > 80 {
		aggressionBonus = 0.05
	}
	wear := profile.BaseWear * (1 + aggressionBonus) * (1 - (tireManagement/100)*0.30)
	if wear < 0 {
		wear = 0
	}
	return wear
}

// FuelBurnPerLap returns the fuel percentage points consumed by one lap.
func FuelBurnPerLap(profile Profile, fuelManagement float64, draftActive bool) float64 {
	draftFactor := 1.0
	if draftActive {
		draftFactor = 0.90
	}
	burn := profile.BaseBurn * draftFactor * (1 - (fuelManagement/100)*0.15)
	if burn < 0 {
		burn = 0
	}
	return burn
}

// MistakeOutcome describes the consequence of a mistake draw.
type MistakeOutcome struct {
	Occurred         bool
	TimePenaltySec   float64
	FrustrationDelta float64
	ConfidenceDelta  float64
	DamageDelta      float64
}

// MistakeProbability returns the per-lap probability of a driving mistake.
func MistakeProbability(focus, frustration, distraction float64) float64 {
	p := 0.10 * (1 - focus/100)
	if frustration > 60 {
		p += 0.05
	}
	if distraction > 60 {
		p += 0.05
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// RollMistake draws whether a mistake occurs this lap and, if so, its
// consequences, using rngSrc for every stochastic decision.
func RollMistake(focus, frustration, distraction float64, rngSrc rng.Source) MistakeOutcome {
	p := MistakeProbability(focus, frustration, distraction)
	if rngSrc.Uniform() >= p {
		return MistakeOutcome{}
	}

	out := MistakeOutcome{
		Occurred:         true,
		TimePenaltySec:   rngSrc.Range(0.5, 2.0),
		FrustrationDelta: 10,
		ConfidenceDelta:  -5,
	}
	if rngSrc.Uniform() < 0.15 {
		out.DamageDelta = rngSrc.Range(1, 8)
	}
	return out
}
