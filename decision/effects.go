package decision

import (
	"github.com/aspen-motorsports/racestrategy/car"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/rng"
)

// Result is the concrete effect of resolving a Decision: everything the race
// engine needs to apply to Driver/CarState. Fields not relevant to a given
// Kind/Outcome combination are left at their zero value.
type Result struct {
	OptionID string
	Outcome  Outcome
	Message  string

	PositionDelta int // positive = positions lost, negative = positions gained

	ConfidenceDelta  float64
	FrustrationDelta float64
	FocusDelta       float64
	DistractionDelta float64
	AggressionDelta  float64

	XPAwards map[driver.SkillAxis]float64

	DamageDelta       float64
	PitKind           *car.PitKind // non-nil triggers a full/partial pit in the engine
	TireConserveDelta float64      // percentage points of tire restored/saved
}

func award(axis driver.SkillAxis, amount float64) map[driver.SkillAxis]float64 {
	return map[driver.SkillAxis]float64{axis: amount}
}

// effectsFor implements the §4.7 effects table. Kinds/outcomes not spelled
// out explicitly in the abridged table get a proportionally smaller, same-
// direction effect so every (Kind, Outcome) pair produces a sensible result.
func effectsFor(kind Kind, opt Option, outcome Outcome, rngSrc rng.Source) *Result {
	switch kind {
	case KindPassing, KindTraffic:
		switch outcome {
		case OutcomeSuccess:
			r := &Result{
				PositionDelta:    -1,
				ConfidenceDelta:  rngSrc.Range(10, 15),
				FrustrationDelta: -rngSrc.Range(5, 10),
				XPAwards:         award(driver.Racecraft, 15),
			}
			if opt.Risk == RiskHigh {
				r.AggressionDelta = 5
			}
			return r
		case OutcomeFailure:
			if opt.Risk == RiskHigh {
				return &Result{
					PositionDelta:    1,
					ConfidenceDelta:  -rngSrc.Range(8, 10),
					FrustrationDelta: rngSrc.Range(15, 20),
					DamageDelta:      rngSrc.Range(5, 10),
				}
			}
			return &Result{
				PositionDelta:    1,
				ConfidenceDelta:  -4,
				FrustrationDelta: 8,
			}
		default: // neutral
			return &Result{FrustrationDelta: 2}
		}

	case KindCriticalMental:
		switch outcome {
		case OutcomeSuccess:
			return &Result{
				FrustrationDelta: -20,
				FocusDelta:       10,
				ConfidenceDelta:  5,
				DistractionDelta: -10,
				XPAwards:         award(driver.Composure, 20),
			}
		case OutcomeFailure:
			return &Result{FrustrationDelta: 10, DistractionDelta: 5}
		default:
			return &Result{FrustrationDelta: -5, FocusDelta: 3}
		}

	case KindPitStrategy:
		full := car.PitFull
		switch outcome {
		case OutcomeSuccess:
			return &Result{
				PitKind:          &full,
				PositionDelta:    int(rngSrc.Range(2, 5)),
				ConfidenceDelta:  5,
				XPAwards:         award(driver.PitStrategy, 10),
			}
		case OutcomeFailure:
			return &Result{
				PitKind:          &full,
				PositionDelta:    int(rngSrc.Range(5, 9)),
				FrustrationDelta: 10,
			}
		default:
			return &Result{PitKind: &full, PositionDelta: 3}
		}

	case KindTireManagement:
		switch outcome {
		case OutcomeSuccess:
			return &Result{
				TireConserveDelta: 5,
				PositionDelta:     1,
				XPAwards:          award(driver.TireManagement, 10),
			}
		case OutcomeFailure:
			return &Result{FrustrationDelta: 6}
		default:
			return &Result{TireConserveDelta: 1}
		}

	case KindEmergency:
		switch outcome {
		case OutcomeSuccess:
			return &Result{
				ConfidenceDelta: 6,
				XPAwards:        award(driver.Focus, 10),
			}
		case OutcomeFailure:
			return &Result{
				DamageDelta:      rngSrc.Range(10, 25),
				FrustrationDelta: 15,
				PositionDelta:    int(rngSrc.Range(2, 6)),
			}
		default:
			return &Result{FrustrationDelta: 4}
		}
	}

	return &Result{}
}
