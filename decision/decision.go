// Package decision implements the player/AI decision engine: triggering
// conditions that interrupt the race loop with a prompt, and the
// skill-weighted probability model that resolves a chosen option into an
// outcome and its effects. Grounded on the teacher's StrategyEngine/
// StrategyAnalysis request-response shape, re-themed from an LLM round trip
// to a closed-form probability model.
package decision

import (
	"math"

	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/rng"
)

// Kind enumerates the six trigger categories, in descending priority order.
type Kind int

const (
	KindEmergency Kind = iota
	KindCriticalMental
	KindPitStrategy
	KindPassing
	KindTraffic
	KindTireManagement
)

func (k Kind) String() string {
	switch k {
	case KindEmergency:
		return "incident"
	case KindCriticalMental:
		return "mental"
	case KindPitStrategy:
		return "pit-strategy"
	case KindPassing:
		return "passing"
	case KindTraffic:
		return "traffic"
	case KindTireManagement:
		return "tire"
	default:
		return "unknown"
	}
}

// Risk buckets an option's downside.
type Risk int

const (
	RiskLow Risk = iota
	RiskMedium
	RiskHigh
)

func (r Risk) penalty() float64 {
	switch r {
	case RiskMedium:
		return -0.05
	case RiskHigh:
		return -0.15
	default:
		return 0
	}
}

// Option is one choice offered on a Decision.
type Option struct {
	ID             string
	Label          string
	Description    string
	Risk           Risk
	SkillsWeighted []driver.SkillAxis
}

// Decision is a single active prompt. At most one is active at a time on a
// RaceState.
type Decision struct {
	ID              string
	Kind            Kind
	Prompt          string
	Options         []Option
	TimeLimitMs     int
	DefaultOptionID string
	Context         map[string]any
}

// Outcome is the resolved result of evaluating a chosen option.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNeutral
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "neutral"
	}
}

// primarySkill maps a trigger Kind to the skill axis its outcome probability
// is weighted on, per §4.7's primary-skill map.
func primarySkill(k Kind) driver.SkillAxis {
	switch k {
	case KindPitStrategy:
		return driver.PitStrategy
	case KindPassing, KindTraffic:
		return driver.Racecraft
	case KindEmergency:
		return driver.Focus
	case KindTireManagement:
		return driver.TireManagement
	case KindCriticalMental:
		return driver.Composure
	default:
		return driver.Racecraft
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

// SuccessProbability implements the §4.7 outcome formula.
func SuccessProbability(kind Kind, risk Risk, skills driver.Skills, mental driver.MentalState) float64 {
	skillValue := skills.Get(primarySkill(kind))
	skillBonus := clamp((skillValue-50)*0.005, -0.25, 0.25)
	mentalMod := clamp(((mental.Get(driver.Confidence)-mental.Get(driver.Frustration))/100)*0.10, -0.10, 0.10)
	p := 0.50 + skillBonus + mentalMod + risk.penalty()
	return clamp(p, 0.05, 0.95)
}

// Evaluate resolves optionID against d using skills/mental and draws from
// rngSrc for the outcome roll. Returns ErrInvalidDecisionChoice-kind error
// (via the caller's raceerr wrapping; this package stays error-free and
// reports via the bool/ok idiom) when optionID is unknown.
func Evaluate(d *Decision, optionID string, skills driver.Skills, mental driver.MentalState, rngSrc rng.Source) (*Result, *Option, bool) {
	var opt *Option
	for i := range d.Options {
		if d.Options[i].ID == optionID {
			opt = &d.Options[i]
			break
		}
	}
	if opt == nil {
		return nil, nil, false
	}

	p := SuccessProbability(d.Kind, opt.Risk, skills, mental)
	roll := rngSrc.Uniform()

	var outcome Outcome
	switch {
	case roll < p:
		outcome = OutcomeSuccess
	case roll < p+0.20:
		outcome = OutcomeNeutral
	default:
		outcome = OutcomeFailure
	}

	result := effectsFor(d.Kind, *opt, outcome, rngSrc)
	result.OptionID = optionID
	result.Outcome = outcome
	return result, opt, true
}

// EffectiveTimeLimitMs applies the §4.7 stress-based time-limit reduction,
// floored at 1000ms.
func EffectiveTimeLimitMs(baseMs int, focus, frustration, distraction float64) int {
	factor := 1.0
	if focus < 40 {
		factor *= 0.70
	}
	if frustration > 60 {
		factor *= 0.80
	}
	if distraction > 60 {
		factor *= 0.75
	}
	eff := float64(baseMs) * factor
	if eff < 1000 {
		eff = 1000
	}
	return int(math.Round(eff))
}

// DefaultResult builds the timeout-equivalent result: the default option,
// neutral outcome, diminished effects (frustration +3, "no decision made").
func DefaultResult(d *Decision) *Result {
	return &Result{
		OptionID:         d.DefaultOptionID,
		Outcome:          OutcomeNeutral,
		FrustrationDelta: 3,
		Message:          "no decision made",
	}
}
