// Package ai is the AI driver controller: each non-player competitor
// resolves the same trigger/outcome formulas as the player's Decision
// Engine, internally, without a UI round trip. Grounded on the teacher's
// ErrorClassifier/ErrorReporter pattern in strategy/error_handling.go for
// how a malformed internal choice is locally recovered rather than fatal.
package ai

import (
	"fmt"

	"github.com/aspen-motorsports/racestrategy/decision"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/rng"
)

// Personality biases which option an AI reaches for when a Decision fires.
type Personality int

const (
	PersonalityAggressive Personality = iota
	PersonalityPatient
	PersonalityAdaptive
)

func (p Personality) String() string {
	switch p {
	case PersonalityAggressive:
		return "aggressive"
	case PersonalityPatient:
		return "patient"
	case PersonalityAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// Controller runs one AI driver's internal decision-making: it owns a
// decision.Engine for trigger evaluation and a personality bias for option
// selection, and reports malformed choices to a shared raceerr.Reporter
// rather than letting them propagate as a race-ending error.
type Controller struct {
	DriverID    string
	Personality Personality

	engine   *decision.Engine
	reporter *raceerr.Reporter
}

// NewController builds a Controller for driverID. reporter may be nil if the
// caller does not want TransientAIFault events recorded.
func NewController(driverID string, personality Personality, reporter *raceerr.Reporter, opts ...decision.Option) *Controller {
	return &Controller{
		DriverID:    driverID,
		Personality: personality,
		engine:      decision.NewEngine(opts...),
		reporter:    reporter,
	}
}

// ShouldTrigger delegates to the controller's own decision.Engine, entirely
// independent of the player's cooldown/prompt state.
func (c *Controller) ShouldTrigger(ctx decision.TriggerContext) (*decision.Decision, bool) {
	return c.engine.ShouldTrigger(ctx)
}

// ChooseOption picks an option id from d according to the controller's
// personality: aggressive reaches for the highest-risk option, patient for
// the lowest-risk, adaptive switches on the driver's current confidence.
func (c *Controller) ChooseOption(d *decision.Decision, mental driver.MentalState) string {
	if len(d.Options) == 0 {
		return d.DefaultOptionID
	}
	switch c.Personality {
	case PersonalityAggressive:
		return highestRiskOptionID(d)
	case PersonalityPatient:
		return lowestRiskOptionID(d)
	default:
		if mental.Get(driver.Confidence) >= 60 {
			return highestRiskOptionID(d)
		}
		return lowestRiskOptionID(d)
	}
}

func highestRiskOptionID(d *decision.Decision) string {
	best := d.DefaultOptionID
	bestRisk := decision.Risk(-1)
	for _, opt := range d.Options {
		if opt.Risk > bestRisk {
			bestRisk = opt.Risk
			best = opt.ID
		}
	}
	return best
}

func lowestRiskOptionID(d *decision.Decision) string {
	best := d.DefaultOptionID
	bestRisk := decision.RiskHigh + 1
	for _, opt := range d.Options {
		if opt.Risk < bestRisk {
			bestRisk = opt.Risk
			best = opt.ID
		}
	}
	return best
}

// Resolve chooses and evaluates an option for d. If the controller's choice
// does not name a real option on d (a malformed internal choice), the
// fault is reported as KindTransientAIFault and the controller falls back to
// the decision's low-risk option; if even that cannot be evaluated, it falls
// back to the ordinary timeout-equivalent default. Resolve always returns a
// usable result.
func (c *Controller) Resolve(d *decision.Decision, skills driver.Skills, mental driver.MentalState, rngSrc rng.Source) *decision.Result {
	chosen := c.ChooseOption(d, mental)
	result, _, ok := decision.Evaluate(d, chosen, skills, mental, rngSrc)
	if ok {
		return result
	}

	c.reportFault(d, chosen)

	fallback := lowestRiskOptionID(d)
	if result, _, ok := decision.Evaluate(d, fallback, skills, mental, rngSrc); ok {
		return result
	}
	return decision.DefaultResult(d)
}

func (c *Controller) reportFault(d *decision.Decision, chosen string) {
	if c.reporter == nil {
		return
	}
	c.reporter.Report(raceerr.New(
		raceerr.KindTransientAIFault,
		"AI_INVALID_CHOICE",
		fmt.Sprintf("driver %s chose unknown option %q on decision %s (%s)", c.DriverID, chosen, d.ID, d.Kind),
	))
}
