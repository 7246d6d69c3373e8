package decision

import (
	"fmt"

	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/physics"
)

// TriggerContext bundles everything a trigger rule needs to read. It is
// assembled fresh by the race engine each tick from RaceContext; this
// package never reaches back into engine state itself.
type TriggerContext struct {
	CurrentLap int

	TirePct   float64
	FuelPct   float64
	DamagePct float64

	Mental driver.MentalState

	IncidentAhead              bool
	IncidentDistanceCarLengths float64

	CautionWindowOpening bool

	StuckBehindLaps      int
	SpeedDifferential    float64
	PassingSectionReady  bool

	LappedCarBlocking bool

	LapsToNextPitWindow int

	// LapTimeStats is the gonum-backed rolling lap-time summary (§4.2.1): a
	// secondary signal that can add to, but never loosens, the primary
	// tire/traffic trigger conditions below.
	LapTimeStats physics.LapTimeStats
}

// minCooldownLaps is the minimum gap, in player laps, between two
// non-Emergency prompts.
const minCooldownLaps = 10

// Engine tracks per-player trigger state: the last lap a non-Emergency
// prompt fired, for cooldown enforcement.
type Engine struct {
	lastNonEmergencyLap int
	havePrompted        bool
	nextID              int
	calculator          *PitStopCalculator
	cooldownLaps        int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithCooldownLaps overrides the default 10-lap cooldown between
// non-Emergency prompts, per config.EngineConfig's cooldown-lap override.
// n<=0 is ignored.
func WithCooldownLaps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cooldownLaps = n
		}
	}
}

// NewEngine constructs a trigger/evaluation Engine with its own
// PitStopCalculator and the default 10-lap cooldown, or an overridden one
// via WithCooldownLaps.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{calculator: NewPitStopCalculator(), cooldownLaps: minCooldownLaps}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ShouldTrigger evaluates the priority-ordered rules against ctx. Priority
// filtering runs before cooldown filtering, so Emergency always fires
// regardless of cooldown; every other Kind is subject to the cooldown
// (10 laps unless overridden with WithCooldownLaps).
func (e *Engine) ShouldTrigger(ctx TriggerContext) (*Decision, bool) {
	if d, ok := e.emergency(ctx); ok {
		e.record(ctx.CurrentLap, KindEmergency)
		return d, true
	}

	if e.havePrompted && ctx.CurrentLap-e.lastNonEmergencyLap < e.cooldownLaps {
		return nil, false
	}

	if d, ok := e.criticalMental(ctx); ok {
		e.record(ctx.CurrentLap, KindCriticalMental)
		return d, true
	}
	if d, ok := e.pitStrategy(ctx); ok {
		e.record(ctx.CurrentLap, KindPitStrategy)
		return d, true
	}
	if d, ok := e.passing(ctx); ok {
		e.record(ctx.CurrentLap, KindPassing)
		return d, true
	}
	if d, ok := e.traffic(ctx); ok {
		e.record(ctx.CurrentLap, KindTraffic)
		return d, true
	}
	if d, ok := e.tireManagement(ctx); ok {
		e.record(ctx.CurrentLap, KindTireManagement)
		return d, true
	}
	return nil, false
}

func (e *Engine) record(lap int, kind Kind) {
	e.nextID++
	if kind != KindEmergency {
		e.lastNonEmergencyLap = lap
		e.havePrompted = true
	}
}

func (e *Engine) id(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, e.nextID+1)
}

func (e *Engine) emergency(ctx TriggerContext) (*Decision, bool) {
	const thresholdCarLengths = 3.0
	if !ctx.IncidentAhead || ctx.IncidentDistanceCarLengths > thresholdCarLengths {
		return nil, false
	}
	base := EffectiveTimeLimitMs(3000, ctx.Mental.Get(driver.MentalFocus), ctx.Mental.Get(driver.Frustration), ctx.Mental.Get(driver.Distraction))
	return &Decision{
		ID:              e.id("incident"),
		Kind:            KindEmergency,
		Prompt:          "Incident ahead — how do you respond?",
		TimeLimitMs:     base,
		DefaultOptionID: "brake-straight",
		Options: []Option{
			{ID: "brake-straight", Label: "Brake in a straight line", Risk: RiskLow, SkillsWeighted: []driver.SkillAxis{driver.Focus}},
			{ID: "thread-gap", Label: "Thread the gap", Risk: RiskHigh, SkillsWeighted: []driver.SkillAxis{driver.Focus, driver.Racecraft}},
		},
	}, true
}

func (e *Engine) criticalMental(ctx TriggerContext) (*Decision, bool) {
	f := ctx.Mental.Get(driver.Frustration)
	d := ctx.Mental.Get(driver.Distraction)
	if !(f > 75 || (f > 60 && d > 50) || d > 65) {
		return nil, false
	}
	base := EffectiveTimeLimitMs(10000, ctx.Mental.Get(driver.MentalFocus), f, d)
	return &Decision{
		ID:              e.id("mental"),
		Kind:            KindCriticalMental,
		Prompt:          "You're rattled. Take a breath and reset, or push through?",
		TimeLimitMs:     base,
		DefaultOptionID: "reset",
		Options: []Option{
			{ID: "reset", Label: "Reset and refocus", Risk: RiskLow, SkillsWeighted: []driver.SkillAxis{driver.Composure}},
			{ID: "push-through", Label: "Push through it", Risk: RiskMedium, SkillsWeighted: []driver.SkillAxis{driver.Composure, driver.Stamina}},
		},
	}, true
}

func (e *Engine) pitStrategy(ctx TriggerContext) (*Decision, bool) {
	if !((ctx.CurrentLap >= 50 && (ctx.TirePct < 60 || ctx.FuelPct < 40)) || ctx.CautionWindowOpening) {
		return nil, false
	}
	base := EffectiveTimeLimitMs(12000, ctx.Mental.Get(driver.MentalFocus), ctx.Mental.Get(driver.Frustration), ctx.Mental.Get(driver.Distraction))
	pitLoss := e.calculator.EstimatePitLossSeconds()
	return &Decision{
		ID:              e.id("pit"),
		Kind:            KindPitStrategy,
		Prompt:          "Pit window — come in now?",
		TimeLimitMs:     base,
		DefaultOptionID: "stay-out",
		Context: map[string]any{
			"pit_loss_seconds": pitLoss,
			"risk_factors":     e.calculator.RiskFactors(ctx.TirePct, ctx.FuelPct),
		},
		Options: []Option{
			{ID: "pit-full", Label: "Pit for tires and fuel", Risk: RiskLow, SkillsWeighted: []driver.SkillAxis{driver.PitStrategy}},
			{ID: "stay-out", Label: "Stay out, stretch the stint", Risk: RiskHigh, SkillsWeighted: []driver.SkillAxis{driver.PitStrategy, driver.TireManagement}},
		},
	}, true
}

func (e *Engine) passing(ctx TriggerContext) (*Decision, bool) {
	const speedThreshold = 2.0
	if !(ctx.StuckBehindLaps >= 10 && ctx.SpeedDifferential >= speedThreshold && ctx.PassingSectionReady) {
		return nil, false
	}
	base := EffectiveTimeLimitMs(6000, ctx.Mental.Get(driver.MentalFocus), ctx.Mental.Get(driver.Frustration), ctx.Mental.Get(driver.Distraction))
	return &Decision{
		ID:              e.id("passing"),
		Kind:            KindPassing,
		Prompt:          "You've got a run on the car ahead — make the move?",
		TimeLimitMs:     base,
		DefaultOptionID: "hold-line",
		Options: []Option{
			{ID: "hold-line", Label: "Hold your line, wait for a cleaner look", Risk: RiskLow, SkillsWeighted: []driver.SkillAxis{driver.Racecraft}},
			{ID: "go-for-it", Label: "Go for the pass", Risk: RiskHigh, SkillsWeighted: []driver.SkillAxis{driver.Racecraft, driver.Aggression}},
		},
	}, true
}

// lapTimeStdDevBlowupFactor is the coefficient-of-variation threshold (stddev
// over mean) above which recent lap times are erratic enough to count as a
// secondary trigger signal in their own right.
const lapTimeStdDevBlowupFactor = 0.03

// lapTimeBlowingUp reports whether stats' recent lap times are erratic
// relative to their own mean. Needs at least 3 laps of history to mean
// anything.
func lapTimeBlowingUp(stats physics.LapTimeStats) bool {
	if stats.Count < 3 || stats.Mean <= 0 {
		return false
	}
	return stats.StdDev/stats.Mean > lapTimeStdDevBlowupFactor
}

func (e *Engine) traffic(ctx TriggerContext) (*Decision, bool) {
	if !(ctx.LappedCarBlocking || lapTimeBlowingUp(ctx.LapTimeStats)) {
		return nil, false
	}
	base := EffectiveTimeLimitMs(6000, ctx.Mental.Get(driver.MentalFocus), ctx.Mental.Get(driver.Frustration), ctx.Mental.Get(driver.Distraction))
	return &Decision{
		ID:              e.id("traffic"),
		Kind:            KindTraffic,
		Prompt:          "A lapped car is blocking your line — how do you handle it?",
		TimeLimitMs:     base,
		DefaultOptionID: "patient",
		Options: []Option{
			{ID: "patient", Label: "Be patient, wait for the blue flag", Risk: RiskLow, SkillsWeighted: []driver.SkillAxis{driver.Racecraft}},
			{ID: "force-it", Label: "Force the issue", Risk: RiskMedium, SkillsWeighted: []driver.SkillAxis{driver.Racecraft, driver.Aggression}},
		},
	}, true
}

func (e *Engine) tireManagement(ctx TriggerContext) (*Decision, bool) {
	primary := ctx.TirePct < 50 && ctx.LapsToNextPitWindow > 20
	secondary := ctx.TirePct < 65 && lapTimeBlowingUp(ctx.LapTimeStats)
	if !(primary || secondary) {
		return nil, false
	}
	base := EffectiveTimeLimitMs(12000, ctx.Mental.Get(driver.MentalFocus), ctx.Mental.Get(driver.Frustration), ctx.Mental.Get(driver.Distraction))
	return &Decision{
		ID:              e.id("tire"),
		Kind:            KindTireManagement,
		Prompt:          "Tires are fading with a long way to the next stop — manage them?",
		TimeLimitMs:     base,
		DefaultOptionID: "conserve",
		Options: []Option{
			{ID: "conserve", Label: "Back off and conserve", Risk: RiskLow, SkillsWeighted: []driver.SkillAxis{driver.TireManagement}},
			{ID: "push-on", Label: "Keep pushing", Risk: RiskMedium, SkillsWeighted: []driver.SkillAxis{driver.TireManagement, driver.Racecraft}},
		},
	}, true
}
