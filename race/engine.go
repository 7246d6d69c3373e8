// Package race implements the race engine: the single authoritative,
// single-threaded FSM that advances every driver's lap time, position, car
// state, and mental state tick by tick, consulting the Decision Engine for
// the player and the AI Controller for everyone else. Grounded on
// SPEC_FULL.md §4.5's tick algorithm and §5's concurrency model: parallelism
// is permitted only for the pure per-driver lap-time computation inside one
// tick, always joined before the engine mutates any shared state serially.
package race

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/car"
	"github.com/aspen-motorsports/racestrategy/decision"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/eventbus"
	"github.com/aspen-motorsports/racestrategy/physics"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/rng"
	"github.com/aspen-motorsports/racestrategy/track"
)

// ErrInvalidTick is returned by SimulateTick when dt_ms <= 0.
var ErrInvalidTick = raceerr.New(raceerr.KindInvalidOperation, "INVALID_TICK", "dt_ms must be positive")

// ErrInconsistentState is returned when a post-step invariant is violated;
// the race is not recoverable and transitions to Aborted.
var ErrInconsistentState = raceerr.New(raceerr.KindInvariantViolation, "INCONSISTENT_STATE", "post-step invariant violated")

// secPerPositionSwing is the approximate track-time cost of gaining or
// losing one position, used to translate a decision.Result.PositionDelta
// into a lap-progress adjustment. The engine never writes Position directly
// outside of recomputeOrder — every position change must be earned
// through lap-progress, so a decision's position effect is realized as a
// time swing rather than a raw position assignment.
const secPerPositionSwing = 0.5

// minLapTimeSec floors a computed lap time so a pathological jitter draw or
// stacked penalty can never produce a zero or negative lap time.
const minLapTimeSec = 1.0

// Engine is the race FSM. The zero value is Uninitialized; use New.
type Engine struct {
	status Status

	track     *track.Track
	profile   physics.Profile
	totalLaps int

	entries []*entry // master list, stable index order
	order   []*entry // sorted by position ascending, rebuilt each tick
	player  *entry

	tick        int
	raceTimeSec float64

	rngSrc               rng.Source
	playerDecisionEngine *decision.Engine
	activeDecision       *decision.Decision
	activeTimerMs        int

	bus      *eventbus.Bus
	reporter *raceerr.Reporter
}

// New returns an Engine in the Uninitialized state.
func New() *Engine {
	return &Engine{status: StatusUninitialized}
}

func configErr(code, msg string) error {
	return raceerr.New(raceerr.KindConfiguration, code, msg)
}

func invalidOp(code, msg string) error {
	return raceerr.New(raceerr.KindInvalidOperation, code, msg)
}

// Initialize validates cfg and transitions Uninitialized → Ready.
func (e *Engine) Initialize(cfg Config) error {
	if e.status != StatusUninitialized {
		return invalidOp("ALREADY_INITIALIZED", "Initialize called more than once")
	}
	if cfg.Track == nil {
		return configErr("MISSING_TRACK", "track is required")
	}
	if cfg.Laps <= 0 {
		return configErr("INVALID_LAPS", "laps must be positive")
	}
	if cfg.PlayerDriver == nil {
		return configErr("MISSING_PLAYER", "player driver is required")
	}

	seen := map[string]bool{cfg.PlayerDriver.ID: true}
	for _, d := range cfg.AIDrivers {
		if d == nil {
			return configErr("NIL_AI_DRIVER", "AI driver entry is nil")
		}
		if seen[d.ID] {
			return configErr("DUPLICATE_DRIVER_ID", fmt.Sprintf("duplicate driver id %q", d.ID))
		}
		seen[d.ID] = true
	}

	profile := physics.DefaultProfile(cfg.Track.Class)
	if cfg.Profile != nil {
		profile = *cfg.Profile
	}

	reporter := raceerr.NewReporter(200)

	byID := make(map[string]*entry, 1+len(cfg.AIDrivers))
	playerEntry := newEntry(cfg.PlayerDriver, false, nil)
	byID[cfg.PlayerDriver.ID] = playerEntry

	entries := make([]*entry, 0, 1+len(cfg.AIDrivers))
	entries = append(entries, playerEntry)

	for _, d := range cfg.AIDrivers {
		personality := ai.PersonalityAdaptive
		if cfg.AIPersonalities != nil {
			if p, ok := cfg.AIPersonalities[d.ID]; ok {
				personality = p
			}
		}
		controller := ai.NewController(d.ID, personality, reporter, decision.WithCooldownLaps(cfg.CooldownLaps))
		en := newEntry(d, true, controller)
		byID[d.ID] = en
		entries = append(entries, en)
	}

	grid := cfg.StartingPositions
	if len(grid) == 0 {
		grid = make([]string, 0, len(entries))
		for _, en := range entries {
			grid = append(grid, en.driver.ID)
		}
	}
	if len(grid) != len(entries) {
		return configErr("STARTING_GRID_SIZE_MISMATCH", "starting_positions must list exactly one entry per driver")
	}
	placed := make(map[string]bool, len(grid))
	for i, id := range grid {
		en, ok := byID[id]
		if !ok {
			return configErr("UNKNOWN_STARTING_DRIVER", fmt.Sprintf("starting position references unknown driver id %q", id))
		}
		if placed[id] {
			return configErr("DUPLICATE_STARTING_DRIVER", fmt.Sprintf("driver id %q listed twice in starting_positions", id))
		}
		placed[id] = true
		en.position = i + 1
	}

	e.track = cfg.Track
	e.profile = profile
	e.totalLaps = cfg.Laps
	e.entries = entries
	e.player = playerEntry
	e.rngSrc = rng.New(cfg.RNGSeed)
	e.playerDecisionEngine = decision.NewEngine(decision.WithCooldownLaps(cfg.CooldownLaps))
	e.bus = eventbus.New()
	e.reporter = reporter
	e.status = StatusReady

	// The starting grid is authoritative for the pre-race order: every
	// entry ties at lap_progress 0, so recomputeOrder's driver_id
	// tie-break would discard it. recomputeOrder takes over from the
	// first tick onward, once lap-time differences break the tie
	// naturally.
	order := make([]*entry, len(entries))
	copy(order, entries)
	sort.SliceStable(order, func(a, b int) bool { return order[a].position < order[b].position })
	e.order = order

	return nil
}

// Start transitions Ready → Running.
func (e *Engine) Start() error {
	if e.status != StatusReady {
		return invalidOp("NOT_READY", "Start called outside the Ready state")
	}
	e.status = StatusRunning
	e.publishSnapshot()
	return nil
}

// IsComplete reports whether the race has reached a terminal state.
func (e *Engine) IsComplete() bool {
	return e.status == StatusFinished || e.status == StatusAborted
}

// CurrentState returns a cheap, value-copied snapshot of the race.
func (e *Engine) CurrentState() RaceState {
	cars := make([]CarSnapshot, len(e.entries))
	for i, en := range e.entries {
		cars[i] = e.snapshotOf(en)
	}

	leaderboard := make([]LeaderboardEntry, len(e.order))
	var leaderMetric, prevMetric float64
	for i, en := range e.order {
		metric := float64(en.lapsCompleted) + en.lapProgress
		if i == 0 {
			leaderMetric = metric
		}
		gapToLeaderSec, gapToNextSec := 0.0, 0.0
		if i > 0 && en.cachedLapTime > 0 {
			gapToLeaderSec = (leaderMetric - metric) * en.cachedLapTime
			gapToNextSec = (prevMetric - metric) * en.cachedLapTime
		}
		leaderboard[i] = LeaderboardEntry{
			DriverID:       en.driver.ID,
			Position:       en.position,
			LastLapTimeSec: en.cachedLapTime,
			GapToLeaderSec: gapToLeaderSec,
			GapToNextSec:   gapToNextSec,
			LapsLed:        en.lapsLed,
		}
		prevMetric = metric
	}

	leaderLastLap := 0.0
	if len(e.order) > 0 {
		leaderLastLap = e.order[0].cachedLapTime
	}

	return RaceState{
		Tick:             e.tick,
		RaceTimeSec:      e.raceTimeSec,
		CurrentLap:       e.leaderLapsCompleted() + 1,
		TotalLaps:        e.totalLaps,
		Status:           e.status,
		Cars:             cars,
		PlayerCar:        e.snapshotOf(e.player),
		Leaderboard:      leaderboard,
		LeaderLastLapSec: leaderLastLap,
		CautionFlag:      false,
		ActiveDecision:   e.activeDecision,
	}
}

func (e *Engine) snapshotOf(en *entry) CarSnapshot {
	speedMph := 0.0
	if en.cachedLapTime > 0 {
		speedMph = (e.track.LengthFeet() / en.cachedLapTime) * 3600 / feetPerMileEngine
	}
	return CarSnapshot{
		DriverID:       en.driver.ID,
		Position:       en.position,
		LapsCompleted:  en.lapsCompleted,
		LapProgress:    en.lapProgress,
		SpeedMph:       speedMph,
		TirePct:        en.car.TirePct,
		FuelPct:        en.car.FuelPct,
		DamagePct:      en.car.DamagePct,
		LastLapTimeSec: en.cachedLapTime,
		InPitThisLap:   en.car.InPitThisLap,
		LapsLed:        en.lapsLed,
		LapTimeStats:   physics.ComputeLapTimeStats(en.lapHistory),
	}
}

const feetPerMileEngine = 5280.0

func (e *Engine) leaderLapsCompleted() int {
	if len(e.order) == 0 {
		return 0
	}
	return e.order[0].lapsCompleted
}

// Abort transitions the engine from any state to Aborted and drops the
// active decision. Idempotent. Abort takes no lock, so calling it from
// another goroutine while SimulateTick is running is a data race.
func (e *Engine) Abort() error {
	if e.status == StatusAborted {
		return nil
	}
	e.status = StatusAborted
	e.activeDecision = nil
	if e.bus != nil {
		e.bus.Publish(eventbus.Event{Type: eventbus.EventRaceAborted, Lap: e.leaderLapsCompleted()})
	}
	return nil
}

// Subscribe registers observer on the engine's event bus.
func (e *Engine) Subscribe(observer eventbus.Observer) func() {
	return e.bus.Subscribe(observer)
}

// SubmitDecision resolves the active prompt with optionID. Valid only in
// AwaitingDecision; an unknown optionID leaves the active prompt in place
// per §7's InvalidDecisionChoice semantics.
func (e *Engine) SubmitDecision(optionID string) error {
	if e.status != StatusAwaitingDecision || e.activeDecision == nil {
		return invalidOp("NO_ACTIVE_DECISION", "SubmitDecision called with no active prompt")
	}
	result, _, ok := decision.Evaluate(e.activeDecision, optionID, e.player.driver.Skills, e.player.mental, e.rngSrc)
	if !ok {
		return raceerr.New(raceerr.KindInvalidDecisionChoice, "UNKNOWN_OPTION", fmt.Sprintf("option id %q is not present on decision %s", optionID, e.activeDecision.ID))
	}
	e.applyResultEffects(e.player, result, e.player.cachedLapTime)
	e.activeDecision = nil
	e.status = StatusRunning
	e.publishSnapshot()
	return nil
}

func (e *Engine) resolveWithDefault() {
	result := decision.DefaultResult(e.activeDecision)
	e.applyResultEffects(e.player, result, e.player.cachedLapTime)
	e.activeDecision = nil
	e.status = StatusRunning
}

// SimulateTick advances the race by dt_ms, implementing the six-step tick
// algorithm of §4.5.
func (e *Engine) SimulateTick(dtMs int) error {
	if e.status != StatusRunning && e.status != StatusAwaitingDecision {
		return invalidOp("ENGINE_NOT_RUNNING", "SimulateTick called while not Running or AwaitingDecision")
	}
	if dtMs <= 0 {
		return ErrInvalidTick
	}
	e.tick++

	// Step 1: a pending decision consumes this tick's time without
	// advancing simulated time.
	if e.status == StatusAwaitingDecision {
		e.activeTimerMs -= dtMs
		if e.activeTimerMs <= 0 {
			e.resolveWithDefault()
		}
		e.publishSnapshot()
		return nil
	}

	e.updateDraft()

	// Step 2: pure per-driver lap-time computation, parallel where the
	// cache is cold, joined before any serial mutation.
	lapTimes, err := e.computeLapTimes()
	if err != nil {
		return err
	}

	// Step 3: advance progress; handle lap crossings in ascending
	// lap-progress-at-crossing order.
	type crossing struct {
		en       *entry
		fraction float64
	}
	var crossings []crossing
	for i, en := range e.entries {
		lt := lapTimes[i]
		deltaProgress := (float64(dtMs) / 1000.0) / lt
		en.lapProgress += deltaProgress
		if en.lapProgress >= 1.0 {
			fraction := en.lapProgress - 1.0
			en.lapProgress = 1.0
			crossings = append(crossings, crossing{en: en, fraction: fraction})
		}
	}
	sort.SliceStable(crossings, func(a, b int) bool { return crossings[a].fraction < crossings[b].fraction })
	for _, c := range crossings {
		c.en.lapProgress = c.fraction
		c.en.lapsCompleted++
		e.applyLapCrossing(c.en, lapTimeOf(c.en, lapTimes, e.entries))
		e.bus.Publish(eventbus.Event{Type: eventbus.EventLapComplete, Lap: c.en.lapsCompleted, Payload: c.en.driver.ID})
	}

	// Step 4: recompute positions and gaps.
	if e.recomputeOrder() {
		e.bus.Publish(eventbus.Event{Type: eventbus.EventPositionChange, Lap: e.leaderLapsCompleted()})
	}

	// Step 5: consult the Decision Engine for the player only.
	if d, ok := e.playerDecisionEngine.ShouldTrigger(e.triggerContextFor(e.player)); ok {
		e.activeDecision = d
		e.activeTimerMs = d.TimeLimitMs
		e.status = StatusAwaitingDecision
		e.bus.Publish(eventbus.Event{Type: eventbus.EventDecisionPrompt, Lap: e.leaderLapsCompleted(), Payload: d})
		e.publishSnapshot()
		return nil
	}

	e.raceTimeSec += float64(dtMs) / 1000.0

	if e.leaderLapsCompleted() >= e.totalLaps {
		e.status = StatusFinished
		e.bus.Publish(eventbus.Event{Type: eventbus.EventRaceEnd, Lap: e.leaderLapsCompleted()})
	}

	// Step 6: publish the tick's snapshot.
	e.publishSnapshot()

	if err := e.checkInvariants(); err != nil {
		e.status = StatusAborted
		return err
	}
	return nil
}

// Poll is a non-blocking alias for SimulateTick, named for callers that
// drive the engine from their own tick source (a game loop, a test clock).
func (e *Engine) Poll(dtMs int) error {
	return e.SimulateTick(dtMs)
}

// Run blocks, calling SimulateTick(dtMs) in a loop until the race completes
// or ctx is cancelled. A cancelled context calls Abort before returning
// ctx.Err(). Run never calls SubmitDecision itself; an AwaitingDecision
// prompt that nobody answers simply counts down to its own default-option
// timeout inside SimulateTick. A caller that wants the player to answer
// prompts must watch CurrentState() or Subscribe events from another
// goroutine and call SubmitDecision before the timer expires.
func (e *Engine) Run(ctx context.Context, dtMs int) error {
	for !e.IsComplete() {
		select {
		case <-ctx.Done():
			_ = e.Abort()
			return ctx.Err()
		default:
		}
		if err := e.SimulateTick(dtMs); err != nil {
			return err
		}
	}
	return nil
}

func lapTimeOf(target *entry, lapTimes []float64, entries []*entry) float64 {
	for i, en := range entries {
		if en == target {
			return lapTimes[i]
		}
	}
	return minLapTimeSec
}

func (e *Engine) publishSnapshot() {
	e.bus.Publish(eventbus.Event{Type: eventbus.EventRaceStateUpdate, Lap: e.leaderLapsCompleted(), Payload: e.CurrentState()})
}

// computeLapTimes fills a fresh lap time for every entry whose cache is
// invalid, computing the pure base lap time in parallel (value copies only,
// per §5) and applying the stochastic jitter draw serially afterward, in
// stable entries order, to keep the PRNG draw sequence deterministic.
func (e *Engine) computeLapTimes() ([]float64, error) {
	base := make([]float64, len(e.entries))
	errs := make([]error, len(e.entries))

	var wg sync.WaitGroup
	for i, en := range e.entries {
		if en.lapTimeValid {
			continue
		}
		wg.Add(1)
		go func(i int, skills driver.Skills, mental driver.MentalState, carState car.State, draft bool) {
			defer wg.Done()
			lt, err := physics.LapTime(e.track, e.profile, physics.LapInputs{
				Skills:      skills,
				Mental:      mental,
				Car:         carState,
				DraftActive: draft,
			})
			if err != nil {
				errs[i] = err
				return
			}
			base[i] = lt
		}(i, en.driver.Skills, en.mental, en.car, en.draftActive)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	times := make([]float64, len(e.entries))
	for i, en := range e.entries {
		if !en.lapTimeValid {
			jitter := physics.LapVariance(en.driver.Skills.Get(driver.Consistency), e.rngSrc)
			lt := base[i] + jitter
			if lt < minLapTimeSec {
				lt = minLapTimeSec
			}
			en.cachedLapTime = lt
			en.lapTimeValid = true
			en.tireBucketAtCache = tireBucket(en.car.TirePct)
			en.mentalSumAtCache = mentalSignature(en.mental)
		}
		times[i] = en.cachedLapTime
	}
	return times, nil
}

// leadingConfidenceBonus, stuckInTrafficLaps/Frustration, and
// cleanLapStreakInterval/Relief implement §4.3's per-lap mental micro-events:
// leading, stuck-in-traffic, and clean-laps streak.
const (
	leadingConfidenceBonus          = 2.0
	stuckInTrafficLaps              = 3
	stuckInTrafficFrustration       = 10.0
	cleanLapStreakInterval          = 5
	cleanLapStreakFrustrationRelief = 3.0

	// highFrustrationThreshold/Factor implement §4.3's focus-drain term
	// "(1 − stamina/100) × 0.5 × (high_frust_factor)". The spec names
	// high_frust_factor without a formula; this engine reads it as an
	// amplifier once frustration crosses the same threshold already used
	// elsewhere (§4.7's critical-mental-state and mistake-probability
	// rules) for "elevated" frustration.
	highFrustrationThreshold = 60.0
	highFrustrationFactor    = 1.5
	baseFrustrationFactor    = 1.0
	focusDrainBaseRate       = 0.5
)

// applyLapCrossing applies per-lap wear, mental recovery, the per-lap mental
// micro-events, and the mistake roll for one driver that just crossed the
// line, then — for AI drivers — lets their controller act on its own
// trigger/outcome path without any UI round trip, per §4.6.
func (e *Engine) applyLapCrossing(en *entry, lapTimeJustRun float64) {
	en.car.ResetLapFlag()
	en.recordLap(lapTimeJustRun)

	wear := physics.TireWearPerLap(e.profile, en.driver.Skills.Get(driver.Aggression), en.driver.Skills.Get(driver.TireManagement))
	burn := physics.FuelBurnPerLap(e.profile, en.driver.Skills.Get(driver.FuelManagement), en.draftActive)
	en.car.ApplyLapWear(wear, burn)

	en.mental.RecoverTowardBaseline(en.driver.MentalBaseline, en.driver.Skills.Get(driver.Composure))

	mistake := physics.RollMistake(en.mental.Get(driver.MentalFocus), en.mental.Get(driver.Frustration), en.mental.Get(driver.Distraction), e.rngSrc)
	if mistake.Occurred {
		en.mental.Apply(driver.Frustration, mistake.FrustrationDelta)
		en.mental.Apply(driver.Confidence, mistake.ConfidenceDelta)
		en.car.ApplyDamage(mistake.DamageDelta)
		e.applyTimePenalty(en, mistake.TimePenaltySec, lapTimeJustRun)
		en.cleanLapStreak = 0
	} else {
		en.cleanLapStreak++
		if en.cleanLapStreak%cleanLapStreakInterval == 0 {
			en.mental.Apply(driver.Frustration, -cleanLapStreakFrustrationRelief)
		}
	}

	e.applyLapMicroEvents(en)

	// Every new lap starts from a freshly computed lap time and jitter draw.
	en.lapTimeValid = false

	if en.isAI && en.aiController != nil {
		if d, ok := en.aiController.ShouldTrigger(e.triggerContextFor(en)); ok {
			result := en.aiController.Resolve(d, en.driver.Skills, en.mental, e.rngSrc)
			e.applyResultEffects(en, result, lapTimeJustRun)
		}
	}
}

// applyLapMicroEvents applies the per-lap mental-state micro-events of §4.3
// that don't depend on a mistake roll or decision outcome: leading,
// focus-drain-per-lap (stamina-scaled), and stuck-in-traffic. Stuck-behind
// counting happens here, once per lap crossing, rather than in
// triggerContextFor, so it measures consecutive laps stuck — not ticks.
func (e *Engine) applyLapMicroEvents(en *entry) {
	if en.position == 1 {
		en.mental.Apply(driver.Confidence, leadingConfidenceBonus)
		en.lapsLed++
	}

	frustFactor := baseFrustrationFactor
	if en.mental.Get(driver.Frustration) > highFrustrationThreshold {
		frustFactor = highFrustrationFactor
	}
	staminaFraction := en.driver.Skills.Get(driver.Stamina) / 100.0
	focusDrain := (1 - staminaFraction) * focusDrainBaseRate * frustFactor
	en.mental.Apply(driver.MentalFocus, -focusDrain)

	e.updateStuckBehind(en)
	if en.lapsStuckBehind >= stuckInTrafficLaps {
		en.mental.Apply(driver.Frustration, stuckInTrafficFrustration)
	}
}

// updateStuckBehind counts consecutive laps en has finished directly behind
// a car on the same lap, using the order from before this tick's recompute —
// the same approximation carAhead's other callers use, since position for the
// lap just completed reflects the previous recompute. The count does not
// reset when the car ahead changes, so it is not tied to one particular car.
func (e *Engine) updateStuckBehind(en *entry) {
	ahead := e.carAhead(en)
	if ahead != nil && ahead.lapsCompleted == en.lapsCompleted && ahead.position == en.position-1 {
		en.lapsStuckBehind++
	} else {
		en.lapsStuckBehind = 0
	}
}

// applyTimePenalty realizes a time cost (seconds) as a lap-progress setback,
// since the engine exclusively owns lap-progress and nothing else writes it.
func (e *Engine) applyTimePenalty(en *entry, penaltySec, lapTimeJustRun float64) {
	if penaltySec <= 0 || lapTimeJustRun <= 0 {
		return
	}
	en.lapProgress -= penaltySec / lapTimeJustRun
	if en.lapProgress < 0 {
		en.lapProgress = 0
	}
}

// applyResultEffects folds a resolved decision.Result into en's owned state.
// PositionDelta and pit track-time cost are both realized as lap-progress
// setbacks/advances rather than direct position writes, since position is
// always derived from lap progress in recomputeOrder.
func (e *Engine) applyResultEffects(en *entry, result *decision.Result, lapTimeForConversion float64) {
	if result == nil {
		return
	}
	en.mental.Apply(driver.Confidence, result.ConfidenceDelta)
	en.mental.Apply(driver.Frustration, result.FrustrationDelta)
	en.mental.Apply(driver.MentalFocus, result.FocusDelta)
	en.mental.Apply(driver.Distraction, result.DistractionDelta)

	if result.AggressionDelta > 0 {
		en.driver.Skills.AwardXP(driver.Aggression, result.AggressionDelta)
	}
	for axis, amount := range result.XPAwards {
		en.driver.Skills.AwardXP(axis, amount)
	}
	if result.DamageDelta > 0 {
		en.car.ApplyDamage(result.DamageDelta)
	}
	if result.TireConserveDelta > 0 {
		en.car.TirePct = clampPct(en.car.TirePct + result.TireConserveDelta)
	}

	lt := lapTimeForConversion
	if lt <= 0 {
		lt = minLapTimeSec
	}

	if result.PitKind != nil {
		en.car.ApplyPit(*result.PitKind)
		e.applyTimePenalty(en, car.PitTrackTimeCost(*result.PitKind), lt)
		en.lapTimeValid = false
	}
	if result.PositionDelta > 0 {
		e.applyTimePenalty(en, float64(result.PositionDelta)*secPerPositionSwing, lt)
	} else if result.PositionDelta < 0 {
		en.lapProgress += float64(-result.PositionDelta) * secPerPositionSwing / lt
		if en.lapProgress >= 1.0 {
			en.lapProgress = math.Nextafter(1.0, 0)
		}
	}

	en.checkCacheInvalidation()
}

// recomputeOrder re-sorts e.order by (laps_completed, lap_progress)
// descending, ties broken by driver_id ascending, and assigns Position.
// Returns whether any driver's position changed.
func (e *Engine) recomputeOrder() bool {
	order := make([]*entry, len(e.entries))
	copy(order, e.entries)
	sort.SliceStable(order, func(a, b int) bool {
		ma := float64(order[a].lapsCompleted) + order[a].lapProgress
		mb := float64(order[b].lapsCompleted) + order[b].lapProgress
		if ma != mb {
			return ma > mb
		}
		return order[a].driver.ID < order[b].driver.ID
	})

	changed := false
	for i, en := range order {
		newPos := i + 1
		if en.position != newPos {
			changed = true
		}
		en.position = newPos
	}
	e.order = order
	return changed
}

// carAhead returns the entry directly ahead of en on track, or nil if en
// leads.
func (e *Engine) carAhead(en *entry) *entry {
	if en.position <= 1 {
		return nil
	}
	return e.order[en.position-2]
}

// draftGapThresholdSec is how close (in estimated track-time) a driver must
// be running behind the car ahead for the draft bonus to apply.
const draftGapThresholdSec = 0.75

// updateDraft sets each entry's draftActive flag from the previous tick's
// order and cached lap time, since the current tick's lap time has not been
// computed yet and itself depends on draftActive. A flip in draft state
// invalidates the lap-time cache so the next computeLapTimes call picks it
// up.
func (e *Engine) updateDraft() {
	for _, en := range e.entries {
		prev := en.draftActive
		active := false

		ahead := e.carAhead(en)
		if ahead != nil && en.cachedLapTime > 0 {
			gapMetric := (float64(ahead.lapsCompleted) + ahead.lapProgress) - (float64(en.lapsCompleted) + en.lapProgress)
			gapSec := gapMetric * en.cachedLapTime
			active = gapSec >= 0 && gapSec <= draftGapThresholdSec
		}

		en.draftActive = active
		if active != prev {
			en.lapTimeValid = false
		}
	}
}

// stintLaps estimates how many laps a fresh set of tires lasts under en's
// skills, for the LapsToNextPitWindow trigger signal.
func (e *Engine) stintLaps(en *entry) int {
	wear := physics.TireWearPerLap(e.profile, en.driver.Skills.Get(driver.Aggression), en.driver.Skills.Get(driver.TireManagement))
	if wear <= 0 {
		return e.totalLaps
	}
	return int(100.0 / wear)
}

// triggerContextFor assembles a decision.TriggerContext from en's current
// race-scoped state. Incident/caution detection is out of this module's
// scope (SPEC_FULL.md names no incident-generation formula), so
// IncidentAhead and CautionWindowOpening are always reported false; the
// fields remain on TriggerContext so a future collision/caution system has
// somewhere to plug in without changing the Decision Engine's contract.
func (e *Engine) triggerContextFor(en *entry) decision.TriggerContext {
	ctx := decision.TriggerContext{
		CurrentLap:          en.lapsCompleted,
		TirePct:             en.car.TirePct,
		FuelPct:             en.car.FuelPct,
		DamagePct:           en.car.DamagePct,
		Mental:              en.mental,
		LapsToNextPitWindow: e.stintLaps(en) - en.car.LapsSincePit,
		// StuckBehindLaps is read, never mutated, here: it's counted once per
		// lap crossing in updateStuckBehind, not once per tick, so it
		// measures consecutive laps stuck rather than ticks stuck.
		StuckBehindLaps: en.lapsStuckBehind,
		LapTimeStats:    physics.ComputeLapTimeStats(en.lapHistory),
	}

	ahead := e.carAhead(en)
	if ahead == nil {
		return ctx
	}

	if ahead.cachedLapTime > 0 && en.cachedLapTime > 0 {
		ctx.SpeedDifferential = (ahead.cachedLapTime - en.cachedLapTime) / en.cachedLapTime * 100
	}

	ref := e.track.SectionAt(en.lapProgress)
	ctx.PassingSectionReady = ref.Section.Kind == track.SectionStraight

	ctx.LappedCarBlocking = en.lapsCompleted > ahead.lapsCompleted

	return ctx
}

// checkInvariants asserts the post-step invariants of §7/§8: progress stays
// in [0,1), positions never exceed the field size, and no lap time is NaN.
func (e *Engine) checkInvariants() error {
	for _, en := range e.entries {
		if en.lapProgress < 0 || en.lapProgress >= 1.0 {
			return ErrInconsistentState
		}
		if en.position < 1 || en.position > len(e.entries) {
			return ErrInconsistentState
		}
		if math.IsNaN(en.cachedLapTime) {
			return ErrInconsistentState
		}
	}
	return nil
}
