package race

import (
	"github.com/aspen-motorsports/racestrategy/decision"
	"github.com/aspen-motorsports/racestrategy/physics"
)

// Status enumerates the engine FSM states of §4.5:
// Uninitialized → Ready → Running ⇄ AwaitingDecision → Finished, with
// Aborted reachable from any state and terminal.
type Status int

const (
	StatusUninitialized Status = iota
	StatusReady
	StatusRunning
	StatusAwaitingDecision
	StatusFinished
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusAwaitingDecision:
		return "awaiting_decision"
	case StatusFinished:
		return "finished"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// CarSnapshot is a value-copied, read-only view of one driver's race state
// for a single tick, safe to hand to observers since nothing in it aliases
// engine-owned memory.
type CarSnapshot struct {
	DriverID       string
	Position       int
	LapsCompleted  int
	LapProgress    float64
	SpeedMph       float64
	TirePct        float64
	FuelPct        float64
	DamagePct      float64
	LastLapTimeSec float64
	InPitThisLap   bool
	LapsLed        int
	LapTimeStats   physics.LapTimeStats
}

// LeaderboardEntry is one row of the ordered standings, mirroring §3's
// positions[] schema (driver_id, position, last_lap_time, gap_to_leader,
// gap_to_next, laps_led).
type LeaderboardEntry struct {
	DriverID       string
	Position       int
	LastLapTimeSec float64
	GapToLeaderSec float64
	GapToNextSec   float64
	LapsLed        int
}

// RaceState is the cheap snapshot returned by CurrentState() and published
// on the event bus: the exact shape the bridge package's Encoder maps onto
// the wire RaceStateUpdate JSON of §6.
type RaceState struct {
	Tick        int
	RaceTimeSec float64
	CurrentLap  int
	TotalLaps   int
	Status      Status

	Cars        []CarSnapshot
	PlayerCar   CarSnapshot
	Leaderboard []LeaderboardEntry

	// LeaderLastLapSec is the current race leader's most recently completed
	// lap time.
	LeaderLastLapSec float64

	// CautionFlag always reports false: this engine has no incident/caution
	// generation model (see triggerContextFor's IncidentAhead/
	// CautionWindowOpening scope note). The field is still surfaced so a
	// future caution system has an established place to report into without
	// changing RaceState's shape.
	CautionFlag bool

	ActiveDecision *decision.Decision
}
