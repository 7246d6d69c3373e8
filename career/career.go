// Package career persists a driver's progress across a season of races and
// sequences them through the race engine, folding results back into
// driver.CareerStats. Grounded on §3.1/§6's persisted-state schema: JSON,
// snake_case field names matching the data model throughout the rest of
// this module.
package career

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aspen-motorsports/racestrategy/ai"
	"github.com/aspen-motorsports/racestrategy/driver"
	"github.com/aspen-motorsports/racestrategy/race"
	"github.com/aspen-motorsports/racestrategy/raceerr"
	"github.com/aspen-motorsports/racestrategy/track"
)

// Profile is the logical persisted-state schema of §6: a driver, which
// season/race they're on, points accrued, unlocked tracks, the schedule in
// use, and the RNG seed each race is initialized with. No mid-race state is
// saved, so a loaded save resumes at the start of its next race.
type Profile struct {
	// SaveID identifies this save slot on disk; it has no bearing on race
	// determinism (RNGSeed alone governs that), so it's the one identifier
	// in this module generated with google/uuid rather than derived
	// deterministically.
	SaveID         string         `json:"save_id"`
	Driver         *driver.Driver `json:"driver"`
	Season         int            `json:"season"`
	RaceIndex      int            `json:"race_index"`
	Points         int            `json:"points"`
	UnlockedTracks []string       `json:"unlocked_tracks"`
	ScheduleID     string         `json:"schedule_id"`
	RNGSeed        uint64         `json:"rng_seed"`
}

// NewProfile starts a fresh career for d on scheduleID's first race.
func NewProfile(d *driver.Driver, scheduleID string, rngSeed uint64) *Profile {
	return &Profile{
		SaveID:     uuid.NewString(),
		Driver:     d,
		Season:     1,
		RaceIndex:  0,
		ScheduleID: scheduleID,
		RNGSeed:    rngSeed,
	}
}

// Save serializes p to JSON.
func (p *Profile) Save() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// LoadProfile deserializes a career.Profile previously produced by Save.
func LoadProfile(data []byte) (*Profile, error) {
	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, raceerr.New(raceerr.KindConfiguration, "CAREER_LOAD_FAILED", fmt.Sprintf("parsing career profile: %v", err))
	}
	return p, nil
}

// ScheduleEntry is one race on a SeasonSchedule.
type ScheduleEntry struct {
	TrackID string
	Laps    int
}

// SeasonSchedule is an ordered list of races plus the points table that
// converts a finishing position (and laps led) into championship points.
type SeasonSchedule struct {
	ID      string
	Entries []ScheduleEntry
}

// pointsTable is NASCAR-style: 1st pays the most, decreasing per position,
// with a flat bonus for leading at least one lap.
var pointsTable = []int{40, 35, 34, 33, 32, 31, 30, 29, 28, 27}

const lapsLedBonus = 1

// PointsFor returns the championship points earned for finishing at
// position (1-based) having led lapsLed laps.
func PointsFor(position, lapsLed int) int {
	points := 0
	if position >= 1 && position <= len(pointsTable) {
		points = pointsTable[position-1]
	}
	if lapsLed > 0 {
		points += lapsLedBonus
	}
	return points
}

// RaceResult is one schedule entry's outcome, folded into Profile by
// Sequencer.RunNext.
type RaceResult struct {
	TrackID        string
	FinishPosition int
	LapsLed        int
	PointsAwarded  int
}

// AIRosterEntry is one competitor the Sequencer fields alongside the
// career driver for a scheduled race.
type AIRosterEntry struct {
	Driver      *driver.Driver
	Personality ai.Personality
}

// Sequencer runs a Profile's SeasonSchedule one race at a time through the
// race engine, recording results back into the Profile and the driver's
// CareerStats.
type Sequencer struct {
	Schedule *SeasonSchedule
	Roster   []AIRosterEntry
}

// NewSequencer returns a Sequencer over schedule, fielding roster as the AI
// competition in every scheduled race.
func NewSequencer(schedule *SeasonSchedule, roster []AIRosterEntry) *Sequencer {
	return &Sequencer{Schedule: schedule, Roster: roster}
}

// IsSeasonComplete reports whether p has run every entry in s.Schedule.
func (s *Sequencer) IsSeasonComplete(p *Profile) bool {
	return p.RaceIndex >= len(s.Schedule.Entries)
}

// RunNext initializes and runs the race engine through p's next scheduled
// race to completion, folding the result into p and p.Driver.CareerStats.
// The caller supplies runToCompletion, a closure that drives the engine
// (e.g. *race.Engine.Run with a background context, or a test harness that
// resolves decisions with a fixed policy) since the season sequencer has no
// opinion on tick cadence or player-input handling.
func (s *Sequencer) RunNext(p *Profile, runToCompletion func(*race.Engine) error) (*RaceResult, error) {
	if s.IsSeasonComplete(p) {
		return nil, raceerr.New(raceerr.KindInvalidOperation, "SEASON_COMPLETE", "RunNext called with no scheduled races remaining")
	}
	entry := s.Schedule.Entries[p.RaceIndex]

	ctor, ok := track.Catalog[entry.TrackID]
	if !ok {
		return nil, raceerr.New(raceerr.KindConfiguration, "UNKNOWN_TRACK", fmt.Sprintf("schedule references unknown track id %q", entry.TrackID))
	}
	tr, err := ctor()
	if err != nil {
		return nil, raceerr.New(raceerr.KindConfiguration, "TRACK_BUILD_FAILED", fmt.Sprintf("building track %q: %v", entry.TrackID, err))
	}

	aiDrivers := make([]*driver.Driver, len(s.Roster))
	personalities := make(map[string]ai.Personality, len(s.Roster))
	for i, r := range s.Roster {
		aiDrivers[i] = r.Driver
		personalities[r.Driver.ID] = r.Personality
	}

	engine := race.New()
	cfg := race.Config{
		Track:           tr,
		Laps:            entry.Laps,
		PlayerDriver:    p.Driver,
		AIDrivers:       aiDrivers,
		AIPersonalities: personalities,
		RNGSeed:         p.RNGSeed,
	}
	if err := engine.Initialize(cfg); err != nil {
		return nil, err
	}
	if err := engine.Start(); err != nil {
		return nil, err
	}
	if err := runToCompletion(engine); err != nil {
		return nil, err
	}

	final := engine.CurrentState()
	result := &RaceResult{
		TrackID:        entry.TrackID,
		FinishPosition: final.PlayerCar.Position,
		LapsLed:        final.PlayerCar.LapsLed,
	}
	result.PointsAwarded = PointsFor(result.FinishPosition, result.LapsLed)

	const pole = false // starting-grid position isn't retained past Initialize
	p.Driver.CareerStats.RecordFinish(result.FinishPosition, result.LapsLed, pole)
	p.Points += result.PointsAwarded
	p.RaceIndex++

	return result, nil
}
