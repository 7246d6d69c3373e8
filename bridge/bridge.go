// Package bridge encodes race state and events into the exact wire shapes
// of the visualization bridge: line-delimited JSON written to any
// io.Writer. It never opens a socket — serving frames to a remote client is
// the caller's concern, grounded on the same separation the teacher drew
// between strategy.StrategyResponse (a plain value) and whatever transport
// carried it to a dashboard.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/aspen-motorsports/racestrategy/decision"
	"github.com/aspen-motorsports/racestrategy/eventbus"
	"github.com/aspen-motorsports/racestrategy/race"
)

// CarWire is one car entry inside a RaceStateUpdate frame.
type CarWire struct {
	ID            string  `json:"id"`
	Position      int     `json:"position"`
	LapProgress   float64 `json:"lapProgress"`
	Speed         float64 `json:"speed"`
	TireWear      float64 `json:"tireWear"`
	FuelRemaining float64 `json:"fuelRemaining"`
}

// LeaderboardWire is one row of a RaceStateUpdate's leaderboard.
type LeaderboardWire struct {
	ID             string  `json:"id"`
	Position       int     `json:"position"`
	GapToLeaderSec float64 `json:"gapToLeaderSec"`
}

// RaceStateUpdate is the §6 wire frame for a tick snapshot.
type RaceStateUpdate struct {
	Type        string            `json:"type"`
	Tick        int               `json:"tick"`
	RaceTime    float64           `json:"raceTime"`
	CurrentLap  int               `json:"currentLap"`
	TotalLaps   int               `json:"totalLaps"`
	Cars        []CarWire         `json:"cars"`
	PlayerCar   CarWire           `json:"playerCar"`
	Leaderboard []LeaderboardWire `json:"leaderboard"`
}

// OptionWire is one choice inside a DecisionPrompt frame.
type OptionWire struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	Risk           string   `json:"risk"`
	SkillsWeighted []string `json:"skillsWeighted"`
}

// DecisionPrompt is the §6 wire frame for an active decision.
type DecisionPrompt struct {
	Type            string         `json:"type"`
	ID              string         `json:"id"`
	Kind            string         `json:"kind"`
	Prompt          string         `json:"prompt"`
	Options         []OptionWire   `json:"options"`
	TimeLimitMs     int            `json:"timeLimitMs"`
	DefaultOptionID string         `json:"defaultOptionId"`
	Context         map[string]any `json:"context"`
}

// RaceEvent is the §6 wire frame for a discrete event (lap-complete,
// pit-in/out, position-change, caution, milestone).
type RaceEvent struct {
	Type    string `json:"type"`
	Lap     int    `json:"lap"`
	Payload any    `json:"payload,omitempty"`
}

// Encoder writes line-delimited JSON frames to w. The zero value is not
// usable; use NewEncoder.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing frames to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bridge: marshal frame: %w", err)
	}
	data = append(data, '\n')
	_, err = e.w.Write(data)
	return err
}

func carWireOf(c race.CarSnapshot) CarWire {
	return CarWire{
		ID:            c.DriverID,
		Position:      c.Position,
		LapProgress:   c.LapProgress,
		Speed:         c.SpeedMph,
		TireWear:      100 - c.TirePct,
		FuelRemaining: c.FuelPct,
	}
}

// EncodeRaceState writes a RaceStateUpdate frame for state.
func (e *Encoder) EncodeRaceState(state race.RaceState) error {
	cars := lo.Map(state.Cars, func(c race.CarSnapshot, _ int) CarWire { return carWireOf(c) })
	leaderboard := lo.Map(state.Leaderboard, func(l race.LeaderboardEntry, _ int) LeaderboardWire {
		return LeaderboardWire{ID: l.DriverID, Position: l.Position, GapToLeaderSec: l.GapToLeaderSec}
	})
	return e.writeLine(RaceStateUpdate{
		Type:        "raceStateUpdate",
		Tick:        state.Tick,
		RaceTime:    state.RaceTimeSec,
		CurrentLap:  state.CurrentLap,
		TotalLaps:   state.TotalLaps,
		Cars:        cars,
		PlayerCar:   carWireOf(state.PlayerCar),
		Leaderboard: leaderboard,
	})
}

func riskString(r decision.Risk) string {
	switch r {
	case decision.RiskMedium:
		return "medium"
	case decision.RiskHigh:
		return "high"
	default:
		return "low"
	}
}

// EncodeDecisionPrompt writes a DecisionPrompt frame for d.
func (e *Encoder) EncodeDecisionPrompt(d *decision.Decision) error {
	options := make([]OptionWire, len(d.Options))
	for i, o := range d.Options {
		weighted := make([]string, len(o.SkillsWeighted))
		for j, axis := range o.SkillsWeighted {
			weighted[j] = axis.String()
		}
		options[i] = OptionWire{
			ID:             o.ID,
			Label:          o.Label,
			Description:    o.Description,
			Risk:           riskString(o.Risk),
			SkillsWeighted: weighted,
		}
	}
	return e.writeLine(DecisionPrompt{
		Type:            "decisionPrompt",
		ID:              d.ID,
		Kind:            d.Kind.String(),
		Prompt:          d.Prompt,
		Options:         options,
		TimeLimitMs:     d.TimeLimitMs,
		DefaultOptionID: d.DefaultOptionID,
		Context:         d.Context,
	})
}

func eventTypeString(t eventbus.EventType) string {
	switch t {
	case eventbus.EventLapComplete:
		return "lapComplete"
	case eventbus.EventPositionChange:
		return "positionChange"
	case eventbus.EventDecisionPrompt:
		return "decisionPrompt"
	case eventbus.EventRaceStateUpdate:
		return "raceStateUpdate"
	case eventbus.EventRaceEnd:
		return "raceEnd"
	case eventbus.EventRaceAborted:
		return "raceAborted"
	case eventbus.EventPitStop:
		return "pitStop"
	case eventbus.EventCaution:
		return "caution"
	case eventbus.EventMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

// EncodeEvent writes a RaceEvent frame for ev. Events carrying a RaceState
// or *decision.Decision payload are encoded via EncodeRaceState/
// EncodeDecisionPrompt instead by Relay; EncodeEvent is for the remaining
// discrete events (lap-complete, pit-in/out, position-change, caution,
// milestone) whose payload is already wire-safe.
func (e *Encoder) EncodeEvent(ev eventbus.Event) error {
	return e.writeLine(RaceEvent{
		Type:    eventTypeString(ev.Type),
		Lap:     ev.Lap,
		Payload: ev.Payload,
	})
}

// Relay implements eventbus.Observer, encoding every published event to its
// matching wire frame. Connect/Disconnect/IsConnected track only whether
// the bridge is willing to accept Notify calls; the underlying io.Writer's
// lifecycle (opening/closing a file or socket) is the caller's
// responsibility.
type Relay struct {
	enc       *Encoder
	connected bool
}

// NewRelay returns a Relay writing to w.
func NewRelay(w io.Writer) *Relay {
	return &Relay{enc: NewEncoder(w)}
}

func (r *Relay) Connect(_ context.Context) error {
	r.connected = true
	return nil
}

func (r *Relay) Disconnect() error {
	r.connected = false
	return nil
}

func (r *Relay) IsConnected() bool {
	return r.connected
}

// Notify encodes ev to its wire frame. Errors are swallowed here since
// eventbus.Observer.Notify has no error return; a Relay that wants to
// surface encode failures should wrap its io.Writer with one that records
// them.
func (r *Relay) Notify(ev eventbus.Event) {
	if !r.connected {
		return
	}
	switch ev.Type {
	case eventbus.EventRaceStateUpdate:
		if state, ok := ev.Payload.(race.RaceState); ok {
			_ = r.enc.EncodeRaceState(state)
			return
		}
	case eventbus.EventDecisionPrompt:
		if d, ok := ev.Payload.(*decision.Decision); ok {
			_ = r.enc.EncodeDecisionPrompt(d)
			return
		}
	}
	_ = r.enc.EncodeEvent(ev)
}
