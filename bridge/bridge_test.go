package bridge

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aspen-motorsports/racestrategy/decision"
	"github.com/aspen-motorsports/racestrategy/eventbus"
	"github.com/aspen-motorsports/racestrategy/race"
)

func TestEncodeRaceStateProducesExpectedFields(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	state := race.RaceState{
		Tick:       42,
		CurrentLap: 3,
		TotalLaps:  10,
		Cars: []race.CarSnapshot{
			{DriverID: "player-1", Position: 1, LapProgress: 0.5, SpeedMph: 120, TirePct: 80, FuelPct: 60},
		},
		PlayerCar:   race.CarSnapshot{DriverID: "player-1", Position: 1},
		Leaderboard: []race.LeaderboardEntry{{DriverID: "player-1", Position: 1}},
	}

	if err := enc.EncodeRaceState(state); err != nil {
		t.Fatalf("EncodeRaceState: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if decoded["type"] != "raceStateUpdate" {
		t.Fatalf("expected type raceStateUpdate, got %v", decoded["type"])
	}
	if decoded["currentLap"].(float64) != 3 {
		t.Fatalf("expected currentLap 3, got %v", decoded["currentLap"])
	}
	cars, ok := decoded["cars"].([]any)
	if !ok || len(cars) != 1 {
		t.Fatalf("expected one car, got %v", decoded["cars"])
	}
	car := cars[0].(map[string]any)
	if car["tireWear"].(float64) != 20 {
		t.Fatalf("expected tireWear 20 (100 - tirePct 80), got %v", car["tireWear"])
	}
}

func TestEncodeDecisionPromptProducesExpectedFields(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	d := &decision.Decision{
		ID:              "d1",
		Kind:            decision.KindPassing,
		Prompt:          "Go for the pass?",
		DefaultOptionID: "hold",
		TimeLimitMs:     8000,
		Options: []decision.Option{
			{ID: "hold", Label: "Hold line", Risk: decision.RiskLow},
			{ID: "go", Label: "Go for it", Risk: decision.RiskHigh},
		},
	}

	if err := enc.EncodeDecisionPrompt(d); err != nil {
		t.Fatalf("EncodeDecisionPrompt: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if decoded["type"] != "decisionPrompt" {
		t.Fatalf("expected type decisionPrompt, got %v", decoded["type"])
	}
	options := decoded["options"].([]any)
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
	if options[1].(map[string]any)["risk"] != "high" {
		t.Fatalf("expected second option risk high, got %v", options[1])
	}
}

func TestRelayIgnoresNotifyWhenDisconnected(t *testing.T) {
	var buf bytes.Buffer
	relay := NewRelay(&buf)

	relay.Notify(eventbus.Event{Type: eventbus.EventLapComplete, Lap: 1})
	if buf.Len() != 0 {
		t.Fatalf("expected no output while disconnected, got %q", buf.String())
	}

	if err := relay.Connect(nil); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !relay.IsConnected() {
		t.Fatal("expected IsConnected true after Connect")
	}

	relay.Notify(eventbus.Event{Type: eventbus.EventLapComplete, Lap: 1, Payload: "player-1"})
	if buf.Len() == 0 {
		t.Fatal("expected a frame written after Connect")
	}

	if err := relay.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if relay.IsConnected() {
		t.Fatal("expected IsConnected false after Disconnect")
	}
}

func TestRelayRoutesRaceStateAndDecisionPayloadsToTheirEncoders(t *testing.T) {
	var buf bytes.Buffer
	relay := NewRelay(&buf)
	_ = relay.Connect(nil)

	relay.Notify(eventbus.Event{
		Type:    eventbus.EventRaceStateUpdate,
		Payload: race.RaceState{Tick: 1},
	})
	relay.Notify(eventbus.Event{
		Type: eventbus.EventDecisionPrompt,
		Payload: &decision.Decision{
			ID:   "d2",
			Kind: decision.KindTireManagement,
		},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 frames, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "raceStateUpdate") {
		t.Fatalf("expected first frame to be raceStateUpdate, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "decisionPrompt") {
		t.Fatalf("expected second frame to be decisionPrompt, got %q", lines[1])
	}
}
