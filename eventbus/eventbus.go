// Package eventbus is the race engine's broadcast channel to any number of
// observers. Internally it mirrors the teacher's three-priority polling
// channel design (sims.DataPollingSystem's DataPriorityHigh/Medium/Low), but
// inverted: the engine is the data source pushing events out, not a
// simulator-telemetry consumer pulling them in.
package eventbus

import (
	"context"
	"time"
)

// Priority buckets an event by how much delivery matters. Grounded on
// sims.DataPriority, re-themed from polling-rate buckets to
// cannot-be-dropped-ness.
type Priority int

const (
	// PriorityHigh covers LapComplete/DecisionPrompt/RaceEnd: must never be
	// dropped. Publish blocks on a full channel up to a bounded timeout.
	PriorityHigh Priority = iota
	// PriorityMedium covers PositionChange/RaceStateUpdate snapshots.
	PriorityMedium
	// PriorityLow covers cosmetic/diagnostic events: stddev telemetry,
	// cache-hit stats. Dropped silently under backpressure.
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// EventType enumerates the discrete RaceEvent kinds of §6.
type EventType int

const (
	EventLapComplete EventType = iota
	EventPositionChange
	EventDecisionPrompt
	EventRaceStateUpdate
	EventRaceEnd
	EventRaceAborted
	EventPitStop
	EventCaution
	EventMilestone
)

func (t EventType) String() string {
	switch t {
	case EventLapComplete:
		return "lap_complete"
	case EventPositionChange:
		return "position_change"
	case EventDecisionPrompt:
		return "decision_prompt"
	case EventRaceStateUpdate:
		return "race_state_update"
	case EventRaceEnd:
		return "race_end"
	case EventRaceAborted:
		return "race_aborted"
	case EventPitStop:
		return "pit_stop"
	case EventCaution:
		return "caution"
	case EventMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

func (t EventType) priority() Priority {
	switch t {
	case EventLapComplete, EventDecisionPrompt, EventRaceEnd, EventRaceAborted:
		return PriorityHigh
	case EventPositionChange, EventRaceStateUpdate:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Event is one discrete occurrence published on the bus. Payload carries
// type-specific data (a RaceState snapshot, a lap number, a decision prompt);
// observers type-assert it based on Type.
type Event struct {
	Type    EventType
	Lap     int
	Payload any
}

// Observer is the subscriber contract, grounded on the teacher's
// SimulatorConnector lifecycle shape (Connect/Disconnect/IsConnected) but
// stripped of anything simulator-specific: no GetSimulatorType, no telemetry
// polling. Observers must not mutate anything reachable from an Event; they
// only read.
type Observer interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	Notify(ev Event)
}

// highSendTimeout bounds how long a PriorityHigh publish blocks on a full
// subscriber channel before giving up on that one subscriber for this event.
const highSendTimeout = 250 * time.Millisecond

const bufferSize = 32

// subscription wraps one Observer with its own buffered delivery channel and
// a dedicated pump goroutine so a slow observer never blocks Publish for
// every other subscriber.
type subscription struct {
	observer Observer
	ch       chan Event
	done     chan struct{}
}

// Bus is the engine's event broadcaster. The zero value is not usable; use
// New.
type Bus struct {
	subs []*subscription
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers observer and starts its delivery pump. The returned
// func unsubscribes and stops the pump; calling it more than once is a
// no-op.
func (b *Bus) Subscribe(observer Observer) (unsubscribe func()) {
	sub := &subscription{
		observer: observer,
		ch:       make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}
	b.subs = append(b.subs, sub)
	go sub.pump()

	var once bool
	return func() {
		if once {
			return
		}
		once = true
		b.remove(sub)
		close(sub.done)
	}
}

func (b *Bus) remove(target *subscription) {
	out := b.subs[:0]
	for _, s := range b.subs {
		if s != target {
			out = append(out, s)
		}
	}
	b.subs = out
}

func (s *subscription) pump() {
	for {
		select {
		case ev := <-s.ch:
			s.observer.Notify(ev)
		case <-s.done:
			return
		}
	}
}

// Publish delivers ev to every current subscriber according to its type's
// priority. PriorityHigh blocks each subscriber's channel up to
// highSendTimeout rather than risk dropping a lap-complete or decision
// prompt; PriorityMedium and PriorityLow drop silently on a full channel
// rather than stall the tick loop.
func (b *Bus) Publish(ev Event) {
	priority := ev.Type.priority()
	for _, s := range b.subs {
		switch priority {
		case PriorityHigh:
			select {
			case s.ch <- ev:
			case <-time.After(highSendTimeout):
			}
		default:
			select {
			case s.ch <- ev:
			default:
			}
		}
	}
}

// SubscriberCount reports how many observers are currently attached.
func (b *Bus) SubscriberCount() int {
	return len(b.subs)
}
