// Package raceerr defines the engine's error taxonomy. Every error the engine
// returns to a caller is a classified *RaceError so clients can branch on
// Kind instead of parsing messages; it is grounded on the classified-error
// shape of the reference codebase's strategy.StrategyError.
package raceerr

import (
	"fmt"
	"time"
)

// Kind enumerates the error taxonomy of §7.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration covers invalid track geometry, field size out of
	// range, duplicate driver IDs, invalid skill ranges. Fatal at
	// Initialize; surfaced to the caller.
	KindConfiguration
	// KindInvalidOperation covers SimulateTick on an uninitialized engine,
	// SubmitDecision with no active prompt, and similar programmer errors.
	// State is left unchanged.
	KindInvalidOperation
	// KindInvariantViolation covers post-step assertion failures: progress
	// out of [0,1), positions exceeding field size, NaN lap times.
	// Non-recoverable; the race aborts.
	KindInvariantViolation
	// KindInvalidDecisionChoice covers an option_id not present on the
	// active prompt. The active prompt remains.
	KindInvalidDecisionChoice
	// KindTransientAIFault covers an AI controller producing an invalid
	// internal choice. Locally recovered by substituting the low-risk
	// default; logged, not fatal.
	KindTransientAIFault
	// KindInvalidInput covers pure physics functions fed NaN, negative
	// lengths, or out-of-range skill/mental-state scalars.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindInvariantViolation:
		return "invariant_violation"
	case KindInvalidDecisionChoice:
		return "invalid_decision_choice"
	case KindTransientAIFault:
		return "transient_ai_fault"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Fatal reports whether a Kind requires the race to transition to Aborted.
// Only InvariantViolation is fail-fast per §7.
func (k Kind) Fatal() bool {
	return k == KindInvariantViolation
}

// RaceError is the engine's single error type. Code is a short machine-
// readable identifier distinct from Kind (e.g. "DUPLICATE_DRIVER_ID" under
// KindConfiguration); Context carries structured diagnostic fields.
type RaceError struct {
	Kind      Kind
	Code      string
	Message   string
	Cause     error
	Context   map[string]any
	Timestamp time.Time
}

func (e *RaceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *RaceError) Unwrap() error {
	return e.Cause
}

// New constructs a RaceError with the given kind/code/message.
func New(kind Kind, code, message string) *RaceError {
	return &RaceError{Kind: kind, Code: code, Message: message, Timestamp: time.Now()}
}

// Wrap constructs a RaceError that chains an underlying cause.
func Wrap(kind Kind, code, message string, cause error) *RaceError {
	return &RaceError{Kind: kind, Code: code, Message: message, Cause: cause, Timestamp: time.Now()}
}

// WithContext attaches structured diagnostic fields and returns the receiver
// for chaining at the construction site.
func (e *RaceError) WithContext(ctx map[string]any) *RaceError {
	e.Context = ctx
	return e
}

// Reporter accumulates a bounded history of errors for diagnostics, mirroring
// the reference codebase's ErrorReporter. Used chiefly to surface
// TransientAIFault occurrences without making them fatal.
type Reporter struct {
	counts     map[Kind]int
	recent     []*RaceError
	maxHistory int
}

// NewReporter creates a Reporter retaining at most maxHistory errors.
func NewReporter(maxHistory int) *Reporter {
	if maxHistory <= 0 {
		maxHistory = 50
	}
	return &Reporter{
		counts:     make(map[Kind]int),
		recent:     make([]*RaceError, 0, maxHistory),
		maxHistory: maxHistory,
	}
}

// Report records err for later inspection. A nil err is a no-op.
func (r *Reporter) Report(err *RaceError) {
	if err == nil {
		return
	}
	r.counts[err.Kind]++
	r.recent = append(r.recent, err)
	if len(r.recent) > r.maxHistory {
		r.recent = r.recent[1:]
	}
}

// Counts returns a copy of the per-kind error tally.
func (r *Reporter) Counts() map[Kind]int {
	out := make(map[Kind]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Recent returns up to limit of the most recently reported errors, oldest
// first. limit<=0 or limit beyond history returns the full history.
func (r *Reporter) Recent(limit int) []*RaceError {
	if limit <= 0 || limit > len(r.recent) {
		limit = len(r.recent)
	}
	start := len(r.recent) - limit
	out := make([]*RaceError, limit)
	copy(out, r.recent[start:])
	return out
}
