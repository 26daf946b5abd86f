package problemgen

import (
	"time"

	"github.com/abhisek/questgen/internal/questiontype"
)

// State is a step of the generation state machine.
type State string

const (
	StateClassifying      State = "CLASSIFYING"
	StatePrompting        State = "PROMPTING"
	StateAwaitingResponse State = "AWAITING_RESPONSE"
	StateParsing          State = "PARSING"
	StateDetecting        State = "DETECTING"
	StateRepairing        State = "REPAIRING"
	StateNormalizing      State = "NORMALIZING"
	StateFallback         State = "FALLBACK"
	StateFailed           State = "FAILED"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateNormalizing || s == StateFallback || s == StateFailed
}

// AttemptRecord is the history entry for one backend call.
type AttemptRecord struct {
	Attempt int              `json:"attempt"`
	Type    questiontype.Tag `json:"type"`
	Hints   RepairHints      `json:"hints,omitzero"`

	// Trail lists the states visited during the attempt, ending with the
	// state the attempt handed over to.
	Trail []State `json:"trail"`

	Defects DefectSet     `json:"defects,omitempty"`
	Error   string        `json:"error,omitempty"`
	Action  Action        `json:"action"`
	Reason  string        `json:"reason,omitempty"`
	Latency time.Duration `json:"latency"`
}

// Final returns the last state of the attempt.
func (r AttemptRecord) Final() State {
	if len(r.Trail) == 0 {
		return ""
	}
	return r.Trail[len(r.Trail)-1]
}
