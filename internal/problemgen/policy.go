package problemgen

import "fmt"

// Action is the repair policy's verdict for one attempt.
type Action string

const (
	// ActionAccept hands the candidate to normalization as is.
	ActionAccept Action = "accept"
	// ActionPatch fills a missing answer with a placeholder, then accepts.
	ActionPatch Action = "patch"
	// ActionRetry calls the backend again with Decision.Context.
	ActionRetry Action = "retry"
	// ActionFallback ends generation with the template for the type.
	ActionFallback Action = "fallback"
	// ActionGiveUp ends generation with an error.
	ActionGiveUp Action = "give_up"
)

// Decision is what the orchestrator does next.
type Decision struct {
	Action  Action
	Context SkillContext
	Reason  string
}

// RepairPolicy maps defects to actions. It is a pure function of its
// inputs so every path can be tested without a backend.
type RepairPolicy struct {
	// MaxRetries is the number of retries allowed after attempt 0.
	MaxRetries int

	// Fallback allows template fallback; without it exhausted runs give up.
	Fallback bool
}

// DefaultPolicy allows 3 retries and template fallback.
func DefaultPolicy() RepairPolicy {
	return RepairPolicy{MaxRetries: 3, Fallback: true}
}

// repairs maps each blocking defect to the hint that addresses it.
var repairs = map[DefectCode]RepairHints{
	MissingBlankMarker: {ForceBlankMarker: true},
	TypeMisclassified:  {ReinforceType: true},
	SkillIrrelevant:    {EmphasizeSkill: true},
}

// Decide chooses the action for a parsed attempt.
func (p RepairPolicy) Decide(defects DefectSet, attempt int, sc SkillContext) Decision {
	last := attempt >= p.MaxRetries

	if defects.Has(ParseError) {
		if !last {
			return Decision{Action: ActionRetry, Context: sc, Reason: "unparsable response"}
		}
		return p.exhausted(sc, "unparsable response on final attempt")
	}

	blocking := defects.Blocking()
	if len(blocking) > 0 {
		if !last {
			next := sc
			for _, d := range blocking {
				next = next.WithHints(repairs[d])
			}
			return Decision{Action: ActionRetry, Context: next, Reason: "repair " + blocking.String()}
		}
		// A fill_blank question without its marker cannot be shown.
		if blocking.Has(MissingBlankMarker) {
			return p.exhausted(sc, "blank marker still missing on final attempt")
		}
		return Decision{Action: ActionAccept, Context: sc, Reason: fmt.Sprintf("accepting %s on final attempt", blocking)}
	}

	if defects.Has(MissingAnswer) {
		return Decision{Action: ActionPatch, Context: sc, Reason: "placeholder answer"}
	}
	return Decision{Action: ActionAccept, Context: sc}
}

// BackendFailure chooses the action after a failed backend call. The
// context is reused unchanged.
func (p RepairPolicy) BackendFailure(attempt int, sc SkillContext) Decision {
	if attempt < p.MaxRetries {
		return Decision{Action: ActionRetry, Context: sc, Reason: "backend failure"}
	}
	return p.exhausted(sc, "backend failure on final attempt")
}

func (p RepairPolicy) exhausted(sc SkillContext, reason string) Decision {
	if p.Fallback {
		return Decision{Action: ActionFallback, Context: sc, Reason: reason}
	}
	return Decision{Action: ActionGiveUp, Context: sc, Reason: reason}
}
