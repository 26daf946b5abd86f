package problemgen

import (
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// RepairHints are prompt adjustments requested by the repair policy.
// They are the only part of a SkillContext that changes between attempts.
type RepairHints struct {
	// ForceBlankMarker asks for the _____ placeholder in the prompt text.
	ForceBlankMarker bool `json:"force_blank_marker,omitempty"`

	// ReinforceType restates the required question type and its answer shape.
	ReinforceType bool `json:"reinforce_type,omitempty"`

	// EmphasizeSkill asks for the skill's own words in the question or topic.
	EmphasizeSkill bool `json:"emphasize_skill,omitempty"`
}

// Any reports whether any hint is set.
func (h RepairHints) Any() bool {
	return h.ForceBlankMarker || h.ReinforceType || h.EmphasizeSkill
}

// merge returns the union of h and o.
func (h RepairHints) merge(o RepairHints) RepairHints {
	return RepairHints{
		ForceBlankMarker: h.ForceBlankMarker || o.ForceBlankMarker,
		ReinforceType:    h.ReinforceType || o.ReinforceType,
		EmphasizeSkill:   h.EmphasizeSkill || o.EmphasizeSkill,
	}
}

// SkillContext identifies the curriculum skill a question is generated for.
type SkillContext struct {
	Subject   string      `json:"subject"`
	SkillName string      `json:"skill_name"`
	SkillID   string      `json:"skill_id"`
	Hints     RepairHints `json:"hints,omitzero"`
}

// WithHints returns a copy of sc carrying h in addition to its current hints.
func (sc SkillContext) WithHints(h RepairHints) SkillContext {
	sc.Hints = sc.Hints.merge(h)
	return sc
}

// GenerateInput holds everything needed to produce one question.
type GenerateInput struct {
	// RunID tags LLM request events with the pipeline run.
	RunID string

	// Grade is the learner's grade token ("K", "3", "Grade 7").
	Grade string

	// Career is the learner's chosen persona, used to flavour the prompt.
	Career string

	Skill SkillContext

	// Type forces the question type. Empty means classify.
	Type questiontype.Tag

	// PriorQuestions are prompts already shown for this skill.
	PriorQuestions []string
}

// Outcome is the terminal result of a generation run.
type Outcome struct {
	// Candidate is ready for normalization. For template fallbacks it is the
	// template's example question.
	Candidate question.Candidate

	// Type is the classified (or forced) question type.
	Type questiontype.Tag

	Source question.Source
	State  State

	// Calls is the number of backend requests made.
	Calls int

	// Defects lists problems accepted in the final candidate: a patched
	// MISSING_ANSWER, or defects still present after the last retry.
	Defects DefectSet

	// Skill is the context of the last attempt, including accumulated hints.
	Skill SkillContext

	History []AttemptRecord
}
