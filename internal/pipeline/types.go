// Package pipeline sequences classification, generation, normalization,
// answer validation and feedback into one observable run.
package pipeline

import (
	"github.com/abhisek/questgen/internal/answer"
	"github.com/abhisek/questgen/internal/problemgen"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// UserSelection is the learner's grade and career persona.
type UserSelection struct {
	GradeLevel string `json:"grade_level"`
	Career     string `json:"career"`
}

// Request is the input of one pipeline run.
type Request struct {
	Selection UserSelection           `json:"selection"`
	Skill     problemgen.SkillContext `json:"skill"`

	// Answer is the learner's submission. Nil skips answer validation
	// and feedback.
	Answer *question.Value `json:"answer,omitempty"`

	// ForceType skips classification when set.
	ForceType questiontype.Tag `json:"force_type,omitempty"`

	// PriorQuestions are prompts already shown for this skill.
	PriorQuestions []string `json:"prior_questions,omitempty"`
}

// Stages records which stages reached their postcondition.
type Stages struct {
	UserSelection     bool `json:"user_selection"`
	SkillContext      bool `json:"skill_context"`
	AIGeneration      bool `json:"ai_generation"`
	ContentConversion bool `json:"content_conversion"`
	RenderData        bool `json:"render_data"`
	AnswerValidation  bool `json:"answer_validation"`
	Feedback          bool `json:"feedback"`
}

// mandatory reports whether the five generation and rendering stages all
// succeeded.
func (s Stages) mandatory() bool {
	return s.UserSelection && s.SkillContext && s.AIGeneration && s.ContentConversion && s.RenderData
}

// Result is the outcome of one run. Failures never escape as errors; they
// set Error and leave the remaining stage flags false.
type Result struct {
	RunID      string             `json:"run_id"`
	Success    bool               `json:"success"`
	Question   *question.Question `json:"question,omitempty"`
	RenderData *RenderData        `json:"render_data,omitempty"`
	Validation *answer.Result     `json:"validation_result,omitempty"`
	Feedback   string             `json:"feedback,omitempty"`
	Error      string             `json:"error,omitempty"`
	Stages     Stages             `json:"stages"`

	// Attempts is the number of backend calls made.
	Attempts int             `json:"attempts"`
	Source   question.Source `json:"source,omitempty"`

	// Defects lists defects accepted in the final question.
	Defects []string `json:"defects,omitempty"`

	History []problemgen.AttemptRecord `json:"history,omitempty"`
}

// InputError reports a missing required selection or skill field. It is
// never retried.
type InputError struct {
	Message string
	Fields  []string
}

func (e *InputError) Error() string { return e.Message }
