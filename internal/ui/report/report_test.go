package report

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/questgen/internal/answer"
	"github.com/abhisek/questgen/internal/pipeline"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

func TestRender_Success(t *testing.T) {
	res := &pipeline.Result{
		RunID:    "run-1",
		Success:  true,
		Attempts: 2,
		Source:   question.SourceGenerated,
		Defects:  []string{"MISSING_ANSWER"},
		Stages: pipeline.Stages{
			UserSelection: true, SkillContext: true, AIGeneration: true, ContentConversion: true,
			RenderData: true, AnswerValidation: true, Feedback: true,
		},
		Question: &question.Question{
			Type:          questiontype.MultipleChoice,
			Prompt:        "Which number is the largest?",
			Grade:         "5",
			Options:       []string{"-7", "3"},
			CorrectAnswer: question.Int(1),
		},
		Validation: &answer.Result{IsCorrect: true, CorrectAnswerDisplay: "3"},
		Feedback:   "Perfect calculation! You correctly answered: 3",
	}

	out := ansi.Strip(Render(res, true))
	assert.Contains(t, out, "questgen run run-1")
	assert.Contains(t, out, "✓ AI generation")
	assert.Contains(t, out, "Which number is the largest?")
	assert.Contains(t, out, "A) -7")
	assert.Contains(t, out, "B) 3")
	assert.Contains(t, out, "Answer: 1")
	assert.Contains(t, out, "MISSING_ANSWER")
	assert.Contains(t, out, "Correct")
	assert.Contains(t, out, "Perfect calculation!")
	assert.Contains(t, out, "SUCCESS")
}

func TestRender_Failure(t *testing.T) {
	res := &pipeline.Result{
		RunID: "run-2",
		Error: "Invalid user selection",
	}

	out := ansi.Strip(Render(res, false))
	assert.Contains(t, out, "✗ user selection")
	assert.Contains(t, out, "Invalid user selection")
	assert.Contains(t, out, "FAILED")
	assert.NotContains(t, out, "Answer:")
}

func TestRender_HidesAnswerByDefault(t *testing.T) {
	res := &pipeline.Result{
		Success: true,
		Question: &question.Question{
			Type:          questiontype.FillBlank,
			Prompt:        "The sun rises in the _____.",
			CorrectAnswer: question.Text("east"),
		},
	}
	out := ansi.Strip(Render(res, false))
	assert.NotContains(t, out, "east")
}
