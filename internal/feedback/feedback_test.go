package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/questgen/internal/answer"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

func mcQuestion() *question.Question {
	return &question.Question{
		Type:          questiontype.MultipleChoice,
		Prompt:        "Which number is the largest?",
		Options:       []string{"-7", "3", "-1", "0"},
		CorrectAnswer: question.Int(1),
	}
}

func TestCompose_CorrectEngineer(t *testing.T) {
	got := Compose(mcQuestion(), question.Int(1), answer.Result{IsCorrect: true, CorrectAnswerDisplay: "3"}, "Engineer")
	assert.True(t, strings.HasPrefix(got, "Perfect calculation!"), got)
	assert.True(t, strings.HasSuffix(got, " You correctly answered: 3"), got)
}

func TestCompose_CorrectUnknownCareer(t *testing.T) {
	got := Compose(mcQuestion(), question.Text("3"), answer.Result{IsCorrect: true}, "Beekeeper")
	assert.Equal(t, "Great job! You correctly answered: 3", got)
}

func TestCompose_Incorrect(t *testing.T) {
	tests := []struct {
		typ     questiontype.Tag
		display string
		want    string
	}{
		{questiontype.MultipleChoice, "3", "The correct answer is 3."},
		{questiontype.Counting, "7", "The correct count is 7. Try counting each item one at a time."},
		{questiontype.Numeric, "48", "The correct answer is 48. Check each step of your calculation."},
		{questiontype.FillBlank, "east", `The blank should be filled with "east".`},
		{questiontype.TrueFalse, "true", "The statement is true."},
		{questiontype.Ordering, "-2, 0, 8", "The correct order is: -2, 0, 8."},
	}

	for _, tc := range tests {
		t.Run(string(tc.typ), func(t *testing.T) {
			q := &question.Question{Type: tc.typ}
			got := Compose(q, question.Text("x"), answer.Result{CorrectAnswerDisplay: tc.display}, "Chef")
			want := "Not quite right. " + tc.want + " Keep practicing - you're learning like a future Chef!"
			assert.Equal(t, want, got)
		})
	}
}

func TestCompose_IncorrectEmptyCareer(t *testing.T) {
	got := Compose(mcQuestion(), question.Int(0), answer.Result{CorrectAnswerDisplay: "3"}, " ")
	assert.True(t, strings.HasSuffix(got, "like a future explorer!"), got)
}

func TestCompose_Deterministic(t *testing.T) {
	q := mcQuestion()
	res := answer.Result{IsCorrect: false, CorrectAnswerDisplay: "3"}
	first := Compose(q, question.Int(0), res, "Doctor")
	for i := 0; i < 10; i++ {
		if got := Compose(q, question.Int(0), res, "Doctor"); got != first {
			t.Fatalf("call %d: %q != %q", i, got, first)
		}
	}
}

func TestPraise_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Praise("Engineer"), Praise("  ENGINEER "))
	assert.Equal(t, defaultPraise, Praise(""))
}
