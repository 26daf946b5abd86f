// Package feedback turns an evaluation into a short message for the learner,
// flavoured by their chosen career.
package feedback

import (
	"fmt"
	"strings"

	"github.com/abhisek/questgen/internal/answer"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

const (
	incorrectPrefix = "Not quite right. "
	defaultPraise   = "Great job!"
	defaultCareer   = "explorer"
)

// careerPraise is keyed by lower-cased career label.
var careerPraise = map[string]string{
	"engineer":           "Perfect calculation! You think like a real engineer.",
	"doctor":             "Excellent diagnosis! Your careful thinking would help patients.",
	"scientist":          "Brilliant discovery! That's real scientific thinking.",
	"astronaut":          "Mission accomplished! You're ready for launch.",
	"artist":             "Beautifully done! You see the details like an artist.",
	"chef":               "Perfect recipe! You mixed the ingredients just right.",
	"teacher":            "Well explained! You could teach this to the whole class.",
	"architect":          "Solid foundation! Your plan is built to last.",
	"programmer":         "Bug-free! Your logic compiles perfectly.",
	"software developer": "Bug-free! Your logic compiles perfectly.",
	"veterinarian":       "Great care! The animals are lucky to have you.",
	"musician":           "Perfect harmony! You hit every note.",
	"athlete":            "What a play! You scored on that one.",
	"pilot":              "Smooth landing! You navigated that perfectly.",
	"detective":          "Case closed! You found every clue.",
}

// Praise returns the career's praise phrase, or a generic one for unknown
// careers.
func Praise(career string) string {
	if p, ok := careerPraise[strings.ToLower(strings.TrimSpace(career))]; ok {
		return p
	}
	return defaultPraise
}

// Compose builds the feedback text. It is a pure function of its inputs.
func Compose(q *question.Question, submitted question.Value, res answer.Result, career string) string {
	if res.IsCorrect {
		return fmt.Sprintf("%s You correctly answered: %s", Praise(career), submittedDisplay(q, submitted))
	}

	career = strings.TrimSpace(career)
	if career == "" {
		career = defaultCareer
	}
	var typ questiontype.Tag
	if q != nil {
		typ = q.Type
	}
	return incorrectPrefix + clause(typ, res.CorrectAnswerDisplay) +
		fmt.Sprintf(" Keep practicing - you're learning like a future %s!", career)
}

// clause names the correct answer in a way that fits the question type.
func clause(typ questiontype.Tag, display string) string {
	switch typ {
	case questiontype.Counting:
		return fmt.Sprintf("The correct count is %s. Try counting each item one at a time.", display)
	case questiontype.Numeric:
		return fmt.Sprintf("The correct answer is %s. Check each step of your calculation.", display)
	case questiontype.TrueFalse:
		return fmt.Sprintf("The statement is %s.", display)
	case questiontype.FillBlank:
		return fmt.Sprintf("The blank should be filled with %q.", display)
	case questiontype.ShortAnswer, questiontype.LongAnswer, questiontype.OpenEnded:
		return fmt.Sprintf("A good answer would be: %s.", strings.TrimRight(display, "."))
	case questiontype.CodeCompletion:
		return fmt.Sprintf("The missing code is %s.", display)
	case questiontype.Matching, questiontype.DiagramLabeling:
		return fmt.Sprintf("The correct matches are: %s.", display)
	case questiontype.Ordering:
		return fmt.Sprintf("The correct order is: %s.", display)
	case questiontype.Classification:
		return fmt.Sprintf("The correct groups are: %s.", display)
	}
	return fmt.Sprintf("The correct answer is %s.", display)
}

// submittedDisplay shows option text for answers given as an option index.
func submittedDisplay(q *question.Question, submitted question.Value) string {
	if q != nil && len(q.Options) > 0 && submitted.Kind() == question.KindNumber {
		if idx, ok := submitted.Index(); ok && idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	}
	return submitted.String()
}
