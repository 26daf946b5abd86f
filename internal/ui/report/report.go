// Package report renders pipeline results for the terminal.
package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/questgen/internal/pipeline"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/ui/theme"
)

// Render formats res as a multi-section report. showAnswer includes the
// correct answer in the question card.
func Render(res *pipeline.Result, showAnswer bool) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("questgen run " + res.RunID))
	b.WriteString("\n\n")

	b.WriteString(theme.Heading.Render("Stages"))
	b.WriteString("\n")
	for _, s := range stageRows(res.Stages) {
		fmt.Fprintf(&b, "  %s %s\n", theme.Mark(s.ok), s.name)
	}
	b.WriteString("\n")

	row(&b, "Attempts", fmt.Sprintf("%d", res.Attempts))
	if res.Source != "" {
		row(&b, "Source", string(res.Source))
	}
	if len(res.Defects) > 0 {
		row(&b, "Defects", theme.Warning.Render(strings.Join(res.Defects, ", ")))
	}
	if res.Error != "" {
		row(&b, "Error", theme.Incorrect.Render(res.Error))
	}

	if res.Question != nil {
		b.WriteString("\n")
		b.WriteString(theme.Card.Render(questionCard(res.Question, showAnswer)))
		b.WriteString("\n")
	}

	if res.Validation != nil {
		b.WriteString("\n")
		verdict := theme.Incorrect.Render("Incorrect")
		if res.Validation.IsCorrect {
			verdict = theme.Correct.Render("Correct")
		}
		row(&b, "Result", verdict)
		row(&b, "Answer", res.Validation.CorrectAnswerDisplay)
	}
	if res.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(res.Feedback))
		b.WriteString("\n")
	}

	status := theme.Incorrect.Render("FAILED")
	if res.Success {
		status = theme.Correct.Render("SUCCESS")
	}
	b.WriteString("\n")
	b.WriteString(status)
	b.WriteString("\n")
	return b.String()
}

type stage struct {
	name string
	ok   bool
}

func stageRows(s pipeline.Stages) []stage {
	return []stage{
		{"user selection", s.UserSelection},
		{"skill context", s.SkillContext},
		{"AI generation", s.AIGeneration},
		{"content conversion", s.ContentConversion},
		{"render data", s.RenderData},
		{"answer validation", s.AnswerValidation},
		{"feedback", s.Feedback},
	}
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, theme.Label.Render(label), value))
	b.WriteString("\n")
}

func questionCard(q *question.Question, showAnswer bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", theme.Heading.Render(q.Type.DisplayName()), theme.Hint.Render("grade "+q.Grade))
	b.WriteString(q.Prompt)
	b.WriteString("\n")

	if q.Visual != "" {
		b.WriteString(theme.Hint.Render("[" + q.Visual + "]"))
		b.WriteString("\n")
	}
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "  %c) %s\n", 'A'+rune(i%26), opt)
	}
	for _, item := range q.Items {
		fmt.Fprintf(&b, "  • %s\n", item)
	}
	if len(q.Categories) > 0 {
		fmt.Fprintf(&b, "  categories: %s\n", strings.Join(q.Categories, ", "))
	}
	for _, p := range q.Pairs {
		fmt.Fprintf(&b, "  %s ↔ ?\n", p.Left)
	}
	if q.Hint != "" {
		b.WriteString(theme.Hint.Render("Hint: " + q.Hint))
		b.WriteString("\n")
	}
	if showAnswer {
		b.WriteString(theme.Correct.Render("Answer: " + q.CorrectAnswer.String()))
	}
	return strings.TrimRight(b.String(), "\n")
}
