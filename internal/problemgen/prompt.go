package problemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// PromptRequest is everything a prompt may mention.
type PromptRequest struct {
	Grade          string
	Career         string
	Subject        string
	SkillName      string
	SkillID        string
	Type           questiontype.Tag
	Hints          RepairHints
	PriorQuestions []string
}

// PromptAssembler turns a request into system and user messages.
type PromptAssembler interface {
	Assemble(req PromptRequest) (system, user string)
}

const systemPrompt = `You are a teacher creating practice questions for school children.

Rules:
- Generate exactly one question for the given grade, subject, skill and question type.
- Respond with a single JSON object and nothing else.
- The "type" field must equal the requested question type.
- The question text should be clear, self-contained, and age-appropriate for the grade.
- Set "topic" to a short label that names the skill being practiced.
- Always include "correct_answer". It must be correct.
- The explanation should show the solution step by step, suitable for a child.
- Where it fits naturally, frame the question around the learner's chosen career.
- Use plain text only. No LaTeX, no Markdown.
- Do not repeat any question from the "already asked" list.`

// typeInstructions describe the JSON shape expected for each type.
var typeInstructions = map[questiontype.Tag]string{
	questiontype.MultipleChoice:       `Provide 4 "options"; "correct_answer" is the 0-based index of the right option.`,
	questiontype.TrueFalse:            `Write a statement that is clearly true or false; "correct_answer" is true or false.`,
	questiontype.Counting:             `Ask the learner to count objects described in the question; "correct_answer" is a whole number.`,
	questiontype.Numeric:              `"correct_answer" is a number (integer, decimal or fraction like "3/4").`,
	questiontype.FillBlank:            `Put the blank marker ` + question.BlankMarker + ` where the missing word or number goes; "correct_answer" fills the blank.`,
	questiontype.ShortAnswer:          `"correct_answer" is a word or short phrase.`,
	questiontype.LongAnswer:           `"correct_answer" is a model answer of a few sentences.`,
	questiontype.Matching:             `Provide "pairs" as {"left","right"} objects that belong together.`,
	questiontype.Ordering:             `Provide "items" in shuffled order; "correct_answer" lists the items in the right order.`,
	questiontype.Classification:       `Provide "categories" and "items"; "correct_answer" maps each item to its category.`,
	questiontype.VisualIdentification: `Describe the picture in "visual", provide "options"; "correct_answer" is the 0-based index of the right option.`,
	questiontype.PatternRecognition:   `Show a sequence in the question; "correct_answer" is the next element. "options" are optional.`,
	questiontype.CodeCompletion:       `Show a short code snippet with one missing piece; "correct_answer" is the missing code.`,
	questiontype.DiagramLabeling:      `Describe the diagram in "visual"; "pairs" map each label to the part it names.`,
	questiontype.OpenEnded:            `Ask an open question; "correct_answer" is an example of a good answer.`,
}

// TemplatePrompter is the default PromptAssembler.
type TemplatePrompter struct {
	// MaxPriorQuestions caps the deduplication list. Zero keeps all.
	MaxPriorQuestions int
}

func (p TemplatePrompter) Assemble(req PromptRequest) (string, string) {
	var b strings.Builder

	grade := req.Grade
	if n, ok := questiontype.NormalizeGrade(grade); ok {
		grade = questiontype.GradeLabel(n)
	}

	fmt.Fprintf(&b, "Grade: %s\n", grade)
	fmt.Fprintf(&b, "Career: %s\n", req.Career)
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Skill: %s\n", req.SkillName)
	if req.SkillID != "" {
		fmt.Fprintf(&b, "Skill ID: %s\n", req.SkillID)
	}
	fmt.Fprintf(&b, "Question type: %s\n", req.Type)
	if inst, ok := typeInstructions[req.Type]; ok {
		fmt.Fprintf(&b, "Format: %s\n", inst)
	}

	if req.Hints.Any() {
		b.WriteString("\nThe previous attempt was rejected. Fix the following:\n")
		b.WriteString(hintLines(req))
	}

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildDedup(req.PriorQuestions, p.MaxPriorQuestions))

	return systemPrompt, b.String()
}

func hintLines(req PromptRequest) string {
	var lines []string
	if req.Hints.ForceBlankMarker {
		lines = append(lines, fmt.Sprintf("- The question text MUST contain the blank marker %s exactly once.", question.BlankMarker))
	}
	if req.Hints.ReinforceType {
		lines = append(lines, fmt.Sprintf("- The question MUST be a %s question. Do not ask which option is larger or smaller.", req.Type.DisplayName()))
	}
	if req.Hints.EmphasizeSkill {
		lines = append(lines, fmt.Sprintf("- The question MUST practice %q and use its key words in the question or topic.", req.SkillName))
	}
	return strings.Join(lines, "\n") + "\n"
}

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[len(priorQuestions)-max:]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
