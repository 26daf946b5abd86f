package problemgen

import (
	"strings"

	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// misclassificationSignals are phrases that mark a comparison or
// identification question, which cannot have a true/false answer.
var misclassificationSignals = []string{"which", "what is the", "larger", "smaller"}

// defectCheck reports whether a parsed candidate exhibits one defect.
type defectCheck struct {
	code  DefectCode
	found func(c *question.Candidate, requested questiontype.Tag, sc SkillContext) bool
}

// checks run in order; every match is reported.
var checks = []defectCheck{
	{TypeMisclassified, misclassified},
	{MissingBlankMarker, missingBlankMarker},
	{MissingAnswer, func(c *question.Candidate, _ questiontype.Tag, _ SkillContext) bool { return !c.HasAnswer() }},
	{SkillIrrelevant, func(c *question.Candidate, _ questiontype.Tag, sc SkillContext) bool { return !Relevant(c, sc.SkillName) }},
}

// DefectDetector inspects parsed candidates. It is stateless and safe for
// concurrent use.
type DefectDetector struct{}

// Detect returns the defects of p for the requested type. A parse failure
// yields PARSE_ERROR alone.
func (DefectDetector) Detect(p ParseResult, requested questiontype.Tag, sc SkillContext) DefectSet {
	if !p.OK() {
		return DefectSet{ParseError}
	}
	var set DefectSet
	for _, chk := range checks {
		if chk.found(&p.Candidate, requested, sc) {
			set = set.Add(chk.code)
		}
	}
	return set
}

// misclassified only applies to true/false requests.
func misclassified(c *question.Candidate, requested questiontype.Tag, _ SkillContext) bool {
	if requested != questiontype.TrueFalse {
		return false
	}
	text := strings.ToLower(c.Question)
	for _, sig := range misclassificationSignals {
		if strings.Contains(text, sig) {
			return true
		}
	}
	return false
}

func missingBlankMarker(c *question.Candidate, requested questiontype.Tag, _ SkillContext) bool {
	if requested != questiontype.FillBlank && c.Type != string(questiontype.FillBlank) {
		return false
	}
	return !strings.Contains(c.Question, question.BlankMarker)
}

// Relevant reports whether any whitespace-separated word of skillName
// occurs, case-insensitively and as a substring, in the candidate's
// question text or topic. An empty skill name is always relevant.
func Relevant(c *question.Candidate, skillName string) bool {
	words := strings.Fields(strings.ToLower(skillName))
	if len(words) == 0 {
		return true
	}
	text := strings.ToLower(c.Question)
	topic := strings.ToLower(c.Topic)
	for _, w := range words {
		if strings.Contains(text, w) || strings.Contains(topic, w) {
			return true
		}
	}
	return false
}
