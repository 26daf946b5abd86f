package problemgen

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// TemplateSet holds one static example question per type.
type TemplateSet struct {
	byType map[questiontype.Tag]question.Candidate
}

type templateEntry struct {
	question.Candidate `yaml:",inline"`
	Answer             any `yaml:"correct_answer"`
}

// NewTemplateSet builds a set from candidates. Later entries replace
// earlier ones of the same type; an empty set never falls back.
func NewTemplateSet(candidates ...question.Candidate) (*TemplateSet, error) {
	s := &TemplateSet{byType: make(map[questiontype.Tag]question.Candidate, len(candidates))}
	for _, c := range candidates {
		tag, ok := questiontype.ParseTag(c.Type)
		if !ok {
			return nil, fmt.Errorf("template %q: unknown question type %q", c.Question, c.Type)
		}
		c.Type = string(tag)
		if c.ID == "" {
			c.ID = "template-" + string(tag)
		}
		s.byType[tag] = c
	}
	return s, nil
}

// LoadTemplates parses a YAML list of template questions.
func LoadTemplates(data []byte) (*TemplateSet, error) {
	var entries []templateEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	candidates := make([]question.Candidate, 0, len(entries))
	for _, e := range entries {
		c := e.Candidate
		if e.Answer != nil {
			raw, err := json.Marshal(e.Answer)
			if err != nil {
				return nil, fmt.Errorf("template %s: encode answer: %w", c.Type, err)
			}
			c.CorrectAnswer = raw
		}
		candidates = append(candidates, c)
	}
	return NewTemplateSet(candidates...)
}

var defaultTemplates = func() *TemplateSet {
	s, err := LoadTemplates(defaultTemplatesYAML)
	if err != nil {
		panic(err)
	}
	return s
}()

// DefaultTemplates returns the embedded template set.
func DefaultTemplates() *TemplateSet {
	return defaultTemplates
}

// Lookup returns the template for tag.
func (s *TemplateSet) Lookup(tag questiontype.Tag) (question.Candidate, bool) {
	if s == nil {
		return question.Candidate{}, false
	}
	c, ok := s.byType[tag]
	return c, ok
}

// Len returns the number of templates.
func (s *TemplateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byType)
}
