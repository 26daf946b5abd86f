package curriculum

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/questgen/internal/questiontype"
)

//go:embed seed.yaml
var seedYAML []byte

// ErrSkillNotFound is returned for unknown skill IDs.
var ErrSkillNotFound = errors.New("skill not found")

// Store is the skill data store consumed by the pipeline.
type Store interface {
	// Skills returns the skills for a grade and subject in teaching order.
	// Unknown grades or subjects yield an empty slice.
	Skills(ctx context.Context, grade, subject string) ([]Skill, error)

	// SkillByID returns ErrSkillNotFound for unknown IDs.
	SkillByID(ctx context.Context, id string) (Skill, error)
}

// Catalog is an immutable, in-memory Store with precomputed indices.
type Catalog struct {
	skills     []Skill
	byID       map[string]*Skill
	dependents map[string][]string
	topoIndex  map[string]int
}

// LoadCatalog parses a YAML skill list and validates it.
func LoadCatalog(data []byte) (*Catalog, error) {
	var skills []Skill
	if err := yaml.Unmarshal(data, &skills); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return NewCatalog(skills)
}

// NewCatalog validates skills and builds the indices.
func NewCatalog(skills []Skill) (*Catalog, error) {
	if err := validateSkills(skills); err != nil {
		return nil, err
	}
	return buildCatalog(skills), nil
}

var seedCatalog = func() *Catalog {
	c, err := LoadCatalog(seedYAML)
	if err != nil {
		panic(err)
	}
	return c
}()

// SeedCatalog returns the embedded curriculum.
func SeedCatalog() *Catalog {
	return seedCatalog
}

// buildCatalog constructs the indices, including a topological order
// (Kahn's algorithm) used to sort skills within a grade.
func buildCatalog(skills []Skill) *Catalog {
	c := &Catalog{
		skills:     slices.Clone(skills),
		byID:       make(map[string]*Skill, len(skills)),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(skills)),
	}

	for i := range c.skills {
		c.byID[c.skills[i].ID] = &c.skills[i]
	}
	for i := range c.skills {
		for _, prereqID := range c.skills[i].Prerequisites {
			c.dependents[prereqID] = append(c.dependents[prereqID], c.skills[i].ID)
		}
	}

	inDegree := make(map[string]int, len(skills))
	for i := range c.skills {
		inDegree[c.skills[i].ID] = len(c.skills[i].Prerequisites)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)

	order := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		c.topoIndex[id] = order
		order++

		deps := slices.Clone(c.dependents[id])
		sort.Strings(deps)
		for _, depID := range deps {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}
	return c
}

// Skills returns skills matching grade and subject, ordered by
// prerequisite order.
func (c *Catalog) Skills(_ context.Context, grade, subject string) ([]Skill, error) {
	g, ok := questiontype.NormalizeGrade(grade)
	if !ok {
		return nil, nil
	}
	var out []Skill
	for _, s := range c.skills {
		if s.GradeLevel() == g && sameSubject(s.Subject, subject) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.topoIndex[out[i].ID] < c.topoIndex[out[j].ID]
	})
	return out, nil
}

// SkillByID returns a skill by ID.
func (c *Catalog) SkillByID(_ context.Context, id string) (Skill, error) {
	s, ok := c.byID[id]
	if !ok {
		return Skill{}, fmt.Errorf("%w: %q", ErrSkillNotFound, id)
	}
	return *s, nil
}

// All returns every skill in prerequisite order.
func (c *Catalog) All() []Skill {
	out := slices.Clone(c.skills)
	sort.SliceStable(out, func(i, j int) bool {
		return c.topoIndex[out[i].ID] < c.topoIndex[out[j].ID]
	})
	return out
}

// Subjects returns the distinct subject labels in first-seen order.
func (c *Catalog) Subjects() []string {
	var out []string
	for _, s := range c.skills {
		if !slices.Contains(out, s.Subject) {
			out = append(out, s.Subject)
		}
	}
	return out
}

// Prerequisites returns the direct prerequisite skills for a given skill ID.
func (c *Catalog) Prerequisites(id string) []Skill {
	s, ok := c.byID[id]
	if !ok {
		return nil
	}
	result := make([]Skill, 0, len(s.Prerequisites))
	for _, prereqID := range s.Prerequisites {
		if p, ok := c.byID[prereqID]; ok {
			result = append(result, *p)
		}
	}
	return result
}

// Dependents returns skills that directly depend on the given skill ID.
func (c *Catalog) Dependents(id string) []Skill {
	depIDs := c.dependents[id]
	result := make([]Skill, 0, len(depIDs))
	for _, depID := range depIDs {
		if s, ok := c.byID[depID]; ok {
			result = append(result, *s)
		}
	}
	return result
}
