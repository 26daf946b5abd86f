package cmd

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

func newRunCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	c.SetContext(context.Background())
	addRunFlags(c)
	for k, v := range flags {
		require.NoError(t, c.Flags().Set(k, v))
	}
	return c
}

func TestRunRequest(t *testing.T) {
	c := newRunCmd(t, map[string]string{
		"grade":   "3",
		"subject": "Math",
		"skill":   "Addition within 100",
		"type":    "multiple_choice",
		"answer":  "2",
	})

	req, err := runRequest(c)
	require.NoError(t, err)
	assert.Equal(t, "3", req.Selection.GradeLevel)
	assert.Equal(t, "explorer", req.Selection.Career)
	assert.Equal(t, "Math", req.Skill.Subject)
	assert.Equal(t, questiontype.MultipleChoice, req.ForceType)
	require.NotNil(t, req.Answer)
	assert.True(t, req.Answer.Equal(question.Int(2)))
}

func TestRunRequest_NoAnswerFlag(t *testing.T) {
	req, err := runRequest(newRunCmd(t, map[string]string{"grade": "3"}))
	require.NoError(t, err)
	assert.Nil(t, req.Answer)
}

func TestRunRequest_UnknownType(t *testing.T) {
	_, err := runRequest(newRunCmd(t, map[string]string{"type": "essay_question"}))
	assert.ErrorContains(t, err, "unknown question type")
}

func TestFillSkill(t *testing.T) {
	catalog := curriculum.SeedCatalog()
	sk := catalog.All()[0]

	c := newRunCmd(t, map[string]string{"skill-id": sk.ID})
	req, err := runRequest(c)
	require.NoError(t, err)
	require.NoError(t, fillSkill(c, catalog, &req))

	assert.Equal(t, sk.Name, req.Skill.SkillName)
	assert.Equal(t, sk.Subject, req.Skill.Subject)
	assert.Equal(t, sk.Grade, req.Selection.GradeLevel)
}

func TestFillSkill_FlagsWin(t *testing.T) {
	catalog := curriculum.SeedCatalog()
	sk := catalog.All()[0]

	c := newRunCmd(t, map[string]string{"skill-id": sk.ID, "skill": "Custom name", "grade": "9"})
	req, err := runRequest(c)
	require.NoError(t, err)
	require.NoError(t, fillSkill(c, catalog, &req))

	assert.Equal(t, "Custom name", req.Skill.SkillName)
	assert.Equal(t, "9", req.Selection.GradeLevel)
	assert.Equal(t, sk.Subject, req.Skill.Subject)
}

func TestFillSkill_Unknown(t *testing.T) {
	catalog := curriculum.SeedCatalog()

	c := newRunCmd(t, map[string]string{"skill-id": "no-such-skill"})
	req, err := runRequest(c)
	require.NoError(t, err)
	assert.ErrorContains(t, fillSkill(c, catalog, &req), "not found")

	// A free-form skill name keeps an unknown ID usable.
	c = newRunCmd(t, map[string]string{"skill-id": "no-such-skill", "skill": "Volcanoes"})
	req, err = runRequest(c)
	require.NoError(t, err)
	assert.NoError(t, fillSkill(c, catalog, &req))
}
