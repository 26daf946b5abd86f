package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/pipeline"
	"github.com/abhisek/questgen/internal/problemgen"
	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
	"github.com/abhisek/questgen/internal/ui/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate one question and optionally check an answer",
	Example: `  questgen run --grade 3 --subject Math --skill "Addition within 100"
  questgen run --grade 5 --skill-id math-5-fractions --type multiple_choice --answer 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := runRequest(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		skills, closeSkills := skillStore(ctx, cfg.Cache, logger)
		defer closeSkills()

		if err := fillSkill(cmd, skills, &req); err != nil {
			return err
		}

		p, err := provider(ctx, s.EventRepo(), logger)
		if err != nil {
			return err
		}

		res := coordinator(p, skills, s.RunRepo(), logger).Run(ctx, req)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
		} else {
			showAnswer, _ := cmd.Flags().GetBool("show-answer")
			fmt.Print(report.Render(res, showAnswer))
		}

		if !res.Success {
			return fmt.Errorf("run %s failed: %s", res.RunID, res.Error)
		}
		return nil
	},
}

// runRequest builds a pipeline request from flags.
func runRequest(cmd *cobra.Command) (pipeline.Request, error) {
	grade, _ := cmd.Flags().GetString("grade")
	career, _ := cmd.Flags().GetString("career")
	subject, _ := cmd.Flags().GetString("subject")
	skillName, _ := cmd.Flags().GetString("skill")
	skillID, _ := cmd.Flags().GetString("skill-id")
	forceType, _ := cmd.Flags().GetString("type")
	prior, _ := cmd.Flags().GetStringArray("prior")

	req := pipeline.Request{
		Selection: pipeline.UserSelection{GradeLevel: grade, Career: career},
		Skill: problemgen.SkillContext{
			Subject:   subject,
			SkillName: skillName,
			SkillID:   skillID,
		},
		PriorQuestions: prior,
	}

	if forceType != "" {
		tag, ok := questiontype.ParseTag(forceType)
		if !ok {
			return req, fmt.Errorf("unknown question type %q", forceType)
		}
		req.ForceType = tag
	}

	if cmd.Flags().Changed("answer") {
		raw, _ := cmd.Flags().GetString("answer")
		v := question.ParseValue(raw)
		req.Answer = &v
	}
	return req, nil
}

// fillSkill completes the skill context from the catalog when --skill-id
// names a known skill. Explicit flags win over catalog values.
func fillSkill(cmd *cobra.Command, skills curriculum.Store, req *pipeline.Request) error {
	if req.Skill.SkillID == "" {
		return nil
	}
	sk, err := skills.SkillByID(cmd.Context(), req.Skill.SkillID)
	if errors.Is(err, curriculum.ErrSkillNotFound) {
		if req.Skill.SkillName == "" {
			return fmt.Errorf("skill %q not found", req.Skill.SkillID)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if req.Skill.Subject == "" {
		req.Skill.Subject = sk.Subject
	}
	if req.Skill.SkillName == "" {
		req.Skill.SkillName = sk.Name
	}
	if req.Selection.GradeLevel == "" {
		req.Selection.GradeLevel = sk.Grade
	}
	return nil
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().String("grade", "", "Grade level (K, 1-12, \"Grade 7\")")
	c.Flags().String("career", "explorer", "Learner career persona")
	c.Flags().String("subject", "", "Subject (Math, English Language Arts, Science, Social Studies)")
	c.Flags().String("skill", "", "Skill name")
	c.Flags().String("skill-id", "", "Catalog skill ID; fills grade, subject and skill when omitted")
	c.Flags().String("type", "", "Force a question type (e.g. multiple_choice, fill_blank)")
	c.Flags().String("answer", "", "Answer to check; JSON values are decoded, anything else is text")
	c.Flags().StringArray("prior", nil, "Previously shown question text to avoid (repeatable)")
	c.Flags().Bool("json", false, "Print the result as JSON")
	c.Flags().Bool("show-answer", false, "Include the correct answer in the question card")
}
