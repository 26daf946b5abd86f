package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/questgen/internal/questiontype"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show which question type a skill maps to",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetString("grade")
		subject, _ := cmd.Flags().GetString("subject")
		skill, _ := cmd.Flags().GetString("skill")
		if subject == "" || skill == "" {
			return fmt.Errorf("--subject and --skill are required")
		}

		tag := questiontype.NewClassifier(questiontype.NewSubjectRotator()).Classify(grade, subject, skill)
		fmt.Printf("%s (%s)\n", tag.DisplayName(), tag)
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("grade", "", "Grade level (K, 1-12)")
	classifyCmd.Flags().String("subject", "", "Subject")
	classifyCmd.Flags().String("skill", "", "Skill name")
}
