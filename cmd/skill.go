package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/questiontype"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse the curriculum catalog",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills (optionally filtered by grade and subject)",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetString("grade")
		subject, _ := cmd.Flags().GetString("subject")

		catalog := curriculum.SeedCatalog()
		var skills []curriculum.Skill

		switch {
		case grade != "" && subject != "":
			var err error
			skills, err = catalog.Skills(cmd.Context(), grade, subject)
			if err != nil {
				return err
			}
		case grade != "" || subject != "":
			for _, s := range catalog.All() {
				if grade != "" && !sameGrade(s, grade) {
					continue
				}
				if subject != "" && !strings.EqualFold(s.Subject, subject) {
					continue
				}
				skills = append(skills, s)
			}
		default:
			skills = catalog.All()
		}

		if len(skills) == 0 {
			return fmt.Errorf("no skills found")
		}

		// Header.
		fmt.Printf("%-28s  %-36s  %5s  %-24s  %s\n",
			"ID", "Name", "Grade", "Subject", "Prerequisites")
		fmt.Println(strings.Repeat("─", 115))

		for _, s := range skills {
			name := s.Name
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			fmt.Printf("%-28s  %-36s  %5s  %-24s  %s\n",
				s.ID, name, s.Grade, s.Subject, strings.Join(s.Prerequisites, ", "))
		}

		fmt.Printf("\n%d skills\n", len(skills))
		return nil
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a skill with its prerequisites and dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := curriculum.SeedCatalog()
		s, err := catalog.SkillByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		fmt.Printf("ID:        %s\n", s.ID)
		fmt.Printf("Name:      %s\n", s.Name)
		fmt.Printf("Grade:     %s\n", s.Grade)
		fmt.Printf("Subject:   %s\n", s.Subject)
		if s.Strand != "" {
			fmt.Printf("Strand:    %s\n", s.Strand)
		}
		if s.Description != "" {
			fmt.Printf("\n%s\n", s.Description)
		}

		printSkillRefs("Prerequisites", catalog.Prerequisites(s.ID))
		printSkillRefs("Unlocks", catalog.Dependents(s.ID))
		return nil
	},
}

func printSkillRefs(title string, skills []curriculum.Skill) {
	if len(skills) == 0 {
		return
	}
	fmt.Printf("\n%s\n", title)
	for _, s := range skills {
		fmt.Printf("  %-28s  %s\n", s.ID, s.Name)
	}
}

func sameGrade(s curriculum.Skill, grade string) bool {
	g, ok := questiontype.NormalizeGrade(grade)
	return ok && s.GradeLevel() == g
}

func init() {
	skillListCmd.Flags().String("grade", "", "Filter by grade (K, 1-12)")
	skillListCmd.Flags().String("subject", "", "Filter by subject")

	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillShowCmd)
}
