package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/questgen/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.RunRepo().ListRuns(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		// Header.
		fmt.Printf("%-36s  %-19s  %-5s  %-22s  %-20s  %-9s  %3s  %s\n",
			"ID", "Timestamp", "Grade", "Skill", "Type", "State", "Try", "OK")
		fmt.Println(strings.Repeat("─", 130))

		for _, r := range runs {
			fmt.Printf("%-36s  %-19s  %-5s  %-22s  %-20s  %-9s  %3d  %s\n",
				r.ID,
				r.Timestamp.Local().Format(timeLayout),
				r.Grade,
				truncate(r.SkillName, 22),
				r.QuestionType,
				r.State,
				r.Attempts,
				mark(r.Success),
			)
		}
		return nil
	},
}

var runsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View a run with its attempt history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.RunRepo().GetRun(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:        %s\n", r.ID)
		fmt.Printf("Time:      %s\n", r.Timestamp.Local().Format(timeLayout))
		fmt.Printf("Grade:     %s\n", r.Grade)
		fmt.Printf("Subject:   %s\n", r.Subject)
		fmt.Printf("Skill:     %s", r.SkillName)
		if r.SkillID != "" {
			fmt.Printf(" (%s)", r.SkillID)
		}
		fmt.Println()
		fmt.Printf("Type:      %s\n", r.QuestionType)
		fmt.Printf("State:     %s\n", r.State)
		fmt.Printf("Success:   %v\n", r.Success)
		fmt.Printf("Duration:  %dms\n", r.DurationMs)
		if r.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", r.ErrorMessage)
		}

		if len(r.History) > 0 {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println("ATTEMPTS")
			fmt.Println(sep)
			for _, a := range r.History {
				fmt.Printf("#%d  %-20s  %-10s  %5dms", a.Attempt, a.QuestionType, a.Action, a.LatencyMs)
				if len(a.Defects) > 0 {
					fmt.Printf("  %s", strings.Join(a.Defects, ","))
				}
				if a.ErrorMessage != "" {
					fmt.Printf("  %s", a.ErrorMessage)
				}
				fmt.Println()
			}
		}

		fmt.Println(sep)
		fmt.Println("QUESTION")
		fmt.Println(sep)
		if r.Question == "" {
			fmt.Println("(none)")
			return nil
		}
		fmt.Println(prettyJSON(r.Question))
		return nil
	},
}

func init() {
	runsListCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsViewCmd)
}
