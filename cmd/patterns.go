package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/guru/internal/pattern"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the pattern catalogue (optionally filtered by difficulty)",
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty, _ := cmd.Flags().GetInt("difficulty")

		d, err := openDeps(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer d.Close()

		var patterns []pattern.Pattern
		for _, p := range pattern.All() {
			if difficulty == 0 || p.Difficulty == difficulty {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			return fmt.Errorf("no patterns found for difficulty %d", difficulty)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%4s  %-28s  %4s  %4s  %6s  %-10s  %s\n",
			"ID", "Name", "Diff", "Axes", "Layers", "Status", "Best")
		fmt.Fprintln(out, strings.Repeat("─", 80))

		for _, p := range patterns {
			name := p.Name
			if len(name) > 28 {
				name = name[:25] + "..."
			}
			status, best := "locked", ""
			if st, ok := d.tracker.Status(p.ID); ok && st.Completed {
				status = "completed"
				best = fmt.Sprintf("%.0f%% %s", st.BestAccuracy, strings.Repeat("★", st.Stars))
			} else if d.tracker.IsUnlocked(p.ID) {
				status = "open"
			}
			fmt.Fprintf(out, "%4d  %-28s  %4d  %4d  %6d  %-10s  %s\n",
				p.ID, name, p.Difficulty, p.SymmetryAxes, p.Layers, status, best)
		}

		prog := d.tracker.Progress()
		fmt.Fprintf(out, "\n%d patterns, %d XP\n", len(patterns), prog.TotalXP)
		return nil
	},
}

func init() {
	patternsCmd.Flags().Int("difficulty", 0, "Filter by difficulty (1-5)")
}
