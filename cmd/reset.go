package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/guru/internal/pattern"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset player data",
	Long:  "Reset the current player's mastery and pattern progress. With --all, also clear every player's progress and the session log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		yes, _ := cmd.Flags().GetBool("yes")
		all, _ := cmd.Flags().GetBool("all")
		if !yes {
			return fmt.Errorf("refusing to reset without --yes")
		}

		d, err := openDeps(ctx, settings)
		if err != nil {
			return err
		}
		defer d.Close()

		player := d.mastery.PlayerID()
		if err := d.mastery.Reset(ctx); err != nil {
			return fmt.Errorf("reset mastery: %w", err)
		}
		if err := d.legacy.Delete(ctx, pattern.LegacyKey); err != nil {
			return fmt.Errorf("reset pattern progress: %w", err)
		}
		if all {
			if err := d.store.Reset(ctx); err != nil {
				return fmt.Errorf("reset store: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reset progress for player %s\n", player)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
	resetCmd.Flags().Bool("all", false, "Also clear all players and the session log")
}
