package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/store"
	"github.com/abhisek/guru/internal/ui/layout"
	"github.com/abhisek/guru/internal/ui/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stageNum, _ := cmd.Flags().GetInt("stage")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := openDeps(ctx, settings)
		if err != nil {
			return err
		}
		defer d.Close()

		p := d.mastery.Progress()
		out := cmd.OutOrStdout()

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		if stageNum == 0 {
			fmt.Fprintln(out, report.Progress(p, layout.DefaultWidth))
			return nil
		}

		stage := skill.Stage(stageNum)
		if !stage.Valid() {
			return fmt.Errorf("stage must be between 1 and %d", skill.StageCount)
		}
		recent, err := d.recorder.Recent(ctx, store.SessionQuery{
			PlayerID: p.PlayerID,
			Stage:    stageNum,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("read session log: %w", err)
		}
		fmt.Fprintln(out, report.Stage(p, stage, recent, layout.DefaultWidth))
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("stage", 0, "Show details for one stage (1-5)")
	statsCmd.Flags().Int("limit", 5, "Number of recent sessions to show with --stage")
	statsCmd.Flags().Bool("json", false, "Print the raw progress record as JSON")
}
