package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/guru/internal/session"
	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/stroke"
	"github.com/abhisek/guru/internal/ui/layout"
	"github.com/abhisek/guru/internal/ui/report"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Score a recorded drawing session",
	Long: `Replay a recorded drawing of a pattern, score every stroke and complete the
session at the given stage. The recording is a JSON document of pointer
samples: {"canvas": {"width": 600, "height": 600}, "strokes": [[{"x":..,"y":..,"t":..}]]}.
Use "-" to read it from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		patternID, _ := cmd.Flags().GetInt("pattern")
		stageNum, _ := cmd.Flags().GetInt("stage")
		path, _ := cmd.Flags().GetString("strokes")
		asJSON, _ := cmd.Flags().GetBool("json")

		strokes, err := readStrokes(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}

		d, err := openDeps(ctx, settings)
		if err != nil {
			return err
		}
		defer d.Close()

		stage := skill.Stage(stageNum)
		if stageNum == 0 {
			stage = d.mastery.Progress().CurrentStage
		}

		evaluator, pool := newEvaluator(settings.Scorer, prometheus.NewRegistry())
		defer pool.Close()

		p, err := session.Start(ctx, session.Deps{
			Scorer:   evaluator,
			Mastery:  d.mastery,
			Patterns: d.tracker,
			Recorder: d.recorder,
		}, patternID, stage)
		if err != nil {
			return fmt.Errorf("start practice: %w", err)
		}

		for _, s := range strokes {
			res, err := p.HandleStroke(ctx, s)
			if err != nil {
				return fmt.Errorf("stroke %d: %w", s.ID, err)
			}
			log.Debug().
				Int("stroke", s.ID).
				Float64("pressure", res.Scores.Pressure).
				Float64("velocity", res.Scores.Velocity).
				Float64("angular", res.Scores.Angular).
				Float64("flow", res.Live.FlowStateIndex).
				Msg("stroke scored")
		}

		sum, err := p.Finish(ctx)
		if err != nil {
			return fmt.Errorf("finish practice: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		fmt.Fprintln(out, report.Summary(sum, layout.DefaultWidth))
		return nil
	},
}

func readStrokes(stdin io.Reader, path string) ([]stroke.Stroke, error) {
	if path == "" {
		return nil, fmt.Errorf("--strokes is required")
	}
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()
		r = f
	}
	rec, err := stroke.ReadRecording(r)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	strokes, err := stroke.Replay(rec)
	if err != nil {
		return nil, fmt.Errorf("replay recording: %w", err)
	}
	return strokes, nil
}

func init() {
	practiceCmd.Flags().Int("pattern", 1, "Pattern id (1-50)")
	practiceCmd.Flags().Int("stage", 0, "Mastery stage (1-5, default the current stage)")
	practiceCmd.Flags().String("strokes", "", "Recording file, or - for stdin")
	practiceCmd.Flags().Bool("json", false, "Print the session summary as JSON")
}
