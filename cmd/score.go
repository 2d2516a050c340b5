package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/guru/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Run one scorer request",
	Long: `Read a scorer request (JSON) from a file or stdin, run it on the scorer pool
and print the response. Invalid requests produce {"score": 0, "details": {"error": ...}}.

Request types: COMPUTE_PRESSURE, COMPUTE_VELOCITY_CV, COMPUTE_ANGULAR_ERROR,
COMPUTE_LCS_COMPLIANCE.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if len(args) == 1 && args[0] != "-" {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}

		resp := runScore(cmd.Context(), raw)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func runScore(ctx context.Context, raw []byte) scoring.Response {
	req, err := scoring.DecodeRequest(raw)
	if err != nil {
		log.Warn().Err(err).Msg("invalid scorer request")
		return scoring.ErrorResponse(err.Error())
	}

	pool := scoring.NewPool(1, nil)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, settings.Scorer.Timeout)
	defer cancel()
	resp, err := pool.Submit(ctx, req)
	if err != nil {
		return scoring.ErrorResponse(err.Error())
	}
	return resp
}
