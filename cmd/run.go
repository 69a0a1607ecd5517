package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runFromScratch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch, interpolate, compute NAMD",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.Run(ctx, runFromScratch); err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("pipeline complete")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runFromScratch, "from-scratch", false, "ignore stored snapshots and refetch the full catalog")
	rootCmd.AddCommand(runCmd)
}
