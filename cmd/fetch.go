package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchFromScratch bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and curate the confirmed-planet catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		planets, err := env.Pipeline.Curate(ctx, fetchFromScratch)
		if err != nil {
			return eris.Wrap(err, "curate stage")
		}

		zap.L().Info("catalog curated", zap.Int("rows", len(planets)))
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchFromScratch, "from-scratch", false, "ignore stored snapshots and refetch the full catalog")
	rootCmd.AddCommand(fetchCmd)
}
