package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	namdSamples   int
	namdThreshold int
	namdSeed      uint64
	namdAll       bool
)

var namdCmd = &cobra.Command{
	Use:   "namd",
	Short: "Compute NAMD with Monte Carlo uncertainties from the latest interpolated snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if namdSamples > 0 {
			cfg.MC.Samples = namdSamples
		}
		if namdThreshold > 0 {
			cfg.MC.Threshold = namdThreshold
		}
		if cmd.Flags().Changed("seed") {
			cfg.MC.Seed = namdSeed
		}
		if namdAll {
			cfg.Pipeline.CoreOnly = false
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		planets, err := env.Pipeline.NAMD(ctx, nil)
		if err != nil {
			return eris.Wrap(err, "namd stage")
		}

		zap.L().Info("namd computed", zap.Int("rows", len(planets)))
		return nil
	},
}

func init() {
	namdCmd.Flags().IntVar(&namdSamples, "samples", 0, "Monte Carlo draws per parameter (default from config)")
	namdCmd.Flags().IntVar(&namdThreshold, "threshold", 0, "minimum accepted draws for quantiles (default from config)")
	namdCmd.Flags().Uint64Var(&namdSeed, "seed", 0, "random seed (default from config)")
	namdCmd.Flags().BoolVar(&namdAll, "all", false, "keep heavily-imputed systems instead of the core sample")
	rootCmd.AddCommand(namdCmd)
}
