package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var interpCmd = &cobra.Command{
	Use:   "interp",
	Short: "Fill missing parameters from the latest curated snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		planets, err := env.Pipeline.Interp(ctx, nil)
		if err != nil {
			return eris.Wrap(err, "interp stage")
		}

		zap.L().Info("catalog interpolated", zap.Int("rows", len(planets)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interpCmd)
}
