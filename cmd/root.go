package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starfield-labs/exonamd/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "exonamd",
	Short: "Exoplanet catalog curation and NAMD computation",
	Long:  "Fetches confirmed multi-planet systems from the NASA Exoplanet Archive, fills missing orbital parameters with provenance tracking, and computes the normalized angular momentum deficit per system.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
