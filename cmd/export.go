package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starfield-labs/exonamd/internal/catalog"
	"github.com/starfield-labs/exonamd/internal/store"
)

var (
	exportStage string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest snapshot of a stage as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		planets, snap, err := st.LoadSnapshot(ctx, exportStage)
		if err != nil {
			return err
		}
		if snap == nil {
			return eris.Errorf("no snapshot stored for stage %s", exportStage)
		}

		w := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			w = f
		}

		if err := catalog.WriteCSV(w, planets); err != nil {
			return err
		}

		zap.L().Info("snapshot exported",
			zap.String("stage", exportStage),
			zap.String("snapshot", snap.ID),
			zap.Int("rows", len(planets)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportStage, "stage", store.StageNAMD, "stage to export (curated, interp, namd)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
