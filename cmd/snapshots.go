package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var snapshotsLimit int

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored catalog snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshots(ctx, snapshotsLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTAGE\tROWS\tROWUPDATE\tCREATED")
		for _, s := range snaps {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				s.ID, s.Stage, s.RowCount, s.RowUpdateMax, s.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

func init() {
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "maximum snapshots to list")
	rootCmd.AddCommand(snapshotsCmd)
}
