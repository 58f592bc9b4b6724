package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flatyml/pkg/flatyml/snapshot"
)

func newSnapshotCommand(opts *globalOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record and inspect parsed snapshots in a SQLite database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "flatyml.db", "snapshot database path")

	openStore := func() (*snapshot.SQLiteStore, error) {
		return snapshot.NewSQLiteStore(dbPath)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save FILE",
		Short: "Parse FILE and store what was read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openParsed(cmd, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := store.Save(r.Name(), r.Snapshot())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list FILE",
		Short: "List stored snapshots of FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SEQ\tID\tENTRIES\tTIME")
			for _, info := range infos {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n",
					info.Sequence, info.ID, info.Entries, info.Timestamp.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	var format string
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Load(args[0])
			if err != nil {
				return err
			}
			return writeSnapshot(cmd.OutOrStdout(), snap, format)
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.AddCommand(show)

	return cmd
}
