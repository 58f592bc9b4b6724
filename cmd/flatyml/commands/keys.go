package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeysCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys FILE",
		Short: "List recognized keys in the order they were first seen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openParsed(cmd, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			for _, k := range r.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
