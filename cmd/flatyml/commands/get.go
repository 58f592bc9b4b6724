package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCommand(opts *globalOptions) *cobra.Command {
	var showKind bool

	cmd := &cobra.Command{
		Use:   "get FILE KEY",
		Short: "Print the value of one key",
		Example: `  # Print a value
  flatyml get server.yml name

  # Print the value kind as well
  flatyml get --kind server.yml slots`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openParsed(cmd, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			v, ok := r.Get(args[1])
			if !ok {
				return fmt.Errorf("key %q not found in %s", args[1], r.Name())
			}

			out := cmd.OutOrStdout()
			if showKind {
				fmt.Fprintf(out, "%s\t%v\n", v.Kind, v.Any())
				return nil
			}
			fmt.Fprintln(out, v.Any())
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKind, "kind", false, "prefix the value with its kind")

	return cmd
}
