package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/flatyml/pkg/flatyml"
)

func newDumpCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every recognized key/value pair",
		Long: `Print every recognized key/value pair.

The yaml format is itself valid flatyml input, so dumping normalizes a file
to exactly the assignments the reader understood.`,
		Example: `  flatyml dump server.yml
  flatyml dump --format json server.yml
  cat server.yml | flatyml dump -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openParsed(cmd, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			return writeSnapshot(cmd.OutOrStdout(), r.Snapshot(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")

	return cmd
}

func writeSnapshot(w io.Writer, snap flatyml.Snapshot, format string) error {
	switch format {
	case "yaml":
		if len(snap) == 0 {
			return nil
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(snap)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Map())
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
