// Package commands implements the flatyml command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flatyml/pkg/flatyml"
	"github.com/randalmurphal/flatyml/pkg/flatyml/observability"
)

// globalOptions holds persistent flags shared by every subcommand.
type globalOptions struct {
	verbose    bool
	singlePass bool
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	return NewRootCommand(version, commit, buildDate).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "flatyml",
		Short: "Read flat key/value pairs from YAML-like config files",
		Long: `flatyml reads integer and quoted-string assignments from a
restricted YAML-like configuration file.

Recognized lines:
  key: 123
  key: "some value"

Everything else is ignored.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.singlePass, "single-pass", false, "apply assignments in document order regardless of kind")

	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newKeysCommand(opts))
	rootCmd.AddCommand(newDumpCommand(opts))
	rootCmd.AddCommand(newSnapshotCommand(opts))

	return rootCmd
}

// readerOptions turns the global flags into reader options.
func (o *globalOptions) readerOptions(stderr io.Writer) []flatyml.Option {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	mode := flatyml.TwoPass
	if o.singlePass {
		mode = flatyml.SinglePass
	}

	return []flatyml.Option{
		flatyml.WithLogger(logger),
		flatyml.WithScanMode(mode),
		flatyml.WithMetrics(observability.NewMetricsRecorder()),
		flatyml.WithSpanManager(observability.NewSpanManager()),
	}
}

// openParsed opens and parses path. "-" reads from the command's stdin.
func (o *globalOptions) openParsed(cmd *cobra.Command, path string) (*flatyml.Reader, error) {
	ropts := o.readerOptions(cmd.ErrOrStderr())

	var (
		r   *flatyml.Reader
		err error
	)
	if path == "-" {
		r, err = flatyml.OpenFrom("stdin", cmd.InOrStdin(), ropts...)
	} else {
		r, err = flatyml.Open(path, ropts...)
	}
	if err != nil {
		return nil, err
	}

	if err := r.Parse(cmd.Context()); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}
