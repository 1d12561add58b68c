// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dalzilio/zudd/planner"
)

// RootOptions holds the global flags.
type RootOptions struct {
	Verbose bool
	Format  string // "text" or "json"
}

// ValidFormats lists the output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand returns the root command of zplan.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "zplan",
		Short: "zplan - symbolic production planning",
		Long: `zplan computes the production plans of a workshop and schedules them
with decision diagrams. Models are YAML files listing operations, machines,
processing times and parts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewSolveCommand(opts))

	return cmd
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// logger returns the logger passed to the planner: debug messages on the
// error stream in verbose mode, nothing otherwise.
func (opts *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !opts.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// load reads a model file and reports failures as command errors.
func load(f *OutputFormatter, path string) (*planner.Model, planner.Options, error) {
	m, opts, err := planner.Load(path)
	if err != nil {
		return nil, opts, f.Fail(ExitCommandError, "cannot load model", err)
	}
	f.VerboseLog("loaded %s: %d operations, %d machines, %d parts", path, len(m.Operations), len(m.Machines), len(m.Parts))
	return m, opts, nil
}
