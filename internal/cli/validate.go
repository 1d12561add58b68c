// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ModelSummary describes a valid model.
type ModelSummary struct {
	Operations     int    `json:"operations"`
	Machines       int    `json:"machines"`
	Instances      int    `json:"instances"`
	Parts          int    `json:"parts"`
	Jobs           int    `json:"jobs"`
	Horizon        int    `json:"horizon"`
	Representation string `json:"representation"`
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model.yaml>",
		Short: "Check a model file",
		Long: `Check that a model file is well formed: names are unique and defined,
every operation can be performed by some machine and sub-parts do not form a
cycle.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	m, mopts, err := load(f, path)
	if err != nil {
		return err
	}
	sum := ModelSummary{
		Operations:     len(m.Operations),
		Machines:       len(m.Machines),
		Parts:          len(m.Parts),
		Jobs:           len(m.Jobs()),
		Horizon:        m.Horizon(),
		Representation: mopts.Representation,
	}
	for _, mc := range m.Machines {
		sum.Instances += mc.Instances
	}
	return f.Success(sum, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ model valid: %d jobs, %d parts, %d machine types (%d instances), horizon %d\n",
			sum.Jobs, sum.Parts, sum.Machines, sum.Instances, sum.Horizon)
		return err
	})
}
