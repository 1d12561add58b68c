// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cli

import (
	"github.com/spf13/cobra"

	"github.com/dalzilio/zudd/planner"
)

// ProblemFlags are the options of the planner that can be overridden on the
// command line. A flag only overrides the model file when it is set.
type ProblemFlags struct {
	Representation   string
	Capacity         int
	MachineTime      int
	PermutationLimit int
	LimitParts       []string
}

func (pf *ProblemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pf.Representation, "representation", "r", "zbdd", "decision diagrams (zbdd|obdd)")
	cmd.Flags().IntVarP(&pf.Capacity, "capacity", "c", planner.NoCapacity, "maximal number of installed machines (-1 for none)")
	cmd.Flags().IntVar(&pf.MachineTime, "machine-time", 0, "bound on the total machine time of each part (0 for none)")
	cmd.Flags().IntVar(&pf.PermutationLimit, "permutation-limit", 3, "longest run of permutation items")
	cmd.Flags().StringSliceVar(&pf.LimitParts, "limit-parts", nil, "parts constrained by pruning (all if empty)")
}

func (pf *ProblemFlags) apply(cmd *cobra.Command, opts *planner.Options) {
	flags := cmd.Flags()
	if flags.Changed("representation") {
		opts.Representation = pf.Representation
	}
	if flags.Changed("capacity") {
		opts.FactoryCapacity = pf.Capacity
	}
	if flags.Changed("machine-time") {
		opts.MachineTime = pf.MachineTime
	}
	if flags.Changed("permutation-limit") {
		opts.PermutationLimit = pf.PermutationLimit
	}
	if flags.Changed("limit-parts") {
		opts.LimitParts = pf.LimitParts
	}
}
