// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dalzilio/zudd/planner"
)

// SolveOptions holds the flags of the solve command.
type SolveOptions struct {
	*RootOptions
	Problem        ProblemFlags
	Makespan       int
	StepLimit      int
	First          bool
	Full           bool
	Trace          bool
	Sift           bool
	NoDynamicBound bool
	NoLimitCache   bool
	Gantt          string // file receiving the Markdown schedule, "-" for stdout
}

// SolveResult is the output of the solve command.
type SolveResult struct {
	First     int               `json:"first"`
	Steps     int               `json:"steps"`
	Bound     int               `json:"bound,omitempty"`
	Truncated bool              `json:"truncated,omitempty"`
	Counts    map[int]string    `json:"counts"`
	Pruner    string            `json:"pruner"`
	Schedule  *planner.Schedule `json:"schedule,omitempty"`
}

// NewSolveCommand returns the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <model.yaml>",
		Short: "Schedule the feasible plans of a model",
		Long: `Schedule the feasible plans of a model, one time unit at a time, until
every part is completed. With --trace, a schedule using the fewest machines
is extracted from the solutions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	opts.Problem.register(cmd)
	cmd.Flags().IntVarP(&opts.Makespan, "makespan", "m", 0, "static bound on the makespan (0 for none)")
	cmd.Flags().IntVar(&opts.StepLimit, "step-limit", 0, "maximal number of steps (0 for none)")
	cmd.Flags().BoolVar(&opts.First, "first", false, "stop at the first step with a solution")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "explore the full state space, including delayed states")
	cmd.Flags().BoolVarP(&opts.Trace, "trace", "t", false, "record start times and extract a schedule")
	cmd.Flags().BoolVar(&opts.Sift, "sift", false, "reorder variables after each step")
	cmd.Flags().BoolVar(&opts.NoDynamicBound, "no-dynamic-bound", false, "do not prune with the best makespan found so far")
	cmd.Flags().BoolVar(&opts.NoLimitCache, "no-limit-cache", false, "disable the caches of the pruner")
	cmd.Flags().StringVarP(&opts.Gantt, "gantt", "g", "", "write the schedule as Markdown to this file (- for stdout)")

	return cmd
}

func (opts *SolveOptions) apply(cmd *cobra.Command, o *planner.Options) {
	opts.Problem.apply(cmd, o)
	flags := cmd.Flags()
	if flags.Changed("makespan") {
		o.Makespan = opts.Makespan
	}
	if flags.Changed("step-limit") {
		o.StepLimit = opts.StepLimit
	}
	if opts.First {
		o.FirstSolutionOnly = true
	}
	if opts.Full {
		o.FullStateSpace = true
	}
	if opts.Trace || opts.Gantt != "" {
		o.Trace = true
	}
	if opts.Sift {
		o.Sift = true
	}
	if opts.NoDynamicBound {
		o.DynamicBound = false
	}
	if opts.NoLimitCache {
		o.NoLimitCache = true
	}
}

func runSolve(opts *SolveOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	m, mopts, err := load(f, path)
	if err != nil {
		return err
	}
	opts.apply(cmd, &mopts)
	mopts.Logger = opts.logger(cmd)

	p, res, err := planner.Solve(m, mopts)
	if err != nil {
		if p == nil {
			return f.Fail(ExitCommandError, "invalid problem", err)
		}
		return f.Fail(ExitFailure, "cannot schedule", err)
	}
	out := SolveResult{
		First:     res.Outcome.First,
		Steps:     res.Outcome.Steps,
		Bound:     res.Outcome.Bound,
		Truncated: res.Outcome.Truncated,
		Counts:    make(map[int]string, len(res.Outcome.Counts)),
		Pruner:    p.Pruner().Stats().String(),
		Schedule:  res.Schedule,
	}
	for k, n := range res.Outcome.Counts {
		out.Counts[k] = n.String()
	}
	f.VerboseLog("%s", p.DD().Stats())
	if out.First == 0 {
		msg := fmt.Sprintf("no solution after %d steps", out.Steps)
		if out.Truncated {
			msg += " (step limit reached)"
		}
		return f.Fail(ExitFailure, msg, nil)
	}

	if opts.Gantt != "" && opts.Gantt != "-" && res.Schedule != nil {
		if err := writeGantt(opts.Gantt, m, res.Schedule); err != nil {
			return f.Fail(ExitCommandError, "cannot write schedule", err)
		}
		f.VerboseLog("schedule written to %s", opts.Gantt)
	}
	return f.Success(out, func(w io.Writer) error {
		fmt.Fprintf(w, "first solution at step %d (%d steps)\n", out.First, out.Steps)
		steps := make([]int, 0, len(out.Counts))
		for k := range out.Counts {
			steps = append(steps, k)
		}
		sort.Ints(steps)
		for _, k := range steps {
			fmt.Fprintf(w, "  makespan %d: %s solutions\n", k, out.Counts[k])
		}
		if out.Schedule == nil {
			return nil
		}
		fmt.Fprintf(w, "schedule: makespan %d, %d machines\n", out.Schedule.Makespan, out.Schedule.Machines)
		if opts.Gantt == "-" {
			fmt.Fprintln(w)
			return planner.WriteGantt(w, m, out.Schedule)
		}
		return nil
	})
}

func writeGantt(path string, m *planner.Model, sched *planner.Schedule) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := planner.WriteGantt(file, m, sched); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
