// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dalzilio/zudd"
	"github.com/dalzilio/zudd/planner"
)

// PlanOptions holds the flags of the plan command.
type PlanOptions struct {
	*RootOptions
	Problem ProblemFlags
	Dot     string // file receiving the diagram of the plans
	List    bool   // list the factory configurations
}

// PlanResult is the output of the plan command.
type PlanResult struct {
	Plans          string   `json:"plans"`
	Configurations string   `json:"configurations"`
	Nodes          int      `json:"nodes"`
	List           []string `json:"list,omitempty"`
}

// NewPlanCommand returns the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <model.yaml>",
		Short: "Count the feasible plans and factory configurations",
		Long: `Compute the family of feasible plans of a model: the choice of a
sequence for each part, of a machine type for each operation, and of the
machines installed in the factory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	opts.Problem.register(cmd)
	cmd.Flags().StringVar(&opts.Dot, "dot", "", "write the diagram of the plans in DOT format to this file")
	cmd.Flags().BoolVarP(&opts.List, "list", "l", false, "list the factory configurations")

	return cmd
}

func runPlan(opts *PlanOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	m, mopts, err := load(f, path)
	if err != nil {
		return err
	}
	opts.Problem.apply(cmd, &mopts)
	mopts.Logger = opts.logger(cmd)

	p, err := planner.New(m, mopts)
	if err != nil {
		return f.Fail(ExitCommandError, "invalid problem", err)
	}
	plan, err := p.FeasiblePlans()
	if err != nil {
		return f.Fail(ExitFailure, "cannot compute plans", err)
	}
	configs, err := p.Configurations(plan)
	if err != nil {
		return f.Fail(ExitFailure, "cannot compute configurations", err)
	}
	dd := p.DD()
	res := PlanResult{
		Plans:          dd.Count(plan).String(),
		Configurations: dd.Count(configs).String(),
		Nodes:          dd.Size(plan),
	}
	if opts.List {
		res.List, err = combinations(dd, configs)
		if err != nil {
			return f.Fail(ExitFailure, "cannot list configurations", err)
		}
	}
	if opts.Dot != "" {
		if err := writeDot(opts.Dot, dd, plan); err != nil {
			return f.Fail(ExitCommandError, "cannot write diagram", err)
		}
		f.VerboseLog("diagram written to %s", opts.Dot)
	}
	f.VerboseLog("%s", dd.Stats())
	return f.Success(res, func(w io.Writer) error {
		fmt.Fprintf(w, "feasible plans: %s (%d nodes)\n", res.Plans, res.Nodes)
		fmt.Fprintf(w, "configurations: %s\n", res.Configurations)
		for _, c := range res.List {
			fmt.Fprintf(w, "  %s\n", c)
		}
		return nil
	})
}

// combinations returns the combinations of f, each one written as the sorted
// names of its variables.
func combinations(dd *zudd.DD, f zudd.Node) ([]string, error) {
	res := []string{}
	err := dd.Allcomb(f, func(vs []zudd.Var) error {
		names := make([]string, len(vs))
		for k, v := range vs {
			names[k] = dd.Name(v)
		}
		sort.Strings(names)
		res = append(res, strings.Join(names, " "))
		return nil
	})
	sort.Strings(res)
	return res, err
}

func writeDot(path string, dd *zudd.DD, f zudd.Node) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dd.PrintDot(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
