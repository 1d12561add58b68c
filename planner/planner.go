// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"log/slog"

	"github.com/dalzilio/zudd"
)

// Planner holds the diagram and the variables of a planning problem. It is
// built once from a model and is not safe for concurrent use.
type Planner struct {
	model  *Model
	opts   Options
	log    *slog.Logger
	dd     *zudd.DD
	cat    *Catalog
	layout *Layout
	enc    *Encoder
	pruner *Pruner
	steps  []int // steps with a solution in the last call to Schedule
}

// New checks the model and the options and declares all the variables of the
// problem.
func New(m *Model, opts Options) (*Planner, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	kind, _ := opts.kind()
	dd, err := zudd.New(zudd.Representation(kind), zudd.Nodesize(opts.Nodesize), zudd.Cachesize(opts.Cachesize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEngine, err)
	}
	filter, err := partFilter(m, opts.LimitParts)
	if err != nil {
		return nil, err
	}
	layout, err := NewLayout(m, opts.PermutationLimit)
	if err != nil {
		return nil, err
	}
	p := &Planner{
		model:  m,
		opts:   opts,
		log:    opts.logger(),
		dd:     dd,
		cat:    NewCatalog(dd, filter),
		layout: layout,
	}
	if err := layout.Declare(m, p.cat, opts.Trace); err != nil {
		return nil, err
	}
	p.enc = NewEncoder(m, p.cat, opts.PermutationLimit)
	p.pruner = NewPruner(p.cat, opts.NoLimitCache)
	p.log.Debug("declared variables",
		slog.String("representation", kind.String()),
		slog.Int("variables", dd.Varnum()),
		slog.Int("jobs", len(layout.Jobs)),
		slog.Int("horizon", layout.Horizon))
	return p, nil
}

// partFilter returns the predicate selecting the parts, given by name, whose
// variables carry a Limit. An empty list selects every part.
func partFilter(m *Model, names []string) (func(int) bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	keep := make(map[int]bool)
	for _, name := range names {
		found := false
		for _, p := range m.Parts {
			if p.Name == name {
				keep[p.ID] = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown part %q in limitParts", ErrModel, name)
		}
	}
	return func(s int) bool { return keep[s] }, nil
}

// DD returns the diagram of the planner.
func (p *Planner) DD() *zudd.DD {
	return p.dd
}

// Catalog returns the variables of the planner.
func (p *Planner) Catalog() *Catalog {
	return p.cat
}

// Encoder returns the plan encoder.
func (p *Planner) Encoder() *Encoder {
	return p.enc
}

// Pruner returns the pruner used by the scheduler.
func (p *Planner) Pruner() *Pruner {
	return p.pruner
}

// Layout returns the slots and operations of each job.
func (p *Planner) Layout() *Layout {
	return p.layout
}

// Model returns the model of the planner.
func (p *Planner) Model() *Model {
	return p.model
}

// Options returns the options of the planner.
func (p *Planner) Options() Options {
	return p.opts
}

// check returns the error status of the diagram, if any.
func (p *Planner) check() error {
	if p.dd.Errored() {
		return fmt.Errorf("%w: %s", ErrEngine, p.dd.Error())
	}
	return nil
}

// Result is what Solve computes.
type Result struct {
	Plan     zudd.Node // feasible plans with their factory configuration
	Outcome  *Outcome  // result of the scheduling loop
	Schedule *Schedule // representative schedule, nil without trace or solution
}

// Solve computes the feasible plans of the model, schedules them and, when
// trace capture is enabled and a solution exists, extracts a representative
// schedule. The absence of solution is not an error.
func Solve(m *Model, opts Options) (*Planner, *Result, error) {
	p, err := New(m, opts)
	if err != nil {
		return nil, nil, err
	}
	plan, err := p.FeasiblePlans()
	if err != nil {
		return p, nil, err
	}
	res := &Result{Plan: plan}
	start, err := p.Initial(plan)
	if err != nil {
		return p, res, err
	}
	res.Outcome, err = p.Schedule(start)
	if err != nil {
		return p, res, err
	}
	if opts.Trace && !p.dd.IsEmpty(res.Outcome.Solutions) {
		res.Schedule, err = p.Extract(plan, res.Outcome.Solutions)
		if err != nil {
			return p, res, err
		}
	}
	return p, res, nil
}
