// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dalzilio/zudd"
)

// NoCapacity is the factory capacity used when the number of installed
// machines is not bounded. All the instances of a used machine type are then
// installed.
const NoCapacity = -1

// Options gathers the parameters of the planner. Options can be read from the
// model file, in which case field names follow the yaml tags.
type Options struct {
	Representation    string   `yaml:"representation"`    // "zbdd" or "obdd"
	FactoryCapacity   int      `yaml:"factoryCapacity"`   // maximal number of installed instances, or NoCapacity
	MachineTime       int      `yaml:"machineTime"`       // bound on the total machine time of each part (0 if none)
	Makespan          int      `yaml:"makespan"`          // static bound on the makespan (0 if none)
	DynamicBound      bool     `yaml:"dynamicBound"`      // prune with the best makespan found so far
	StepLimit         int      `yaml:"stepLimit"`         // maximal number of steps (0 if none)
	FirstSolutionOnly bool     `yaml:"firstSolutionOnly"` // stop at the first step with a solution
	FullStateSpace    bool     `yaml:"fullStateSpace"`    // keep delayed states
	Trace             bool     `yaml:"trace"`             // record start times, needed by Extract
	Sift              bool     `yaml:"sift"`              // reorder variables after each step
	PermutationLimit  int      `yaml:"permutationLimit"`  // longest run of PERMUTATION items
	NoLimitCache      bool     `yaml:"noLimitCache"`      // disable the caches of the pruner
	LimitParts        []string `yaml:"limitParts"`        // parts constrained by pruning (all if empty)
	Nodesize          int      `yaml:"nodesize"`          // initial size of the node table
	Cachesize         int      `yaml:"cachesize"`         // initial size of the operation cache

	Logger *slog.Logger `yaml:"-"`
}

// DefaultOptions returns the options used when nothing is specified.
func DefaultOptions() Options {
	return Options{
		Representation:   "zbdd",
		FactoryCapacity:  NoCapacity,
		DynamicBound:     true,
		PermutationLimit: 3,
		Nodesize:         10000,
		Cachesize:        10000,
	}
}

// Validate checks the range of numerical options.
func (o *Options) Validate() error {
	if _, err := o.kind(); err != nil {
		return err
	}
	switch {
	case o.FactoryCapacity < NoCapacity:
		return fmt.Errorf("%w: factory capacity %d", ErrModel, o.FactoryCapacity)
	case o.MachineTime < 0:
		return fmt.Errorf("%w: negative machine time %d", ErrModel, o.MachineTime)
	case o.Makespan < 0:
		return fmt.Errorf("%w: negative makespan %d", ErrModel, o.Makespan)
	case o.StepLimit < 0:
		return fmt.Errorf("%w: negative step limit %d", ErrModel, o.StepLimit)
	case o.PermutationLimit < 1:
		return fmt.Errorf("%w: permutation limit %d must be positive", ErrModel, o.PermutationLimit)
	}
	return nil
}

func (o *Options) kind() (zudd.Kind, error) {
	switch strings.ToLower(o.Representation) {
	case "", "zbdd", "zdd":
		return zudd.ZBDD, nil
	case "obdd", "bdd":
		return zudd.OBDD, nil
	}
	return zudd.ZBDD, fmt.Errorf("%w: unknown representation %q", ErrModel, o.Representation)
}

// logger returns the logger of the options, or one that discards everything.
func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
