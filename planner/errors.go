// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import "errors"

// Configuration errors make the model unusable. A model without feasible plan,
// or without schedule within the bound, is not an error: the result is then an
// empty family.
var (
	// ErrModel reports a malformed model or an invalid option.
	ErrModel = errors.New("invalid model")
	// ErrPermutationGroup reports a run of PERMUTATION items longer than the
	// permutation limit.
	ErrPermutationGroup = errors.New("permutation group too large")
	// ErrInconsistent reports a scheduling state that violates the invariants
	// of the state encoding.
	ErrInconsistent = errors.New("inconsistent scheduling state")
	// ErrNoTrace is returned when extracting a schedule from states computed
	// without trace capture.
	ErrNoTrace = errors.New("schedule extraction requires trace capture")
	// ErrNoSolution is returned when extracting a schedule from an empty
	// family.
	ErrNoSolution = errors.New("no solution")
	// ErrEngine wraps the errors reported by the decision diagram.
	ErrEngine = errors.New("decision diagram error")
)
