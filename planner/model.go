// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
)

// Operation is a step of a process plan.
type Operation struct {
	ID   int
	Name string
}

// Machine is a machine type; Instances physical units of this type may be
// installed in the factory.
type Machine struct {
	ID        int
	Name      string
	Instances int
}

// ItemKind is the kind of an item in a sequence.
type ItemKind int

const (
	// Default items are executed in the order of the sequence.
	Default ItemKind = iota
	// Permutation items, when adjacent, can be executed in any order.
	Permutation
	// Alternative items are replaced by one of the sequences of a sub-part.
	Alternative
)

func (k ItemKind) String() string {
	switch k {
	case Permutation:
		return "PERMUTATION"
	case Alternative:
		return "ALTERNATIVE"
	}
	return "DEFAULT"
}

// SequenceItem is an element of a process plan. Op is used with DEFAULT and
// PERMUTATION items, Part with ALTERNATIVE items.
type SequenceItem struct {
	Kind ItemKind
	Op   int
	Part int
}

// Sequence is a process plan.
type Sequence []SequenceItem

// Part is a product to manufacture, with alternative process plans. Sub-parts
// are only used through ALTERNATIVE items and are not scheduled on their own.
type Part struct {
	ID        int
	Name      string
	Color     string
	Subpart   bool
	Sequences []Sequence
}

// Model is the input of the planner. Times[w][i] is the processing time of
// operation w on machine type i, with 0 meaning that the machine cannot
// perform the operation.
type Model struct {
	Operations []Operation
	Machines   []Machine
	Times      [][]int
	Parts      []*Part
}

// Validate checks the structure of the model: identifiers must match the
// position in each list and references must be in range. It also rejects
// cycles between sub-parts.
func (m *Model) Validate() error {
	for k, o := range m.Operations {
		if o.ID != k {
			return fmt.Errorf("%w: operation %q has id %d at position %d", ErrModel, o.Name, o.ID, k)
		}
	}
	for k, mc := range m.Machines {
		if mc.ID != k {
			return fmt.Errorf("%w: machine %q has id %d at position %d", ErrModel, mc.Name, mc.ID, k)
		}
		if mc.Instances < 1 {
			return fmt.Errorf("%w: machine %q has no instance", ErrModel, mc.Name)
		}
	}
	if len(m.Times) != len(m.Operations) {
		return fmt.Errorf("%w: %d rows in the operation matrix for %d operations", ErrModel, len(m.Times), len(m.Operations))
	}
	for w, row := range m.Times {
		if len(row) != len(m.Machines) {
			return fmt.Errorf("%w: %d columns in row %d of the operation matrix for %d machines", ErrModel, len(row), w, len(m.Machines))
		}
		for i, p := range row {
			if p < 0 {
				return fmt.Errorf("%w: negative time for operation %d on machine %d", ErrModel, w, i)
			}
		}
	}
	jobs := 0
	for k, p := range m.Parts {
		if p.ID != k {
			return fmt.Errorf("%w: part %q has id %d at position %d", ErrModel, p.Name, p.ID, k)
		}
		if !p.Subpart {
			jobs++
		}
		if len(p.Sequences) == 0 {
			return fmt.Errorf("%w: part %q has no sequence", ErrModel, p.Name)
		}
		for n, seq := range p.Sequences {
			if len(seq) == 0 {
				return fmt.Errorf("%w: sequence %d of part %q is empty", ErrModel, n, p.Name)
			}
			for _, it := range seq {
				switch it.Kind {
				case Default, Permutation:
					if it.Op < 0 || it.Op >= len(m.Operations) {
						return fmt.Errorf("%w: unknown operation %d in part %q", ErrModel, it.Op, p.Name)
					}
				case Alternative:
					if it.Part < 0 || it.Part >= len(m.Parts) {
						return fmt.Errorf("%w: unknown sub-part %d in part %q", ErrModel, it.Part, p.Name)
					}
					if !m.Parts[it.Part].Subpart {
						return fmt.Errorf("%w: part %q used as an alternative in %q is not a sub-part", ErrModel, m.Parts[it.Part].Name, p.Name)
					}
				default:
					return fmt.Errorf("%w: unknown item kind %d in part %q", ErrModel, it.Kind, p.Name)
				}
			}
		}
	}
	if jobs == 0 {
		return fmt.Errorf("%w: no part to schedule", ErrModel)
	}
	// sub-parts must not reference themselves, directly or not
	state := make([]int, len(m.Parts))
	var visit func(p int) error
	visit = func(p int) error {
		switch state[p] {
		case 1:
			return fmt.Errorf("%w: cyclic sub-part %q", ErrModel, m.Parts[p].Name)
		case 2:
			return nil
		}
		state[p] = 1
		for _, seq := range m.Parts[p].Sequences {
			for _, it := range seq {
				if it.Kind == Alternative {
					if err := visit(it.Part); err != nil {
						return err
					}
				}
			}
		}
		state[p] = 2
		return nil
	}
	for k := range m.Parts {
		if err := visit(k); err != nil {
			return err
		}
	}
	return nil
}

// Jobs returns the parts that must be scheduled, that is all the parts that
// are not sub-parts.
func (m *Model) Jobs() []*Part {
	res := []*Part{}
	for _, p := range m.Parts {
		if !p.Subpart {
			res = append(res, p)
		}
	}
	return res
}

// Capable returns the machine types that can perform operation w.
func (m *Model) Capable(w int) []int {
	res := []int{}
	for i, p := range m.Times[w] {
		if p > 0 {
			res = append(res, i)
		}
	}
	return res
}

// maxTime returns the longest processing time of operation w.
func (m *Model) maxTime(w int) int {
	res := 0
	for _, p := range m.Times[w] {
		if p > res {
			res = p
		}
	}
	return res
}

// longest returns the longest total processing time of a process plan of
// part p.
func (m *Model) longest(p int) int {
	res := 0
	for _, seq := range m.Parts[p].Sequences {
		total := 0
		for _, it := range seq {
			if it.Kind == Alternative {
				total += m.longest(it.Part)
			} else {
				total += m.maxTime(it.Op)
			}
		}
		if total > res {
			res = total
		}
	}
	return res
}

// Horizon returns an upper bound on the makespan of any schedule that never
// leaves every machine idle while an operation could start: at each tick at
// least one operation is running, so the makespan is at most the total
// processing time of the chosen plans.
func (m *Model) Horizon() int {
	res := 0
	for _, p := range m.Jobs() {
		res += m.longest(p.ID)
	}
	return res
}

// MaxTime returns the longest processing time in the operation matrix.
func (m *Model) MaxTime() int {
	res := 0
	for w := range m.Times {
		if t := m.maxTime(w); t > res {
			res = t
		}
	}
	return res
}
