// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"sort"

	"github.com/dalzilio/zudd"
)

// Traversal is the structural walk used by the pruner. It hides the
// differences between representations: with a ZBDD, a variable skipped by a
// node is absent; with an OBDD it is free, and the walk must still visit the
// skipped variables that carry a Limit.
type Traversal interface {
	// Top returns the next variable to decide in f, at a level greater or
	// equal to cursor, and the cursor for the children. It returns false when
	// there is nothing left to decide.
	Top(f zudd.Node, cursor int) (zudd.Var, int, bool)
	// Children returns the combinations of f without and with v.
	Children(f zudd.Node, v zudd.Var) (zudd.Node, zudd.Node)
	// Compose builds the node deciding v.
	Compose(v zudd.Var, low, high zudd.Node) zudd.Node
}

// NewTraversal returns the traversal matching the representation of dd.
// Function limited reports the variables that carry a Limit.
func NewTraversal(dd *zudd.DD, limited func(zudd.Var) bool) Traversal {
	if dd.Kind() == zudd.OBDD {
		return &obddTraversal{dd: dd, limited: limited, generation: ^uint64(0)}
	}
	return zbddTraversal{dd: dd}
}

type zbddTraversal struct {
	dd *zudd.DD
}

func (z zbddTraversal) Top(f zudd.Node, _ int) (zudd.Var, int, bool) {
	v, ok := z.dd.Top(f)
	if !ok {
		return -1, 0, false
	}
	return v, 0, true
}

func (z zbddTraversal) Children(f zudd.Node, v zudd.Var) (zudd.Node, zudd.Node) {
	return z.dd.Cofactors(f, v)
}

func (z zbddTraversal) Compose(v zudd.Var, low, high zudd.Node) zudd.Node {
	return z.dd.Compose(v, low, high)
}

type obddTraversal struct {
	dd         *zudd.DD
	limited    func(zudd.Var) bool
	levels     []int // sorted levels of limited variables
	generation uint64
}

// next returns the first level greater or equal to cursor with a limited
// variable. Levels are recomputed after a reordering.
func (o *obddTraversal) next(cursor int) int {
	if g := o.dd.Generation(); g != o.generation {
		o.generation = g
		o.levels = o.levels[:0]
		for l := 0; l < o.dd.Varnum(); l++ {
			if o.limited(o.dd.VarAt(l)) {
				o.levels = append(o.levels, l)
			}
		}
	}
	k := sort.SearchInts(o.levels, cursor)
	if k == len(o.levels) {
		return o.dd.Varnum()
	}
	return o.levels[k]
}

func (o *obddTraversal) Top(f zudd.Node, cursor int) (zudd.Var, int, bool) {
	l := o.dd.LevelOf(f)
	if n := o.next(cursor); n < l {
		l = n
	}
	if l < 0 || l >= o.dd.Varnum() {
		return -1, 0, false
	}
	return o.dd.VarAt(l), l + 1, true
}

func (o *obddTraversal) Children(f zudd.Node, v zudd.Var) (zudd.Node, zudd.Node) {
	return o.dd.Cofactors(f, v)
}

func (o *obddTraversal) Compose(v zudd.Var, low, high zudd.Node) zudd.Node {
	return o.dd.Compose(v, low, high)
}
