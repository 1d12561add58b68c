// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"sort"

	"github.com/dalzilio/zudd"
)

// slotop is an operation at a given slot in a process plan.
type slotop struct {
	op   int
	slot int
}

// Layout is the result of a walk through the process plans of every job,
// without set algebra. It lists the slots that can be reached by each
// operation and is used to declare all the variables before building
// families.
type Layout struct {
	Jobs    []int            // parts to schedule
	Ops     map[int][]slotop // (operation, slot) pairs of each job, by slot
	Slots   map[int]int      // number of slots in the longest plan of each job
	Ticks   map[int]int      // longest processing time of an operation of each job
	Horizon int              // bound on the makespan of non-delay schedules
}

// NewLayout walks the process plans of the jobs of m. It returns an error
// wrapping ErrPermutationGroup when a run of PERMUTATION items is longer than
// limit.
func NewLayout(m *Model, limit int) (*Layout, error) {
	l := &Layout{
		Ops:     make(map[int][]slotop),
		Slots:   make(map[int]int),
		Ticks:   make(map[int]int),
		Horizon: m.Horizon(),
	}
	for _, p := range m.Jobs() {
		pairs := make(map[slotop]bool)
		ends, err := walk(m, p, 0, pairs, limit)
		if err != nil {
			return nil, err
		}
		l.Jobs = append(l.Jobs, p.ID)
		for _, e := range ends {
			if e > l.Slots[p.ID] {
				l.Slots[p.ID] = e
			}
		}
		ops := make([]slotop, 0, len(pairs))
		for so := range pairs {
			ops = append(ops, so)
			if t := m.maxTime(so.op); t > l.Ticks[p.ID] {
				l.Ticks[p.ID] = t
			}
		}
		sort.Slice(ops, func(i, j int) bool {
			if ops[i].slot == ops[j].slot {
				return ops[i].op < ops[j].op
			}
			return ops[i].slot < ops[j].slot
		})
		l.Ops[p.ID] = ops
	}
	return l, nil
}

// walk adds to pairs the (operation, slot) pairs of part p when its first
// item is at slot start. It returns the possible slots following the last
// item, in increasing order.
func walk(m *Model, p *Part, start int, pairs map[slotop]bool, limit int) ([]int, error) {
	res := make(map[int]bool)
	for _, seq := range p.Sequences {
		ends := []int{start}
		for k := 0; k < len(seq); {
			it := seq[k]
			switch it.Kind {
			case Default:
				for n, e := range ends {
					pairs[slotop{it.Op, e}] = true
					ends[n] = e + 1
				}
				k++
			case Alternative:
				next := make(map[int]bool)
				for _, e := range ends {
					sub, err := walk(m, m.Parts[it.Part], e, pairs, limit)
					if err != nil {
						return nil, err
					}
					for _, e2 := range sub {
						next[e2] = true
					}
				}
				ends = sortedKeys(next)
				k++
			case Permutation:
				run := permutationRun(seq, k)
				if len(run) > limit {
					return nil, fmt.Errorf("%w: %d items in part %q (limit is %d)", ErrPermutationGroup, len(run), p.Name, limit)
				}
				for n, e := range ends {
					for _, w := range run {
						for pos := 0; pos < len(run); pos++ {
							pairs[slotop{w, e + pos}] = true
						}
					}
					ends[n] = e + len(run)
				}
				k += len(run)
			}
		}
		for _, e := range ends {
			res[e] = true
		}
	}
	return sortedKeys(res), nil
}

// permutationRun returns the operations of the run of PERMUTATION items
// starting at position k.
func permutationRun(seq Sequence, k int) []int {
	run := []int{}
	for ; k < len(seq) && seq[k].Kind == Permutation; k++ {
		run = append(run, seq[k].Op)
	}
	return run
}

func sortedKeys(m map[int]bool) []int {
	res := make([]int, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Ints(res)
	return res
}

// Declare adds to the catalog all the variables that can occur in the
// families of the planner. Variables are grouped by job and by slot.
func (l *Layout) Declare(m *Model, c *Catalog, trace bool) error {
	for _, s := range l.Jobs {
		for r := 0; r < l.Slots[s]; r++ {
			if _, err := c.Declare(W, s, r); err != nil {
				return err
			}
			if _, err := c.Declare(R, s, r); err != nil {
				return err
			}
			machines := make(map[int]bool)
			for _, so := range l.Ops[s] {
				if so.slot != r {
					continue
				}
				if _, err := c.Declare(O, s, so.op, r); err != nil {
					return err
				}
				for _, i := range m.Capable(so.op) {
					machines[i] = true
					lim := Limit{Part: s, Machine: i, Weight: m.Times[so.op][i]}
					if _, err := c.declareLimit(M, lim, s, so.op, r, i); err != nil {
						return err
					}
				}
			}
			for _, i := range sortedKeys(machines) {
				for j := 0; j < m.Machines[i].Instances; j++ {
					if _, err := c.Declare(S, s, r, i, j); err != nil {
						return err
					}
				}
			}
			if trace {
				for t := 0; t < l.Horizon; t++ {
					if _, err := c.Declare(G, s, r, t); err != nil {
						return err
					}
				}
			}
		}
		for t := 0; t < l.Ticks[s]; t++ {
			if _, err := c.declareLimit(T, Limit{Part: s, Machine: -1, Weight: t + 1}, s, t); err != nil {
				return err
			}
		}
	}
	total := 0
	for _, mc := range m.Machines {
		for j := 0; j < mc.Instances; j++ {
			if _, err := c.Declare(B, mc.ID, j); err != nil {
				return err
			}
			if _, err := c.Declare(MX, mc.ID, j); err != nil {
				return err
			}
		}
		total += mc.Instances
	}
	for k := 0; k <= total; k++ {
		if _, err := c.Declare(FS, k); err != nil {
			return err
		}
	}
	return nil
}

// ************************************************************

// Encoder builds the family of the process plans of a part. Each combination
// is made of the O variables of one plan.
type Encoder struct {
	model *Model
	cat   *Catalog
	dd    *zudd.DD
	limit int
	code  map[int]zudd.Node // encoding of each part, from slot 0
}

// NewEncoder returns an encoder for the parts of m. All the O variables must
// already be in the catalog.
func NewEncoder(m *Model, c *Catalog, limit int) *Encoder {
	return &Encoder{
		model: m,
		cat:   c,
		dd:    c.dd,
		limit: limit,
		code:  make(map[int]zudd.Node),
	}
}

// Encode returns the family of the process plans of part, with slot numbers
// starting from start. The variables used are those of part active, which
// differs from part when encoding a sub-part. Top-level encodings are cached.
func (e *Encoder) Encode(part *Part, active, start int) (zudd.Node, error) {
	top := part.ID == active && start == 0
	if top {
		if f, ok := e.code[part.ID]; ok {
			return f, nil
		}
	}
	ends, err := e.encode(part, active, start)
	if err != nil {
		return nil, err
	}
	res := e.dd.Empty()
	for _, k := range sortedNodeKeys(ends) {
		res = e.dd.Union(res, ends[k])
	}
	if e.dd.Errored() {
		return nil, fmt.Errorf("%w: %s", ErrEngine, e.dd.Error())
	}
	if top {
		e.code[part.ID] = res
	}
	return res, nil
}

// encode returns the plans of part grouped by the slot following their last
// item.
func (e *Encoder) encode(part *Part, active, start int) (map[int]zudd.Node, error) {
	res := make(map[int]zudd.Node)
	for _, seq := range part.Sequences {
		acc := map[int]zudd.Node{start: e.dd.Base()}
		for k := 0; k < len(seq); {
			it := seq[k]
			next := make(map[int]zudd.Node)
			switch it.Kind {
			case Default:
				for slot, f := range acc {
					v, err := e.find(O, active, it.Op, slot)
					if err != nil {
						return nil, err
					}
					addTo(e.dd, next, slot+1, e.dd.Product(f, e.dd.Element(v)))
				}
				k++
			case Alternative:
				for slot, f := range acc {
					sub, err := e.encode(e.model.Parts[it.Part], active, slot)
					if err != nil {
						return nil, err
					}
					for end, g := range sub {
						addTo(e.dd, next, end, e.dd.Product(f, g))
					}
				}
				k++
			case Permutation:
				run := permutationRun(seq, k)
				if len(run) > e.limit {
					return nil, fmt.Errorf("%w: %d items in part %q (limit is %d)", ErrPermutationGroup, len(run), part.Name, e.limit)
				}
				for slot, f := range acc {
					g, err := e.orderings(run, active, slot)
					if err != nil {
						return nil, err
					}
					addTo(e.dd, next, slot+len(run), e.dd.Product(f, g))
				}
				k += len(run)
			}
			acc = next
		}
		for end, f := range acc {
			addTo(e.dd, res, end, f)
		}
	}
	return res, nil
}

// orderings returns the family of all the orders of the operations in run,
// placed at consecutive slots from start.
func (e *Encoder) orderings(run []int, active, start int) (zudd.Node, error) {
	res := e.dd.Empty()
	for _, perm := range permutations(len(run)) {
		vs := make([]zudd.Var, len(run))
		for pos, k := range perm {
			v, err := e.find(O, active, run[k], start+pos)
			if err != nil {
				return nil, err
			}
			vs[pos] = v
		}
		res = e.dd.Union(res, e.dd.Combination(vs...))
	}
	return res, nil
}

func (e *Encoder) find(k Kind, index ...int) (zudd.Var, error) {
	v, ok := e.cat.Find(k, index...)
	if !ok {
		return -1, fmt.Errorf("%w: undeclared variable %s", ErrInconsistent, varname(k, index))
	}
	return v, nil
}

func addTo(dd *zudd.DD, m map[int]zudd.Node, k int, f zudd.Node) {
	if g, ok := m[k]; ok {
		m[k] = dd.Union(g, f)
		return
	}
	m[k] = f
}

func sortedNodeKeys(m map[int]zudd.Node) []int {
	res := make([]int, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Ints(res)
	return res
}

// permutations returns all the orders of 0..n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	res := [][]int{}
	for _, p := range permutations(n - 1) {
		for pos := 0; pos <= len(p); pos++ {
			q := make([]int, 0, n)
			q = append(q, p[:pos]...)
			q = append(q, n-1)
			q = append(q, p[pos:]...)
			res = append(res, q)
		}
	}
	return res
}
