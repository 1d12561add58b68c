// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/dalzilio/zudd"
)

// Outcome is the result of the scheduling loop. The solutions found after k
// steps, that is with a makespan of k, are also registered in the diagram
// under the name "result#k".
type Outcome struct {
	Solutions zudd.Node        // union of all the solutions
	Counts    map[int]*big.Int // number of solutions at each step with a solution
	First     int              // first step with a solution, or 0
	Steps     int              // number of steps computed
	Bound     int              // last makespan bound used (0 if none)
	Truncated bool             // the loop stopped because of the step limit
}

// ResultName is the name of the formula holding the solutions found at step k.
func ResultName(k int) string {
	return fmt.Sprintf("result#%d", k)
}

// transition starts slot r of part s, with operation w, on
// instance j of machine type i.
type transition struct {
	s, w, r, i, j int
	ticks         int
	ready, mach   zudd.Var // W[s,r] and M[s,w,r,i]
	inst, busy    zudd.Var // MX[i,j] and B[i,j]
	run, sched    zudd.Var // R[s,r] and S[s,r,i,j]
	remain        zudd.Var // T[s,ticks-1]
}

// transitions returns all the transitions of the jobs, grouped by W variable.
func (p *Planner) transitions() ([][]transition, error) {
	res := [][]transition{}
	for _, s := range p.layout.Jobs {
		for r := 0; r < p.layout.Slots[s]; r++ {
			group := []transition{}
			for _, so := range p.layout.Ops[s] {
				if so.slot != r {
					continue
				}
				for _, i := range p.model.Capable(so.op) {
					for j := 0; j < p.model.Machines[i].Instances; j++ {
						tr := transition{s: s, w: so.op, r: r, i: i, j: j, ticks: p.model.Times[so.op][i]}
						vars := []struct {
							v     *zudd.Var
							k     Kind
							index []int
						}{
							{&tr.ready, W, []int{s, r}},
							{&tr.mach, M, []int{s, so.op, r, i}},
							{&tr.inst, MX, []int{i, j}},
							{&tr.busy, B, []int{i, j}},
							{&tr.run, R, []int{s, r}},
							{&tr.sched, S, []int{s, r, i, j}},
							{&tr.remain, T, []int{s, tr.ticks - 1}},
						}
						for _, x := range vars {
							v, ok := p.cat.Find(x.k, x.index...)
							if !ok {
								return nil, fmt.Errorf("%w: undeclared variable %s", ErrInconsistent, varname(x.k, x.index))
							}
							*x.v = v
						}
						group = append(group, tr)
					}
				}
			}
			if len(group) > 0 {
				res = append(res, group)
			}
		}
	}
	return res, nil
}

// enabled returns the combinations of f where transition tr can fire.
func (p *Planner) enabled(f zudd.Node, tr transition) zudd.Node {
	f = p.dd.Subset1(f, tr.mach)
	f = p.dd.Subset1(f, tr.inst)
	return p.dd.Subset0(f, tr.busy)
}

// fire applies the transitions of a group to f, at time t. The combinations
// of f must all contain the W variable of the group.
func (p *Planner) fire(f zudd.Node, group []transition, t int) (zudd.Node, error) {
	res := p.dd.Empty()
	for _, tr := range group {
		x := p.enabled(f, tr)
		if p.dd.IsEmpty(x) {
			continue
		}
		for _, v := range []zudd.Var{tr.ready, tr.mach, tr.busy, tr.run, tr.sched, tr.remain} {
			x = p.dd.Change(x, v)
		}
		if p.opts.Trace {
			g, ok := p.cat.Find(G, tr.s, tr.r, t)
			if !ok {
				return nil, fmt.Errorf("%w: no start time %d for slot %d of part %d", ErrInconsistent, t, tr.r, tr.s)
			}
			x = p.dd.Change(x, g)
		}
		res = p.dd.Union(res, x)
	}
	return res, nil
}

// saturate starts operations at time t until no new state is found. The
// result contains f and all the states reachable from f by starting
// operations.
func (p *Planner) saturate(f zudd.Node, trs [][]transition, t int) (zudd.Node, error) {
	all := f
	frontier := f
	for !p.dd.IsEmpty(frontier) {
		next := p.dd.Empty()
		for _, group := range trs {
			x := p.dd.Subset1(frontier, group[0].ready)
			if p.dd.IsEmpty(x) {
				continue
			}
			y, err := p.fire(x, group, t)
			if err != nil {
				return nil, err
			}
			next = p.dd.Union(next, y)
		}
		frontier = p.dd.Diff(next, all)
		all = p.dd.Union(all, frontier)
		if err := p.check(); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// nondelay removes the states of f where an operation could still start.
func (p *Planner) nondelay(f zudd.Node, trs [][]transition) zudd.Node {
	blocked := p.dd.Empty()
	for _, group := range trs {
		x := p.dd.Subset1(f, group[0].ready)
		if p.dd.IsEmpty(x) {
			continue
		}
		for _, tr := range group {
			blocked = p.dd.Union(blocked, p.enabled(x, tr))
		}
	}
	return p.dd.Diff(f, blocked)
}

// complete ends the operations with no remaining tick. The O variable of the
// slot is removed and the part becomes ready for its next slot, if any.
func (p *Planner) complete(f zudd.Node) (zudd.Node, error) {
	for _, s := range p.layout.Jobs {
		t0, ok := p.cat.Find(T, s, 0)
		if !ok {
			continue
		}
		for r := 0; r < p.layout.Slots[s]; r++ {
			run, _ := p.cat.Find(R, s, r)
			y := p.dd.Subset1(p.dd.Subset1(f, run), t0)
			if p.dd.IsEmpty(y) {
				continue
			}
			f = p.dd.Diff(f, y)
			done := p.dd.Empty()
			covered := p.dd.Empty()
			for _, sv := range p.cat.Select(S, s, r) {
				x := p.dd.Subset1(y, sv)
				if p.dd.IsEmpty(x) {
					continue
				}
				covered = p.dd.Union(covered, x)
				_, idx, _ := p.cat.Decode(sv)
				busy, _ := p.cat.Find(B, idx[2], idx[3])
				x = p.dd.Change(p.dd.Change(p.dd.Change(x, run), t0), busy)
				if !p.opts.Trace {
					x = p.dd.Change(x, sv)
				}
				done = p.dd.Union(done, x)
			}
			if !p.dd.Equal(covered, y) {
				return nil, fmt.Errorf("%w: slot %d of part %d runs on no machine", ErrInconsistent, r, s)
			}
			for _, o := range p.cat.Select(O, s) {
				if _, idx, _ := p.cat.Decode(o); idx[2] == r {
					done = p.dd.ElementAbstract(done, o)
				}
			}
			if r+1 < p.layout.Slots[s] {
				ready, _ := p.cat.Find(W, s, r+1)
				nexts := []zudd.Var{}
				for _, o := range p.cat.Select(O, s) {
					if _, idx, _ := p.cat.Decode(o); idx[2] == r+1 {
						nexts = append(nexts, o)
					}
				}
				more := p.dd.Supset(done, p.cat.AnyOf(nexts))
				done = p.dd.Union(p.dd.Change(more, ready), p.dd.Diff(done, more))
			}
			f = p.dd.Union(f, done)
		}
	}
	return f, p.check()
}

// Schedule explores the scheduling states reachable from initial, one time
// tick per step, and returns the solutions found. Each step applies the
// makespan bound, starts operations, completes the operations that are over,
// advances time and harvests the states where every job is finished. The
// makespan bound is not applied at a step where it would discard every state.
func (p *Planner) Schedule(initial zudd.Node) (*Outcome, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	trs, err := p.transitions()
	if err != nil {
		return nil, err
	}
	shift, err := p.shifter()
	if err != nil {
		return nil, err
	}
	pending := []zudd.Var{}
	for _, k := range []Kind{O, M, W, R, T} {
		pending = append(pending, p.cat.Vars(k)...)
	}
	unfinished := p.cat.AnyOf(pending)
	running := p.cat.AnyOf(p.cat.Vars(R))

	out := &Outcome{Solutions: p.dd.Empty(), Counts: make(map[int]*big.Int)}
	for _, k := range p.steps {
		p.dd.DeleteFormula(ResultName(k))
	}
	p.steps = nil
	out.Bound = p.opts.Makespan
	// without a Limit on every part, the machine time of a plan is not a bound
	if p.opts.DynamicBound && len(p.opts.LimitParts) == 0 && !p.dd.IsEmpty(initial) {
		if n := p.MinMachineTime(initial); n > 0 && (out.Bound == 0 || n < out.Bound) {
			out.Bound = n
		}
	}
	p.log.Info("scheduling", slog.Int("bound", out.Bound), slog.Int("horizon", p.layout.Horizon))

	x := initial
	for k := 1; !p.dd.IsEmpty(x); k++ {
		if p.opts.StepLimit > 0 && k > p.opts.StepLimit {
			out.Truncated = true
			break
		}
		if k > p.layout.Horizon+1 {
			return nil, fmt.Errorf("%w: states left after %d steps", ErrInconsistent, p.layout.Horizon)
		}
		t := k - 1
		if out.Bound > 0 {
			x = p.bound(x, out.Bound-t, k)
		}
		if x, err = p.saturate(x, trs, t); err != nil {
			return nil, err
		}
		if !p.opts.FullStateSpace {
			x = p.nondelay(x, trs)
		}
		// idle states would never progress
		x = p.dd.Supset(x, running)
		if x, err = p.complete(x); err != nil {
			return nil, err
		}
		if x, err = p.advance(x, shift); err != nil {
			return nil, err
		}
		done := p.dd.Diff(x, p.dd.Supset(x, unfinished))
		x = p.dd.Diff(x, done)
		out.Steps = k
		if err := p.check(); err != nil {
			return nil, err
		}
		p.log.Debug("step", slog.Int("step", k), slog.String("states", p.dd.Count(x).String()))
		if !p.dd.IsEmpty(done) {
			if err := p.dd.AddFormula(ResultName(k), done); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrEngine, err)
			}
			p.steps = append(p.steps, k)
			out.Counts[k] = p.dd.Count(done)
			out.Solutions = p.dd.Union(out.Solutions, done)
			p.log.Info("solutions", slog.Int("step", k), slog.String("count", out.Counts[k].String()))
			if out.First == 0 {
				out.First = k
				if p.opts.DynamicBound && (out.Bound == 0 || k < out.Bound) {
					out.Bound = k
				}
			}
			if p.opts.FirstSolutionOnly {
				break
			}
		}
		if p.opts.Sift {
			x, err = p.sift(x)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, p.check()
}

// bound removes from f the states that cannot complete within n ticks. The
// pruning is undone when no state would be left.
func (p *Planner) bound(f zudd.Node, n, step int) zudd.Node {
	parts, machines := p.budgets(n)
	x := p.pruner.PermitMakespan(f, parts, machines)
	if p.dd.IsEmpty(x) {
		p.log.Debug("bound undone", slog.Int("step", step), slog.Int("ticks", n))
		return f
	}
	return x
}

// budgets returns the makespan budgets of each part and machine type when n
// ticks are left.
func (p *Planner) budgets(n int) ([]int, []int) {
	parts := make([]int, len(p.model.Parts))
	for k := range parts {
		parts[k] = n
	}
	machines := make([]int, len(p.model.Machines))
	for k, mc := range p.model.Machines {
		machines[k] = n * mc.Instances
	}
	return parts, machines
}

// shifter returns the renaming of T[s,t] into T[s,t-1], for t > 0.
func (p *Planner) shifter() (zudd.Replacer, error) {
	oldvars, newvars := []zudd.Var{}, []zudd.Var{}
	for _, s := range p.layout.Jobs {
		for t := 1; t < p.layout.Ticks[s]; t++ {
			v, _ := p.cat.Find(T, s, t)
			w, _ := p.cat.Find(T, s, t-1)
			oldvars = append(oldvars, v)
			newvars = append(newvars, w)
		}
	}
	r, err := p.dd.NewReplacer(oldvars, newvars)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEngine, err)
	}
	return r, nil
}

// advance decrements the remaining ticks of every running operation.
func (p *Planner) advance(f zudd.Node, shift zudd.Replacer) (zudd.Node, error) {
	for _, s := range p.layout.Jobs {
		if t0, ok := p.cat.Find(T, s, 0); ok && !p.dd.IsEmpty(p.dd.Subset1(f, t0)) {
			return nil, fmt.Errorf("%w: operation of part %d not completed", ErrInconsistent, s)
		}
	}
	return p.dd.Replace(f, shift), p.check()
}

// sift reorders the variables of the diagram. The live states and the
// results are kept as named formulas during the reordering.
func (p *Planner) sift(x zudd.Node) (zudd.Node, error) {
	const live = "live"
	if err := p.dd.AddFormula(live, x); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEngine, err)
	}
	before := p.dd.Size(x)
	swaps := p.dd.Sift(false, x)
	x, _ = p.dd.Formula(live)
	p.dd.DeleteFormula(live)
	p.log.Debug("sift", slog.Int("swaps", swaps), slog.Int("before", before), slog.Int("after", p.dd.Size(x)))
	return x, p.check()
}
