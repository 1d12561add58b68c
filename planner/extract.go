// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dalzilio/zudd"
)

// GanttItem is an operation of a schedule.
type GanttItem struct {
	Part      int
	Slot      int
	Operation int
	Machine   int
	Instance  int
	Start     int
	End       int
}

// Schedule is a concrete solution of the planning problem.
type Schedule struct {
	Makespan  int
	Installed map[int]int // number of installed instances of each machine type
	Machines  int         // total number of installed instances
	Items     []GanttItem // ordered by start time, part and slot
}

type slotinfo struct {
	start    int
	machine  int
	instance int
}

// Extract selects a schedule among solutions. Ties are broken in order: the
// smallest number of installed machines, then the smallest makespan, then an
// arbitrary choice of start times. The operations of the schedule are those
// with the smallest total machine time among the plans compatible with these
// start times; solutions carry no machine type, so this last criterion does not
// take part in the choice of start times. Parameter plan is the result of
// FeasiblePlans, from which we recover the operations, and solutions is a set
// of states returned by Schedule. Trace capture must be enabled.
func (p *Planner) Extract(plan, solutions zudd.Node) (*Schedule, error) {
	if !p.opts.Trace {
		return nil, ErrNoTrace
	}
	if solutions == nil || p.dd.IsEmpty(solutions) {
		return nil, ErrNoSolution
	}
	group := p.cat.Group(MX)
	total := len(p.cat.Vars(MX))
	best := p.dd.Empty()
	for n := 0; n <= total && p.dd.IsEmpty(best); n++ {
		best = p.dd.Permitsym(solutions, group, n)
	}
	for _, k := range p.steps {
		if f, ok := p.dd.Formula(ResultName(k)); ok {
			if x := p.dd.Intersect(best, f); !p.dd.IsEmpty(x) {
				best = x
				break
			}
		}
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	sol := p.dd.Extract(best)

	res := &Schedule{Installed: make(map[int]int)}
	slots := make(map[int][]slotinfo)
	for _, v := range p.dd.Pick(sol) {
		k, idx, ok := p.cat.Decode(v)
		if !ok {
			continue
		}
		switch k {
		case G:
			s, r := idx[0], idx[1]
			slots[s] = grow(slots[s], r)
			slots[s][r].start = idx[2]
		case S:
			s, r := idx[0], idx[1]
			slots[s] = grow(slots[s], r)
			slots[s][r].machine = idx[2]
			slots[s][r].instance = idx[3]
		case MX:
			res.Installed[idx[0]]++
			res.Machines++
		}
	}
	res.Makespan = p.makespan(sol)

	// operations compatible with the start times
	ops := plan
	for s, info := range slots {
		for r, si := range info {
			gap := gapAfter(slots, s, r, res.Makespan)
			cands := p.dd.Empty()
			for _, v := range p.cat.Select(M, s) {
				_, idx, _ := p.cat.Decode(v)
				if idx[2] != r || idx[3] != si.machine {
					continue
				}
				if d := p.model.Times[idx[1]][si.machine]; gap < 0 || d <= gap {
					cands = p.dd.Union(cands, p.dd.Subset1(ops, v))
				}
			}
			ops = cands
		}
		for _, o := range p.cat.Select(O, s) {
			if _, idx, _ := p.cat.Decode(o); idx[2] == len(info) {
				ops = p.dd.Subset0(ops, o)
			}
		}
	}
	if p.dd.IsEmpty(ops) {
		return nil, fmt.Errorf("%w: no plan matches the selected schedule", ErrInconsistent)
	}
	ops = p.pruner.PermitMachineTime(ops, p.MinMachineTime(ops))
	if err := p.check(); err != nil {
		return nil, err
	}
	for _, v := range p.dd.Pick(ops) {
		k, idx, ok := p.cat.Decode(v)
		if !ok || k != M {
			continue
		}
		s, w, r, i := idx[0], idx[1], idx[2], idx[3]
		if r >= len(slots[s]) {
			continue
		}
		si := slots[s][r]
		res.Items = append(res.Items, GanttItem{
			Part:      s,
			Slot:      r,
			Operation: w,
			Machine:   i,
			Instance:  si.instance,
			Start:     si.start,
			End:       si.start + p.model.Times[w][i],
		})
	}
	sort.Slice(res.Items, func(i, j int) bool {
		a, b := res.Items[i], res.Items[j]
		switch {
		case a.Start != b.Start:
			return a.Start < b.Start
		case a.Part != b.Part:
			return a.Part < b.Part
		}
		return a.Slot < b.Slot
	})
	for _, it := range res.Items {
		if it.End > res.Makespan {
			res.Makespan = it.End
		}
	}
	p.log.Info("schedule", slog.Int("makespan", res.Makespan), slog.Int("machines", res.Machines), slog.Int("operations", len(res.Items)))
	return res, nil
}

// gapAfter returns the time available to slot r of part s: it must end
// before the next slot of s, before the next slot started on the same machine
// instance and before the makespan. The result is -1 when nothing follows.
func gapAfter(slots map[int][]slotinfo, s, r, makespan int) int {
	si := slots[s][r]
	end := -1
	bound := func(t int) {
		if end < 0 || t < end {
			end = t
		}
	}
	if makespan > 0 {
		bound(makespan)
	}
	if r+1 < len(slots[s]) {
		bound(slots[s][r+1].start)
	}
	for _, info := range slots {
		for _, x := range info {
			if x.machine == si.machine && x.instance == si.instance && x.start > si.start {
				bound(x.start)
			}
		}
	}
	if end < 0 {
		return -1
	}
	return end - si.start
}

func grow(info []slotinfo, r int) []slotinfo {
	for len(info) <= r {
		info = append(info, slotinfo{})
	}
	return info
}

// makespan returns the step of the last call to Schedule where sol was
// found, or 0.
func (p *Planner) makespan(sol zudd.Node) int {
	for _, k := range p.steps {
		if f, ok := p.dd.Formula(ResultName(k)); ok && !p.dd.IsEmpty(p.dd.Intersect(f, sol)) {
			return k
		}
	}
	return 0
}
