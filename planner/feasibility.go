// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"log/slog"

	"github.com/dalzilio/zudd"
)

// FeasiblePlans returns the joint plans of all the jobs. Each combination
// holds, for every slot of the chosen process plan of each job, the O variable
// of the operation and the M variable of the machine type executing it, plus
// the MX variables of the installed instances and the FS variable giving
// their number. The result is empty when no plan fits in the bounds.
func (p *Planner) FeasiblePlans() (zudd.Node, error) {
	plan := p.dd.Base()
	for _, s := range p.layout.Jobs {
		x, err := p.assign(s)
		if err != nil {
			return nil, err
		}
		if p.opts.MachineTime > 0 {
			x = p.pruner.PermitMachineTime(x, p.opts.MachineTime)
		}
		p.log.Debug("part plans", slog.Int("part", s), slog.String("count", p.dd.Count(x).String()))
		plan = p.dd.Product(plan, x)
		if err := p.check(); err != nil {
			return nil, err
		}
	}
	plan, err := p.configure(plan)
	if err != nil {
		return nil, err
	}
	p.log.Info("feasible plans", slog.String("count", p.dd.Count(plan).String()))
	return plan, nil
}

// assign returns the plans of job s, where each operation is paired with
// every machine type able to perform it.
func (p *Planner) assign(s int) (zudd.Node, error) {
	x, err := p.enc.Encode(p.model.Parts[s], s, 0)
	if err != nil {
		return nil, err
	}
	for _, so := range p.layout.Ops[s] {
		o, ok := p.cat.Find(O, s, so.op, so.slot)
		if !ok {
			return nil, fmt.Errorf("%w: undeclared variable %s", ErrInconsistent, varname(O, []int{s, so.op, so.slot}))
		}
		z := p.dd.Empty()
		for _, i := range p.model.Capable(so.op) {
			if v, ok := p.cat.Find(M, s, so.op, so.slot, i); ok {
				z = p.dd.Union(z, p.dd.Combination(o, v))
			}
		}
		q := p.dd.Quotient(x, o)
		x = p.dd.Union(p.dd.Remainder(x, o), p.dd.Product(q, z))
	}
	return x, p.check()
}

// configure adds to every plan the factory configurations able to run it: for
// each machine type, a number of installed instances that is positive exactly
// when the plan uses this type. The result is then restricted to the factory
// capacity.
func (p *Planner) configure(plan zudd.Node) (zudd.Node, error) {
	for _, mc := range p.model.Machines {
		mx := p.cat.Select(MX, mc.ID)
		choices := p.dd.Base()
		if p.opts.FactoryCapacity == NoCapacity {
			choices = p.dd.Union(choices, p.dd.Combination(mx...))
		} else {
			for n := 1; n <= len(mx); n++ {
				choices = p.dd.Union(choices, p.dd.Combination(mx[:n]...))
			}
		}
		plan = p.dd.Product(plan, choices)
		// keep instances of used machine types only
		used := p.machineUsers(plan, mc.ID)
		has := p.dd.Subset1(plan, mx[0])
		plan = p.dd.Union(p.dd.Intersect(used, has), p.dd.Diff(p.dd.Diff(plan, used), has))
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.RestrictCapacity(plan, p.opts.FactoryCapacity)
}

// RestrictCapacity returns the combinations of a configured plan installing at
// most capacity machine instances, each one tagged with the FS variable giving
// its number of instances. Previous FS tags are ignored, so that the result is
// included in plan and restricting it again with the same capacity is a no-op.
// NoCapacity keeps every combination.
func (p *Planner) RestrictCapacity(plan zudd.Node, capacity int) (zudd.Node, error) {
	group := p.cat.Group(MX)
	total := len(p.cat.Vars(MX))
	if capacity == NoCapacity || capacity > total {
		capacity = total
	}
	for _, v := range p.cat.Vars(FS) {
		plan = p.dd.ElementAbstract(plan, v)
	}
	res := p.dd.Empty()
	prev := p.dd.Empty()
	for k := 0; k <= capacity; k++ {
		atmost := p.dd.Permitsym(plan, group, k)
		exact := p.dd.Diff(atmost, prev)
		prev = atmost
		fs, ok := p.cat.Find(FS, k)
		if !ok {
			return nil, fmt.Errorf("%w: undeclared variable %s", ErrInconsistent, varname(FS, []int{k}))
		}
		res = p.dd.Union(res, p.dd.Change(exact, fs))
	}
	return res, p.check()
}

// machineUsers returns the combinations of f using machine type i.
func (p *Planner) machineUsers(f zudd.Node, i int) zudd.Node {
	vs := []zudd.Var{}
	for _, v := range p.cat.Vars(M) {
		if _, idx, _ := p.cat.Decode(v); idx[3] == i {
			vs = append(vs, v)
		}
	}
	return p.dd.Supset(f, p.cat.AnyOf(vs))
}

// Configurations returns the distinct factory configurations of plan, that is
// its combinations restricted to the MX and FS variables.
func (p *Planner) Configurations(plan zudd.Node) (zudd.Node, error) {
	res := plan
	for k := Kind(0); k < numKinds; k++ {
		if k == MX || k == FS {
			continue
		}
		for _, v := range p.cat.Vars(k) {
			res = p.dd.ElementAbstract(res, v)
		}
	}
	return res, p.check()
}

// Initial returns the initial scheduling state of plan, where every job is
// ready to start its first slot.
func (p *Planner) Initial(plan zudd.Node) (zudd.Node, error) {
	ws := []zudd.Var{}
	for _, s := range p.layout.Jobs {
		w, ok := p.cat.Find(W, s, 0)
		if !ok {
			return nil, fmt.Errorf("%w: undeclared variable %s", ErrInconsistent, varname(W, []int{s, 0}))
		}
		ws = append(ws, w)
	}
	return p.dd.Product(plan, p.dd.Combination(ws...)), p.check()
}

// MinMachineTime returns the smallest total machine time of a combination of
// f, or -1 if f is empty.
func (p *Planner) MinMachineTime(f zudd.Node) int {
	if p.dd.IsEmpty(f) {
		return -1
	}
	hi := 0
	for _, v := range p.cat.Vars(M) {
		if lim, ok := p.cat.Limit(v); ok && lim.Machine >= 0 {
			hi += lim.Weight
		}
	}
	lo := 0
	for lo < hi {
		mid := (lo + hi) / 2
		if p.dd.IsEmpty(p.pruner.PermitMachineTime(f, mid)) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
