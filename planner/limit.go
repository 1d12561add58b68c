// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"encoding/binary"
	"fmt"

	"github.com/dalzilio/zudd"
)

const (
	opMakespan byte = iota
	opMachineTime
)

// PrunerStats gives the number of hits and misses in the caches of a pruner,
// and the number of times the caches were dropped.
type PrunerStats struct {
	Hits   int
	Misses int
	Resets int
}

func (s PrunerStats) String() string {
	return fmt.Sprintf("hits: %d, misses: %d, resets: %d", s.Hits, s.Misses, s.Resets)
}

// Pruner restricts families to the combinations that fit in a time budget.
// It walks the nodes of the diagram and reads the Limit attached to the
// variables it meets. Results are cached by node, cursor and budgets; the
// cache is dropped whenever the generation of the diagram changes.
type Pruner struct {
	dd         *zudd.DD
	cat        *Catalog
	tr         Traversal
	nocache    bool
	cache      map[string]zudd.Node
	generation uint64
	stats      PrunerStats
}

// NewPruner returns a pruner for the variables of catalog c. The cache is not
// used when nocache is true.
func NewPruner(c *Catalog, nocache bool) *Pruner {
	limited := func(v zudd.Var) bool {
		_, ok := c.Limit(v)
		return ok
	}
	return &Pruner{
		dd:      c.dd,
		cat:     c,
		tr:      NewTraversal(c.dd, limited),
		nocache: nocache,
		cache:   make(map[string]zudd.Node),
	}
}

// Stats returns the cache statistics of p.
func (p *Pruner) Stats() PrunerStats {
	return p.stats
}

// PermitMakespan returns the combinations of f such that, for every part s,
// the total weight of the variables with a Limit on s is at most parts[s]
// and, for every machine type i, the total weight of the variables with a
// Limit on i is at most machines[i]. Parts and machines out of range of the
// slices are not constrained.
func (p *Pruner) PermitMakespan(f zudd.Node, parts, machines []int) zudd.Node {
	if f == nil {
		return nil
	}
	return p.makespan(f, 0, append([]int(nil), parts...), append([]int(nil), machines...))
}

// PermitMachineTime returns the combinations of f such that the total weight
// of the variables with a Limit on a machine is at most n.
func (p *Pruner) PermitMachineTime(f zudd.Node, n int) zudd.Node {
	if f == nil {
		return nil
	}
	return p.machinetime(f, 0, n)
}

func (p *Pruner) makespan(f zudd.Node, cursor int, parts, machines []int) zudd.Node {
	if p.dd.IsEmpty(f) {
		return f
	}
	v, next, ok := p.tr.Top(f, cursor)
	if !ok {
		return f
	}
	key := p.key(opMakespan, f, next, parts, machines)
	if res, ok := p.lookup(key); ok {
		return res
	}
	low, high := p.tr.Children(f, v)
	low = p.makespan(low, next, parts, machines)
	if lim, ok := p.cat.Limit(v); ok {
		if fits(parts, lim.Part, lim.Weight) && (lim.Machine < 0 || fits(machines, lim.Machine, lim.Weight)) {
			parts = spend(parts, lim.Part, lim.Weight)
			if lim.Machine >= 0 {
				machines = spend(machines, lim.Machine, lim.Weight)
			}
			high = p.makespan(high, next, parts, machines)
		} else {
			high = p.dd.Empty()
		}
	} else {
		high = p.makespan(high, next, parts, machines)
	}
	res := p.tr.Compose(v, low, high)
	p.store(key, res)
	return res
}

func (p *Pruner) machinetime(f zudd.Node, cursor int, n int) zudd.Node {
	if p.dd.IsEmpty(f) {
		return f
	}
	v, next, ok := p.tr.Top(f, cursor)
	if !ok {
		return f
	}
	key := p.key(opMachineTime, f, next, []int{n}, nil)
	if res, ok := p.lookup(key); ok {
		return res
	}
	low, high := p.tr.Children(f, v)
	low = p.machinetime(low, next, n)
	lim, ok := p.cat.Limit(v)
	switch {
	case !ok || lim.Machine < 0:
		high = p.machinetime(high, next, n)
	case lim.Weight <= n:
		high = p.machinetime(high, next, n-lim.Weight)
	default:
		high = p.dd.Empty()
	}
	res := p.tr.Compose(v, low, high)
	p.store(key, res)
	return res
}

func fits(budget []int, k, w int) bool {
	return k < 0 || k >= len(budget) || budget[k] >= w
}

// spend returns a copy of budget with w removed from entry k.
func spend(budget []int, k, w int) []int {
	if k < 0 || k >= len(budget) {
		return budget
	}
	res := append([]int(nil), budget...)
	res[k] -= w
	return res
}

// ************************************************************

// key returns the cache key of an operation on node f. The node address is
// only meaningful for the current generation.
func (p *Pruner) key(op byte, f zudd.Node, cursor int, parts, machines []int) string {
	buf := make([]byte, 0, 8*(3+len(parts)+len(machines)))
	buf = append(buf, op)
	buf = binary.AppendUvarint(buf, uint64(*f))
	buf = binary.AppendUvarint(buf, uint64(cursor))
	for _, b := range parts {
		buf = binary.AppendVarint(buf, int64(b))
	}
	buf = append(buf, '|')
	for _, b := range machines {
		buf = binary.AppendVarint(buf, int64(b))
	}
	return string(buf)
}

func (p *Pruner) lookup(key string) (zudd.Node, bool) {
	if p.nocache {
		return nil, false
	}
	if g := p.dd.Generation(); g != p.generation {
		p.generation = g
		if len(p.cache) > 0 {
			p.cache = make(map[string]zudd.Node)
			p.stats.Resets++
		}
	}
	res, ok := p.cache[key]
	if ok {
		p.stats.Hits++
		return res, true
	}
	p.stats.Misses++
	return nil, false
}

func (p *Pruner) store(key string, res zudd.Node) {
	if p.nocache || res == nil {
		return
	}
	if p.dd.Generation() != p.generation {
		// the table is dropped at the next lookup anyway
		return
	}
	p.cache[key] = res
}
