// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"log"
	"sort"
)

// Sift reorders the variables of the diagram using Rudell's sifting algorithm:
// each variable in turn is moved through all the levels and left at the
// position where the diagram is smallest. Variables are moved with in-place
// swaps of adjacent levels, so that every Node handle remains valid and keeps
// its meaning. The size of the diagram is measured on roots, when given, or
// else on all the nodes that are referenced from outside. With converge set,
// we repeat the process until no more improvement is found. Sift increments
// the generation of the diagram and returns the final size.
func (b *DD) Sift(converge bool, roots ...Node) int {
	for _, r := range roots {
		if err := b.checkptr(r); err != nil {
			b.seterror("wrong root in call to Sift; %s", err)
			return -1
		}
	}
	if b.varnum < 2 {
		return b.livecount(roots)
	}
	b.initref()
	b.gbc()
	best := b.livecount(roots)
	if _LOGLEVEL > 0 {
		log.Printf("start sifting; size %d\n", best)
	}
	for {
		start := best
		for _, v := range b.siftorder() {
			best = b.siftvar(v, best, roots)
			if b.error != nil {
				return -1
			}
			b.gbc()
		}
		if !converge || best >= start {
			break
		}
	}
	b.cachereset()
	b.generation++
	if _LOGLEVEL > 0 {
		log.Printf("end sifting; size %d\n", best)
	}
	return best
}

// siftorder returns the variables sorted by decreasing number of nodes.
func (b *DD) siftorder() []Var {
	width := make([]int, b.varnum)
	for k := 2; k < len(b.nodes); k++ {
		if b.nodes[k].low != -1 {
			width[b.nodes[k].level]++
		}
	}
	res := make([]Var, b.varnum)
	for k := range res {
		res[k] = Var(k)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return width[b.var2level[res[i]]] > width[b.var2level[res[j]]]
	})
	return res
}

// siftvar moves variable v to the end of the order closest to its position,
// then to the other end, and finally back to the best position found.
func (b *DD) siftvar(v Var, best int, roots []Node) int {
	bestlevel := b.var2level[v]
	last := b.varnum - 1
	down := func(limit int32) {
		for l := b.var2level[v]; l < limit && b.error == nil; l++ {
			b.swap(l)
			size := b.livecount(roots)
			if size < best {
				best, bestlevel = size, l+1
			}
			if size*100 > best*_MAXGROWTH {
				return
			}
		}
	}
	up := func(limit int32) {
		for l := b.var2level[v]; l > limit && b.error == nil; l-- {
			b.swap(l - 1)
			size := b.livecount(roots)
			if size < best {
				best, bestlevel = size, l-1
			}
			if size*100 > best*_MAXGROWTH {
				return
			}
		}
	}
	if b.var2level[v] > last/2 {
		down(last)
		up(0)
	} else {
		up(0)
		down(last)
	}
	// back to the best position
	for l := b.var2level[v]; l > bestlevel && b.error == nil; l-- {
		b.swap(l - 1)
	}
	for l := b.var2level[v]; l < bestlevel && b.error == nil; l++ {
		b.swap(l)
	}
	return best
}

// livecount returns the number of nodes reachable from roots or, if roots is
// empty, from the nodes with external references.
func (b *DD) livecount(roots []Node) int {
	res := 0
	if len(roots) > 0 {
		for _, r := range roots {
			res += b.markcount(*r)
		}
	} else {
		for k := 2; k < len(b.nodes); k++ {
			if b.nodes[k].low != -1 && b.nodes[k].refcou&^_MARK > 0 {
				res += b.markcount(k)
			}
		}
	}
	b.unmarkall()
	return res
}

// swap exchanges the variables at levels i and i+1. Nodes at level i+1 are
// moved to level i; nodes at level i that do not depend on the variable at
// level i+1 are moved to level i+1; the others are rebuilt in place, with new
// successors, so that they keep their identity.
func (b *DD) swap(i int32) {
	type cofactors struct {
		node               int
		f00, f01, f10, f11 int
	}
	j := i + 1
	var xs, ys []int
	for k := 2; k < len(b.nodes); k++ {
		if b.nodes[k].low == -1 {
			continue
		}
		switch b.nodes[k].level {
		case i:
			xs = append(xs, k)
		case j:
			ys = append(ys, k)
		}
	}
	// each dependent node creates at most two new nodes; we make sure that no
	// garbage collection occurs while the table is in an intermediate state
	if err := b.reserve(2*len(xs) + 1); err != nil {
		b.seterror("%s in call to Sift", err)
		return
	}
	dep := []cofactors{}
	indep := []int{}
	for _, x := range xs {
		f0, f1 := b.nodes[x].low, b.nodes[x].high
		if b.level(f0) != j && b.level(f1) != j {
			indep = append(indep, x)
			continue
		}
		c := cofactors{node: x}
		c.f00, c.f01 = b.cofactor(f0, j)
		c.f10, c.f11 = b.cofactor(f1, j)
		dep = append(dep, c)
	}
	for _, x := range xs {
		b.delnode(b.nodes[x])
	}
	for _, y := range ys {
		b.delnode(b.nodes[y])
		b.nodes[y].level = i
		b.insnode(y)
	}
	for _, x := range indep {
		b.nodes[x].level = j
		b.insnode(x)
	}
	for _, c := range dep {
		low := b.makenode(j, c.f00, c.f10)
		high := b.makenode(j, c.f01, c.f11)
		b.nodes[c.node].low = low
		b.nodes[c.node].high = high
		b.insnode(c.node)
	}
	vi, vj := b.level2var[i], b.level2var[j]
	b.level2var[i], b.level2var[j] = vj, vi
	b.var2level[vi], b.var2level[vj] = j, i
}
