// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"log"
)

// binary is the skeleton shared by all the public operations with two family
// operands.
func (b *DD) binary(name string, f, g Node, op func(int, int) int) Node {
	if err := b.checkptr(f); err != nil {
		return b.seterror("wrong left operand in call to %s; %s", name, err)
	}
	if err := b.checkptr(g); err != nil {
		return b.seterror("wrong right operand in call to %s; %s", name, err)
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := op(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

// unary is the skeleton shared by all the public operations taking a family
// and a variable.
func (b *DD) unary(name string, f Node, v Var, op int) Node {
	if err := b.checkptr(f); err != nil {
		return b.seterror("wrong operand in call to %s; %s", name, err)
	}
	if err := b.checkvar(v); err != nil {
		return b.seterror("%s in call to %s", err, name)
	}
	b.initref()
	b.pushref(*f)
	res := b.atlevel(op, *f, b.var2level[v])
	b.popref(1)
	return b.retnode(res)
}

// ************************************************************

// Union returns the family of combinations found in f or in g.
func (b *DD) Union(f, g Node) Node {
	return b.binary("Union", f, g, b.union)
}

func (b *DD) union(f, g int) int {
	switch {
	case f < 0 || g < 0:
		return -1
	case f == 0:
		return g
	case g == 0 || f == g:
		return f
	case !b.zbdd && (f == 1 || g == 1):
		return 1
	}
	if f > g {
		f, g = g, f
	}
	if res := b.matchcache(opUnion, f, g, 0); res >= 0 {
		return res
	}
	l := min2(b.level(f), b.level(g))
	f0, f1 := b.cofactor(f, l)
	g0, g1 := b.cofactor(g, l)
	low := b.pushref(b.union(f0, g0))
	high := b.pushref(b.union(f1, g1))
	res := b.makenode(l, low, high)
	b.popref(2)
	return b.setcache(opUnion, f, g, 0, res)
}

// Intersect returns the family of combinations found both in f and g.
func (b *DD) Intersect(f, g Node) Node {
	return b.binary("Intersect", f, g, b.intersect)
}

func (b *DD) intersect(f, g int) int {
	switch {
	case f < 0 || g < 0:
		return -1
	case f == 0 || g == 0:
		return 0
	case f == g:
		return f
	case !b.zbdd && f == 1:
		return g
	case !b.zbdd && g == 1:
		return f
	}
	if f > g {
		f, g = g, f
	}
	if res := b.matchcache(opIntersect, f, g, 0); res >= 0 {
		return res
	}
	l := min2(b.level(f), b.level(g))
	f0, f1 := b.cofactor(f, l)
	g0, g1 := b.cofactor(g, l)
	low := b.pushref(b.intersect(f0, g0))
	high := b.pushref(b.intersect(f1, g1))
	res := b.makenode(l, low, high)
	b.popref(2)
	return b.setcache(opIntersect, f, g, 0, res)
}

// Diff returns the family of combinations found in f but not in g.
func (b *DD) Diff(f, g Node) Node {
	return b.binary("Diff", f, g, b.diff)
}

func (b *DD) diff(f, g int) int {
	switch {
	case f < 0 || g < 0:
		return -1
	case f == 0 || f == g:
		return 0
	case g == 0:
		return f
	case !b.zbdd && g == 1:
		return 0
	}
	if res := b.matchcache(opDiff, f, g, 0); res >= 0 {
		return res
	}
	l := min2(b.level(f), b.level(g))
	f0, f1 := b.cofactor(f, l)
	g0, g1 := b.cofactor(g, l)
	low := b.pushref(b.diff(f0, g0))
	high := b.pushref(b.diff(f1, g1))
	res := b.makenode(l, low, high)
	b.popref(2)
	return b.setcache(opDiff, f, g, 0, res)
}

// Product returns the Cartesian (join) product of f and g, that is the family
// of all the unions a ∪ b with a in f and b in g.
func (b *DD) Product(f, g Node) Node {
	return b.binary("Product", f, g, b.product)
}

func (b *DD) product(f, g int) int {
	switch {
	case f < 0 || g < 0:
		if _DEBUG {
			log.Panicf("panic in product(%d,%d)\n", f, g)
		}
		return -1
	case f == 0 || g == 0:
		return 0
	case b.zbdd && f == 1:
		return g
	case b.zbdd && g == 1:
		return f
	case f == 1 && g == 1:
		return 1
	}
	if f > g {
		f, g = g, f
	}
	if res := b.matchcache(opProduct, f, g, 0); res >= 0 {
		return res
	}
	l := min2(b.level(f), b.level(g))
	f0, f1 := b.cofactor(f, l)
	g0, g1 := b.cofactor(g, l)
	low := b.pushref(b.product(f0, g0))
	h10 := b.pushref(b.product(f1, g0))
	h01 := b.pushref(b.product(f0, g1))
	h11 := b.pushref(b.product(f1, g1))
	h := b.pushref(b.union(h10, h01))
	high := b.pushref(b.union(h, h11))
	res := b.makenode(l, low, high)
	b.popref(6)
	return b.setcache(opProduct, f, g, 0, res)
}

// Supset returns the combinations of f that are supersets of at least one
// combination of g.
func (b *DD) Supset(f, g Node) Node {
	return b.binary("Supset", f, g, b.supset)
}

func (b *DD) supset(f, g int) int {
	switch {
	case f < 0 || g < 0:
		return -1
	case f == 0 || g == 0:
		return 0
	case g == 1 || f == g:
		// g contains the empty combination in both representations
		return f
	}
	if res := b.matchcache(opSupset, f, g, 0); res >= 0 {
		return res
	}
	l := min2(b.level(f), b.level(g))
	f0, f1 := b.cofactor(f, l)
	g0, g1 := b.cofactor(g, l)
	low := b.pushref(b.supset(f0, g0))
	g01 := b.pushref(b.union(g0, g1))
	high := b.pushref(b.supset(f1, g01))
	res := b.makenode(l, low, high)
	b.popref(3)
	return b.setcache(opSupset, f, g, 0, res)
}

// ************************************************************

// Change toggles the membership of v in every combination of f.
func (b *DD) Change(f Node, v Var) Node {
	return b.unary("Change", f, v, opChange)
}

// Subset0 returns the combinations of f that do not contain v.
func (b *DD) Subset0(f Node, v Var) Node {
	return b.unary("Subset0", f, v, opSubset0)
}

// Remainder is a synonym for Subset0: the combinations of f that do not
// contain v.
func (b *DD) Remainder(f Node, v Var) Node {
	return b.unary("Remainder", f, v, opSubset0)
}

// Subset1 returns the combinations of f that contain v.
func (b *DD) Subset1(f Node, v Var) Node {
	return b.unary("Subset1", f, v, opSubset1)
}

// Quotient returns the combinations of f that contain v, with v removed.
func (b *DD) Quotient(f Node, v Var) Node {
	return b.unary("Quotient", f, v, opQuotient)
}

// ElementAbstract removes v from every combination of f.
func (b *DD) ElementAbstract(f Node, v Var) Node {
	return b.unary("ElementAbstract", f, v, opAbstract)
}

// atlevel computes the operations that only modify the nodes of the variable
// at the given level; nodes above are rebuilt and nodes below are shared.
func (b *DD) atlevel(op int, f int, level int32) int {
	if f < 0 {
		return -1
	}
	if f == 0 {
		return 0
	}
	if b.level(f) < level {
		if res := b.matchcache(op, f, int(level), 0); res >= 0 {
			return res
		}
		low := b.pushref(b.atlevel(op, b.low(f), level))
		high := b.pushref(b.atlevel(op, b.high(f), level))
		res := b.makenode(b.level(f), low, high)
		b.popref(2)
		return b.setcache(op, f, int(level), 0, res)
	}
	f0, f1 := b.cofactor(f, level)
	switch op {
	case opChange:
		return b.makenode(level, f1, f0)
	case opSubset0:
		return b.makenode(level, f0, 0)
	case opSubset1:
		return b.makenode(level, 0, f1)
	case opQuotient:
		return b.makenode(level, f1, 0)
	case opAbstract:
		u := b.pushref(b.union(f0, f1))
		res := b.makenode(level, u, 0)
		b.popref(1)
		return res
	}
	b.seterror("unknown operation (%d) in atlevel", op)
	return -1
}

// ************************************************************

// Permitsym returns the combinations of f with at most n elements among the
// variables of varset, a variable set built with Makeset. The combinations
// with exactly k such elements are obtained as the difference between
// Permitsym(f, varset, k) and Permitsym(f, varset, k-1).
func (b *DD) Permitsym(f Node, varset Node, n int) Node {
	if err := b.checkptr(f); err != nil {
		return b.seterror("wrong operand in call to Permitsym; %s", err)
	}
	if err := b.checkptr(varset); err != nil {
		return b.seterror("wrong varset in call to Permitsym; %s", err)
	}
	if n < 0 {
		return ddzero
	}
	if *varset < 2 {
		return f
	}
	if err := b.quantset2cache(*varset); err != nil {
		return b.seterror("%s in call to Permitsym", err)
	}
	b.initref()
	b.pushref(*f)
	res := b.permitsym(*f, 0, n)
	b.popref(1)
	return b.retnode(res)
}

// permitsym walks the levels of f from cursor. With a ZBDD we only visit the
// nodes of f, since a missing variable is absent; with an OBDD we must also
// visit the levels of the variable set skipped by f.
func (b *DD) permitsym(f int, cursor int32, n int) int {
	if f <= 0 {
		return f
	}
	next := b.quantnext[min2(cursor, b.varnum)]
	if b.zbdd {
		if f == 1 || b.level(f) > b.quantlast {
			return f
		}
		cursor = 0
	} else if next == b.varnum {
		return f
	}
	key := int(b.quantsetID)<<21 | int(cursor)
	if res := b.matchcache(opPermitsym, f, n, key); res >= 0 {
		return res
	}
	top := b.level(f)
	if !b.zbdd {
		top = min2(top, next)
	}
	f0, f1 := b.cofactor(f, top)
	low := b.pushref(b.permitsym(f0, top+1, n))
	var high int
	switch {
	case !b.inquantset(top):
		high = b.permitsym(f1, top+1, n)
	case n > 0:
		high = b.permitsym(f1, top+1, n-1)
	default:
		high = 0
	}
	b.pushref(high)
	res := b.makenode(top, low, high)
	b.popref(2)
	return b.setcache(opPermitsym, f, n, key, res)
}

// ************************************************************

// IsEmpty returns true if f is the empty family.
func (b *DD) IsEmpty(f Node) bool {
	return f != nil && *f == 0
}

// IsBase returns true if f contains only the empty combination.
func (b *DD) IsBase(f Node) bool {
	if f == nil {
		return false
	}
	if b.zbdd {
		return *f == 1
	}
	// with an OBDD, every level must be tested and absent
	n := *f
	for l := int32(0); l < b.varnum; l++ {
		if n < 2 || b.level(n) != l || b.high(n) != 0 {
			return false
		}
		n = b.low(n)
	}
	return n == 1
}

// Equal tests equivalence between families.
func (b *DD) Equal(f, g Node) bool {
	if f == g {
		return true
	}
	if f == nil || g == nil {
		return false
	}
	return *f == *g
}

// Pick returns the variables of one combination of f, choosing the absent
// branch whenever possible. The result is nil if f is empty, and an empty
// slice for the empty combination.
func (b *DD) Pick(f Node) []Var {
	if b.checkptr(f) != nil || *f == 0 {
		return nil
	}
	res := []Var{}
	for n := *f; n > 1; {
		if b.low(n) != 0 {
			n = b.low(n)
			continue
		}
		res = append(res, Var(b.level2var[b.level(n)]))
		n = b.high(n)
	}
	return res
}

// Extract returns the family containing only the combination selected by
// Pick.
func (b *DD) Extract(f Node) Node {
	if err := b.checkptr(f); err != nil {
		return b.seterror("wrong operand in call to Extract; %s", err)
	}
	if *f == 0 {
		return ddzero
	}
	return b.Combination(b.Pick(f)...)
}

// Allcomb iterates through all the combinations of f and calls function fn on
// each of them, with the variables of the combination in level order. We stop
// the iteration at the first error returned by fn. With an OBDD, the number
// of calls can be exponential in the number of variables skipped by f.
func (b *DD) Allcomb(f Node, fn func([]Var) error) error {
	if err := b.checkptr(f); err != nil {
		b.seterror("wrong node in call to Allcomb; %s", err)
		return b.error
	}
	return b.allcomb(*f, 0, []Var{}, fn)
}

func (b *DD) allcomb(n int, level int32, prefix []Var, fn func([]Var) error) error {
	if n == 0 {
		return nil
	}
	if b.zbdd {
		level = b.level(n)
	}
	if level >= b.varnum {
		res := make([]Var, len(prefix))
		copy(res, prefix)
		return fn(res)
	}
	f0, f1 := b.cofactor(n, level)
	if err := b.allcomb(f0, level+1, prefix, fn); err != nil {
		return err
	}
	return b.allcomb(f1, level+1, append(prefix, Var(b.level2var[level])), fn)
}
