// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"fmt"
	"math"
	"sort"
)

var _REPLACEID = 1

// Replacer is the type of association lists used to rename variables in a
// family.
type Replacer interface {
	Replace(Var) (Var, bool)
	Id() int
}

type replacer struct {
	id    int         // unique identifier used for caching intermediate results
	image map[Var]Var // map old variables to new variables
	order []Var       // old variables, sorted so that an image is never renamed after being used
}

func (r *replacer) String() string {
	res := "replacer["
	for k, v := range r.order {
		if k > 0 {
			res += ", "
		}
		res += fmt.Sprintf("%d<-%d", r.image[v], v)
	}
	return res + "]"
}

func (r *replacer) Replace(v Var) (Var, bool) {
	res, ok := r.image[v]
	if !ok {
		return v, false
	}
	return res, true
}

func (r *replacer) Id() int {
	return r.id
}

// NewReplacer returns a Replacer for substituting variable oldvars[k] with
// newvars[k], simultaneously. We return an error if the two slices do not have
// the same length, if we find the same variable twice in either of them or if
// the renaming contains a cycle. A new variable may also be an old one, like
// with a shift x1 -> x0, x2 -> x1; a new variable that is not also an old
// one must not occur in the families that are renamed.
func (b *DD) NewReplacer(oldvars []Var, newvars []Var) (Replacer, error) {
	res := &replacer{}
	if len(oldvars) != len(newvars) {
		return nil, fmt.Errorf("unmatched length of slices")
	}
	if _REPLACEID == (math.MaxInt32 >> 2) {
		return nil, fmt.Errorf("too many replacers created")
	}
	res.id = _REPLACEID
	_REPLACEID++
	res.image = make(map[Var]Var, len(oldvars))
	used := make(map[Var]bool, len(newvars))
	for k, v := range oldvars {
		if err := b.checkvar(v); err != nil {
			return nil, fmt.Errorf("invalid variable in oldvars; %s", err)
		}
		if err := b.checkvar(newvars[k]); err != nil {
			return nil, fmt.Errorf("invalid variable in newvars; %s", err)
		}
		if _, ok := res.image[v]; ok {
			return nil, fmt.Errorf("duplicate variable (%d) in oldvars", v)
		}
		if used[newvars[k]] {
			return nil, fmt.Errorf("duplicate variable (%d) in newvars", newvars[k])
		}
		used[newvars[k]] = true
		if v != newvars[k] {
			res.image[v] = newvars[k]
		}
	}
	// we order the old variables so that each one is moved after the variable
	// occupying its image, if any.
	pending := make(map[Var]bool, len(res.image))
	for v := range res.image {
		pending[v] = true
	}
	keys := make([]Var, 0, len(res.image))
	for v := range res.image {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for len(pending) > 0 {
		moved := false
		for _, v := range keys {
			if pending[v] && !pending[res.image[v]] {
				res.order = append(res.order, v)
				delete(pending, v)
				moved = true
			}
		}
		if !moved {
			return nil, fmt.Errorf("cyclic renaming in replacer")
		}
	}
	return res, nil
}

// ************************************************************

// Replace takes a Replacer and computes the result of n after replacing old
// variables with new ones. See type Replacer.
func (b *DD) Replace(n Node, r Replacer) Node {
	if err := b.checkptr(n); err != nil {
		return b.seterror("wrong operand in call to Replace; %s", err)
	}
	rep, ok := r.(*replacer)
	if !ok {
		return b.seterror("unsupported replacer in call to Replace")
	}
	b.initref()
	b.pushref(*n)
	var res int
	if b.zbdd {
		image := make([]int32, b.varnum)
		last := int32(-1)
		for k := range image {
			image[k] = -1
		}
		for v, w := range rep.image {
			image[b.var2level[v]] = b.var2level[w]
			last = max32(last, b.var2level[v])
		}
		res = b.replace(*n, image, last, rep.id)
	} else {
		res = *n
		for _, v := range rep.order {
			res = b.pushref(b.move(res, b.var2level[v], b.var2level[rep.image[v]]))
		}
	}
	b.popref(len(b.refstack))
	return b.retnode(res)
}

// replace renames all the nodes of n in a single pass, bottom-up. A renamed
// node may not fit between its (renamed) successors, in which case we rebuild
// it using set operations.
func (b *DD) replace(n int, image []int32, last int32, id int) int {
	if n < 2 || b.level(n) > last {
		return n
	}
	if res := b.matchcache(opReplace, n, id, 0); res >= 0 {
		return res
	}
	level := b.level(n)
	low := b.pushref(b.replace(b.low(n), image, last, id))
	high := b.pushref(b.replace(b.high(n), image, last, id))
	target := level
	if image[level] >= 0 {
		target = image[level]
	}
	var res int
	if target < b.level(low) && target < b.level(high) {
		res = b.makenode(target, low, high)
	} else {
		h := b.pushref(b.atlevel(opChange, high, target))
		res = b.union(low, h)
		b.popref(1)
	}
	b.popref(2)
	return b.setcache(opReplace, n, id, 0, res)
}

// move renames the variable at level from into the variable at level to, that
// must not occur in n.
func (b *DD) move(n int, from, to int32) int {
	rem := b.pushref(b.atlevel(opSubset0, n, from))
	quo := b.pushref(b.atlevel(opQuotient, n, from))
	ch := b.pushref(b.atlevel(opChange, quo, to))
	res := b.union(rem, ch)
	b.popref(3)
	return res
}

func max32(p, q int32) int32 {
	if p >= q {
		return p
	}
	return q
}
