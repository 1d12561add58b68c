// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"fmt"
	"log"
	"sort"
)

// AddVar declares a new variable, placed at the last level of the diagram
// (just above the constants), and returns its identifier. Variables can be
// declared at any time. With an OBDD, families built before a call to AddVar
// do not constrain the new variable; it is therefore better to declare all the
// variables before building families. Names must be unique; an empty name is
// replaced by a default one.
func (b *DD) AddVar(name string) (Var, error) {
	if b.varnum >= _MAXVAR {
		b.seterror("too many variables (%d) in AddVar", b.varnum)
		return -1, b.error
	}
	if name == "" {
		name = fmt.Sprintf("x%d", b.varnum)
	}
	if _, ok := b.byname[name]; ok {
		return -1, fmt.Errorf("duplicate variable name %q", name)
	}
	v := Var(b.varnum)
	b.var2level = append(b.var2level, b.varnum)
	b.level2var = append(b.level2var, b.varnum)
	b.names = append(b.names, name)
	b.vardata = append(b.vardata, nil)
	b.byname[name] = v
	b.varnum++
	// Constants always have the highest level.
	b.nodes[0].level = b.varnum
	b.nodes[1].level = b.varnum
	if _LOGLEVEL > 1 {
		log.Printf("add variable %s at level %d\n", name, b.varnum-1)
	}
	return v, nil
}

// Varnum returns the number of declared variables.
func (b *DD) Varnum() int {
	return int(b.varnum)
}

// VarByName returns the variable with the given name, if any.
func (b *DD) VarByName(name string) (Var, bool) {
	v, ok := b.byname[name]
	return v, ok
}

// Name returns the name of variable v.
func (b *DD) Name(v Var) string {
	if b.checkvar(v) != nil {
		return ""
	}
	return b.names[v]
}

// Level returns the current level of variable v in the order of the diagram,
// or -1 if v is not a variable.
func (b *DD) Level(v Var) int {
	if b.checkvar(v) != nil {
		return -1
	}
	return int(b.var2level[v])
}

// VarAt returns the variable at the given level.
func (b *DD) VarAt(level int) Var {
	if level < 0 || level >= int(b.varnum) {
		return -1
	}
	return Var(b.level2var[level])
}

// SetVarData attaches a payload to variable v. The payload is never
// interpreted by the diagram.
func (b *DD) SetVarData(v Var, data interface{}) error {
	if err := b.checkvar(v); err != nil {
		return err
	}
	b.vardata[v] = data
	return nil
}

// VarData returns the payload attached to variable v, or nil.
func (b *DD) VarData(v Var) interface{} {
	if b.checkvar(v) != nil {
		return nil
	}
	return b.vardata[v]
}

// ************************************************************

// Empty returns the empty family.
func (b *DD) Empty() Node {
	return ddzero
}

// Base returns the family containing only the empty combination.
func (b *DD) Base() Node {
	if b.zbdd {
		return ddone
	}
	return b.Combination()
}

// Element returns the family containing only the combination {v}.
func (b *DD) Element(v Var) Node {
	return b.Combination(v)
}

// Combination returns the family containing the single combination made of
// the variables in vars.
func (b *DD) Combination(vars ...Var) Node {
	levels := make([]int32, 0, len(vars))
	for _, v := range vars {
		if err := b.checkvar(v); err != nil {
			return b.seterror("%s in call to Combination", err)
		}
		levels = append(levels, b.var2level[v])
	}
	b.initref()
	res := b.combination(levels)
	return b.retnode(res)
}

// combination builds the single combination over levels, bottom-up. With an
// OBDD, every other level is fixed to absent.
func (b *DD) combination(levels []int32) int {
	sort.Slice(levels, func(i, j int) bool { return levels[i] > levels[j] })
	res := 1
	if b.zbdd {
		for k, l := range levels {
			if k > 0 && l == levels[k-1] {
				continue
			}
			res = b.pushref(b.makenode(l, 0, res))
			if res < 0 {
				return -1
			}
		}
		return res
	}
	k := 0
	for l := b.varnum - 1; l >= 0; l-- {
		if k < len(levels) && levels[k] == l {
			res = b.pushref(b.makenode(l, 0, res))
			for k < len(levels) && levels[k] == l {
				k++
			}
		} else {
			res = b.pushref(b.makenode(l, res, 0))
		}
		if res < 0 {
			return -1
		}
	}
	return res
}

// Makeset returns a variable set, that is a node whose high branches follow
// the variables in varset. It is such that Scanset(Makeset(a)) == a (up to
// the order of variables). Variable sets are used with Permitsym and Sift.
func (b *DD) Makeset(varset []Var) Node {
	levels := make([]int32, 0, len(varset))
	for _, v := range varset {
		if err := b.checkvar(v); err != nil {
			return b.seterror("%s in call to Makeset", err)
		}
		levels = append(levels, b.var2level[v])
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] > levels[j] })
	b.initref()
	res := 1
	for k, l := range levels {
		if k > 0 && l == levels[k-1] {
			continue
		}
		// we always build positive cubes, even in an OBDD
		res = b.pushref(b.makenode(l, 0, res))
		if res < 0 {
			return nil
		}
	}
	return b.retnode(res)
}

// Scanset returns the set of variables found when following the high branch
// of node n. This is the dual of function Makeset. The result follows the
// level order.
func (b *DD) Scanset(n Node) []Var {
	if b.checkptr(n) != nil {
		return nil
	}
	if *n < 2 {
		return nil
	}
	res := []Var{}
	for i := *n; i > 1; i = b.high(i) {
		res = append(res, Var(b.level2var[b.level(i)]))
	}
	return res
}

// ************************************************************

// Top returns the variable tested at the root of n, or false if n is a
// constant.
func (b *DD) Top(n Node) (Var, bool) {
	if b.checkptr(n) != nil || *n < 2 {
		return -1, false
	}
	return Var(b.level2var[b.level(*n)]), true
}

// LevelOf returns the level of the root of n. Constants are at level Varnum.
func (b *DD) LevelOf(n Node) int {
	if b.checkptr(n) != nil {
		return -1
	}
	return int(b.level(*n))
}

// Low returns the else (absent) branch of n. The branch of a constant is the
// constant itself.
func (b *DD) Low(n Node) Node {
	if err := b.checkptr(n); err != nil {
		return b.seterror("%s in call to Low", err)
	}
	return b.retnode(b.low(*n))
}

// High returns the then (present) branch of n.
func (b *DD) High(n Node) Node {
	if err := b.checkptr(n); err != nil {
		return b.seterror("%s in call to High", err)
	}
	return b.retnode(b.high(*n))
}

// Cofactors returns the families of combinations of n without v and with v
// (with v removed). Variable v must not be strictly below the root of n.
func (b *DD) Cofactors(n Node, v Var) (Node, Node) {
	if err := b.checkptr(n); err != nil {
		return b.seterror("%s in call to Cofactors", err), nil
	}
	if err := b.checkvar(v); err != nil {
		return b.seterror("%s in call to Cofactors", err), nil
	}
	level := b.var2level[v]
	if level > b.level(*n) {
		return b.seterror("variable %s below root in call to Cofactors", b.names[v]), nil
	}
	low, high := b.cofactor(*n, level)
	return b.retnode(low), b.retnode(high)
}

// Compose returns the node testing v with branches low and high, after
// reduction. Variable v must be above the roots of low and high.
func (b *DD) Compose(v Var, low, high Node) Node {
	if err := b.checkvar(v); err != nil {
		return b.seterror("%s in call to Compose", err)
	}
	if err := b.checkptr(low); err != nil {
		return b.seterror("wrong low branch in call to Compose; %s", err)
	}
	if err := b.checkptr(high); err != nil {
		return b.seterror("wrong high branch in call to Compose; %s", err)
	}
	level := b.var2level[v]
	if level >= b.level(*low) || level >= b.level(*high) {
		return b.seterror("variable %s not above branches in call to Compose", b.names[v])
	}
	b.initref()
	b.pushref(*low)
	b.pushref(*high)
	res := b.makenode(level, *low, *high)
	b.popref(2)
	return b.retnode(res)
}
