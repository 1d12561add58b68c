// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dalzilio/zudd"
)

// Kind is a family of element variables.
type Kind int

const (
	O  Kind = iota // O[s,w,r]: operation w of part s is at slot r
	M              // M[s,w,r,i]: this occurrence runs on machine type i
	S              // S[s,r,i,j]: slot r of part s runs on instance j of machine i
	W              // W[s,r]: part s is ready to start slot r
	B              // B[i,j]: instance j of machine i is busy
	R              // R[s,r]: slot r of part s is running
	T              // T[s,t]: the running operation of part s needs t more ticks
	MX             // MX[i,j]: instance j of machine i is installed
	FS             // FS[k]: k instances are installed
	G              // G[s,r,t]: slot r of part s started at time t
	numKinds
)

var kindNames = [numKinds]string{"O", "M", "S", "W", "B", "R", "T", "MX", "FS", "G"}

var kindArity = [numKinds]int{3, 4, 4, 2, 2, 2, 2, 2, 1, 3}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "?"
	}
	return kindNames[k]
}

// Limit is the payload attached to the variables that consume time. Machine is
// -1 when the variable only constrains its part.
type Limit struct {
	Part    int
	Machine int
	Weight  int
}

type varinfo struct {
	kind  Kind
	index []int
}

// Catalog records the element variables of a planning problem. Variables are
// named after their kind and indices, for instance O[1,2,0], and the name is
// used to find them in the diagram.
type Catalog struct {
	dd     *zudd.DD
	filter func(part int) bool
	info   map[zudd.Var]varinfo
	vars   [numKinds][]zudd.Var
}

// NewCatalog returns an empty catalog over the diagram dd. The filter selects
// the parts whose variables carry a Limit; a nil filter accepts every part.
func NewCatalog(dd *zudd.DD, filter func(part int) bool) *Catalog {
	if filter == nil {
		filter = func(int) bool { return true }
	}
	return &Catalog{
		dd:     dd,
		filter: filter,
		info:   make(map[zudd.Var]varinfo),
	}
}

func varname(k Kind, index []int) string {
	var sb strings.Builder
	sb.WriteString(k.String())
	sb.WriteByte('[')
	for n, i := range index {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(i))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Declare returns the variable of the given kind and indices, adding it to the
// diagram the first time.
func (c *Catalog) Declare(k Kind, index ...int) (zudd.Var, error) {
	if k < 0 || k >= numKinds || len(index) != kindArity[k] {
		return -1, fmt.Errorf("%w: variable %s with %d indices", ErrModel, k, len(index))
	}
	name := varname(k, index)
	if v, ok := c.dd.VarByName(name); ok {
		return v, nil
	}
	v, err := c.dd.AddVar(name)
	if err != nil {
		return -1, fmt.Errorf("%w: %s", ErrEngine, err)
	}
	c.info[v] = varinfo{kind: k, index: append([]int(nil), index...)}
	c.vars[k] = append(c.vars[k], v)
	return v, nil
}

// declareLimit declares a variable and attaches lim to it when the part is
// accepted by the filter.
func (c *Catalog) declareLimit(k Kind, lim Limit, index ...int) (zudd.Var, error) {
	v, err := c.Declare(k, index...)
	if err != nil {
		return v, err
	}
	if c.filter(lim.Part) {
		if err := c.dd.SetVarData(v, lim); err != nil {
			return -1, fmt.Errorf("%w: %s", ErrEngine, err)
		}
	}
	return v, nil
}

// Find returns the variable of the given kind and indices, if it was declared.
// Indices out of range simply give a missing variable.
func (c *Catalog) Find(k Kind, index ...int) (zudd.Var, bool) {
	if k < 0 || k >= numKinds || len(index) != kindArity[k] {
		return -1, false
	}
	v, ok := c.dd.VarByName(varname(k, index))
	if !ok {
		return -1, false
	}
	if _, ok := c.info[v]; !ok {
		return -1, false
	}
	return v, true
}

// Vars returns the variables of kind k in the order of declaration.
func (c *Catalog) Vars(k Kind) []zudd.Var {
	if k < 0 || k >= numKinds {
		return nil
	}
	return c.vars[k]
}

// Decode returns the kind and indices of a variable of the catalog.
func (c *Catalog) Decode(v zudd.Var) (Kind, []int, bool) {
	vi, ok := c.info[v]
	if !ok {
		return -1, nil, false
	}
	return vi.kind, vi.index, true
}

// Limit returns the payload attached to v, if any.
func (c *Catalog) Limit(v zudd.Var) (Limit, bool) {
	lim, ok := c.dd.VarData(v).(Limit)
	return lim, ok
}

// Group returns the variable set made of all the variables of the given
// kinds.
func (c *Catalog) Group(kinds ...Kind) zudd.Node {
	vs := []zudd.Var{}
	for _, k := range kinds {
		vs = append(vs, c.Vars(k)...)
	}
	return c.dd.Makeset(vs)
}

// AnyOf returns the family of singletons {v} for v in vs. The combinations of
// Supset(f, AnyOf(vs)) are those of f with at least one variable in vs.
func (c *Catalog) AnyOf(vs []zudd.Var) zudd.Node {
	res := c.dd.Empty()
	for _, v := range vs {
		res = c.dd.Union(res, c.dd.Element(v))
	}
	return res
}

// Select returns the variables of kind k whose indices match the given
// prefix.
func (c *Catalog) Select(k Kind, prefix ...int) []zudd.Var {
	res := []zudd.Var{}
	for _, v := range c.Vars(k) {
		idx := c.info[v].index
		match := len(prefix) <= len(idx)
		for n := 0; match && n < len(prefix); n++ {
			match = idx[n] == prefix[n]
		}
		if match {
			res = append(res, v)
		}
	}
	return res
}
