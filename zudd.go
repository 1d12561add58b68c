// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"log"
	"runtime"
	"sync/atomic"
)

// Node is a reference to an element of a diagram. It represents the atomic
// unit of interactions and computations within a DD. The two constant nodes
// have the address 0 (the empty set) and 1 (the base set in a ZBDD, or the
// universal set in an OBDD).
type Node *int

// Var is the identifier of a variable. Identifiers are given in the order of
// declaration and never change, whereas the level of a variable may be
// modified by sifting.
type Var int

// DD is a decision diagram representing families of combinations (sets of
// subsets) over a growing universe of element variables. All the nodes of all
// the families share a unique table, an operation cache and a garbage
// collector.
type DD struct {
	zbdd       bool                 // true for ZBDD, false for OBDD
	varnum     int32                // number of variables
	var2level  []int32              // level of each variable
	level2var  []int32              // variable at each level
	names      []string             // name of each variable
	byname     map[string]Var       // reverse index of names
	vardata    []interface{}        // payload attached to variables
	refstack   []int                // Internal node reference stack
	error                           // Error status to help chain operations
	formulas   map[string]Node      // named formulas
	kept       []Node               // nodes kept alive until the next Purge
	generation uint64               // bumped on every GC and reordering
	quantset   []int32              // Current variable set for group operations
	quantsetID int32                // Current id used in quantset
	quantlast  int32                // Current last level in the variable set
	quantnext  []int32              // Next level of the variable set, for each level
	*hudd                           // node table
	opcache                         // operation cache
	cacheStat                       // Information about the cache
}

// New returns a new, empty, decision diagram. Variables are added with AddVar.
// The representation is selected with the Representation option; see also
// options Nodesize, Cachesize, etc.
func New(options ...func(*configs)) (*DD, error) {
	c := makeconfigs()
	for _, f := range options {
		f(c)
	}
	b := &DD{}
	b.zbdd = c.kind == ZBDD
	b.byname = make(map[string]Var)
	b.formulas = make(map[string]Node)
	b.refstack = make([]int, 0, 64)
	b.hudd = makehudd(c)
	b.nodefinalizer = func(n *int) {
		if _DEBUG {
			atomic.AddUint64(&(b.gcstat.calledfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("dec refcou %d\n", *n)
			}
		}
		b.nodes[*n].refcou--
	}
	b.cacheinit(c.cachesize, c.cacheratio)
	if _LOGLEVEL > 0 {
		log.Printf("new %s with %d nodes\n", c.kind, len(b.nodes))
	}
	return b, nil
}

// Kind returns the representation variant of the diagram.
func (b *DD) Kind() Kind {
	if b.zbdd {
		return ZBDD
	}
	return OBDD
}

// Generation returns a counter incremented each time nodes may have been
// reclaimed (garbage collection) or relocated (sifting). Raw node identifiers
// kept outside of the diagram are only meaningful for a given generation.
func (b *DD) Generation() uint64 {
	return b.generation
}

// ************************************************************

// inode returns a Node for known nodes, such as constants, that do not need to
// increase their reference count.
func inode(n int) Node {
	x := n
	return &x
}

var ddzero Node = inode(0)

var ddone Node = inode(1)

// retnode creates a Node for external use and sets a finalizer on it so that we
// can reclaim the ressource during GC.
func (b *DD) retnode(n int) Node {
	if n < 0 || n >= len(b.nodes) {
		if _DEBUG {
			log.Panicf("b.retnode(%d) not valid\n", n)
		}
		return nil
	}
	if n == 0 {
		return ddzero
	}
	if n == 1 {
		return ddone
	}
	x := n
	if b.nodes[n].refcou < _MAXREFCOUNT {
		b.nodes[n].refcou++
		runtime.SetFinalizer(&x, b.nodefinalizer)
		if _DEBUG {
			atomic.AddUint64(&(b.setfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("inc refcou %d\n", n)
			}
		}
	}
	return &x
}

// ************************************************************

func (b *DD) level(n int) int32 {
	return b.nodes[n].level
}

func (b *DD) low(n int) int {
	return b.nodes[n].low
}

func (b *DD) high(n int) int {
	return b.nodes[n].high
}

// cofactor returns the two branches of n for the variable at level. The level
// of n must be greater or equal to level. When the variable is skipped, the
// present branch is empty for a ZBDD whereas it is n itself for an OBDD.
func (b *DD) cofactor(n int, level int32) (int, int) {
	if b.nodes[n].level == level {
		return b.nodes[n].low, b.nodes[n].high
	}
	if b.zbdd {
		return n, 0
	}
	return n, n
}

func min2(p, q int32) int32 {
	if p <= q {
		return p
	}
	return q
}

// *************************************************************************
// private functions to manipulate the refstack; used to prevent nodes that are
// currently being built (e.g. transient nodes built during an operation) to be
// reclaimed during GC.

func (b *DD) initref() {
	b.refstack = b.refstack[:0]
}

func (b *DD) pushref(n int) int {
	b.refstack = append(b.refstack, n)
	return n
}

func (b *DD) popref(a int) {
	b.refstack = b.refstack[:len(b.refstack)-a]
}
