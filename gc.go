// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"log"
	"runtime"
)

// gcstat stores status information about garbage collections. We use a stack
// (slice) of objects to record the sequence of GC during a computation.
type gcstat struct {
	setfinalizers    uint64    // Total number of external references to nodes
	calledfinalizers uint64    // Number of external references that were freed
	history          []gcpoint // Snaphot of GC stats at each occurrence
}

type gcpoint struct {
	nodes            int // Total number of allocated nodes in the nodetable
	freenodes        int // Number of free nodes in the nodetable
	setfinalizers    int // Total number of external references to nodes
	calledfinalizers int // Number of external references that were freed
}

// *************************************************************************

// AddRef increases the reference count on node n and returns n so that calls
// can be easily chained together. A call to AddRef can never raise an error,
// even if we access an unused node or a value outside the range of the
// diagram. References are normally managed by the Go runtime; AddRef is only
// needed when a raw node must survive without a live Node handle.
func (b *DD) AddRef(n Node) Node {
	if n == nil || *n < 2 || *n >= len(b.nodes) {
		return n
	}
	if b.nodes[*n].low == -1 {
		return n
	}
	if b.nodes[*n].refcou&^_MARK < _MAXREFCOUNT {
		b.nodes[*n].refcou++
	}
	return n
}

// DelRef decreases the reference count on a node and returns n so that calls
// can be easily chained together. It is the dual of AddRef.
func (b *DD) DelRef(n Node) Node {
	if n == nil || *n < 2 || *n >= len(b.nodes) {
		return n
	}
	if b.nodes[*n].low == -1 {
		return n
	}
	if c := b.nodes[*n].refcou &^ _MARK; c <= 0 || c >= _MAXREFCOUNT {
		return n
	}
	b.nodes[*n].refcou--
	return n
}

// KeepUntilPurge protects the family n from garbage collection until the next
// call to Purge, even if the caller drops every handle on it.
func (b *DD) KeepUntilPurge(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in call to KeepUntilPurge")
	}
	b.kept = append(b.kept, n)
	return n
}

// Purge releases all the families protected with KeepUntilPurge and reclaims
// every unreferenced node. Named formulas are never reclaimed. Purge
// increments the generation of the diagram.
func (b *DD) Purge() {
	if _LOGLEVEL > 0 {
		log.Printf("purge %d kept nodes\n", len(b.kept))
	}
	b.kept = nil
	// we give a chance to the runtime to run the finalizers of dead handles
	// before marking live nodes.
	runtime.GC()
	b.gbc()
}
