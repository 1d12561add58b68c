// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package zudd

import (
	"fmt"
	"math"
)

// ************************************************************

// opcache is used for caching the results of all the recursive operations. An
// entry is identified by the operation code and (at most) three integer
// operands; operations with a single node argument use the other operands for
// the variable level or for the id of the current variable set.
type opcache struct {
	cacheratio int // value used to resize the cache as a factor of the number of nodes
	table      []cacheData
}

// cacheStat stores status information about cache usage
type cacheStat struct {
	opHit  int // entries found in the operator cache
	opMiss int // entries not found in the operator cache
}

// cacheData is a unit of information stored in the operation cache
type cacheData struct {
	res int
	op  int
	a   int
	b   int
	c   int
}

// Operation codes used to distinguish between entries in the cache.
const (
	opUnion int = iota
	opIntersect
	opDiff
	opProduct
	opChange
	opSubset0
	opSubset1
	opQuotient
	opAbstract
	opSupset
	opPermitsym
	opReplace
	opCount
)

var opnames = [...]string{
	"union", "intersect", "diff", "product", "change", "subset0", "subset1",
	"quotient", "elementAbstract", "supset", "permitsym", "replace", "count",
}

// ************************************************************

func (bc *opcache) cacheinit(size int, ratio int) {
	// we never check if the creation of the slice panic because of lack of memory
	bc.cacheratio = ratio
	size = bdd_prime_gte(size)
	bc.table = make([]cacheData, size)
	bc.cachereset()
}

// cacheresize is called each time the node table grows.
func (bc *opcache) cacheresize(nodesize int) {
	if bc.cacheratio > 0 {
		if size := (nodesize * bc.cacheratio) / 100; size > len(bc.table) {
			bc.table = make([]cacheData, bdd_prime_gte(size))
		}
	}
	bc.cachereset()
}

func (bc *opcache) cachereset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

// ************************************************************

func (b *DD) matchcache(op, left, right, extra int) int {
	entry := b.table[_QUAD(op, left, right, extra, len(b.table))]
	if entry.a == left && entry.b == right && entry.c == extra && entry.op == op {
		if _DEBUG {
			b.opHit++
		}
		return entry.res
	}
	if _DEBUG {
		b.opMiss++
	}
	return -1
}

func (b *DD) setcache(op, left, right, extra, res int) int {
	if res < 0 {
		b.seterror("problem in call to %s(%d, %d, %d)", opnames[op], left, right, extra)
		return -1
	}
	b.table[_QUAD(op, left, right, extra, len(b.table))] = cacheData{
		res: res,
		op:  op,
		a:   left,
		b:   right,
		c:   extra,
	}
	return res
}

// ************************************************************
//
// Variable sets (used by group operations)
//

// quantset2cache takes a variable set, similar to the ones generated with
// Makeset, and marks its levels in quantset. It also computes, in quantnext,
// the next level of the set below each level of the diagram.
func (b *DD) quantset2cache(n int) error {
	if n < 2 {
		return fmt.Errorf("empty variable set")
	}
	b.quantsetID++
	if b.quantsetID == math.MaxInt32 || len(b.quantset) < int(b.varnum) {
		b.quantset = make([]int32, b.varnum)
		b.quantsetID = 1
	}
	for i := n; i > 1; i = b.nodes[i].high {
		b.quantset[b.nodes[i].level] = b.quantsetID
		b.quantlast = b.nodes[i].level
	}
	if len(b.quantnext) < int(b.varnum)+1 {
		b.quantnext = make([]int32, b.varnum+1)
	}
	next := b.varnum
	b.quantnext[b.varnum] = next
	for l := b.varnum - 1; l >= 0; l-- {
		if b.quantset[l] == b.quantsetID {
			next = l
		}
		b.quantnext[l] = next
	}
	return nil
}

func (b *DD) inquantset(level int32) bool {
	return level < b.varnum && b.quantset[level] == b.quantsetID
}

// ************************************************************

// String prints information about the cache performance: hit and miss count
// for the operator cache. Values are only collected with the debug build tag.
func (c cacheStat) String() string {
	res := fmt.Sprintf("Operator Hits:  %d\n", c.opHit)
	res += fmt.Sprintf("Operator Miss:  %d", c.opMiss)
	return res
}
