// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"errors"
)

// number of bytes in a int (adapted from uintSize in the math/bits package)
const huddsize = (2*(32<<(^uint(0)>>32&1)) + 32) / 8 // 12 (32 bits) or 20 (64 bits)

// _MINFREENODES is the minimal number of nodes (%) that has to be left after a
// garbage collect unless a resize should be done.
const _MINFREENODES int = 20

// _MAXVAR is the maximal number of levels in the diagram. We use only the
// first 21 bits for encoding levels (so also the max number of variables). We
// use other bits of the reference counter for markings.
const _MAXVAR int32 = 0x1FFFFF

// _MAXREFCOUNT is the maximal value of the reference counter (refcou), also
// used to stick nodes (like constants) in the node list. It is egal to 1023
// (10 bits).
const _MAXREFCOUNT int32 = 0x3FF

// _MARK is the bit of the reference counter used during garbage collection.
const _MARK int32 = 0x200000

// _DEFAULTMAXNODEINC is the default value for the maximal increase in the
// number of nodes during a resize. It is approx. one million nodes (1 048 576).
const _DEFAULTMAXNODEINC int = 1 << 20

// _MAXGROWTH is the ratio (%) above the best size found so far that stops the
// move of a variable in one direction during sifting.
const _MAXGROWTH int = 120

var errMemory = errors.New("unable to free memory or resize the node table")
