// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

import (
	"math/big"
)

// Count returns the number of combinations in the family f. We return a result
// using arbitrary-precision arithmetic to avoid possible overflows. The result
// is zero (and we set the error flag of b) if there is an error.
func (b *DD) Count(f Node) *big.Int {
	res := big.NewInt(0)
	if err := b.checkptr(f); err != nil {
		b.seterror("wrong operand in call to Count; %s", err)
		return res
	}
	satc := make(map[int]*big.Int)
	if b.zbdd {
		return res.Set(b.count(*f, satc))
	}
	// We compute 2^level with a bit shift 1 << level
	res.SetBit(res, int(b.level(*f)), 1)
	return res.Mul(res, b.count(*f, satc))
}

// count returns the number of combinations of n over the variables below the
// level of n. With an OBDD, each level skipped on a branch doubles the count.
func (b *DD) count(n int, satc map[int]*big.Int) *big.Int {
	if n < 2 {
		return big.NewInt(int64(n))
	}
	// we use satc to memoize the value of count for each nodes
	res, ok := satc[n]
	if ok {
		return res
	}
	level := b.level(n)
	low := b.low(n)
	high := b.high(n)

	res = big.NewInt(0)
	if b.zbdd {
		res.Add(b.count(low, satc), b.count(high, satc))
		satc[n] = res
		return res
	}
	two := big.NewInt(0)
	two.SetBit(two, int(b.level(low)-level-1), 1)
	res.Add(res, two.Mul(two, b.count(low, satc)))
	two = big.NewInt(0)
	two.SetBit(two, int(b.level(high)-level-1), 1)
	res.Add(res, two.Mul(two, b.count(high, satc)))
	satc[n] = res
	return res
}

// Size returns the number of distinct nodes, constants excluded, used by the
// families in fs.
func (b *DD) Size(fs ...Node) int {
	res := 0
	for _, f := range fs {
		if b.checkptr(f) != nil {
			continue
		}
		res += b.markcount(*f)
	}
	b.unmarkall()
	return res
}
