// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"testing"

	"github.com/dalzilio/zudd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filter returns the family of the combinations of f accepted by keep.
func filter(t *testing.T, p *Planner, f zudd.Node, keep func(vs []zudd.Var) bool) zudd.Node {
	t.Helper()
	res := p.DD().Empty()
	err := p.DD().Allcomb(f, func(vs []zudd.Var) error {
		if keep(vs) {
			res = p.DD().Union(res, p.DD().Combination(vs...))
		}
		return nil
	})
	require.NoError(t, err)
	return res
}

// weights returns the total weight of a combination for each part and each
// machine type.
func weights(p *Planner, vs []zudd.Var) ([]int, []int) {
	parts := make([]int, len(p.Model().Parts))
	machines := make([]int, len(p.Model().Machines))
	for _, v := range vs {
		if lim, ok := p.Catalog().Limit(v); ok {
			parts[lim.Part] += lim.Weight
			if lim.Machine >= 0 {
				machines[lim.Machine] += lim.Weight
			}
		}
	}
	return parts, machines
}

func TestPermitMakespan(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(mixedShop(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)
			require.False(t, p.DD().IsEmpty(plan))

			pr := p.Pruner()
			inf := []int{1000, 1000}
			assert.True(t, p.DD().Equal(plan, pr.PermitMakespan(plan, inf, inf)))
			assert.True(t, p.DD().IsEmpty(pr.PermitMakespan(plan, []int{0, 0}, inf)))

			for _, pb := range []int{0, 2, 3, 4, 5} {
				for _, mb := range []int{0, 2, 4, 6, 100} {
					parts, machines := []int{pb, pb + 1}, []int{mb, mb}
					want := filter(t, p, plan, func(vs []zudd.Var) bool {
						ps, ms := weights(p, vs)
						for k := range ps {
							if ps[k] > parts[k] {
								return false
							}
						}
						for k := range ms {
							if ms[k] > machines[k] {
								return false
							}
						}
						return true
					})
					got := pr.PermitMakespan(plan, parts, machines)
					assert.True(t, p.DD().Equal(want, got), fmt.Sprintf("parts %v, machines %v", parts, machines))
				}
			}
		})
	}
}

func TestPermitMachineTime(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(mixedShop(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)

			for n := 0; n <= 12; n++ {
				want := filter(t, p, plan, func(vs []zudd.Var) bool {
					_, ms := weights(p, vs)
					total := 0
					for _, w := range ms {
						total += w
					}
					return total <= n
				})
				got := p.Pruner().PermitMachineTime(plan, n)
				assert.True(t, p.DD().Equal(want, got), "machine time %d", n)
			}
			// A can use o2 alone (2) and B needs at least 2+2
			assert.Equal(t, 6, p.MinMachineTime(plan))
			assert.Equal(t, -1, p.MinMachineTime(p.DD().Empty()))
		})
	}
}

func TestPrunerCache(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(mixedShop(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)

			nocache := NewPruner(p.Catalog(), true)
			for _, b := range []int{1, 3, 5, 8} {
				parts, machines := []int{b, b}, []int{b, 2 * b}
				want := nocache.PermitMakespan(plan, parts, machines)
				got := p.Pruner().PermitMakespan(plan, parts, machines)
				assert.True(t, p.DD().Equal(want, got))
				got = p.Pruner().PermitMakespan(plan, parts, machines)
				assert.True(t, p.DD().Equal(want, got))
				assert.True(t, p.DD().Equal(nocache.PermitMachineTime(plan, b), p.Pruner().PermitMachineTime(plan, b)))
			}
			assert.Zero(t, nocache.Stats().Hits)
			assert.Positive(t, p.Pruner().Stats().Hits)

			// a collection changes the generation and drops the cache
			resets := p.Pruner().Stats().Resets
			p.DD().Purge()
			got := p.Pruner().PermitMachineTime(plan, 7)
			assert.True(t, p.DD().Equal(nocache.PermitMachineTime(plan, 7), got))
			assert.Equal(t, resets+1, p.Pruner().Stats().Resets)
		})
	}
}
