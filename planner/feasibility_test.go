// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeasiblePlans(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(twoParts(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)
			assert.Equal(t, []string{"FS[1] MX[0,0] M[0,0,0,0] M[1,0,0,0] O[0,0,0] O[1,0,0]"}, combos(t, p.DD(), plan))

			start, err := p.Initial(plan)
			require.NoError(t, err)
			assert.Equal(t, []string{"FS[1] MX[0,0] M[0,0,0,0] M[1,0,0,0] O[0,0,0] O[1,0,0] W[0,0] W[1,0]"}, combos(t, p.DD(), start))
		})
	}
}

func TestFeasibleCapacity(t *testing.T) {
	count := func(rep string, capacity int) int64 {
		opts := testOptions(rep)
		opts.FactoryCapacity = capacity
		p, err := New(mixedShop(), opts)
		require.NoError(t, err)
		plan, err := p.FeasiblePlans()
		require.NoError(t, err)
		return p.DD().Count(plan).Int64()
	}
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			// no machine means no plan, and this is not an error
			assert.Zero(t, count(rep, 0))
			prev := int64(0)
			for c := 1; c <= 3; c++ {
				n := count(rep, c)
				assert.GreaterOrEqual(t, n, prev, "capacity %d", c)
				prev = n
			}
			assert.Positive(t, prev)
		})
	}
}

func TestRestrictCapacity(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(mixedShop(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)
			dd := p.DD()
			all, err := p.RestrictCapacity(plan, NoCapacity)
			require.NoError(t, err)
			assert.True(t, dd.Equal(plan, all))

			prev := int64(-1)
			for c := 0; c <= 4; c++ {
				r, err := p.RestrictCapacity(plan, c)
				require.NoError(t, err)
				assert.True(t, dd.Includes(plan, r), "capacity %d", c)
				again, err := p.RestrictCapacity(r, c)
				require.NoError(t, err)
				assert.True(t, dd.Equal(r, again), "capacity %d", c)
				n := dd.Count(r).Int64()
				assert.GreaterOrEqual(t, n, prev, "capacity %d", c)
				prev = n
				if c == 0 {
					assert.True(t, dd.IsEmpty(r))
				}
			}
			assert.Equal(t, dd.Count(plan).Int64(), prev)
		})
	}
}

func TestFeasibleMonotonic(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(mixedShop(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)
			dd := p.DD()
			for n := 0; n <= 10; n++ {
				x := p.Pruner().PermitMachineTime(plan, n)
				assert.True(t, dd.Includes(plan, x))
				assert.True(t, dd.Equal(x, p.Pruner().PermitMachineTime(x, n)))
			}

			// the bound on machine time is applied per part: B must run o0
			// on m0, A is not constrained
			opts := testOptions(rep)
			opts.MachineTime = 4
			q, err := New(mixedShop(), opts)
			require.NoError(t, err)
			bounded, err := q.FeasiblePlans()
			require.NoError(t, err)
			require.False(t, q.DD().IsEmpty(bounded))
			for _, c := range combos(t, q.DD(), bounded) {
				assert.NotContains(t, c, "M[1,0,0,1]")
				assert.NotContains(t, c, "M[1,0,1,1]")
			}
			assert.Contains(t, strings.Join(combos(t, q.DD(), bounded), "\n"), "O[0,2,0]")
		})
	}
}

func TestConfigurations(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			p, err := New(mixedShop(), testOptions(rep))
			require.NoError(t, err)
			plan, err := p.FeasiblePlans()
			require.NoError(t, err)
			configs, err := p.Configurations(plan)
			require.NoError(t, err)
			assert.Equal(t, []string{
				"FS[2] MX[1,0] MX[1,1]",
				"FS[3] MX[0,0] MX[1,0] MX[1,1]",
			}, combos(t, p.DD(), configs))

			opts := testOptions(rep)
			opts.FactoryCapacity = 2
			q, err := New(mixedShop(), opts)
			require.NoError(t, err)
			plan, err = q.FeasiblePlans()
			require.NoError(t, err)
			configs, err = q.Configurations(plan)
			require.NoError(t, err)
			assert.Equal(t, []string{
				"FS[1] MX[1,0]",
				"FS[2] MX[0,0] MX[1,0]",
				"FS[2] MX[1,0] MX[1,1]",
			}, combos(t, q.DD(), configs))
		})
	}
}
