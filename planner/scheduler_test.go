// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedule(t *testing.T, m *Model, opts Options) (*Planner, *Outcome) {
	t.Helper()
	p, res, err := Solve(m, opts)
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	return p, res.Outcome
}

func TestScheduleTwoParts(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			opts := testOptions(rep)
			opts.Trace = true
			p, out := schedule(t, twoParts(), opts)
			assert.Equal(t, 2, out.First)
			assert.NotContains(t, out.Counts, 1)
			require.Contains(t, out.Counts, 2)
			assert.Equal(t, int64(2), out.Counts[2].Int64())

			f, ok := p.DD().Formula(ResultName(2))
			require.True(t, ok)
			assert.Len(t, combos(t, p.DD(), f), 2)
			_, ok = p.DD().Formula(ResultName(1))
			assert.False(t, ok)

			// without trace, both orders lead to the same final state
			opts.Trace = false
			_, out = schedule(t, twoParts(), opts)
			assert.Equal(t, 2, out.First)
			assert.Equal(t, int64(1), out.Counts[2].Int64())
		})
	}
}

func TestScheduleFlowShop(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"default", func(o *Options) {}},
		{"full state space", func(o *Options) { o.FullStateSpace = true }},
		{"static bound", func(o *Options) { o.DynamicBound = false; o.Makespan = 5 }},
		{"no bound", func(o *Options) { o.DynamicBound = false }},
		{"no cache", func(o *Options) { o.NoLimitCache = true }},
		{"trace", func(o *Options) { o.Trace = true }},
		{"sift", func(o *Options) { o.Sift = true; o.Trace = true }},
		{"first solution", func(o *Options) { o.FirstSolutionOnly = true; o.DynamicBound = false }},
	}
	for _, rep := range representations {
		for _, tt := range tests {
			t.Run(rep+"/"+tt.name, func(t *testing.T) {
				opts := testOptions(rep)
				tt.modify(&opts)
				_, out := schedule(t, flowShop(), opts)
				assert.Equal(t, 5, out.First)
				assert.False(t, out.Truncated)
				assert.LessOrEqual(t, out.Steps, flowShop().Horizon()+1)
			})
		}
	}
}

func TestScheduleBounds(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			// a makespan below the optimum does not discard every state
			for _, trace := range []bool{false, true} {
				opts := testOptions(rep)
				opts.DynamicBound = false
				opts.Makespan = 1
				opts.Trace = trace
				_, out := schedule(t, twoParts(), opts)
				assert.Equal(t, 2, out.First)
				assert.Equal(t, 1, out.Bound)
				require.Contains(t, out.Counts, 2)
			}

			opts := testOptions(rep)
			opts.DynamicBound = false
			opts.Makespan = 4
			p, out := schedule(t, flowShop(), opts)
			assert.Equal(t, 5, out.First)
			assert.False(t, p.DD().IsEmpty(out.Solutions))

			// the loop stops at the step limit
			opts = testOptions(rep)
			opts.StepLimit = 3
			_, out = schedule(t, flowShop(), opts)
			assert.Zero(t, out.First)
			assert.True(t, out.Truncated)
			assert.Equal(t, 3, out.Steps)

			// the dynamic bound is tightened to the first solution
			opts = testOptions(rep)
			_, out = schedule(t, flowShop(), opts)
			assert.Equal(t, 5, out.Bound)
			assert.Equal(t, 5, out.First)
			for k := range out.Counts {
				assert.GreaterOrEqual(t, k, out.First)
			}
		})
	}
}

func TestScheduleProgress(t *testing.T) {
	workshop, _, err := Load(filepath.Join("testdata", "workshop.yaml"))
	require.NoError(t, err)
	models := map[string]*Model{
		"two parts": twoParts(),
		"flow shop": flowShop(),
		"mixed":     mixedShop(),
		"workshop":  workshop,
	}
	for _, rep := range representations {
		for name, m := range models {
			for _, full := range []bool{false, true} {
				opts := testOptions(rep)
				opts.DynamicBound = false
				opts.FullStateSpace = full
				t.Run(fmt.Sprintf("%s/%s/full=%v", rep, name, full), func(t *testing.T) {
					// some operation runs at every step, so every state is
					// harvested before the horizon
					_, out := schedule(t, m, opts)
					assert.NotZero(t, out.First)
					assert.False(t, out.Truncated)
					assert.LessOrEqual(t, out.Steps, m.Horizon())
					for k := range out.Counts {
						assert.LessOrEqual(t, k, out.Steps)
						assert.GreaterOrEqual(t, k, out.First)
					}
				})
			}
		}
	}
}

func TestScheduleNoPlan(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			opts := testOptions(rep)
			opts.FactoryCapacity = 0
			p, out := schedule(t, twoParts(), opts)
			assert.Zero(t, out.First)
			assert.True(t, p.DD().IsEmpty(out.Solutions))
			assert.Zero(t, out.Steps)
		})
	}
}

func TestScheduleMixedShop(t *testing.T) {
	var first int
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			opts := testOptions(rep)
			opts.Trace = true
			p, out := schedule(t, mixedShop(), opts)
			require.NotZero(t, out.First)
			// B needs 4 ticks on its own
			assert.GreaterOrEqual(t, out.First, 4)
			if first == 0 {
				first = out.First
			}
			assert.Equal(t, first, out.First, "both representations agree")
			assert.Positive(t, p.Pruner().Stats().Misses)
		})
	}
}
