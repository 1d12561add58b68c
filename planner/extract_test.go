// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkSchedule verifies that a schedule respects the processing times, the
// order of the slots of each part and the capacity of each machine instance.
func checkSchedule(t *testing.T, m *Model, sched *Schedule) {
	t.Helper()
	byPart := make(map[int][]GanttItem)
	for _, it := range sched.Items {
		assert.Equal(t, m.Times[it.Operation][it.Machine], it.End-it.Start, "%+v", it)
		assert.LessOrEqual(t, it.End, sched.Makespan)
		assert.Less(t, it.Instance, m.Machines[it.Machine].Instances)
		byPart[it.Part] = append(byPart[it.Part], it)
	}
	for s, items := range byPart {
		for k := 1; k < len(items); k++ {
			assert.Equal(t, items[k-1].Slot+1, items[k].Slot, "part %d", s)
			assert.LessOrEqual(t, items[k-1].End, items[k].Start, "part %d", s)
		}
	}
	for k, a := range sched.Items {
		for _, b := range sched.Items[k+1:] {
			if a.Machine == b.Machine && a.Instance == b.Instance {
				assert.True(t, a.End <= b.Start || b.End <= a.Start, "%+v and %+v overlap", a, b)
			}
		}
	}
}

func TestExtractTwoParts(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			opts := testOptions(rep)
			opts.Trace = true
			m := twoParts()
			_, res, err := Solve(m, opts)
			require.NoError(t, err)
			require.NotNil(t, res.Schedule)
			sched := res.Schedule
			assert.Equal(t, 2, sched.Makespan)
			assert.Equal(t, 1, sched.Machines)
			assert.Equal(t, map[int]int{0: 1}, sched.Installed)
			require.Len(t, sched.Items, 2)
			assert.Equal(t, 0, sched.Items[0].Start)
			assert.Equal(t, 1, sched.Items[1].Start)
			assert.NotEqual(t, sched.Items[0].Part, sched.Items[1].Part)
			checkSchedule(t, m, sched)
		})
	}
}

func TestExtractFlowShop(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			opts := testOptions(rep)
			opts.Trace = true
			m := flowShop()
			_, res, err := Solve(m, opts)
			require.NoError(t, err)
			require.NotNil(t, res.Schedule)
			assert.Equal(t, 5, res.Schedule.Makespan)
			assert.Equal(t, 2, res.Schedule.Machines)
			assert.Len(t, res.Schedule.Items, 4)
			checkSchedule(t, m, res.Schedule)
		})
	}
}

func TestExtractMixedShop(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			opts := testOptions(rep)
			opts.Trace = true
			opts.FactoryCapacity = 2
			opts.DynamicBound = false
			m := mixedShop()
			p, res, err := Solve(m, opts)
			require.NoError(t, err)
			require.NotNil(t, res.Schedule)
			sched := res.Schedule
			// every plan needs m1, and a single instance is enough when all
			// the solutions are kept
			assert.Equal(t, 1, sched.Machines)
			assert.Equal(t, map[int]int{1: 1}, sched.Installed)
			checkSchedule(t, m, sched)

			// no solution uses fewer machines, and none with as few machines
			// ends earlier
			dd, group := p.DD(), p.Catalog().Group(MX)
			require.Contains(t, res.Outcome.Counts, sched.Makespan)
			for k := range res.Outcome.Counts {
				f, ok := dd.Formula(ResultName(k))
				require.True(t, ok)
				assert.True(t, dd.IsEmpty(dd.Permitsym(f, group, sched.Machines-1)), "step %d", k)
				if k < sched.Makespan {
					assert.True(t, dd.IsEmpty(dd.Permitsym(f, group, sched.Machines)), "step %d", k)
				}
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	p, err := New(twoParts(), testOptions("zbdd"))
	require.NoError(t, err)
	plan, err := p.FeasiblePlans()
	require.NoError(t, err)
	_, err = p.Extract(plan, plan)
	assert.ErrorIs(t, err, ErrNoTrace)

	opts := testOptions("zbdd")
	opts.Trace = true
	p, err = New(twoParts(), opts)
	require.NoError(t, err)
	plan, err = p.FeasiblePlans()
	require.NoError(t, err)
	_, err = p.Extract(plan, p.DD().Empty())
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestWriteGantt(t *testing.T) {
	m := twoParts()
	sched := &Schedule{
		Makespan:  2,
		Installed: map[int]int{0: 1},
		Machines:  1,
		Items: []GanttItem{
			{Part: 1, Slot: 0, Operation: 0, Machine: 0, Instance: 0, Start: 0, End: 1},
			{Part: 0, Slot: 0, Operation: 0, Machine: 0, Instance: 0, Start: 1, End: 2},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteGantt(&buf, m, sched))
	want := "# Schedule\n\n" +
		"- makespan: 2\n" +
		"- installed machines: 1 (saw: 1)\n\n" +
		"| Part | Slot | Operation | Machine | Start | End |\n" +
		"| --- | --- | --- | --- | --- | --- |\n" +
		"| B | 0 | cut | saw#0 | 0 | 1 |\n" +
		"| A | 0 | cut | saw#0 | 1 | 2 |\n" +
		"\n```mermaid\ngantt\n    dateFormat X\n    axisFormat %s\n" +
		"    section saw#0\n" +
		"    B cut : 0, 1\n" +
		"    A cut : 1, 2\n" +
		"```\n"
	assert.Equal(t, want, buf.String())
}
