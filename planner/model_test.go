// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/dalzilio/zudd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var representations = []string{"zbdd", "obdd"}

func testOptions(representation string) Options {
	opts := DefaultOptions()
	opts.Representation = representation
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func op(w int) SequenceItem {
	return SequenceItem{Kind: Default, Op: w}
}

func perm(w int) SequenceItem {
	return SequenceItem{Kind: Permutation, Op: w}
}

func alt(p int) SequenceItem {
	return SequenceItem{Kind: Alternative, Part: p}
}

func operations(names ...string) []Operation {
	res := make([]Operation, len(names))
	for k, name := range names {
		res[k] = Operation{ID: k, Name: name}
	}
	return res
}

// twoParts has two single-operation parts sharing one machine with a single
// instance.
func twoParts() *Model {
	return &Model{
		Operations: operations("cut"),
		Machines:   []Machine{{ID: 0, Name: "saw", Instances: 1}},
		Times:      [][]int{{1}},
		Parts: []*Part{
			{ID: 0, Name: "A", Sequences: []Sequence{{op(0)}}},
			{ID: 1, Name: "B", Sequences: []Sequence{{op(0)}}},
		},
	}
}

// flowShop has two parts going through the same two machines, the first
// slower than the second.
func flowShop() *Model {
	return &Model{
		Operations: operations("turn", "grind"),
		Machines: []Machine{
			{ID: 0, Name: "lathe", Instances: 1},
			{ID: 1, Name: "grinder", Instances: 1},
		},
		Times: [][]int{{2, 0}, {0, 1}},
		Parts: []*Part{
			{ID: 0, Name: "A", Sequences: []Sequence{{op(0), op(1)}}},
			{ID: 1, Name: "B", Sequences: []Sequence{{op(0), op(1)}}},
		},
	}
}

// mixedShop has alternative plans, permutations and machine choices.
func mixedShop() *Model {
	return &Model{
		Operations: operations("o0", "o1", "o2"),
		Machines: []Machine{
			{ID: 0, Name: "m0", Instances: 1},
			{ID: 1, Name: "m1", Instances: 2},
		},
		Times: [][]int{{2, 3}, {1, 0}, {0, 2}},
		Parts: []*Part{
			{ID: 0, Name: "A", Sequences: []Sequence{{op(0), op(1)}, {op(2)}}},
			{ID: 1, Name: "B", Sequences: []Sequence{{perm(0), perm(2)}}},
		},
	}
}

// singlePart returns a model with one part made of the given sequences, over
// n operations that all take one tick on a single machine.
func singlePart(n int, seqs ...Sequence) *Model {
	names := make([]string, n)
	times := make([][]int, n)
	for w := range names {
		names[w] = "o" + string(rune('0'+w))
		times[w] = []int{1}
	}
	return &Model{
		Operations: operations(names...),
		Machines:   []Machine{{ID: 0, Name: "m", Instances: 1}},
		Times:      times,
		Parts:      []*Part{{ID: 0, Name: "P", Sequences: seqs}},
	}
}

// combos returns the combinations of f, each as the sorted list of its
// variable names, in lexical order.
func combos(t *testing.T, dd *zudd.DD, f zudd.Node) []string {
	t.Helper()
	res := []string{}
	err := dd.Allcomb(f, func(vs []zudd.Var) error {
		names := make([]string, len(vs))
		for k, v := range vs {
			names[k] = dd.Name(v)
		}
		sort.Strings(names)
		res = append(res, strings.Join(names, " "))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(res)
	return res
}

func TestModelValidate(t *testing.T) {
	require.NoError(t, twoParts().Validate())
	require.NoError(t, mixedShop().Validate())

	tests := []struct {
		name   string
		modify func(m *Model)
	}{
		{"operation id", func(m *Model) { m.Operations[0].ID = 3 }},
		{"no instance", func(m *Model) { m.Machines[0].Instances = 0 }},
		{"matrix rows", func(m *Model) { m.Times = m.Times[:1] }},
		{"matrix columns", func(m *Model) { m.Times[0] = []int{1} }},
		{"negative time", func(m *Model) { m.Times[0][0] = -1 }},
		{"unknown operation", func(m *Model) { m.Parts[0].Sequences[0][0].Op = 7 }},
		{"empty sequence", func(m *Model) { m.Parts[0].Sequences[0] = Sequence{} }},
		{"no sequence", func(m *Model) { m.Parts[0].Sequences = nil }},
		{"alternative to a job", func(m *Model) { m.Parts[0].Sequences[0][0] = alt(1) }},
		{"no job", func(m *Model) { m.Parts[0].Subpart = true; m.Parts[1].Subpart = true }},
		{"cycle", func(m *Model) {
			m.Parts[1].Subpart = true
			m.Parts[1].Sequences = []Sequence{{alt(1)}}
			m.Parts[0].Sequences = []Sequence{{alt(1)}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mixedShop()
			tt.modify(m)
			err := m.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrModel)
		})
	}
}

func TestModelHorizon(t *testing.T) {
	assert.Equal(t, 2, twoParts().Horizon())
	assert.Equal(t, 6, flowShop().Horizon())
	// A: max(3+1, 2) and B: 3+2
	assert.Equal(t, 9, mixedShop().Horizon())

	m := mixedShop()
	assert.Equal(t, []int{0, 1}, m.Capable(0))
	assert.Equal(t, []int{1}, m.Capable(2))
	assert.Equal(t, 3, m.MaxTime())
	assert.Len(t, m.Jobs(), 2)
}
