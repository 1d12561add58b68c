// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTwoParts(t *testing.T) {
	m, opts, err := Load(filepath.Join("testdata", "two_parts.yaml"))
	require.NoError(t, err)
	assert.True(t, opts.Trace)
	assert.Equal(t, "zbdd", opts.Representation)
	assert.Equal(t, NoCapacity, opts.FactoryCapacity)
	assert.True(t, opts.DynamicBound)

	require.Len(t, m.Operations, 1)
	assert.Equal(t, "cut", m.Operations[0].Name)
	require.Len(t, m.Machines, 1)
	assert.Equal(t, Machine{ID: 0, Name: "saw", Instances: 1}, m.Machines[0])
	assert.Equal(t, [][]int{{1}}, m.Times)
	require.Len(t, m.Parts, 2)
	assert.Equal(t, "red", m.Parts[0].Color)
	assert.Equal(t, 1, m.Parts[1].ID)
	assert.Equal(t, []Sequence{{{Kind: Default, Op: 0}}}, m.Parts[1].Sequences)
	assert.Equal(t, 2, m.Horizon())
}

func TestLoadPermutation(t *testing.T) {
	m, opts, err := Load(filepath.Join("testdata", "permutation.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "obdd", opts.Representation)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, Sequence{{Kind: Permutation, Op: 0}, {Kind: Permutation, Op: 1}}, m.Parts[0].Sequences[0])
	assert.Equal(t, [][]int{{1}, {2}}, m.Times)
}

func TestLoadWorkshop(t *testing.T) {
	m, opts, err := Load(filepath.Join("testdata", "workshop.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, opts.FactoryCapacity)
	assert.Len(t, m.Jobs(), 2)
	finish := m.Parts[2]
	assert.True(t, finish.Subpart)
	assert.Equal(t, SequenceItem{Kind: Alternative, Part: finish.ID}, m.Parts[0].Sequences[0][1])
	assert.Equal(t, []int{2}, m.Capable(3))
	assert.Equal(t, []int{0, 1}, m.Capable(1))

	_, res, err := Solve(m, opts)
	require.NoError(t, err)
	require.NotNil(t, res.Schedule)
	checkSchedule(t, m, res.Schedule)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"unknown field", "operations: [cut]\ncolour: red\n"},
		{"two keys", "operations: [cut]\nmachines: [{name: saw, instances: 1}]\ntimes: {cut: {saw: 1}}\n" +
			"parts: [{name: A, sequences: [[{op: cut, permutation: cut}]]}]\n"},
		{"unknown operation", "operations: [cut]\nmachines: [{name: saw, instances: 1}]\ntimes: {cut: {saw: 1}}\n" +
			"parts: [{name: A, sequences: [[drill]]}]\n"},
		{"unknown machine", "operations: [cut]\nmachines: [{name: saw, instances: 1}]\ntimes: {cut: {lathe: 1}}\n" +
			"parts: [{name: A, sequences: [[cut]]}]\n"},
		{"duplicate part", "operations: [cut]\nmachines: [{name: saw, instances: 1}]\ntimes: {cut: {saw: 1}}\n" +
			"parts: [{name: A, sequences: [[cut]]}, {name: A, sequences: [[cut]]}]\n"},
		{"no machine", "operations: [cut]\nmachines: [{name: saw, instances: 0}]\ntimes: {cut: {saw: 1}}\n" +
			"parts: [{name: A, sequences: [[cut]]}]\n"},
		{"bad option", "options: {representation: tree}\noperations: [cut]\nmachines: [{name: saw, instances: 1}]\n" +
			"times: {cut: {saw: 1}}\nparts: [{name: A, sequences: [[cut]]}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrModel)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshal(t *testing.T) {
	for _, name := range []string{"two_parts.yaml", "permutation.yaml", "workshop.yaml"} {
		t.Run(name, func(t *testing.T) {
			m, opts, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			data, err := Marshal(m, opts)
			require.NoError(t, err)
			back, bopts, err := Parse(data)
			require.NoError(t, err)
			assert.Equal(t, m, back)
			assert.Equal(t, opts.Representation, bopts.Representation)
			assert.Equal(t, opts.Trace, bopts.Trace)
			assert.Equal(t, opts.FactoryCapacity, bopts.FactoryCapacity)
		})
	}
}
