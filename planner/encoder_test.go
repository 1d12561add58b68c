// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAll(t *testing.T, m *Model, opts Options) []string {
	t.Helper()
	p, err := New(m, opts)
	require.NoError(t, err)
	f, err := p.Encoder().Encode(m.Parts[0], 0, 0)
	require.NoError(t, err)
	return combos(t, p.DD(), f)
}

func TestEncodeSequences(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			m := singlePart(3, Sequence{op(0), op(1)}, Sequence{op(2)})
			assert.Equal(t, []string{"O[0,0,0] O[0,1,1]", "O[0,2,0]"}, encodeAll(t, m, testOptions(rep)))
		})
	}
}

func TestEncodePermutation(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			m := singlePart(2, Sequence{perm(0), perm(1)})
			assert.Equal(t, []string{"O[0,0,0] O[0,1,1]", "O[0,0,1] O[0,1,0]"}, encodeAll(t, m, testOptions(rep)))

			m = singlePart(4, Sequence{op(0), perm(1), perm(2), op(3)})
			assert.Equal(t, []string{
				"O[0,0,0] O[0,1,1] O[0,2,2] O[0,3,3]",
				"O[0,0,0] O[0,1,2] O[0,2,1] O[0,3,3]",
			}, encodeAll(t, m, testOptions(rep)))

			m = singlePart(3, Sequence{perm(0), perm(1), perm(2)})
			res := encodeAll(t, m, testOptions(rep))
			assert.Len(t, res, 6)
			for _, c := range res {
				// one operation per slot, and each operation once
				vars := strings.Fields(c)
				require.Len(t, vars, 3)
				slots := map[byte]bool{}
				ops := map[byte]bool{}
				for _, v := range vars {
					ops[v[4]] = true
					slots[v[6]] = true
				}
				assert.Len(t, slots, 3, c)
				assert.Len(t, ops, 3, c)
			}
		})
	}
}

func TestEncodePermutationLimit(t *testing.T) {
	m := singlePart(4, Sequence{perm(0), perm(1), perm(2), perm(3)})
	_, err := New(m, testOptions("zbdd"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermutationGroup)

	opts := testOptions("zbdd")
	opts.PermutationLimit = 4
	assert.Len(t, encodeAll(t, m, opts), 24)
}

func TestEncodeAlternative(t *testing.T) {
	sub := &Part{ID: 1, Name: "S", Subpart: true, Sequences: []Sequence{{op(1)}, {op(1), op(2)}}}
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			m := singlePart(4, Sequence{op(0), alt(1)})
			m.Parts = append(m.Parts, sub)
			assert.Equal(t, []string{
				"O[0,0,0] O[0,1,1]",
				"O[0,0,0] O[0,1,1] O[0,2,2]",
			}, encodeAll(t, m, testOptions(rep)))

			// the item following an alternative depends on its length
			m = singlePart(4, Sequence{alt(1), op(3)})
			m.Parts = append(m.Parts, sub)
			assert.Equal(t, []string{
				"O[0,1,0] O[0,2,1] O[0,3,2]",
				"O[0,1,0] O[0,3,1]",
			}, encodeAll(t, m, testOptions(rep)))

			p, err := New(m, testOptions(rep))
			require.NoError(t, err)
			assert.Equal(t, 3, p.Layout().Slots[0])
			assert.Equal(t, []int{0}, p.Layout().Jobs)
		})
	}
}

func TestEncodeCache(t *testing.T) {
	p, err := New(mixedShop(), testOptions("zbdd"))
	require.NoError(t, err)
	f, err := p.Encoder().Encode(p.Model().Parts[1], 1, 0)
	require.NoError(t, err)
	g, err := p.Encoder().Encode(p.Model().Parts[1], 1, 0)
	require.NoError(t, err)
	assert.True(t, f == g, "top-level encodings are cached")
	assert.Equal(t, int64(2), p.DD().Count(f).Int64())
}

func TestPermutations(t *testing.T) {
	assert.Equal(t, [][]int{{}}, permutations(0))
	assert.Len(t, permutations(3), 6)
	seen := map[string]bool{}
	for _, q := range permutations(4) {
		seen[fmt.Sprint(q)] = true
	}
	assert.Len(t, seen, 24)
}
