// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package planner

import (
	"testing"

	"github.com/dalzilio/zudd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogDeclare(t *testing.T) {
	dd, err := zudd.New()
	require.NoError(t, err)
	c := NewCatalog(dd, func(part int) bool { return part == 1 })

	o, err := c.Declare(O, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "O[1,2,0]", dd.Name(o))
	again, err := c.Declare(O, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, o, again)
	assert.Equal(t, 1, dd.Varnum())

	_, err = c.Declare(O, 1, 2)
	assert.ErrorIs(t, err, ErrModel)

	m1, err := c.declareLimit(M, Limit{Part: 1, Machine: 0, Weight: 4}, 1, 2, 0, 0)
	require.NoError(t, err)
	m0, err := c.declareLimit(M, Limit{Part: 0, Machine: 0, Weight: 4}, 0, 2, 0, 0)
	require.NoError(t, err)
	lim, ok := c.Limit(m1)
	require.True(t, ok)
	assert.Equal(t, Limit{Part: 1, Machine: 0, Weight: 4}, lim)
	_, ok = c.Limit(m0)
	assert.False(t, ok, "part 0 is not selected by the filter")

	v, ok := c.Find(M, 1, 2, 0, 0)
	assert.True(t, ok)
	assert.Equal(t, m1, v)
	_, ok = c.Find(M, 1, 2, 0, 9)
	assert.False(t, ok)
	_, ok = c.Find(Kind(42), 1)
	assert.False(t, ok)

	k, idx, ok := c.Decode(m0)
	require.True(t, ok)
	assert.Equal(t, M, k)
	assert.Equal(t, []int{0, 2, 0, 0}, idx)

	assert.Equal(t, []zudd.Var{m1, m0}, c.Vars(M))
	assert.Equal(t, []zudd.Var{m1}, c.Select(M, 1))
	assert.Equal(t, []zudd.Var{m1, m0}, c.Select(M))
}

func TestCatalogAnyOf(t *testing.T) {
	for _, rep := range representations {
		t.Run(rep, func(t *testing.T) {
			kind := zudd.ZBDD
			if rep == "obdd" {
				kind = zudd.OBDD
			}
			dd, err := zudd.New(zudd.Representation(kind))
			require.NoError(t, err)
			c := NewCatalog(dd, nil)
			a, _ := c.Declare(W, 0, 0)
			b, _ := c.Declare(W, 0, 1)
			x, _ := c.Declare(B, 0, 0)
			f := dd.Unions(dd.Combination(a, x), dd.Combination(x), dd.Combination(b), dd.Base())
			g := dd.Supset(f, c.AnyOf([]zudd.Var{a, b}))
			assert.Equal(t, []string{"B[0,0] W[0,0]", "W[0,1]"}, combos(t, dd, g))
			assert.Equal(t, []zudd.Var{a, b}, dd.Scanset(c.Group(W)))
		})
	}
}
