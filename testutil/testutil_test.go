package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
)

func TestRandChargemap(t *testing.T) {
	tests := []struct {
		tag string
		d   int
	}{
		{tag: "Z2", d: 5},
		{tag: "Z2", d: 1},
		{tag: "U1", d: 7},
		{tag: "Z2Z2", d: 6},
		{tag: "U1U1", d: 4},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			sym := symmetry.MustGet(tt.tag)
			cm := RandChargemap(sym, tt.d)

			var total int
			for c, d := range cm {
				assert.Greater(t, d, 0)
				assert.True(t, sym.Valid(c), "charge %d", c)
				total += d
			}
			assert.Equal(t, tt.d, total)
		})
	}
}

func TestRandIndices(t *testing.T) {
	sym := symmetry.MustGet("U1")
	indices := RandIndices(sym, []int{4, 6}, []bool{false, true})

	require.Len(t, indices, 2)
	assert.Equal(t, 4, indices[0].SizeTotal())
	assert.Equal(t, 6, indices[1].SizeTotal())
	assert.False(t, indices[0].Flow())
	assert.True(t, indices[1].Flow())

	assert.Panics(t, func() { RandIndices(sym, []int{4}, []bool{false, true}) })
}

func TestRandArray(t *testing.T) {
	rng := NewRNG(7)
	sym := symmetry.MustGet("Z2")
	arr := RandArray(rng, sym, []int{4, 5, 6}, []bool{false, true, false}, 0, Normal)

	require.NoError(t, arr.Check())
	assert.Equal(t, []int{4, 5, 6}, arr.Shape())
	assert.InDelta(t, 1.0, arr.Sparsity(), 1e-15, "every allowed sector populated")
	assert.Greater(t, arr.Norm(), 0.0)
}

func TestRandFermionic(t *testing.T) {
	rng := NewRNG(9)
	sym := symmetry.MustGet("U1")
	arr := RandFermionic(rng, sym, []int{4, 4}, []bool{false, true}, 0)

	require.NoError(t, arr.Check())
	assert.Equal(t, 0, arr.NumPhases())
}

func TestDeterministicSeed(t *testing.T) {
	a := RandZ2Array(NewRNG(42), 4, 4)
	b := RandZ2Array(NewRNG(42), 4, 4)
	assert.True(t, a.AllClose(b, 0))

	c := RandZ2Array(NewRNG(43), 4, 4)
	assert.False(t, a.AllClose(c, 0))
}

func TestDenseTensordotAgreesWithBlockSparse(t *testing.T) {
	rng := NewRNG(11)
	sym := symmetry.MustGet("U1")

	a := RandArray(rng, sym, []int{5, 6}, []bool{false, false}, 0, Normal)
	b := symmetric.New(sym, []*symmetric.BlockIndex{a.Index(1).Conj(), a.Index(0).Conj()}, 0)
	for _, sector := range b.PossibleSectors() {
		shape, err := b.SectorShape(sector)
		require.NoError(t, err)
		blk, ok := a.Block(symmetric.Sector{sector[1], sector[0]})
		require.True(t, ok)
		tr, err := blk.Transpose([]int{1, 0})
		require.NoError(t, err)
		require.Equal(t, shape, tr.Shape())
		b.SetBlock(sector, tr)
	}

	sparse, err := symmetric.Tensordot(a, b, []int{1}, []int{0})
	require.NoError(t, err)
	ref, err := DenseTensordot(a.ToDense(), b.ToDense(), []int{1}, []int{0})
	require.NoError(t, err)

	assert.True(t, ref.AllClose(sparse.ToDense(), 1e-12))
}
