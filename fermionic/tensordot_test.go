package fermionic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symmgo/fermionic"
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
	"github.com/hupe1980/symmgo/testutil"
)

func TestTensordotEvenChargesMatchSymmetric(t *testing.T) {
	// With only even charges no exchange sign can ever arise, so the
	// fermionic contraction must coincide with the symmetric one.
	rng := testutil.NewRNG(41)
	sym := symmetry.MustGet("U1")

	ixK := symmetric.NewBlockIndex(map[symmetry.Charge]int{-2: 2, 0: 2, 2: 1}, false)
	a := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{
		symmetric.NewBlockIndex(map[symmetry.Charge]int{-2: 1, 0: 2, 2: 2}, false),
		ixK,
	}, 0)
	b := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{
		ixK.Conj(),
		symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 2: 2}, false),
	}, 2)

	got, err := fermionic.Tensordot(a, b, []int{1}, []int{0})
	require.NoError(t, err)
	require.NoError(t, got.Check())

	want, err := symmetric.Tensordot(a.Symmetric(), b.Symmetric(), []int{1}, []int{0})
	require.NoError(t, err)

	assert.Equal(t, symmetry.Charge(2), got.ChargeTotal())
	assert.True(t, want.AllClose(got.Symmetric(), 1e-12))
}

func TestTensordotNegativeAxes(t *testing.T) {
	rng := testutil.NewRNG(43)
	sym := symmetry.MustGet("Z2")

	ixK := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)
	free := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 1}, false)
	a := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{free, ixK}, 0)
	b := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{ixK.Conj(), free.Copy()}, 0)

	pos, err := fermionic.Tensordot(a, b, []int{1}, []int{0})
	require.NoError(t, err)
	neg, err := fermionic.Tensordot(a, b, []int{-1}, []int{-2})
	require.NoError(t, err)

	assert.True(t, pos.AllClose(neg, 0))
}

func TestTensordotN(t *testing.T) {
	rng := testutil.NewRNG(47)
	sym := symmetry.MustGet("Z2")

	ix0 := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)
	ix1 := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 3, 1: 1}, true)
	free := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)

	a := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{free, ix0, ix1}, 0)
	b := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{ix0.Conj(), ix1.Conj(), free.Copy()}, 0)

	fromN, err := fermionic.TensordotN(a, b, 2)
	require.NoError(t, err)
	explicit, err := fermionic.Tensordot(a, b, []int{1, 2}, []int{0, 1})
	require.NoError(t, err)

	assert.True(t, fromN.AllClose(explicit, 0))
	assert.Equal(t, 2, fromN.NDim())
}

func TestTensordotUnresolvedPhasesAgree(t *testing.T) {
	// Buffered signs and resolved signs must contract identically.
	rng := testutil.NewRNG(53)
	sym := symmetry.MustGet("Z2")

	ixK := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)
	free := symmetric.NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, true)
	a := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{free, ixK}, 0)
	b := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{ixK.Conj(), free.Conj()}, 0)

	// The swap buffers a sign on every odd-odd sector.
	lazy, err := a.Transpose([]int{1, 0}, true)
	require.NoError(t, err)
	require.Greater(t, lazy.NumPhases(), 0)

	eager := lazy.PhaseResolve()
	assert.Equal(t, 0, eager.NumPhases())

	r1, err := fermionic.Tensordot(lazy, b, []int{0}, []int{0})
	require.NoError(t, err)
	r2, err := fermionic.Tensordot(eager, b, []int{0}, []int{0})
	require.NoError(t, err)
	assert.True(t, r1.AllClose(r2, 1e-12))
}

func TestTensordotParallelMatchesSerial(t *testing.T) {
	rng := testutil.NewRNG(59)
	sym := symmetry.MustGet("U1")

	ix0 := symmetric.NewBlockIndex(map[symmetry.Charge]int{-1: 2, 0: 2, 1: 2}, false)
	ix1 := symmetric.NewBlockIndex(map[symmetry.Charge]int{-1: 1, 0: 2, 1: 1}, true)
	a := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{ix0, ix1}, 0)
	b := randFermionicWithIndices(rng, sym, []*symmetric.BlockIndex{ix1.Conj(), ix0.Conj()}, 0)

	serial, err := fermionic.Tensordot(a, b, []int{1}, []int{0})
	require.NoError(t, err)
	parallel, err := fermionic.Tensordot(a, b, []int{1}, []int{0}, symmetric.WithParallelism(4))
	require.NoError(t, err)

	assert.True(t, serial.AllClose(parallel, 1e-12))
}

func TestTensordotErrors(t *testing.T) {
	a := scalarArray2(t, 1, 2)
	b := scalarArray2(t, 3, 4)

	t.Run("axes length mismatch", func(t *testing.T) {
		_, err := fermionic.Tensordot(a, b, []int{0, 1}, []int{0})
		var lenErr *symmetric.ErrAxesLengthMismatch
		assert.ErrorAs(t, err, &lenErr)
	})

	t.Run("axis out of range", func(t *testing.T) {
		_, err := fermionic.Tensordot(a, b, []int{4}, []int{0})
		var rangeErr *symmetric.ErrAxisOutOfRange
		assert.ErrorAs(t, err, &rangeErr)
	})

	t.Run("index mismatch", func(t *testing.T) {
		// Both arrays have flow=false on every axis.
		_, err := fermionic.Tensordot(a, b, []int{1}, []int{0})
		var ixErr *symmetric.ErrIndexMismatch
		assert.ErrorAs(t, err, &ixErr)
	})
}
