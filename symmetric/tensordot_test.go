package symmetric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/symmetry"
)

// denseTensordot is the brute-force reference: transpose both operands
// so the contracted axes are innermost/outermost, flatten, multiply.
func denseTensordot(t *testing.T, a, b *dense.Dense, axesA, axesB []int) *dense.Dense {
	t.Helper()
	permA := append(axesComplement(a.NDim(), axesA), axesA...)
	permB := append(append([]int(nil), axesB...), axesComplement(b.NDim(), axesB)...)

	ta, err := a.Transpose(permA)
	require.NoError(t, err)
	tb, err := b.Transpose(permB)
	require.NoError(t, err)

	k := 1
	for _, ax := range axesA {
		k *= a.Shape()[ax]
	}
	m, n := ta.Size()/k, tb.Size()/k

	ma, err := ta.Reshape(m, k)
	require.NoError(t, err)
	mb, err := tb.Reshape(k, n)
	require.NoError(t, err)
	prod, err := dense.Matmul(ma, mb)
	require.NoError(t, err)

	outShape := make([]int, 0, a.NDim()+b.NDim()-2*len(axesA))
	for _, ax := range axesComplement(a.NDim(), axesA) {
		outShape = append(outShape, a.Shape()[ax])
	}
	for _, ax := range axesComplement(b.NDim(), axesB) {
		outShape = append(outShape, b.Shape()[ax])
	}
	out, err := prod.Reshape(outShape...)
	require.NoError(t, err)
	return out
}

func TestTensordotZ2(t *testing.T) {
	sym := symmetry.MustGet("Z2")

	ixK := NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 3}, false)
	a := New(sym, []*BlockIndex{
		NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false),
		ixK,
	}, 0)
	b := New(sym, []*BlockIndex{
		ixK.Conj(),
		NewBlockIndex(map[symmetry.Charge]int{0: 3, 1: 1}, false),
	}, 0)
	fillSequential(t, a)
	fillSequential(t, b)

	out, err := Tensordot(a, b, []int{1}, []int{0})
	require.NoError(t, err)
	require.NoError(t, out.Check())

	assert.Equal(t, 2, out.NDim())
	assert.Equal(t, []int{4, 4}, out.Shape())
	assert.Equal(t, symmetry.Charge(0), out.ChargeTotal())

	want := denseTensordot(t, a.ToDense(), b.ToDense(), []int{1}, []int{0})
	assert.True(t, want.AllClose(out.ToDense(), 1e-12))
}

func TestTensordotU1MultiAxis(t *testing.T) {
	sym := symmetry.MustGet("U1")

	ixP := NewBlockIndex(map[symmetry.Charge]int{-1: 1, 0: 2, 1: 1}, false)
	ixQ := NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, true)
	a := New(sym, []*BlockIndex{
		NewBlockIndex(map[symmetry.Charge]int{-1: 2, 0: 1, 1: 2}, false),
		ixP,
		ixQ,
	}, 0)
	b := New(sym, []*BlockIndex{
		ixQ.Conj(),
		ixP.Conj(),
		NewBlockIndex(map[symmetry.Charge]int{-1: 1, 0: 1, 1: 1}, false),
	}, 1)
	fillSequential(t, a)
	fillSequential(t, b)
	require.NoError(t, a.Check())
	require.NoError(t, b.Check())

	// Contract a's axes (1, 2) against b's (1, 0).
	out, err := Tensordot(a, b, []int{1, 2}, []int{1, 0})
	require.NoError(t, err)
	require.NoError(t, out.Check())

	assert.Equal(t, 2, out.NDim())
	assert.Equal(t, symmetry.Charge(1), out.ChargeTotal())

	want := denseTensordot(t, a.ToDense(), b.ToDense(), []int{1, 2}, []int{1, 0})
	assert.True(t, want.AllClose(out.ToDense(), 1e-12))
}

func TestTensordotFullContraction(t *testing.T) {
	sym := symmetry.MustGet("Z2")
	ix0 := NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)
	ix1 := NewBlockIndex(map[symmetry.Charge]int{0: 3, 1: 2}, false)

	a := New(sym, []*BlockIndex{ix0, ix1}, 0)
	b := New(sym, []*BlockIndex{ix0.Conj(), ix1.Conj()}, 0)
	fillSequential(t, a)
	fillSequential(t, b)

	out, err := Tensordot(a, b, []int{0, 1}, []int{0, 1})
	require.NoError(t, err)

	// Rank zero: a single scalar block.
	assert.Equal(t, 0, out.NDim())
	assert.Equal(t, 1, out.NumBlocks())

	want := denseTensordot(t, a.ToDense(), b.ToDense(), []int{0, 1}, []int{0, 1})
	assert.InDelta(t, real(want.Data()[0]), real(out.Sum()), 1e-12)
}

func TestTensordotOuterProduct(t *testing.T) {
	sym := symmetry.MustGet("Z2")
	a := New(sym, []*BlockIndex{NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 1}, false)}, 0)
	b := New(sym, []*BlockIndex{NewBlockIndex(map[symmetry.Charge]int{0: 1, 1: 2}, false)}, 1)
	fillSequential(t, a)
	fillSequential(t, b)

	out, err := Tensordot(a, b, nil, nil)
	require.NoError(t, err)
	require.NoError(t, out.Check())
	assert.Equal(t, []int{3, 3}, out.Shape())
	assert.Equal(t, symmetry.Charge(1), out.ChargeTotal())

	want := denseTensordot(t, a.ToDense(), b.ToDense(), nil, nil)
	assert.True(t, want.AllClose(out.ToDense(), 1e-12))
}

func TestTensordotDisjointSectors(t *testing.T) {
	sym := symmetry.MustGet("U1")
	ixK := NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)

	a := New(sym, []*BlockIndex{NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false), ixK.Conj()}, 0)
	b := New(sym, []*BlockIndex{ixK, NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, true)}, 0)

	// a stores only sectors whose contracted charge is 0, b only 1.
	blk := dense.Zeros(2, 2)
	for i := range blk.Data() {
		blk.Data()[i] = complex(float64(i+1), 0)
	}
	a.SetBlock(Sector{0, 0}, blk.Clone())
	b.SetBlock(Sector{1, 1}, blk.Clone())

	out, err := Tensordot(a, b, []int{1}, []int{0})
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumBlocks())
	assert.InDelta(t, 0, out.ToDense().Norm(), 1e-15)
}

func TestTensordotParallelMatchesSerial(t *testing.T) {
	a := z2Array4(t)
	fillSequential(t, a)

	b := New(a.Symmetry(), []*BlockIndex{
		a.Index(2).Conj(),
		a.Index(3).Conj(),
		NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false),
	}, 0)
	fillSequential(t, b)

	serial, err := Tensordot(a, b, []int{2, 3}, []int{0, 1})
	require.NoError(t, err)
	parallel, err := Tensordot(a, b, []int{2, 3}, []int{0, 1}, WithParallelism(4))
	require.NoError(t, err)

	assert.True(t, serial.AllClose(parallel, 1e-12))
}

func TestTensordotErrors(t *testing.T) {
	z2 := symmetry.MustGet("Z2")
	u1 := symmetry.MustGet("U1")
	ix := NewBlockIndex(map[symmetry.Charge]int{0: 2, 1: 2}, false)

	a := New(z2, []*BlockIndex{ix, ix.Conj()}, 0)
	b := New(z2, []*BlockIndex{ix, ix.Conj()}, 0)

	t.Run("symmetry mismatch", func(t *testing.T) {
		c := New(u1, []*BlockIndex{ix, ix.Conj()}, 0)
		_, err := Tensordot(a, c, []int{1}, []int{0})
		assert.ErrorIs(t, err, ErrSymmetryMismatch)
	})

	t.Run("axes length mismatch", func(t *testing.T) {
		_, err := Tensordot(a, b, []int{0, 1}, []int{0})
		var lenErr *ErrAxesLengthMismatch
		assert.ErrorAs(t, err, &lenErr)
	})

	t.Run("axis out of range", func(t *testing.T) {
		_, err := Tensordot(a, b, []int{5}, []int{0})
		var rangeErr *ErrAxisOutOfRange
		assert.ErrorAs(t, err, &rangeErr)
	})

	t.Run("index mismatch", func(t *testing.T) {
		// Same flow on both contracted axes.
		_, err := Tensordot(a, b, []int{0}, []int{0})
		var ixErr *ErrIndexMismatch
		require.ErrorAs(t, err, &ixErr)
		assert.Equal(t, 0, ixErr.AxisA)
	})
}

func TestAxisHelpers(t *testing.T) {
	assert.Equal(t, []int{2, 3}, LastAxes(4, 2))
	assert.Equal(t, []int{0, 1}, FirstAxes(2))
	assert.Equal(t, []int{0, 3}, axesComplement(4, []int{1, 2}))
}
