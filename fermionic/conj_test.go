package fermionic_test

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symmgo/fermionic"
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
	"github.com/hupe1980/symmgo/testutil"
)

func TestConjStructure(t *testing.T) {
	a := scalarArray2(t, complex(2, 1), complex(0, 3))

	c := a.Conj(true)
	require.NoError(t, c.Check())

	assert.True(t, c.Index(0).Flow())
	assert.True(t, c.Index(1).Flow())

	blk, _ := c.Block(symmetric.Sector{0, 0})
	assert.Equal(t, complex(2, -1), blk.Data()[0])

	// Reversing two odd axes buffers a sign on the odd-odd sector; the
	// dual-axis correction is trivial there (even combined parity).
	assert.Equal(t, -1, c.Phase(symmetric.Sector{1, 1}))
	assert.Equal(t, 1, c.Phase(symmetric.Sector{0, 0}))

	// The receiver is untouched.
	orig, _ := a.Block(symmetric.Sector{0, 0})
	assert.Equal(t, complex(2, 1), orig.Data()[0])
	assert.False(t, a.Index(0).Flow())

	// phase=false conjugates values and flows only.
	plain := a.Conj(false)
	assert.Equal(t, 0, plain.NumPhases())
}

// scalarValue extracts the single element of a rank-0 contraction
// result.
func scalarValue(t *testing.T, a *fermionic.Array) complex128 {
	t.Helper()
	require.Equal(t, 0, a.NDim())
	return a.ToDense().Data()[0]
}

func TestConjInnerProduct(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		shape []int
		flows []bool
	}{
		{name: "z2 rank2", tag: "Z2", shape: []int{3, 3}, flows: []bool{false, true}},
		{name: "z2 rank3", tag: "Z2", shape: []int{3, 4, 2}, flows: []bool{false, false, true}},
		{name: "u1 rank3", tag: "U1", shape: []int{4, 3, 4}, flows: []bool{true, false, false}},
		{name: "z2z2 rank2", tag: "Z2Z2", shape: []int{4, 4}, flows: []bool{false, true}},
	}

	rng := testutil.NewRNG(23)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym := symmetry.MustGet(tt.tag)
			x := testutil.RandFermionic(rng, sym, tt.shape, tt.flows, sym.Zero())

			axes := make([]int, x.NDim())
			for i := range axes {
				axes[i] = i
			}

			left, err := fermionic.Tensordot(x.Conj(true), x, axes, axes)
			require.NoError(t, err)
			right, err := fermionic.Tensordot(x, x.Conj(true), axes, axes)
			require.NoError(t, err)

			lv, rv := scalarValue(t, left), scalarValue(t, right)

			// Conjugating either operand gives the same inner product,
			// and its value is the squared norm.
			assert.InDelta(t, 0, cmplx.Abs(lv-rv), 1e-10)
			assert.InDelta(t, 0, imag(lv), 1e-10)
			n := x.Norm()
			assert.InDelta(t, n*n, real(lv), 1e-9)
		})
	}
}

func TestDaggerInnerProduct(t *testing.T) {
	rng := testutil.NewRNG(31)
	sym := symmetry.MustGet("U1")
	x := testutil.RandFermionic(rng, sym, []int{3, 4, 3}, []bool{false, true, false}, 0)

	xd, err := x.H()
	require.NoError(t, err)
	require.NoError(t, xd.Check())

	// The adjoint reverses the axis order and flips every flow.
	assert.True(t, xd.Index(0).Flow())
	assert.False(t, xd.Index(1).Flow())
	assert.True(t, xd.Index(2).Flow())
	assert.Equal(t, []int{3, 4, 3}, xd.Shape())

	// Pair adjoint axis i against original axis ndim-1-i.
	axesA := []int{0, 1, 2}
	axesB := []int{2, 1, 0}

	left, err := fermionic.Tensordot(xd, x, axesA, axesB)
	require.NoError(t, err)
	right, err := fermionic.Tensordot(x, xd, axesA, axesB)
	require.NoError(t, err)

	lv, rv := scalarValue(t, left), scalarValue(t, right)
	assert.InDelta(t, 0, cmplx.Abs(lv-rv), 1e-10)
	n := x.Norm()
	assert.InDelta(t, n*n, real(lv), 1e-9)
	assert.InDelta(t, 0, imag(lv), 1e-10)
}

func TestDaggerCarriesPhases(t *testing.T) {
	a := scalarArray2(t, 2, 3)
	require.NoError(t, a.SetPhase(symmetric.Sector{1, 1}, -1))

	d, err := a.Dagger(true)
	require.NoError(t, err)
	require.NoError(t, d.Check())

	// Resolving must leave the adjoint's data consistent with taking
	// the adjoint of the resolved original.
	resolvedFirst, err := a.PhaseResolve().Dagger(true)
	require.NoError(t, err)
	assert.True(t, d.AllClose(resolvedFirst, 1e-12))
}
