package fermionic

import (
	"github.com/hupe1980/symmgo/symmetric"
)

// Tensordot contracts two fermionic arrays along the paired axes,
// accounting for the exchange signs that global fermion mode ordering
// demands. Reusing the symmetric contraction directly would drop those
// signs, so the contraction is staged:
//
//  1. a is transposed to [uncontracted..., contracted...] and b to
//     [contracted..., uncontracted...] (physical transposes, with
//     phases).
//  2. b's contracted axes are virtually reversed: contraction pairs
//     index tips, not equal positions.
//  3. The smaller operand phase-flips its contracted axes that are
//     dual-oriented, capturing sign information that would be lost
//     once those axes are summed away.
//  4. Both operands resolve their buffered signs.
//  5. The block contraction is delegated to the symmetric tensordot.
//
// Negative axis values are interpreted from the end, as usual.
func Tensordot(a, b *Array, axesA, axesB []int, opts ...symmetric.Option) (*Array, error) {
	ndimA, ndimB := a.NDim(), b.NDim()

	if len(axesA) != len(axesB) {
		return nil, &symmetric.ErrAxesLengthMismatch{LenA: len(axesA), LenB: len(axesB)}
	}
	axesA, err := normalizeAxes(axesA, ndimA)
	if err != nil {
		return nil, err
	}
	axesB, err = normalizeAxes(axesB, ndimB)
	if err != nil {
		return nil, err
	}
	ncon := len(axesA)

	permA := append(complement(ndimA, axesA), axesA...)
	permB := append(append([]int(nil), axesB...), complement(ndimB, axesB)...)

	ta, err := a.Transpose(permA, true)
	if err != nil {
		return nil, err
	}
	tb, err := b.Transpose(permB, true)
	if err != nil {
		return nil, err
	}

	newAxesA := make([]int, ncon)
	newAxesB := make([]int, ncon)
	for i := 0; i < ncon; i++ {
		newAxesA[i] = ndimA - ncon + i
		newAxesB[i] = i
	}

	// Contraction pairs index tips: virtually reverse b's contracted
	// axes rather than physically permuting them.
	virtualPerm := make([]int, ndimB)
	for i := 0; i < ncon; i++ {
		virtualPerm[i] = ncon - 1 - i
	}
	for i := ncon; i < ndimB; i++ {
		virtualPerm[i] = i
	}
	tb.PhaseVirtualTransposeInPlace(virtualPerm)

	// Flip dual-oriented contracted axes on the cheaper operand.
	if ta.Size() <= tb.Size() {
		var flip []int
		for _, ax := range newAxesA {
			if ta.Index(ax).Flow() {
				flip = append(flip, ax)
			}
		}
		if err := ta.PhaseFlipInPlace(flip...); err != nil {
			return nil, err
		}
	} else {
		var flip []int
		for _, ax := range newAxesB {
			if !tb.Index(ax).Flow() {
				flip = append(flip, ax)
			}
		}
		if err := tb.PhaseFlipInPlace(flip...); err != nil {
			return nil, err
		}
	}

	ta.PhaseResolveInPlace()
	tb.PhaseResolveInPlace()

	st, err := symmetric.Tensordot(ta.st, tb.st, newAxesA, newAxesB, opts...)
	if err != nil {
		return nil, err
	}
	return FromSymmetric(st), nil
}

// TensordotN contracts the last n axes of a against the first n axes
// of b.
func TensordotN(a, b *Array, n int, opts ...symmetric.Option) (*Array, error) {
	return Tensordot(a, b, symmetric.LastAxes(a.NDim(), n), symmetric.FirstAxes(n), opts...)
}

func normalizeAxes(axes []int, ndim int) ([]int, error) {
	out := make([]int, len(axes))
	for i, ax := range axes {
		if ax < 0 {
			ax += ndim
		}
		if ax < 0 || ax >= ndim {
			return nil, &symmetric.ErrAxisOutOfRange{Axis: axes[i], NDim: ndim}
		}
		out[i] = ax
	}
	return out, nil
}

func complement(ndim int, axes []int) []int {
	drop := make(map[int]struct{}, len(axes))
	for _, ax := range axes {
		drop[ax] = struct{}{}
	}
	out := make([]int, 0, ndim-len(axes))
	for ax := 0; ax < ndim; ax++ {
		if _, ok := drop[ax]; !ok {
			out = append(out, ax)
		}
	}
	return out
}
