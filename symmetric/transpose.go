package symmetric

import (
	"github.com/hupe1980/symmgo/dense"
)

// Transpose returns a new array with axes permuted so that output axis
// i corresponds to old axis axes[i]. Sector keys and the dense axes of
// every block are permuted identically; no value changes. A nil axes
// reverses the axis order.
func (a *Array) Transpose(axes []int) (*Array, error) {
	out := a.Copy()
	if err := out.TransposeInPlace(axes); err != nil {
		return nil, err
	}
	return out, nil
}

// TransposeInPlace is the mutating variant of Transpose. The receiver
// must be exclusively owned by the caller.
func (a *Array) TransposeInPlace(axes []int) error {
	n := len(a.indices)
	if axes == nil {
		axes = reversedAxes(n)
	}
	if err := dense.CheckPermutation(axes, n); err != nil {
		return err
	}

	indices := make([]*BlockIndex, n)
	for i, ax := range axes {
		indices[i] = a.indices[ax]
	}
	blocks := make(map[string]*blockEntry, len(a.blocks))
	for _, e := range a.blocks {
		data, err := e.data.Transpose(axes)
		if err != nil {
			return err
		}
		sector := e.sector.Permute(axes)
		blocks[sector.Key()] = &blockEntry{sector: sector, data: data}
	}
	a.indices = indices
	a.blocks = blocks
	return nil
}

func reversedAxes(n int) []int {
	axes := make([]int, n)
	for i := range axes {
		axes[i] = n - 1 - i
	}
	return axes
}

// InversePermutation returns the permutation undoing axes.
func InversePermutation(axes []int) []int {
	inv := make([]int, len(axes))
	for i, ax := range axes {
		inv[ax] = i
	}
	return inv
}
