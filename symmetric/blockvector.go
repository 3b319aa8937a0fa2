package symmetric

import (
	"sort"

	"github.com/hupe1980/symmgo/symmetry"
)

// BlockVector is a charge-indexed collection of 1-D blocks, the
// block-sparse counterpart of a diagonal vector. It pairs with one
// BlockIndex: each charge's segment has that charge's dimension.
type BlockVector struct {
	blocks map[symmetry.Charge][]complex128
}

// NewBlockVector builds a block vector from per-charge segments. The
// segments are copied.
func NewBlockVector(blocks map[symmetry.Charge][]complex128) *BlockVector {
	out := &BlockVector{blocks: make(map[symmetry.Charge][]complex128, len(blocks))}
	for c, seg := range blocks {
		out.blocks[c] = append([]complex128(nil), seg...)
	}
	return out
}

// Segment returns the 1-D block for charge c.
func (v *BlockVector) Segment(c symmetry.Charge) ([]complex128, bool) {
	seg, ok := v.blocks[c]
	return seg, ok
}

// Charges returns the stored charges in ascending order.
func (v *BlockVector) Charges() []symmetry.Charge {
	out := make([]symmetry.Charge, 0, len(v.blocks))
	for c := range v.blocks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SizeTotal returns the summed segment length.
func (v *BlockVector) SizeTotal() int {
	var n int
	for _, seg := range v.blocks {
		n += len(seg)
	}
	return n
}

// ToDense concatenates the segments in ascending charge order.
func (v *BlockVector) ToDense() []complex128 {
	out := make([]complex128, 0, v.SizeTotal())
	for _, c := range v.Charges() {
		out = append(out, v.blocks[c]...)
	}
	return out
}

// MultiplyDiagonal multiplies the array along one axis by a block
// vector: within each sector, the block is scaled element-wise along
// axis by the vector segment of that sector's charge on axis.
func (a *Array) MultiplyDiagonal(v *BlockVector, axis int) (*Array, error) {
	if axis < 0 || axis >= len(a.indices) {
		return nil, &ErrAxisOutOfRange{Axis: axis, NDim: len(a.indices)}
	}
	out := a.Copy()
	for k, e := range out.blocks {
		seg, ok := v.Segment(e.sector[axis])
		if !ok {
			return nil, &ErrChargeNotFound{Charge: e.sector[axis]}
		}
		scaled, err := e.data.MulDiagonal(axis, seg)
		if err != nil {
			return nil, err
		}
		out.blocks[k] = &blockEntry{sector: e.sector, data: scaled}
	}
	return out, nil
}
