package symmetric

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/symmgo/symmetry"
)

// BlockIndex describes one tensor axis: an ordered mapping from charge
// to block dimension plus a directional flow flag.
//
// Two axes are contractible only if their chargemaps are equal and
// their flows are opposite (see Matches). flow=true marks a dual
// ("bra"-like) axis.
type BlockIndex struct {
	charges []symmetry.Charge // sorted ascending
	sizes   map[symmetry.Charge]int
	flow    bool
	sub     *SubInfo
}

// SubInfo is the structural annotation a fused index retains so the
// fusion can be inverted. It records the original per-component
// indices and, per fused charge, the ordered extents the fused
// dimension is laid out from.
type SubInfo struct {
	// Indices are the axes that were merged, in fusion order.
	Indices []*BlockIndex
	// Extents maps each fused charge to the ordered sub-sector layout
	// of its dimension.
	Extents map[symmetry.Charge][]Extent
}

// Extent is one contiguous run of a fused dimension: the sub-charges
// it came from and the run length (product of the sub-dimensions).
type Extent struct {
	Charges Sector
	Size    int
}

// NewBlockIndex builds an index from a chargemap and a flow flag.
// The chargemap is copied.
func NewBlockIndex(chargemap map[symmetry.Charge]int, flow bool) *BlockIndex {
	ix := &BlockIndex{
		charges: make([]symmetry.Charge, 0, len(chargemap)),
		sizes:   make(map[symmetry.Charge]int, len(chargemap)),
		flow:    flow,
	}
	for c, d := range chargemap {
		ix.charges = append(ix.charges, c)
		ix.sizes[c] = d
	}
	sort.Slice(ix.charges, func(i, j int) bool { return ix.charges[i] < ix.charges[j] })
	return ix
}

// Charges returns the charges in ascending order. The returned slice
// must not be mutated.
func (ix *BlockIndex) Charges() []symmetry.Charge { return ix.charges }

// Flow reports whether the axis is dual ("bra"-like).
func (ix *BlockIndex) Flow() bool { return ix.flow }

// Sub returns the fuse metadata, or nil for an unfused axis.
func (ix *BlockIndex) Sub() *SubInfo { return ix.sub }

// NumCharges returns the number of distinct charges.
func (ix *BlockIndex) NumCharges() int { return len(ix.charges) }

// SizeTotal returns the summed dimension over all charges.
func (ix *BlockIndex) SizeTotal() int {
	var total int
	for _, d := range ix.sizes {
		total += d
	}
	return total
}

// SizeOf returns the block dimension of charge c.
func (ix *BlockIndex) SizeOf(c symmetry.Charge) (int, error) {
	d, ok := ix.sizes[c]
	if !ok {
		return 0, &ErrChargeNotFound{Charge: c}
	}
	return d, nil
}

// HasCharge reports whether c is present in the chargemap.
func (ix *BlockIndex) HasCharge(c symmetry.Charge) bool {
	_, ok := ix.sizes[c]
	return ok
}

// OffsetOf returns the dense offset at which charge c's block starts,
// i.e. the summed dimension of all smaller charges.
func (ix *BlockIndex) OffsetOf(c symmetry.Charge) (int, error) {
	if !ix.HasCharge(c) {
		return 0, &ErrChargeNotFound{Charge: c}
	}
	var off int
	for _, q := range ix.charges {
		if q == c {
			return off, nil
		}
		off += ix.sizes[q]
	}
	return 0, &ErrChargeNotFound{Charge: c} // unreachable
}

// Conj returns a copy with the flow flipped. The chargemap and any
// fuse metadata are untouched.
func (ix *BlockIndex) Conj() *BlockIndex {
	out := ix.Copy()
	out.flow = !out.flow
	return out
}

// Matches reports whether other is contractible against ix: equal
// chargemaps and opposite flows.
func (ix *BlockIndex) Matches(other *BlockIndex) bool {
	if ix.flow == other.flow || len(ix.charges) != len(other.charges) {
		return false
	}
	for c, d := range ix.sizes {
		if od, ok := other.sizes[c]; !ok || od != d {
			return false
		}
	}
	return true
}

// Check validates the chargemap invariant: non-empty, all dimensions
// positive.
func (ix *BlockIndex) Check() error {
	if len(ix.charges) == 0 {
		return ErrEmptyChargemap
	}
	for c, d := range ix.sizes {
		if d <= 0 {
			return &ErrInvalidDimension{Charge: c, Dimension: d}
		}
	}
	return nil
}

// Copy returns a deep copy of the index. Fuse metadata is shared: it
// is immutable once attached.
func (ix *BlockIndex) Copy() *BlockIndex {
	out := &BlockIndex{
		charges: append([]symmetry.Charge(nil), ix.charges...),
		sizes:   make(map[symmetry.Charge]int, len(ix.sizes)),
		flow:    ix.flow,
		sub:     ix.sub,
	}
	for c, d := range ix.sizes {
		out.sizes[c] = d
	}
	return out
}

// String renders the chargemap and flow, e.g. "Index{-1:2 0:3 1:2, flow=false}".
func (ix *BlockIndex) String() string {
	var sb strings.Builder
	sb.WriteString("Index{")
	for i, c := range ix.charges {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d:%d", c, ix.sizes[c])
	}
	fmt.Fprintf(&sb, ", flow=%v}", ix.flow)
	return sb.String()
}

// WithSub returns a copy carrying the given fuse metadata.
func (ix *BlockIndex) WithSub(sub *SubInfo) *BlockIndex {
	out := ix.Copy()
	out.sub = sub
	return out
}

// extentOffset returns the offset of the extent holding the given
// sub-charges within the fused dimension of charge c, along with the
// extent itself.
func (s *SubInfo) extentOffset(c symmetry.Charge, sub Sector) (int, Extent, error) {
	key := sub.Key()
	var off int
	for _, ext := range s.Extents[c] {
		if ext.Charges.Key() == key {
			return off, ext, nil
		}
		off += ext.Size
	}
	return 0, Extent{}, fmt.Errorf("sub-sector %v not present in fused charge %d", sub, c)
}
