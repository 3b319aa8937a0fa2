package symmetric

import (
	"fmt"
	"sort"

	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/symmetry"
)

// FusePermutation computes the transpose that makes every fuse group
// contiguous. Each group is emitted, in its listed order, at the
// position of its first-encountered member; ungrouped axes stay in
// place. It returns the permutation and the groups re-expressed as
// contiguous ranges in the permuted frame.
func FusePermutation(ndim int, groups [][]int) (perm []int, permGroups [][]int, err error) {
	inGroup := make(map[int]int, ndim) // axis -> group id
	for g, group := range groups {
		for _, ax := range group {
			if ax < 0 || ax >= ndim {
				return nil, nil, &ErrAxisOutOfRange{Axis: ax, NDim: ndim}
			}
			if _, dup := inGroup[ax]; dup {
				return nil, nil, fmt.Errorf("axis %d appears in more than one fuse group", ax)
			}
			inGroup[ax] = g
		}
	}

	perm = make([]int, 0, ndim)
	permGroups = make([][]int, len(groups))
	emitted := make([]bool, len(groups))
	for ax := 0; ax < ndim; ax++ {
		g, grouped := inGroup[ax]
		if !grouped {
			perm = append(perm, ax)
			continue
		}
		if emitted[g] {
			continue
		}
		start := len(perm)
		perm = append(perm, groups[g]...)
		contiguous := make([]int, len(groups[g]))
		for i := range contiguous {
			contiguous[i] = start + i
		}
		permGroups[g] = contiguous
		emitted[g] = true
	}
	return perm, permGroups, nil
}

// Fuse merges each group of (possibly non-contiguous) axes into one
// compound axis. The array is first transposed so every group is
// contiguous; each fused chargemap contains exactly the flow-adjusted
// charge combinations that occur among the stored sectors, laid out in
// sorted sub-sector order. The fused index keeps a SubInfo annotation
// so Unfuse can invert the operation. The fused axis inherits the flow
// of its group's first axis.
func (a *Array) Fuse(groups ...[]int) (*Array, error) {
	perm, permGroups, err := FusePermutation(len(a.indices), groups)
	if err != nil {
		return nil, err
	}
	t, err := a.Transpose(perm)
	if err != nil {
		return nil, err
	}
	return t.fuseContiguous(permGroups)
}

// fuseContiguous fuses groups that are already contiguous ranges of
// the receiver's axes.
func (a *Array) fuseContiguous(groups [][]int) (*Array, error) {
	ndim := len(a.indices)

	// Axis classification in the permuted frame.
	groupOf := make([]int, ndim)
	for ax := range groupOf {
		groupOf[ax] = -1
	}
	for g, group := range groups {
		for _, ax := range group {
			groupOf[ax] = g
		}
	}

	// Gather the sub-sector combinations that actually occur.
	occurring := make([]map[string]Sector, len(groups))
	for g := range groups {
		occurring[g] = make(map[string]Sector)
	}
	for _, e := range a.blocks {
		for g, group := range groups {
			sub := make(Sector, len(group))
			for i, ax := range group {
				sub[i] = e.sector[ax]
			}
			occurring[g][sub.Key()] = sub
		}
	}

	// Build the fused indices.
	fusedIx := make([]*BlockIndex, len(groups))
	fusedFlow := make([]bool, len(groups))
	for g, group := range groups {
		if len(group) == 0 {
			return nil, fmt.Errorf("empty fuse group %d", g)
		}
		flow := a.indices[group[0]].Flow()
		fusedFlow[g] = flow

		subs := make([]Sector, 0, len(occurring[g]))
		for _, sub := range occurring[g] {
			subs = append(subs, sub)
		}
		sort.Slice(subs, func(i, j int) bool { return subs[i].Less(subs[j]) })

		chargemap := make(map[symmetry.Charge]int)
		extents := make(map[symmetry.Charge][]Extent)
		for _, sub := range subs {
			c := a.fusedCharge(group, flow, sub)
			size := 1
			for i, ax := range group {
				d, err := a.indices[ax].SizeOf(sub[i])
				if err != nil {
					return nil, err
				}
				size *= d
			}
			chargemap[c] += size
			extents[c] = append(extents[c], Extent{Charges: sub, Size: size})
		}

		subIndices := make([]*BlockIndex, len(group))
		for i, ax := range group {
			subIndices[i] = a.indices[ax].Copy()
		}
		fusedIx[g] = NewBlockIndex(chargemap, flow).WithSub(&SubInfo{
			Indices: subIndices,
			Extents: extents,
		})
	}

	// Output axis layout: group axes collapse to one at the position of
	// their first member.
	outIndices := make([]*BlockIndex, 0, ndim)
	for ax := 0; ax < ndim; ax++ {
		g := groupOf[ax]
		if g >= 0 && groups[g][0] != ax {
			continue
		}
		if g >= 0 {
			outIndices = append(outIndices, fusedIx[g])
		} else {
			outIndices = append(outIndices, a.indices[ax])
		}
	}

	out := New(a.sym, outIndices, a.chargeTotal)

	// Copy every stored block into its slot of the fused layout.
	for _, e := range a.blocks {
		outSector := make(Sector, 0, len(outIndices))
		starts := make([]int, 0, len(outIndices))
		collapsed := make([]int, 0, len(outIndices))

		blockShape := e.data.Shape()
		ax := 0
		for ax < ndim {
			g := groupOf[ax]
			if g < 0 {
				outSector = append(outSector, e.sector[ax])
				starts = append(starts, 0)
				collapsed = append(collapsed, blockShape[ax])
				ax++
				continue
			}
			group := groups[g]
			sub := make(Sector, len(group))
			size := 1
			for i, gax := range group {
				sub[i] = e.sector[gax]
				size *= blockShape[gax]
			}
			c := a.fusedCharge(group, fusedFlow[g], sub)
			off, _, err := fusedIx[g].Sub().extentOffset(c, sub)
			if err != nil {
				return nil, err
			}
			outSector = append(outSector, c)
			starts = append(starts, off)
			collapsed = append(collapsed, size)
			ax += len(group)
		}

		src, err := e.data.Reshape(collapsed...)
		if err != nil {
			return nil, err
		}
		dst, ok := out.Block(outSector)
		if !ok {
			shape, err := out.SectorShape(outSector)
			if err != nil {
				return nil, err
			}
			dst = dense.Zeros(shape...)
			out.SetBlock(outSector, dst)
		}
		if err := dst.CopyRange(starts, src); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// fusedCharge combines the sub-charges of one group into the fused
// charge, inverting any component whose flow disagrees with the
// group's overall flow.
func (a *Array) fusedCharge(group []int, flow bool, sub Sector) symmetry.Charge {
	charges := make([]symmetry.Charge, len(group))
	for i, ax := range group {
		c := sub[i]
		if a.indices[ax].Flow() != flow {
			c = a.sym.Negate(c)
		}
		charges[i] = c
	}
	return a.sym.Combine(charges...)
}

// Unfuse splits the fused axis back into its original components,
// using the SubInfo annotation recorded at fuse time.
func (a *Array) Unfuse(axis int) (*Array, error) {
	if axis < 0 || axis >= len(a.indices) {
		return nil, &ErrAxisOutOfRange{Axis: axis, NDim: len(a.indices)}
	}
	sub := a.indices[axis].Sub()
	if sub == nil {
		return nil, ErrNotFused
	}

	outIndices := make([]*BlockIndex, 0, len(a.indices)-1+len(sub.Indices))
	outIndices = append(outIndices, a.indices[:axis]...)
	outIndices = append(outIndices, sub.Indices...)
	outIndices = append(outIndices, a.indices[axis+1:]...)
	out := New(a.sym, outIndices, a.chargeTotal)

	ndim := len(a.indices)
	for _, e := range a.blocks {
		c := e.sector[axis]
		blockShape := e.data.Shape()

		var off int
		for _, ext := range sub.Extents[c] {
			starts := make([]int, ndim)
			sizes := append([]int(nil), blockShape...)
			starts[axis] = off
			sizes[axis] = ext.Size
			off += ext.Size

			piece, err := e.data.Slice(starts, sizes)
			if err != nil {
				return nil, err
			}

			outSector := make(Sector, 0, len(outIndices))
			outSector = append(outSector, e.sector[:axis]...)
			outSector = append(outSector, ext.Charges...)
			outSector = append(outSector, e.sector[axis+1:]...)

			shape, err := out.SectorShape(outSector)
			if err != nil {
				return nil, err
			}
			reshaped, err := piece.Reshape(shape...)
			if err != nil {
				return nil, err
			}
			out.SetBlock(outSector, reshaped)
		}
	}

	return out, nil
}

// UnfuseAll splits every fused axis, repeating until no fuse metadata
// remains, so nested fusions unwind completely.
func (a *Array) UnfuseAll() (*Array, error) {
	out := a
	for {
		fused := -1
		for ax := len(out.indices) - 1; ax >= 0; ax-- {
			if out.indices[ax].Sub() != nil {
				fused = ax
				break
			}
		}
		if fused < 0 {
			break
		}
		var err error
		out, err = out.Unfuse(fused)
		if err != nil {
			return nil, err
		}
	}
	if out == a {
		out = a.Copy()
	}
	return out, nil
}
