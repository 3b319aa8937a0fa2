package fermionic

import (
	"github.com/hupe1980/symmgo/symmetric"
)

// Fuse merges each group of axes into one compound axis, with the sign
// corrections fermionic mode ordering demands before the structural
// merge:
//
//  1. A fermionic transpose (with phases) makes every group contiguous.
//  2. Within a group whose leading axis is dual, members whose flow
//     disagrees are parity-flipped so the whole group shares one
//     orientation.
//  3. A dual fused axis reads its component kets in reverse order, so
//     such groups pick up the sign of a virtual reversal.
//
// All buffered signs are then resolved and the merge is delegated to
// the non-fermionic fuse. The result carries an empty phase set.
func (a *Array) Fuse(groups ...[]int) (*Array, error) {
	perm, permGroups, err := symmetric.FusePermutation(a.NDim(), groups)
	if err != nil {
		return nil, err
	}

	t, err := a.Transpose(perm, true)
	if err != nil {
		return nil, err
	}

	var axesFlip []int
	var virtualPerm []int
	for _, group := range permGroups {
		if len(group) == 0 || !t.Index(group[0]).Flow() {
			continue
		}
		for _, ax := range group {
			if !t.Index(ax).Flow() {
				axesFlip = append(axesFlip, ax)
			}
		}
		if virtualPerm == nil {
			virtualPerm = make([]int, t.NDim())
			for i := range virtualPerm {
				virtualPerm[i] = i
			}
		}
		for i, ax := range group {
			virtualPerm[ax] = group[len(group)-1-i]
		}
	}

	if len(axesFlip) > 0 {
		if err := t.PhaseFlipInPlace(axesFlip...); err != nil {
			return nil, err
		}
	}
	if virtualPerm != nil {
		t.PhaseVirtualTransposeInPlace(virtualPerm)
	}
	t.PhaseResolveInPlace()

	st, err := t.st.Fuse(permGroups...)
	if err != nil {
		return nil, err
	}
	return FromSymmetric(st), nil
}

// Unfuse splits a fused axis back into its components and undoes the
// corrections Fuse applied: the structural split first, then (for a
// dual fused axis) the virtual reversal of the restored sub-axes and
// the parity flips on sub-axes whose flow disagrees with the leading
// one. Signs are resolved before returning.
func (a *Array) Unfuse(axis int) (*Array, error) {
	if axis < 0 || axis >= a.NDim() {
		return nil, &symmetric.ErrAxisOutOfRange{Axis: axis, NDim: a.NDim()}
	}
	sub := a.Index(axis).Sub()
	if sub == nil {
		return nil, symmetric.ErrNotFused
	}

	resolved := a.PhaseResolve()
	st, err := resolved.st.Unfuse(axis)
	if err != nil {
		return nil, err
	}
	out := FromSymmetric(st)

	n := len(sub.Indices)

	// Fuse applies corrections only to groups led by a dual axis, so
	// only those are undone here.
	if sub.Indices[0].Flow() {
		virtualPerm := make([]int, out.NDim())
		for i := range virtualPerm {
			virtualPerm[i] = i
		}
		for i := 0; i < n; i++ {
			virtualPerm[axis+i] = axis + n - 1 - i
		}
		out.PhaseVirtualTransposeInPlace(virtualPerm)

		var axesFlip []int
		for i, ix := range sub.Indices {
			if !ix.Flow() {
				axesFlip = append(axesFlip, axis+i)
			}
		}
		if len(axesFlip) > 0 {
			if err := out.PhaseFlipInPlace(axesFlip...); err != nil {
				return nil, err
			}
		}
	}

	out.PhaseResolveInPlace()
	return out, nil
}

// UnfuseAll splits every fused axis, repeating until no fuse metadata
// remains.
func (a *Array) UnfuseAll() (*Array, error) {
	out := a
	for {
		fused := -1
		for ax := out.NDim() - 1; ax >= 0; ax-- {
			if out.Index(ax).Sub() != nil {
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
