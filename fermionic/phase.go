package fermionic

import (
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
)

// Transpose permutes the axes like the symmetric transpose and, when
// phase is true, multiplies each sector's buffered sign by the
// exchange sign its odd-parity axes pick up under the permutation.
// With phase=false only the data layout and the phase keys move,
// for callers that account for the signs elsewhere. A nil axes
// reverses the axis order.
func (a *Array) Transpose(axes []int, phase bool) (*Array, error) {
	out := a.Copy()
	if err := out.TransposeInPlace(axes, phase); err != nil {
		return nil, err
	}
	return out, nil
}

// TransposeInPlace is the mutating variant of Transpose.
func (a *Array) TransposeInPlace(axes []int, phase bool) error {
	if axes == nil {
		n := a.NDim()
		axes = make([]int, n)
		for i := range axes {
			axes[i] = n - 1 - i
		}
	}

	newPhases := make(map[string]struct{}, len(a.phases))
	if phase {
		for _, sector := range a.st.Sectors() {
			sign := a.Phase(sector) * symmetry.PhasePermutation(a.parities(sector), axes)
			if sign == -1 {
				newPhases[sector.Permute(axes).Key()] = struct{}{}
			}
		}
	} else {
		for _, sector := range a.st.Sectors() {
			if a.Phase(sector) == -1 {
				newPhases[sector.Permute(axes).Key()] = struct{}{}
			}
		}
	}

	if err := a.st.TransposeInPlace(axes); err != nil {
		return err
	}
	a.phases = newPhases
	return nil
}

// PhaseFlip flips the buffered sign of every sector whose combined
// parity across the named axes is odd. Used to correct orientation
// mismatches of dual axes.
func (a *Array) PhaseFlip(axes ...int) (*Array, error) {
	out := a.Copy()
	if err := out.PhaseFlipInPlace(axes...); err != nil {
		return nil, err
	}
	return out, nil
}

// PhaseFlipInPlace is the mutating variant of PhaseFlip.
func (a *Array) PhaseFlipInPlace(axes ...int) error {
	if len(axes) == 0 {
		return nil
	}
	for _, ax := range axes {
		if ax < 0 || ax >= a.NDim() {
			return &symmetric.ErrAxisOutOfRange{Axis: ax, NDim: a.NDim()}
		}
	}
	sym := a.st.Symmetry()
	for _, sector := range a.st.Sectors() {
		var parity int
		for _, ax := range axes {
			parity += sym.Parity(sector[ax])
		}
		if parity%2 == 1 {
			a.togglePhase(sector)
		}
	}
	return nil
}

// PhaseVirtualTranspose applies the sign bookkeeping of a transpose
// without moving any block data or sector keys. Used when a later
// step consumes the data in an order already compatible with the
// virtual reordering. A nil axes means full reversal.
func (a *Array) PhaseVirtualTranspose(axes []int) *Array {
	out := a.Copy()
	out.PhaseVirtualTransposeInPlace(axes)
	return out
}

// PhaseVirtualTransposeInPlace is the mutating variant of
// PhaseVirtualTranspose.
func (a *Array) PhaseVirtualTransposeInPlace(axes []int) {
	for _, sector := range a.st.Sectors() {
		if symmetry.PhasePermutation(a.parities(sector), axes) == -1 {
			a.togglePhase(sector)
		}
	}
}

// PhaseResolve multiplies every buffered -1 into its block and clears
// the phase set. A second call is a no-op. Required before handing
// block data to sign-unaware code.
func (a *Array) PhaseResolve() *Array {
	out := a.Copy()
	out.PhaseResolveInPlace()
	return out
}

// PhaseResolveInPlace is the mutating variant of PhaseResolve.
func (a *Array) PhaseResolveInPlace() {
	for _, sector := range a.st.Sectors() {
		if _, ok := a.phases[sector.Key()]; !ok {
			continue
		}
		block, ok := a.st.Block(sector)
		if !ok {
			continue
		}
		// Neg allocates: never sign a buffer that may be shared.
		a.st.SetBlock(sector, block.Neg())
	}
	a.phases = make(map[string]struct{})
}

func (a *Array) togglePhase(sector symmetric.Sector) {
	key := sector.Key()
	if _, ok := a.phases[key]; ok {
		delete(a.phases, key)
	} else {
		a.phases[key] = struct{}{}
	}
}
