package fermionic

import (
	"github.com/hupe1980/symmgo/symmetry"
)

// Conj conjugates every block and flips every axis flow. When phase is
// true it additionally buffers, per sector, the sign of virtually
// reversing the full axis order together with a flip on the axes that
// are dual after conjugation. These two corrections make inner
// products order-independent: contracting Conj(x) against x gives the
// same value as contracting x against Conj(x).
func (a *Array) Conj(phase bool) *Array {
	out := a.Copy()
	out.st.ConjInPlace()

	if !phase {
		return out
	}

	var axsConj []int
	for ax := 0; ax < out.NDim(); ax++ {
		if out.Index(ax).Flow() {
			axsConj = append(axsConj, ax)
		}
	}

	sym := out.st.Symmetry()
	for _, sector := range out.st.Sectors() {
		parities := out.parities(sector)

		sign := out.Phase(sector)
		// Virtually reversing all axes.
		sign *= symmetry.PhasePermutation(parities, nil)
		// Conjugating the dual axes.
		var braParity int
		for _, ax := range axsConj {
			braParity += sym.Parity(sector[ax])
		}
		if braParity%2 == 1 {
			sign = -sign
		}

		if sign == -1 {
			out.phases[sector.Key()] = struct{}{}
		} else {
			delete(out.phases, sector.Key())
		}
	}
	return out
}

// Dagger is the fermionic adjoint: axis order reversed, every block
// conjugated and fully transposed, buffered signs carried along under
// the reversal, and (when phase is true) a parity flip on the axes
// that are dual in the new orientation.
func (a *Array) Dagger(phase bool) (*Array, error) {
	// Carry the buffered signs to their reversed sector keys before the
	// structural reversal.
	out := a.Copy()

	newPhases := make(map[string]struct{}, len(out.phases))
	for _, sector := range out.st.Sectors() {
		if out.Phase(sector) == -1 {
			newPhases[sector.Reverse().Key()] = struct{}{}
		}
	}

	st, err := out.st.Transpose(nil)
	if err != nil {
		return nil, err
	}
	st.ConjInPlace()
	out.st = st
	out.phases = newPhases

	if phase {
		var axsConj []int
		for ax := 0; ax < out.NDim(); ax++ {
			if out.Index(ax).Flow() {
				axsConj = append(axsConj, ax)
			}
		}
		if err := out.PhaseFlipInPlace(axsConj...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// H is the fermionic conjugate transpose, Dagger with phases applied.
func (a *Array) H() (*Array, error) {
	return a.Dagger(true)
}
