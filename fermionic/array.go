package fermionic

import (
	"fmt"

	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
)

// Kind identifies this array flavor in the operation dispatch table.
const Kind = "fermionic"

// Array is a block-sparse symmetric tensor extended with a lazy
// per-sector exchange sign. The phase set holds exactly the sectors
// whose buffered sign is -1; absence means +1 and trivial entries are
// never stored. Signs accumulate cheaply through structural operations
// and are multiplied into the numeric blocks only when PhaseResolve
// runs (or an operation that must hand data to sign-unaware code
// resolves internally).
type Array struct {
	st     *symmetric.Array
	phases map[string]struct{} // sector keys with sign -1
}

// New creates an empty fermionic array. The phase set exists (empty)
// from construction.
func New(sym symmetry.Symmetry, indices []*symmetric.BlockIndex, chargeTotal symmetry.Charge) *Array {
	return &Array{
		st:     symmetric.New(sym, indices, chargeTotal),
		phases: make(map[string]struct{}),
	}
}

// FromSymmetric wraps an existing symmetric array with an empty phase
// set. The symmetric array is taken over, not copied.
func FromSymmetric(st *symmetric.Array) *Array {
	return &Array{st: st, phases: make(map[string]struct{})}
}

// Symmetric returns the underlying symmetric storage. Blocks reached
// through it carry unresolved signs; call PhaseResolve first when the
// raw numbers matter.
func (a *Array) Symmetric() *symmetric.Array { return a.st }

// Kind returns the dispatch kind of the array.
func (a *Array) Kind() string { return Kind }

// Symmetry returns the array's charge algebra.
func (a *Array) Symmetry() symmetry.Symmetry { return a.st.Symmetry() }

// ChargeTotal returns the conserved total charge.
func (a *Array) ChargeTotal() symmetry.Charge { return a.st.ChargeTotal() }

// NDim returns the tensor rank.
func (a *Array) NDim() int { return a.st.NDim() }

// Shape returns the total dimension of each axis.
func (a *Array) Shape() []int { return a.st.Shape() }

// Size returns the total dense element count.
func (a *Array) Size() int { return a.st.Size() }

// NumBlocks returns the number of stored sectors.
func (a *Array) NumBlocks() int { return a.st.NumBlocks() }

// Indices returns the axes in order.
func (a *Array) Indices() []*symmetric.BlockIndex { return a.st.Indices() }

// Index returns the i-th axis.
func (a *Array) Index(i int) *symmetric.BlockIndex { return a.st.Index(i) }

// Sectors returns the stored sectors in a deterministic order.
func (a *Array) Sectors() []symmetric.Sector { return a.st.Sectors() }

// Block returns the stored block for sector. The block may carry an
// unresolved sign; see Phase.
func (a *Array) Block(sector symmetric.Sector) (*dense.Dense, bool) { return a.st.Block(sector) }

// SetBlock stores (or replaces) the block for sector with a trivial
// phase.
func (a *Array) SetBlock(sector symmetric.Sector, data *dense.Dense) {
	a.st.SetBlock(sector, data)
	delete(a.phases, sector.Key())
}

// Phase returns the buffered sign (+1 or -1) of sector.
func (a *Array) Phase(sector symmetric.Sector) int {
	if _, ok := a.phases[sector.Key()]; ok {
		return -1
	}
	return 1
}

// SetPhase buffers the sign of sector. phase must be +1 or -1 and the
// sector must be stored.
func (a *Array) SetPhase(sector symmetric.Sector, phase int) error {
	if phase != 1 && phase != -1 {
		return fmt.Errorf("phase must be +1 or -1, got %d", phase)
	}
	if _, ok := a.st.Block(sector); !ok {
		return fmt.Errorf("sector %v has no stored block", sector)
	}
	if phase == -1 {
		a.phases[sector.Key()] = struct{}{}
	} else {
		delete(a.phases, sector.Key())
	}
	return nil
}

// NumPhases returns the number of buffered non-trivial signs.
func (a *Array) NumPhases() int { return len(a.phases) }

// Copy returns a structural deep copy: fresh sector and phase
// mappings, dense buffers shared until rewritten.
func (a *Array) Copy() *Array {
	phases := make(map[string]struct{}, len(a.phases))
	for k := range a.phases {
		phases[k] = struct{}{}
	}
	return &Array{st: a.st.Copy(), phases: phases}
}

// Check validates the symmetric storage invariant plus the phase
// invariant: every phase key refers to a stored sector.
func (a *Array) Check() error {
	if err := a.st.Check(); err != nil {
		return err
	}
	stored := make(map[string]struct{}, a.st.NumBlocks())
	for _, sector := range a.st.Sectors() {
		stored[sector.Key()] = struct{}{}
	}
	for k := range a.phases {
		if _, ok := stored[k]; !ok {
			return fmt.Errorf("phase entry for unknown sector key %q", k)
		}
	}
	return nil
}

// Mul returns the array scaled by a scalar. Scaling commutes with the
// buffered signs, which are kept as-is.
func (a *Array) Mul(s complex128) *Array {
	out := a.Copy()
	out.st = out.st.Mul(s)
	return out
}

// Norm returns the Frobenius norm; signs do not affect it.
func (a *Array) Norm() float64 { return a.st.Norm() }

// AllClose reports whether both arrays agree within tol after
// resolving all buffered signs on both sides.
func (a *Array) AllClose(other *Array, tol float64) bool {
	ra := a.PhaseResolve()
	rb := other.PhaseResolve()
	return ra.st.AllClose(rb.st, tol)
}

// ToDense materializes the array with all buffered signs multiplied
// in.
func (a *Array) ToDense() *dense.Dense {
	return a.PhaseResolve().st.ToDense()
}

// parities returns the per-axis parities of sector.
func (a *Array) parities(sector symmetric.Sector) []int {
	sym := a.st.Symmetry()
	out := make([]int, len(sector))
	for i, c := range sector {
		out[i] = sym.Parity(c)
	}
	return out
}
