package symmetric

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/symmetry"
)

// Kind identifies this array flavor in the operation dispatch table.
const Kind = "symmetric"

// Array is a block-sparse tensor respecting an abelian conservation
// law: ordered axes, a target total charge, and a sparse mapping from
// sector to dense block. Every stored sector must combine (respecting
// per-axis flows) to the total charge; validation is explicit via
// Check, not automatic on mutation.
type Array struct {
	sym         symmetry.Symmetry
	indices     []*BlockIndex
	chargeTotal symmetry.Charge
	blocks      map[string]*blockEntry
}

type blockEntry struct {
	sector Sector
	data   *dense.Dense
}

// New creates an empty array with the given axes and total charge.
// The indices slice is copied; the BlockIndex values are shared.
func New(sym symmetry.Symmetry, indices []*BlockIndex, chargeTotal symmetry.Charge) *Array {
	return &Array{
		sym:         sym,
		indices:     append([]*BlockIndex(nil), indices...),
		chargeTotal: chargeTotal,
		blocks:      make(map[string]*blockEntry),
	}
}

// Kind returns the dispatch kind of the array.
func (a *Array) Kind() string { return Kind }

// Symmetry returns the array's charge algebra.
func (a *Array) Symmetry() symmetry.Symmetry { return a.sym }

// ChargeTotal returns the conserved total charge.
func (a *Array) ChargeTotal() symmetry.Charge { return a.chargeTotal }

// NDim returns the tensor rank.
func (a *Array) NDim() int { return len(a.indices) }

// Indices returns the axes in order. The returned slice must not be
// mutated.
func (a *Array) Indices() []*BlockIndex { return a.indices }

// Index returns the i-th axis.
func (a *Array) Index(i int) *BlockIndex { return a.indices[i] }

// Shape returns the total (dense) dimension of each axis.
func (a *Array) Shape() []int {
	shape := make([]int, len(a.indices))
	for i, ix := range a.indices {
		shape[i] = ix.SizeTotal()
	}
	return shape
}

// Size returns the total dense element count, i.e. the product of the
// axis totals.
func (a *Array) Size() int {
	n := 1
	for _, ix := range a.indices {
		n *= ix.SizeTotal()
	}
	return n
}

// NumBlocks returns the number of stored sectors.
func (a *Array) NumBlocks() int { return len(a.blocks) }

// Sectors returns the stored sectors in a deterministic order.
func (a *Array) Sectors() []Sector {
	out := make([]Sector, 0, len(a.blocks))
	for _, e := range a.blocks {
		out = append(out, e.sector)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Block returns the dense block stored for sector, if any. The block
// must not be mutated; derive new blocks with the dense kernels and
// store them with SetBlock.
func (a *Array) Block(sector Sector) (*dense.Dense, bool) {
	e, ok := a.blocks[sector.Key()]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// SetBlock stores (or replaces) the block for sector. No validation is
// performed; call Check at trusted checkpoints.
func (a *Array) SetBlock(sector Sector, data *dense.Dense) {
	a.blocks[sector.Key()] = &blockEntry{sector: sector.Clone(), data: data}
}

// RemoveBlock drops the block stored for sector, if any.
func (a *Array) RemoveBlock(sector Sector) {
	delete(a.blocks, sector.Key())
}

// Copy returns a structural deep copy: the sector mapping is fresh,
// while the dense buffers are shared until an operation produces new
// ones (copy-on-write at the structural level).
func (a *Array) Copy() *Array {
	out := &Array{
		sym:         a.sym,
		indices:     make([]*BlockIndex, len(a.indices)),
		chargeTotal: a.chargeTotal,
		blocks:      make(map[string]*blockEntry, len(a.blocks)),
	}
	for i, ix := range a.indices {
		out.indices[i] = ix.Copy()
	}
	for k, e := range a.blocks {
		out.blocks[k] = &blockEntry{sector: e.sector.Clone(), data: e.data}
	}
	return out
}

// SectorShape returns the per-axis block dimensions of sector.
func (a *Array) SectorShape(sector Sector) ([]int, error) {
	if len(sector) != len(a.indices) {
		return nil, &ErrSectorRank{Sector: sector, NDim: len(a.indices)}
	}
	shape := make([]int, len(sector))
	for i, c := range sector {
		d, err := a.indices[i].SizeOf(c)
		if err != nil {
			return nil, err
		}
		shape[i] = d
	}
	return shape, nil
}

// CombinedCharge combines the sector's charges respecting each axis's
// flow: dual axes contribute the inverse charge.
func (a *Array) CombinedCharge(sector Sector) symmetry.Charge {
	charges := make([]symmetry.Charge, len(sector))
	for i, c := range sector {
		if a.indices[i].Flow() {
			c = a.sym.Negate(c)
		}
		charges[i] = c
	}
	return a.sym.Combine(charges...)
}

// IsValidSector reports whether sector satisfies the conservation law
// and every charge exists in its axis chargemap.
func (a *Array) IsValidSector(sector Sector) bool {
	if len(sector) != len(a.indices) {
		return false
	}
	for i, c := range sector {
		if !a.indices[i].HasCharge(c) {
			return false
		}
	}
	return a.CombinedCharge(sector) == a.chargeTotal
}

// Check validates the full storage invariant: every index chargemap,
// every stored sector's rank, charge membership, conservation, and
// block shape.
func (a *Array) Check() error {
	for i, ix := range a.indices {
		if err := ix.Check(); err != nil {
			return fmt.Errorf("axis %d: %w", i, err)
		}
	}
	for _, e := range a.blocks {
		shape, err := a.SectorShape(e.sector)
		if err != nil {
			return err
		}
		if got := a.CombinedCharge(e.sector); got != a.chargeTotal {
			return &ErrChargeViolation{Sector: e.sector, Want: a.chargeTotal, Got: got}
		}
		if !intsEqual(shape, e.data.Shape()) {
			return &ErrBlockShape{Sector: e.sector, Want: shape, Got: e.data.Shape()}
		}
	}
	return nil
}

// PossibleSectors enumerates every sector allowed by the conservation
// law, stored or not.
func (a *Array) PossibleSectors() []Sector {
	var out []Sector
	sector := make(Sector, len(a.indices))
	var rec func(ax int)
	rec = func(ax int) {
		if ax == len(a.indices) {
			if a.CombinedCharge(sector) == a.chargeTotal {
				out = append(out, sector.Clone())
			}
			return
		}
		for _, c := range a.indices[ax].Charges() {
			sector[ax] = c
			rec(ax + 1)
		}
	}
	rec(0)
	return out
}

// Sparsity returns the ratio of stored to allowed sectors.
func (a *Array) Sparsity() float64 {
	possible := len(a.PossibleSectors())
	if possible == 0 {
		return 0
	}
	return float64(len(a.blocks)) / float64(possible)
}

// ToDense materializes the array: zero everywhere outside the stored
// sectors, block contents inside.
func (a *Array) ToDense() *dense.Dense {
	out := dense.Zeros(a.Shape()...)
	starts := make([]int, len(a.indices))
	for _, e := range a.blocks {
		for i, c := range e.sector {
			off, err := a.indices[i].OffsetOf(c)
			if err != nil {
				panic(err) // stored sector with unknown charge: invariant broken
			}
			starts[i] = off
		}
		if err := out.CopyRange(starts, e.data); err != nil {
			panic(err)
		}
	}
	return out
}

// Mul returns the array scaled by a scalar.
func (a *Array) Mul(s complex128) *Array {
	out := a.Copy()
	for k, e := range out.blocks {
		out.blocks[k] = &blockEntry{sector: e.sector, data: e.data.Scale(s)}
	}
	return out
}

// Conj returns the non-fermionic conjugate: every block conjugated,
// every flow flipped, and the total charge inverted so the
// conservation invariant still holds.
func (a *Array) Conj() *Array {
	out := a.Copy()
	out.ConjInPlace()
	return out
}

// ConjInPlace is the mutating variant of Conj. The receiver must be
// exclusively owned by the caller.
func (a *Array) ConjInPlace() {
	for i, ix := range a.indices {
		a.indices[i] = ix.Conj()
	}
	a.chargeTotal = a.sym.Negate(a.chargeTotal)
	for k, e := range a.blocks {
		a.blocks[k] = &blockEntry{sector: e.sector, data: e.data.Conj()}
	}
}

// Norm returns the Frobenius norm over all stored blocks.
func (a *Array) Norm() float64 {
	var acc float64
	for _, e := range a.blocks {
		n := e.data.Norm()
		acc += n * n
	}
	return math.Sqrt(acc)
}

// Sum returns the sum of all stored elements.
func (a *Array) Sum() complex128 {
	var acc complex128
	for _, e := range a.blocks {
		acc += e.data.Sum()
	}
	return acc
}

// Min returns the minimum real part over all stored elements.
func (a *Array) Min() float64 {
	m := math.Inf(1)
	for _, e := range a.blocks {
		if v := e.data.MinReal(); v < m {
			m = v
		}
	}
	return m
}

// Max returns the maximum real part over all stored elements.
func (a *Array) Max() float64 {
	m := math.Inf(-1)
	for _, e := range a.blocks {
		if v := e.data.MaxReal(); v > m {
			m = v
		}
	}
	return m
}

// AllClose reports whether both arrays agree within tol on every
// sector either of them stores; a sector missing on one side is
// compared against zero.
func (a *Array) AllClose(other *Array, tol float64) bool {
	if a.NDim() != other.NDim() {
		return false
	}
	keys := make(map[string]struct{}, len(a.blocks)+len(other.blocks))
	for k := range a.blocks {
		keys[k] = struct{}{}
	}
	for k := range other.blocks {
		keys[k] = struct{}{}
	}
	for k := range keys {
		ea, oka := a.blocks[k]
		eb, okb := other.blocks[k]
		switch {
		case oka && okb:
			if !ea.data.AllClose(eb.data, tol) {
				return false
			}
		case oka:
			if ea.data.Norm() > tol {
				return false
			}
		default:
			if eb.data.Norm() > tol {
				return false
			}
		}
	}
	return true
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
