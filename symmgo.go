package symmgo

import (
	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/fermionic"
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
)

// Array is the capability surface shared by every array kind. The
// dispatch entry points in this package route on Kind.
type Array interface {
	// Kind returns the registry kind, e.g. KindSymmetric.
	Kind() string
	// NDim returns the tensor rank.
	NDim() int
	// Shape returns the total dimension of each axis.
	Shape() []int
	// Size returns the total dense element count.
	Size() int
	// ToDense materializes the array (fermionic arrays resolve their
	// buffered signs first).
	ToDense() *dense.Dense
	// Check validates the storage invariants.
	Check() error
}

// Kinds of the built-in array flavors.
const (
	KindSymmetric = symmetric.Kind
	KindFermionic = fermionic.Kind
)

// Convenience aliases so casual users need only this package.
type (
	// Symmetry is the conserved-charge algebra of an array.
	Symmetry = symmetry.Symmetry
	// Charge is an element of an abelian group.
	Charge = symmetry.Charge
	// BlockIndex describes one tensor axis.
	BlockIndex = symmetric.BlockIndex
	// Sector names one potentially-nonzero block.
	Sector = symmetric.Sector
	// SymmetricArray is a block-sparse symmetric tensor.
	SymmetricArray = symmetric.Array
	// FermionicArray is a symmetric tensor with lazy exchange signs.
	FermionicArray = fermionic.Array
)

var (
	_ Array = (*symmetric.Array)(nil)
	_ Array = (*fermionic.Array)(nil)
)
