// Package testutil provides testing utilities for symmgo.
//
// This package is intended for use in tests and benchmarks only. It
// offers a seeded, thread-safe random source and constructors for
// random symmetric and fermionic arrays whose every allowed sector is
// populated.
package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/symmgo/dense"
	"github.com/hupe1980/symmgo/fermionic"
	"github.com/hupe1980/symmgo/symmetric"
	"github.com/hupe1980/symmgo/symmetry"
)

// RNG encapsulates a seeded random number generator. It is
// thread-safe.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRNG creates a new RNG with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// Uniform returns a uniform value in [-0.5, 0.5).
func (r *RNG) Uniform() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64() - 0.5
}

// Normal returns a standard normal value.
func (r *RNG) Normal() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// FillUniform fills data with uniform values in [-0.5, 0.5).
func (r *RNG) FillUniform(data []complex128) {
	for i := range data {
		data[i] = complex(r.Uniform(), 0)
	}
}

// FillPositive fills data with uniform values in (0, 1).
func (r *RNG) FillPositive(data []complex128) {
	for i := range data {
		data[i] = complex(r.Uniform()+0.5, 0)
	}
}

// FillNormal fills data with standard normal values.
func (r *RNG) FillNormal(data []complex128) {
	for i := range data {
		data[i] = complex(r.Normal(), 0)
	}
}

// baseCharges returns the small charge set used to partition random
// dimensions for sym.
func baseCharges(sym symmetry.Symmetry) []symmetry.Charge {
	switch sym.Tag() {
	case "Z2":
		return []symmetry.Charge{0, 1}
	case "U1":
		return []symmetry.Charge{-1, 0, 1}
	case "Z2Z2", "U1U1":
		return []symmetry.Charge{
			symmetry.Pair(0, 0), symmetry.Pair(0, 1),
			symmetry.Pair(1, 0), symmetry.Pair(1, 1),
		}
	default:
		panic(fmt.Sprintf("no base charges for symmetry %q", sym.Tag()))
	}
}

// RandChargemap partitions a total dimension d near-evenly over the
// base charges of sym, dropping charges that receive nothing.
func RandChargemap(sym symmetry.Symmetry, d int) map[symmetry.Charge]int {
	charges := baseCharges(sym)
	n := len(charges)
	out := make(map[symmetry.Charge]int, n)
	for i, c := range charges {
		size := d / n
		if i < d%n {
			size++
		}
		if size > 0 {
			out[c] = size
		}
	}
	return out
}

// RandIndices builds one BlockIndex per dimension of shape, with the
// given flows (all false when flows is nil).
func RandIndices(sym symmetry.Symmetry, shape []int, flows []bool) []*symmetric.BlockIndex {
	if flows == nil {
		flows = make([]bool, len(shape))
	}
	if len(flows) != len(shape) {
		panic("testutil: flows length must match shape")
	}
	out := make([]*symmetric.BlockIndex, len(shape))
	for i, d := range shape {
		out[i] = symmetric.NewBlockIndex(RandChargemap(sym, d), flows[i])
	}
	return out
}

// Fill is the distribution used to populate random blocks.
type Fill func(*RNG, []complex128)

// Uniform populates blocks with zero-centered uniform values.
func Uniform(r *RNG, data []complex128) { r.FillUniform(data) }

// Positive populates blocks with strictly positive uniform values.
func Positive(r *RNG, data []complex128) { r.FillPositive(data) }

// Normal populates blocks with standard normal values.
func Normal(r *RNG, data []complex128) { r.FillNormal(data) }

// RandArray builds a random symmetric array with every allowed sector
// populated by fill (Uniform when nil).
func RandArray(rng *RNG, sym symmetry.Symmetry, shape []int, flows []bool, chargeTotal symmetry.Charge, fill Fill) *symmetric.Array {
	if fill == nil {
		fill = Uniform
	}
	arr := symmetric.New(sym, RandIndices(sym, shape, flows), chargeTotal)
	for _, sector := range arr.PossibleSectors() {
		blockShape, err := arr.SectorShape(sector)
		if err != nil {
			panic(err)
		}
		data := make([]complex128, dense.SizeOf(blockShape))
		fill(rng, data)
		block, err := dense.New(blockShape, data)
		if err != nil {
			panic(err)
		}
		arr.SetBlock(sector, block)
	}
	return arr
}

// RandZ2Array builds a random Z2-symmetric array with total charge
// zero and all flows false.
func RandZ2Array(rng *RNG, shape ...int) *symmetric.Array {
	return RandArray(rng, symmetry.MustGet("Z2"), shape, nil, 0, nil)
}

// RandFermionic builds a random fermionic array with every allowed
// sector populated and an empty phase set.
func RandFermionic(rng *RNG, sym symmetry.Symmetry, shape []int, flows []bool, chargeTotal symmetry.Charge) *fermionic.Array {
	return fermionic.FromSymmetric(RandArray(rng, sym, shape, flows, chargeTotal, nil))
}

// DenseTensordot is the reference contraction on plain dense tensors,
// used to cross-check the block-sparse implementation in tests.
func DenseTensordot(a, b *dense.Dense, axesA, axesB []int) (*dense.Dense, error) {
	if len(axesA) != len(axesB) {
		return nil, fmt.Errorf("axes length mismatch %d vs %d", len(axesA), len(axesB))
	}
	leftAxes := complement(a.NDim(), axesA)
	rightAxes := complement(b.NDim(), axesB)

	permA := append(append([]int(nil), leftAxes...), axesA...)
	permB := append(append([]int(nil), axesB...), rightAxes...)
	ta, err := a.Transpose(permA)
	if err != nil {
		return nil, err
	}
	tb, err := b.Transpose(permB)
	if err != nil {
		return nil, err
	}

	m, k, n := 1, 1, 1
	var outShape []int
	for i, d := range ta.Shape() {
		if i < len(leftAxes) {
			m *= d
			outShape = append(outShape, d)
		} else {
			k *= d
		}
	}
	for i, d := range tb.Shape() {
		if i >= len(axesB) {
			n *= d
			outShape = append(outShape, d)
		}
	}

	ma, err := ta.Reshape(m, k)
	if err != nil {
		return nil, err
	}
	mb, err := tb.Reshape(k, n)
	if err != nil {
		return nil, err
	}
	prod, err := dense.Matmul(ma, mb)
	if err != nil {
		return nil, err
	}
	return prod.Reshape(outShape...)
}

func complement(ndim int, axes []int) []int {
	drop := make(map[int]struct{}, len(axes))
	for _, ax := range axes {
		drop[ax] = struct{}{}
	}
	out := make([]int, 0, ndim-len(axes))
	for ax := 0; ax < ndim; ax++ {
		if _, ok := drop[ax]; !ok {
			out = append(out, ax)
		}
	}
	return out
}
