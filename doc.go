// Package symmgo provides block-sparse tensors that respect an abelian
// conservation law, with a fermionic extension handling exchange-sign
// bookkeeping.
//
// Dense tensors waste memory and compute on blocks a symmetry forbids;
// symmgo stores only the allowed sectors and orchestrates the
// structural operations on them:
//
//   - symmetry: the conserved-charge algebras (Z2, U1 and their
//     products) and the odd-permutation phase calculator
//   - symmetric: BlockIndex axes, sector-to-block storage, transpose,
//     fuse/unfuse and charge-conserving contraction
//   - fermionic: the same storage with lazily-buffered anticommutation
//     signs, resolved only when numeric data must be handed off
//   - dense: the strided complex128 kernels backing individual blocks
//   - snapshot: binary persistence with optional LZ4/ZSTD compression
//   - testutil: seeded random array builders for tests
//
// # Quick start
//
//	rng := testutil.NewRNG(42)
//	x := testutil.RandZ2Array(rng, 3, 4, 5, 6)  // 8 allowed blocks
//	y, err := x.Fuse([]int{0, 2}, []int{1, 3})  // shape (15, 24), 2 blocks
//
// Fermionic arrays follow the same structural API but track signs:
//
//	f := testutil.RandFermionic(rng, symmetry.MustGet("Z2"), shape, flows, 0)
//	fd, err := f.Dagger(true)
//	s, err := fermionic.TensordotN(fd, f, f.NDim())
//
// # Dispatch
//
// Callers that hold arrays behind the generic Array interface can use
// the package-level Transpose, Conj, Fuse and Tensordot entry points,
// which route to the right implementation through a registry keyed on
// the operand kinds. Mixing kinds in one contraction is an error.
package symmgo
