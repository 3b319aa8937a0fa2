// Package fermionic extends the block-sparse symmetric arrays with the
// anticommutation sign rules of fermionic modes.
//
// Every reordering of odd-parity axes costs a sign. Rather than
// touching numeric data on each structural step, the sign is buffered
// per sector ("lazy phase") and multiplied into the blocks only when
// an operation hands data to sign-unaware code: dense
// materialization, the final block contraction, or an explicit
// PhaseResolve. Composed structural operations therefore accumulate
// and cancel signs at bookkeeping cost only.
package fermionic
