// Package symmetric implements block-sparse tensors that respect an
// abelian conservation law.
//
// An Array stores one dense block per allowed sector (one charge per
// axis); sectors whose charges do not combine to the array's total
// charge are guaranteed zero and never stored. Structural operations
// (transpose, fuse/unfuse, contraction) act on the sector bookkeeping
// and delegate per-block numeric work to the dense package.
//
// # Mutation discipline
//
// Every structural operation has a pure variant returning a new Array
// and, where useful, an in-place variant suffixed InPlace that mutates
// the receiver and requires exclusive access. Copy duplicates the
// sector mapping but shares dense buffers until an operation produces
// new ones; shared buffers are never written through.
//
// # Validation
//
// Construction is cheap and unvalidated. Call Check at trusted
// checkpoints to verify chargemaps, conservation, and block shapes.
package symmetric
