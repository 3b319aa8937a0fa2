package symmetric

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/symmgo/dense"
)

type tensordotOptions struct {
	parallelism int
}

// Option configures a contraction.
type Option func(*tensordotOptions)

// WithParallelism bounds the number of goroutines used for the
// per-block matrix products. n <= 1 keeps the contraction fully
// sequential. The call itself always returns synchronously.
func WithParallelism(n int) Option {
	return func(o *tensordotOptions) {
		o.parallelism = n
	}
}

// Tensordot contracts a and b along the paired axes axesA and axesB.
//
// Sectors are grouped by the charges on their contracted axes; groups
// with equal contracted charges are matched (the paired indices must
// have equal chargemaps and opposite flows) and each pair of blocks is
// contracted as a matrix product, accumulating by sum into the output
// sector formed from a's uncontracted charges followed by b's. The
// result's total charge is the combination of both operands' totals.
func Tensordot(a, b *Array, axesA, axesB []int, opts ...Option) (*Array, error) {
	var o tensordotOptions
	for _, opt := range opts {
		opt(&o)
	}

	if a.sym.Tag() != b.sym.Tag() {
		return nil, ErrSymmetryMismatch
	}
	if len(axesA) != len(axesB) {
		return nil, &ErrAxesLengthMismatch{LenA: len(axesA), LenB: len(axesB)}
	}
	for _, ax := range axesA {
		if ax < 0 || ax >= a.NDim() {
			return nil, &ErrAxisOutOfRange{Axis: ax, NDim: a.NDim()}
		}
	}
	for _, ax := range axesB {
		if ax < 0 || ax >= b.NDim() {
			return nil, &ErrAxisOutOfRange{Axis: ax, NDim: b.NDim()}
		}
	}
	for i := range axesA {
		if !a.Index(axesA[i]).Matches(b.Index(axesB[i])) {
			return nil, &ErrIndexMismatch{AxisA: axesA[i], AxisB: axesB[i]}
		}
	}

	leftAxes := axesComplement(a.NDim(), axesA)
	rightAxes := axesComplement(b.NDim(), axesB)

	outIndices := make([]*BlockIndex, 0, len(leftAxes)+len(rightAxes))
	for _, ax := range leftAxes {
		outIndices = append(outIndices, a.Index(ax))
	}
	for _, ax := range rightAxes {
		outIndices = append(outIndices, b.Index(ax))
	}
	out := New(a.sym, outIndices, a.sym.Combine(a.chargeTotal, b.chargeTotal))

	groupsA := groupByContracted(a, axesA)
	groupsB := groupByContracted(b, axesB)

	type task struct {
		ea, eb *blockEntry
	}
	var tasks []task
	for key, entriesA := range groupsA {
		entriesB, ok := groupsB[key]
		if !ok {
			continue
		}
		for _, ea := range entriesA {
			for _, eb := range entriesB {
				tasks = append(tasks, task{ea: ea, eb: eb})
			}
		}
	}

	var mu sync.Mutex
	accumulate := func(ea, eb *blockEntry) error {
		outSector := make(Sector, 0, len(leftAxes)+len(rightAxes))
		for _, ax := range leftAxes {
			outSector = append(outSector, ea.sector[ax])
		}
		for _, ax := range rightAxes {
			outSector = append(outSector, eb.sector[ax])
		}

		prod, err := contractBlocks(ea.data, eb.data, leftAxes, axesA, axesB, rightAxes)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		if existing, ok := out.Block(outSector); ok {
			return existing.AddInPlace(prod)
		}
		out.SetBlock(outSector, prod)
		return nil
	}

	if o.parallelism > 1 && len(tasks) > 1 {
		var g errgroup.Group
		g.SetLimit(o.parallelism)
		for _, t := range tasks {
			t := t
			g.Go(func() error {
				return accumulate(t.ea, t.eb)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, t := range tasks {
			if err := accumulate(t.ea, t.eb); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// contractBlocks contracts two dense blocks by transposing to
// [left|contracted] and [contracted|right], flattening both into
// matrices and multiplying.
func contractBlocks(da, db *dense.Dense, leftAxes, axesA, axesB, rightAxes []int) (*dense.Dense, error) {
	permA := append(append([]int(nil), leftAxes...), axesA...)
	permB := append(append([]int(nil), axesB...), rightAxes...)

	ta, err := da.Transpose(permA)
	if err != nil {
		return nil, err
	}
	tb, err := db.Transpose(permB)
	if err != nil {
		return nil, err
	}

	shapeA := ta.Shape()
	shapeB := tb.Shape()
	m, k, n := 1, 1, 1
	outShape := make([]int, 0, len(leftAxes)+len(rightAxes))
	for i := 0; i < len(leftAxes); i++ {
		m *= shapeA[i]
		outShape = append(outShape, shapeA[i])
	}
	for i := len(leftAxes); i < len(shapeA); i++ {
		k *= shapeA[i]
	}
	for i := len(axesB); i < len(shapeB); i++ {
		n *= shapeB[i]
		outShape = append(outShape, shapeB[i])
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

// groupByContracted buckets the stored blocks by the charges on the
// contracted axes.
func groupByContracted(a *Array, axes []int) map[string][]*blockEntry {
	groups := make(map[string][]*blockEntry)
	for _, e := range a.blocks {
		key := make(Sector, len(axes))
		for i, ax := range axes {
			key[i] = e.sector[ax]
		}
		k := key.Key()
		groups[k] = append(groups[k], e)
	}
	return groups
}

// axesComplement returns 0..ndim-1 with the given axes removed,
// preserving order.
func axesComplement(ndim int, axes []int) []int {
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

// LastAxes returns the trailing n axes of a rank-ndim array, the
// conventional "contract the last n of a against the first n of b"
// axis spec.
func LastAxes(ndim, n int) []int {
	axes := make([]int, n)
	for i := range axes {
		axes[i] = ndim - n + i
	}
	return axes
}

// FirstAxes returns the leading n axes.
func FirstAxes(n int) []int {
	axes := make([]int, n)
	for i := range axes {
		axes[i] = i
	}
	return axes
}
