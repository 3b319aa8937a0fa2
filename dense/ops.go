package dense

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Conj returns the element-wise complex conjugate.
func (t *Dense) Conj() *Dense {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = cmplx.Conj(v)
	}
	return out
}

// Neg returns the element-wise negation.
func (t *Dense) Neg() *Dense {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = -v
	}
	return out
}

// Scale returns the tensor multiplied by a scalar.
func (t *Dense) Scale(s complex128) *Dense {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = s * v
	}
	return out
}

// AddInPlace accumulates other into t. Shapes must match exactly. The
// receiver must be exclusively owned by the caller.
func (t *Dense) AddInPlace(other *Dense) error {
	if !shapeEqual(t.shape, other.shape) {
		return fmt.Errorf("dense: shape mismatch %v vs %v", t.shape, other.shape)
	}
	for i, v := range other.data {
		t.data[i] += v
	}
	return nil
}

// Transpose returns a new contiguous tensor with axes permuted so that
// output axis i corresponds to input axis axes[i]. A nil axes reverses
// the axis order.
func (t *Dense) Transpose(axes []int) (*Dense, error) {
	n := len(t.shape)
	if axes == nil {
		axes = make([]int, n)
		for i := range axes {
			axes[i] = n - 1 - i
		}
	}
	if err := CheckPermutation(axes, n); err != nil {
		return nil, err
	}
	outShape := make([]int, n)
	for i, ax := range axes {
		outShape[i] = t.shape[ax]
	}
	out := Zeros(outShape...)
	src := make([]int, n)
	odometer(outShape, func(coords []int, i int) {
		for k, ax := range axes {
			src[ax] = coords[k]
		}
		out.data[i] = t.data[t.offset(src)]
	})
	return out, nil
}

// CheckPermutation reports whether axes is a permutation of 0..n-1.
func CheckPermutation(axes []int, n int) error {
	if len(axes) != n {
		return fmt.Errorf("dense: permutation %v has length %d, want %d", axes, len(axes), n)
	}
	seen := make([]bool, n)
	for _, ax := range axes {
		if ax < 0 || ax >= n || seen[ax] {
			return fmt.Errorf("dense: invalid permutation %v", axes)
		}
		seen[ax] = true
	}
	return nil
}

// Matmul multiplies two rank-2 tensors: (m,k) x (k,n) -> (m,n).
func Matmul(a, b *Dense) (*Dense, error) {
	if a.NDim() != 2 || b.NDim() != 2 {
		return nil, fmt.Errorf("dense: matmul needs rank-2 operands, got %v and %v", a.shape, b.shape)
	}
	m, k := a.shape[0], a.shape[1]
	k2, n := b.shape[0], b.shape[1]
	if k != k2 {
		return nil, fmt.Errorf("dense: matmul inner dimension mismatch %v x %v", a.shape, b.shape)
	}
	out := Zeros(m, n)
	for i := 0; i < m; i++ {
		arow := a.data[i*k : (i+1)*k]
		orow := out.data[i*n : (i+1)*n]
		for l := 0; l < k; l++ {
			av := arow[l]
			if av == 0 {
				continue
			}
			brow := b.data[l*n : (l+1)*n]
			for j := 0; j < n; j++ {
				orow[j] += av * brow[j]
			}
		}
	}
	return out, nil
}

// Slice extracts the hyper-rectangle starting at starts with the given
// sizes into a fresh contiguous tensor.
func (t *Dense) Slice(starts, sizes []int) (*Dense, error) {
	if len(starts) != len(t.shape) || len(sizes) != len(t.shape) {
		return nil, fmt.Errorf("dense: slice spec rank mismatch for %v", t.shape)
	}
	for i := range starts {
		if starts[i] < 0 || sizes[i] < 0 || starts[i]+sizes[i] > t.shape[i] {
			return nil, fmt.Errorf("dense: slice [%d:%d] out of range on axis %d (dim %d)",
				starts[i], starts[i]+sizes[i], i, t.shape[i])
		}
	}
	out := Zeros(sizes...)
	src := make([]int, len(t.shape))
	odometer(sizes, func(coords []int, i int) {
		for ax := range coords {
			src[ax] = starts[ax] + coords[ax]
		}
		out.data[i] = t.data[t.offset(src)]
	})
	return out, nil
}

// CopyRange writes src into t at the offsets given by starts. The
// source must fit inside the receiver. The receiver must be
// exclusively owned by the caller.
func (t *Dense) CopyRange(starts []int, src *Dense) error {
	if len(starts) != len(t.shape) || src.NDim() != t.NDim() {
		return fmt.Errorf("dense: copy range rank mismatch (%v into %v)", src.shape, t.shape)
	}
	for i := range starts {
		if starts[i] < 0 || starts[i]+src.shape[i] > t.shape[i] {
			return fmt.Errorf("dense: copy range [%d:%d] out of range on axis %d (dim %d)",
				starts[i], starts[i]+src.shape[i], i, t.shape[i])
		}
	}
	dst := make([]int, len(t.shape))
	odometer(src.shape, func(coords []int, i int) {
		for ax := range coords {
			dst[ax] = starts[ax] + coords[ax]
		}
		t.data[t.offset(dst)] = src.data[i]
	})
	return nil
}

// MulDiagonal multiplies the tensor along one axis by a vector, i.e.
// out[..., j, ...] = t[..., j, ...] * v[j] with j running over axis.
func (t *Dense) MulDiagonal(axis int, v []complex128) (*Dense, error) {
	if axis < 0 || axis >= len(t.shape) {
		return nil, fmt.Errorf("dense: axis %d out of range for rank %d", axis, len(t.shape))
	}
	if len(v) != t.shape[axis] {
		return nil, fmt.Errorf("dense: diagonal length %d does not match axis %d (dim %d)", len(v), axis, t.shape[axis])
	}
	out := t.Clone()
	odometer(out.shape, func(coords []int, i int) {
		out.data[i] *= v[coords[axis]]
	})
	return out, nil
}

// AllClose reports whether both tensors have the same shape and all
// elements agree within the absolute tolerance tol.
func (t *Dense) AllClose(other *Dense, tol float64) bool {
	if !shapeEqual(t.shape, other.shape) {
		return false
	}
	for i, v := range t.data {
		if cmplx.Abs(v-other.data[i]) > tol {
			return false
		}
	}
	return true
}

// Norm returns the Frobenius norm.
func (t *Dense) Norm() float64 {
	var acc float64
	for _, v := range t.data {
		acc += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(acc)
}

// Sum returns the sum of all elements.
func (t *Dense) Sum() complex128 {
	var acc complex128
	for _, v := range t.data {
		acc += v
	}
	return acc
}

// MinReal returns the minimum real part over all elements.
func (t *Dense) MinReal() float64 {
	m := math.Inf(1)
	for _, v := range t.data {
		if real(v) < m {
			m = real(v)
		}
	}
	return m
}

// MaxReal returns the maximum real part over all elements.
func (t *Dense) MaxReal() float64 {
	m := math.Inf(-1)
	for _, v := range t.data {
		if real(v) > m {
			m = real(v)
		}
	}
	return m
}

func shapeEqual(a, b []int) bool {
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
