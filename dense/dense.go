// Package dense provides the strided complex128 buffers that back the
// individual blocks of a block-sparse array, together with the small
// set of numeric kernels the structural layer needs: conjugation,
// negation, accumulation, transposition, reshape, matrix contraction
// and hyper-rectangle copy/slice.
//
// The package is deliberately minimal. It is the numeric collaborator
// of the symmetric/fermionic packages, not a general linear-algebra
// library: blocks are always contiguous row-major, and every operation
// that changes values returns a fresh buffer so that structurally
// shared blocks are never mutated through an alias.
package dense

import (
	"fmt"
)

// Dense is a contiguous, row-major tensor of complex128 values.
// The zero-rank tensor (empty shape) holds exactly one element.
type Dense struct {
	shape   []int
	strides []int
	data    []complex128
}

// New wraps data in a Dense of the given shape. The data slice is
// owned by the returned tensor and must have exactly SizeOf(shape)
// elements.
func New(shape []int, data []complex128) (*Dense, error) {
	n := SizeOf(shape)
	if len(data) != n {
		return nil, fmt.Errorf("dense: data length %d does not match shape %v (want %d)", len(data), shape, n)
	}
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("dense: negative dimension in shape %v", shape)
		}
	}
	return &Dense{
		shape:   append([]int(nil), shape...),
		strides: stridesOf(shape),
		data:    data,
	}, nil
}

// Zeros returns a zero-filled tensor of the given shape.
func Zeros(shape ...int) *Dense {
	d, err := New(shape, make([]complex128, SizeOf(shape)))
	if err != nil {
		panic(err) // only reachable with a negative dimension
	}
	return d
}

// SizeOf returns the number of elements implied by shape.
func SizeOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func stridesOf(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// Shape returns the tensor's dimensions. The returned slice must not
// be mutated.
func (t *Dense) Shape() []int { return t.shape }

// NDim returns the tensor rank.
func (t *Dense) NDim() int { return len(t.shape) }

// Size returns the total number of elements.
func (t *Dense) Size() int { return len(t.data) }

// Data returns the underlying buffer. The returned slice must not be
// mutated; use the value-producing kernels instead.
func (t *Dense) Data() []complex128 { return t.data }

// Clone returns a deep copy.
func (t *Dense) Clone() *Dense {
	return &Dense{
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
		data:    append([]complex128(nil), t.data...),
	}
}

// At returns the element at the given coordinates.
func (t *Dense) At(coords ...int) complex128 {
	return t.data[t.offset(coords)]
}

// Set assigns the element at the given coordinates.
func (t *Dense) Set(v complex128, coords ...int) {
	t.data[t.offset(coords)] = v
}

func (t *Dense) offset(coords []int) int {
	if len(coords) != len(t.shape) {
		panic(fmt.Sprintf("dense: %d coordinates for rank-%d tensor", len(coords), len(t.shape)))
	}
	off := 0
	for i, c := range coords {
		if c < 0 || c >= t.shape[i] {
			panic(fmt.Sprintf("dense: coordinate %d out of range for axis %d (dim %d)", c, i, t.shape[i]))
		}
		off += c * t.strides[i]
	}
	return off
}

// Reshape returns a view with the given shape sharing the underlying
// buffer. The element count must be unchanged.
func (t *Dense) Reshape(shape ...int) (*Dense, error) {
	if SizeOf(shape) != len(t.data) {
		return nil, fmt.Errorf("dense: cannot reshape %v (size %d) to %v", t.shape, len(t.data), shape)
	}
	return &Dense{
		shape:   append([]int(nil), shape...),
		strides: stridesOf(shape),
		data:    t.data,
	}, nil
}

// String returns a short description, not the full contents.
func (t *Dense) String() string {
	return fmt.Sprintf("Dense%v", t.shape)
}

// odometer iterates row-major over all coordinates of shape, invoking
// fn with the current coordinates and the corresponding linear index.
func odometer(shape []int, fn func(coords []int, i int)) {
	n := SizeOf(shape)
	if n == 0 {
		return
	}
	coords := make([]int, len(shape))
	for i := 0; i < n; i++ {
		fn(coords, i)
		for ax := len(shape) - 1; ax >= 0; ax-- {
			coords[ax]++
			if coords[ax] < shape[ax] {
				break
			}
			coords[ax] = 0
		}
	}
}
