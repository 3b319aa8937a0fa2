package symmgo

import (
	"sync"

	"github.com/hupe1980/symmgo/fermionic"
	"github.com/hupe1980/symmgo/symmetric"
)

// TensordotFunc contracts two arrays of specific kinds.
type TensordotFunc func(a, b Array, axesA, axesB []int) (Array, error)

// UnaryFunc is a structural operation on one array kind.
type UnaryFunc func(a Array, axes []int) (Array, error)

type kindPair struct {
	a, b string
}

var (
	dispatchMu     sync.RWMutex
	tensordotFuncs = map[kindPair]TensordotFunc{}
	transposeFuncs = map[string]UnaryFunc{}
	conjFuncs      = map[string]UnaryFunc{}
	fuseFuncs      = map[string]func(a Array, groups ...[]int) (Array, error){}
)

// RegisterTensordot registers the contraction implementation for a
// pair of operand kinds. Built-in kinds register themselves from
// init(); external array kinds can hook in the same way.
func RegisterTensordot(kindA, kindB string, fn TensordotFunc) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	tensordotFuncs[kindPair{kindA, kindB}] = fn
}

// RegisterTranspose registers the transpose implementation for a kind.
func RegisterTranspose(kind string, fn UnaryFunc) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	transposeFuncs[kind] = fn
}

// RegisterConj registers the conjugation implementation for a kind.
func RegisterConj(kind string, fn UnaryFunc) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	conjFuncs[kind] = fn
}

// RegisterFuse registers the fuse implementation for a kind.
func RegisterFuse(kind string, fn func(a Array, groups ...[]int) (Array, error)) {
	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	fuseFuncs[kind] = fn
}

// Tensordot contracts a and b along the paired axes, routing to the
// implementation registered for the operand kinds. The built-in kinds
// do not mix: contracting a symmetric against a fermionic array is an
// ErrKindMismatch.
func Tensordot(a, b Array, axesA, axesB []int) (Array, error) {
	dispatchMu.RLock()
	fn, ok := tensordotFuncs[kindPair{a.Kind(), b.Kind()}]
	dispatchMu.RUnlock()
	if !ok {
		if a.Kind() != b.Kind() {
			return nil, ErrKindMismatch
		}
		return nil, &ErrUnsupportedKind{Kind: a.Kind(), Op: "tensordot"}
	}
	return fn(a, b, axesA, axesB)
}

// TensordotN contracts the last n axes of a against the first n axes
// of b.
func TensordotN(a, b Array, n int) (Array, error) {
	return Tensordot(a, b, symmetric.LastAxes(a.NDim(), n), symmetric.FirstAxes(n))
}

// Transpose permutes the axes of a, routing by kind. Fermionic arrays
// pick up their exchange signs. A nil axes reverses the axis order.
func Transpose(a Array, axes []int) (Array, error) {
	dispatchMu.RLock()
	fn, ok := transposeFuncs[a.Kind()]
	dispatchMu.RUnlock()
	if !ok {
		return nil, &ErrUnsupportedKind{Kind: a.Kind(), Op: "transpose"}
	}
	return fn(a, axes)
}

// Conj conjugates a, routing by kind. Fermionic arrays buffer the
// conjugation signs.
func Conj(a Array) (Array, error) {
	dispatchMu.RLock()
	fn, ok := conjFuncs[a.Kind()]
	dispatchMu.RUnlock()
	if !ok {
		return nil, &ErrUnsupportedKind{Kind: a.Kind(), Op: "conj"}
	}
	return fn(a, nil)
}

// Fuse merges the given axis groups of a, routing by kind.
func Fuse(a Array, groups ...[]int) (Array, error) {
	dispatchMu.RLock()
	fn, ok := fuseFuncs[a.Kind()]
	dispatchMu.RUnlock()
	if !ok {
		return nil, &ErrUnsupportedKind{Kind: a.Kind(), Op: "fuse"}
	}
	return fn(a, groups...)
}

func init() {
	RegisterTensordot(KindSymmetric, KindSymmetric, func(a, b Array, axesA, axesB []int) (Array, error) {
		return symmetric.Tensordot(a.(*symmetric.Array), b.(*symmetric.Array), axesA, axesB)
	})
	RegisterTensordot(KindFermionic, KindFermionic, func(a, b Array, axesA, axesB []int) (Array, error) {
		return fermionic.Tensordot(a.(*fermionic.Array), b.(*fermionic.Array), axesA, axesB)
	})
	RegisterTranspose(KindSymmetric, func(a Array, axes []int) (Array, error) {
		return a.(*symmetric.Array).Transpose(axes)
	})
	RegisterTranspose(KindFermionic, func(a Array, axes []int) (Array, error) {
		return a.(*fermionic.Array).Transpose(axes, true)
	})
	RegisterConj(KindSymmetric, func(a Array, _ []int) (Array, error) {
		return a.(*symmetric.Array).Conj(), nil
	})
	RegisterConj(KindFermionic, func(a Array, _ []int) (Array, error) {
		return a.(*fermionic.Array).Conj(true), nil
	})
	RegisterFuse(KindSymmetric, func(a Array, groups ...[]int) (Array, error) {
		return a.(*symmetric.Array).Fuse(groups...)
	})
	RegisterFuse(KindFermionic, func(a Array, groups ...[]int) (Array, error) {
		return a.(*fermionic.Array).Fuse(groups...)
	})
}
