// Package symmetry defines the abelian charge algebras that label the
// sectors of block-sparse arrays.
//
// A Symmetry is a pure policy object: it knows how charges combine, what
// the identity charge is, how to invert a charge, and how a charge
// projects onto a fermionic parity. Concrete groups are registered under
// stable tags ("Z2", "U1", "Z2Z2", "U1U1") and looked up via Get.
package symmetry

import (
	"fmt"
	"sync"
)

// Charge is an element of an abelian group. For the scalar groups (Z2,
// U1) the value itself is the charge. Product groups pack two int32
// components into one Charge via Pair/Split.
type Charge int64

// Pair packs two group components into a single product-group charge.
func Pair(a, b int32) Charge {
	return Charge(int64(a)<<32 | int64(uint32(b)))
}

// Split unpacks a product-group charge into its two components.
func Split(c Charge) (int32, int32) {
	return int32(c >> 32), int32(uint32(c)) //nolint:gosec
}

// Symmetry describes one abelian conservation law.
//
// Implementations must be stateless and safe for concurrent use.
type Symmetry interface {
	// Tag returns the stable registry tag, e.g. "Z2".
	Tag() string
	// Combine applies the group operation to the given charges.
	// With no arguments it returns the identity.
	Combine(charges ...Charge) Charge
	// Negate returns the group inverse of c.
	Negate(c Charge) Charge
	// Zero returns the identity charge.
	Zero() Charge
	// Parity projects c onto its fermionic exchange class (0 or 1).
	Parity(c Charge) int
	// Valid reports whether c is a representable element of the group.
	Valid(c Charge) bool
}

// ErrUnknownSymmetry indicates a registry lookup for an unregistered tag.
type ErrUnknownSymmetry struct {
	Tag string
}

func (e *ErrUnknownSymmetry) Error() string {
	return fmt.Sprintf("unknown symmetry: %q", e.Tag)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Symmetry{}
)

// Register makes a Symmetry available under its tag.
//
// Implementations should typically call this from an init() function.
// Registering a tag twice overwrites the previous entry.
func Register(s Symmetry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Tag()] = s
}

// Get returns the Symmetry registered under tag.
func Get(tag string) (Symmetry, error) {
	registryMu.RLock()
	s, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, &ErrUnknownSymmetry{Tag: tag}
	}
	return s, nil
}

// MustGet is like Get but panics on unknown tags. Intended for
// package-level variables and tests.
func MustGet(tag string) Symmetry {
	s, err := Get(tag)
	if err != nil {
		panic(err)
	}
	return s
}

func init() {
	Register(Z2{})
	Register(U1{})
	Register(Z2Z2{})
	Register(U1U1{})
}

// Z2 is the two-element group {0, 1} under addition mod 2.
type Z2 struct{}

// Tag implements Symmetry.
func (Z2) Tag() string { return "Z2" }

// Combine implements Symmetry.
func (Z2) Combine(charges ...Charge) Charge {
	var r Charge
	for _, c := range charges {
		r ^= c & 1
	}
	return r
}

// Negate implements Symmetry. Every Z2 element is its own inverse.
func (Z2) Negate(c Charge) Charge { return c }

// Zero implements Symmetry.
func (Z2) Zero() Charge { return 0 }

// Parity implements Symmetry.
func (Z2) Parity(c Charge) int { return int(c & 1) }

// Valid implements Symmetry.
func (Z2) Valid(c Charge) bool { return c == 0 || c == 1 }

// U1 is the group of integers under addition.
type U1 struct{}

// Tag implements Symmetry.
func (U1) Tag() string { return "U1" }

// Combine implements Symmetry.
func (U1) Combine(charges ...Charge) Charge {
	var r Charge
	for _, c := range charges {
		r += c
	}
	return r
}

// Negate implements Symmetry.
func (U1) Negate(c Charge) Charge { return -c }

// Zero implements Symmetry.
func (U1) Zero() Charge { return 0 }

// Parity implements Symmetry.
func (U1) Parity(c Charge) int {
	if c < 0 {
		c = -c
	}
	return int(c & 1)
}

// Valid implements Symmetry.
func (U1) Valid(Charge) bool { return true }

// Z2Z2 is the direct product Z2 x Z2, with component-wise combination
// and parity equal to the XOR of the component parities.
type Z2Z2 struct{}

// Tag implements Symmetry.
func (Z2Z2) Tag() string { return "Z2Z2" }

// Combine implements Symmetry.
func (Z2Z2) Combine(charges ...Charge) Charge {
	var a, b int32
	for _, c := range charges {
		ca, cb := Split(c)
		a ^= ca & 1
		b ^= cb & 1
	}
	return Pair(a, b)
}

// Negate implements Symmetry.
func (Z2Z2) Negate(c Charge) Charge { return c }

// Zero implements Symmetry.
func (Z2Z2) Zero() Charge { return Pair(0, 0) }

// Parity implements Symmetry.
func (Z2Z2) Parity(c Charge) int {
	a, b := Split(c)
	return int((a ^ b) & 1)
}

// Valid implements Symmetry.
func (Z2Z2) Valid(c Charge) bool {
	a, b := Split(c)
	return (a == 0 || a == 1) && (b == 0 || b == 1)
}

// U1U1 is the direct product U1 x U1.
type U1U1 struct{}

// Tag implements Symmetry.
func (U1U1) Tag() string { return "U1U1" }

// Combine implements Symmetry.
func (U1U1) Combine(charges ...Charge) Charge {
	var a, b int32
	for _, c := range charges {
		ca, cb := Split(c)
		a += ca
		b += cb
	}
	return Pair(a, b)
}

// Negate implements Symmetry.
func (U1U1) Negate(c Charge) Charge {
	a, b := Split(c)
	return Pair(-a, -b)
}

// Zero implements Symmetry.
func (U1U1) Zero() Charge { return Pair(0, 0) }

// Parity implements Symmetry.
func (U1U1) Parity(c Charge) int {
	a, b := Split(c)
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	return int((a ^ b) & 1)
}

// Valid implements Symmetry.
func (U1U1) Valid(Charge) bool { return true }
