package symmetric

import (
	"encoding/binary"

	"github.com/hupe1980/symmgo/symmetry"
)

// Sector names one potentially-nonzero block: one charge per axis.
type Sector []symmetry.Charge

// Key returns a compact, comparable encoding of the sector, used as
// the map key for block and phase storage.
func (s Sector) Key() string {
	b := make([]byte, 8*len(s))
	for i, c := range s {
		binary.LittleEndian.PutUint64(b[i*8:], uint64(c)) //nolint:gosec
	}
	return string(b)
}

// Permute returns the sector re-ordered so that position i holds the
// charge of old axis axes[i].
func (s Sector) Permute(axes []int) Sector {
	out := make(Sector, len(s))
	for i, ax := range axes {
		out[i] = s[ax]
	}
	return out
}

// Reverse returns the sector with its charges in reverse order.
func (s Sector) Reverse() Sector {
	out := make(Sector, len(s))
	for i, c := range s {
		out[len(s)-1-i] = c
	}
	return out
}

// Clone returns a copy of the sector.
func (s Sector) Clone() Sector {
	return append(Sector(nil), s...)
}

// Less orders sectors lexicographically by charge. Used for
// deterministic iteration and extent layout.
func (s Sector) Less(other Sector) bool {
	for i := range s {
		if i >= len(other) {
			return false
		}
		if s[i] != other[i] {
			return s[i] < other[i]
		}
	}
	return len(s) < len(other)
}
