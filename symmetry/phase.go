package symmetry

// PhasePermutation returns the exchange sign (+1 or -1) induced by
// permuting a set of fermionic modes.
//
// parities holds the parity (0 or 1) of each axis before the
// permutation. axes is the target order: output position i receives old
// axis axes[i]. A nil axes means full reversal of all axes.
//
// Even-parity axes commute freely and never contribute. The result is
// -1 exactly when the permutation restricted to the odd-parity axes is
// an odd permutation, i.e. when the odd axes undergo an odd number of
// pairwise swaps.
func PhasePermutation(parities []int, axes []int) int {
	if axes == nil {
		// Reversing n odd modes costs n*(n-1)/2 swaps.
		var n int
		for _, p := range parities {
			if p&1 == 1 {
				n++
			}
		}
		if (n/2)%2 == 1 {
			return -1
		}
		return 1
	}

	// Count inversions among the odd-parity axes in their new order.
	odd := make([]int, 0, len(axes))
	for _, ax := range axes {
		if parities[ax]&1 == 1 {
			odd = append(odd, ax)
		}
	}
	var inversions int
	for i := 0; i < len(odd); i++ {
		for j := i + 1; j < len(odd); j++ {
			if odd[i] > odd[j] {
				inversions++
			}
		}
	}
	if inversions%2 == 1 {
		return -1
	}
	return 1
}
