package pledge

import (
	cmath "github.com/ethereum/go-ethereum/common/math"
)

// SalePhase maps an elapsed-time value to a pricing phase index in
// [0, PhaseCount). It walks the cumulative phase boundaries; the result is
// the first phase whose cumulative boundary exceeds elapsed. The comparison
// is strict, so an elapsed value exactly on a boundary belongs to the next
// phase.
//
// The last duration is unbounded, so the walk always yields a valid index;
// there is no "no phase matched" outcome.
func SalePhase(elapsed uint64, durations [PhaseCount]uint64) int {
	boundary := uint64(0)
	for i, d := range durations {
		next, overflow := cmath.SafeAdd(boundary, d)
		if overflow {
			// The boundary left the uint64 range; every representable
			// time falls into this phase.
			return i
		}
		boundary = next
		if elapsed < boundary {
			return i
		}
	}
	return PhaseCount - 1
}

// PhaseRate returns the percentage multiplier for the given phase.
// The phase index must come from SalePhase.
func PhaseRate(phase int, rates [PhaseCount]uint64) uint64 {
	return rates[phase]
}
