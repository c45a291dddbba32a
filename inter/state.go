// Package inter defines the data structures shared between the pledge sale
// engine and its hosts: the per-participant record and its wire serializer.
package inter

import "fmt"

// UserState is the per-participant pledge record. One exists per account;
// the zero value stands for "no participant yet", so a freshly allocated
// all-zero buffer decodes to a valid, empty record and no explicit
// construction step is needed.
//
// All state transitions produce a new UserState value; the persisted record
// is replaced wholesale, never field by field.
type UserState struct {
	// LockedTokens is the pledge-token amount currently locked and vesting.
	LockedTokens uint64

	// RewardBalance is the accrued, not yet claimed reward-token balance.
	RewardBalance uint64

	// LockStart is when the current locked balance began its vesting clock.
	// Reset on every purchase and on every reward accrual.
	LockStart Timestamp

	// VestingEnd is the absolute deadline after which locked tokens unlock
	// even without a reward computation. It only grows across purchases,
	// until an unlock event zeroes it.
	VestingEnd Timestamp
}

// Empty reports whether the record is the implicit "no participant" state.
func (s UserState) Empty() bool {
	return s == UserState{}
}

func (s UserState) String() string {
	return fmt.Sprintf("{locked=%d rewards=%d lockStart=%d vestingEnd=%d}",
		s.LockedTokens, s.RewardBalance, s.LockStart, s.VestingEnd)
}
