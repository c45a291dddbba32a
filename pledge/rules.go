// Package pledge defines the economic rules of the pledge token sale:
// the pledge-token supply cap, the reward-token supply and its reserved
// slice, the vesting window, the reward conversion rate, and the timed
// pricing phases applied to contributions.
//
// The Rules type is the central configuration value for the engine. It is
// constructed fresh from fixed constants for every operation and never
// mutated at runtime.
package pledge

import (
	"encoding/json"
	"math"

	cmath "github.com/ethereum/go-ethereum/common/math"
)

const (
	// TotalPledgeSupply caps the cumulative locked pledge-token allocation
	// a record may accumulate.
	TotalPledgeSupply uint64 = 100_000_000

	// RewardTokenSupply is the total reward-token supply.
	RewardTokenSupply uint64 = 14_000_000

	// ReservedRewardTokens is the slice of the reward supply held back and
	// never claimable.
	ReservedRewardTokens uint64 = 4_000_000

	// VestingPeriod is the fixed vesting window in seconds (~2 years).
	VestingPeriod uint64 = 63_072_000

	// RewardRate is the number of reward tokens minted per matured
	// pledge token.
	RewardRate uint64 = 40

	// PhaseCount is the number of timed pricing phases of the sale.
	PhaseCount = 5
)

// DefaultPhaseDurations returns the per-phase durations in seconds.
// The final phase is unbounded, so every timestamp resolves to a phase.
func DefaultPhaseDurations() [PhaseCount]uint64 {
	return [PhaseCount]uint64{1_296_000, 1_296_000, 1_296_000, 1_296_000, math.MaxUint64}
}

// DefaultPhaseRates returns the per-phase percentage multipliers,
// index-aligned with DefaultPhaseDurations. 200 means 2.00x.
func DefaultPhaseRates() [PhaseCount]uint64 {
	return [PhaseCount]uint64{200, 175, 150, 125, 100}
}

// Rules describes the complete economic configuration of a pledge sale.
type Rules struct {
	Name string

	// PledgeSupply is the locked-allocation cap per record.
	PledgeSupply uint64

	// RewardSupply and ReservedRewards together bound the claimable pool.
	RewardSupply    uint64
	ReservedRewards uint64

	// VestingPeriod is the vesting window in seconds.
	VestingPeriod uint64

	// RewardRate is the reward tokens minted per matured pledge token.
	RewardRate uint64

	// PhaseDurations are cumulative-boundary durations of the pricing
	// phases; the last entry must be unbounded.
	PhaseDurations [PhaseCount]uint64

	// PhaseRates are the percentage multipliers, index-aligned with
	// PhaseDurations.
	PhaseRates [PhaseCount]uint64
}

// MainNetRules returns the production sale configuration.
func MainNetRules() Rules {
	return Rules{
		Name:            "main",
		PledgeSupply:    TotalPledgeSupply,
		RewardSupply:    RewardTokenSupply,
		ReservedRewards: ReservedRewardTokens,
		VestingPeriod:   VestingPeriod,
		RewardRate:      RewardRate,
		PhaseDurations:  DefaultPhaseDurations(),
		PhaseRates:      DefaultPhaseRates(),
	}
}

// FakeNetRules returns accelerated rules for local runs and testing:
// one-minute phases and a ten-minute vesting window. The engine semantics
// are identical under any Rules value.
func FakeNetRules() Rules {
	cfg := MainNetRules()
	cfg.Name = "fake"
	cfg.VestingPeriod = 600
	cfg.PhaseDurations = [PhaseCount]uint64{60, 60, 60, 60, math.MaxUint64}
	return cfg
}

// ClaimablePool returns the portion of the reward supply available for
// claims: the total supply minus the reserved slice, saturating at zero.
func (r Rules) ClaimablePool() uint64 {
	pool, underflow := cmath.SafeSub(r.RewardSupply, r.ReservedRewards)
	if underflow {
		return 0
	}
	return pool
}

// RateAt resolves the phase multiplier in effect at the given moment.
// Sale phases are measured from the epoch origin, so the absolute
// timestamp is the elapsed value.
func (r Rules) RateAt(now uint64) uint64 {
	return PhaseRate(SalePhase(now, r.PhaseDurations), r.PhaseRates)
}

// String returns a JSON representation of Rules for logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
