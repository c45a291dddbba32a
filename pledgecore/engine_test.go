package pledgecore

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheist/go-pledge/inter"
	"github.com/solheist/go-pledge/pledge"
)

func testEngine() *Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(pledge.MainNetRules(), log)
}

func TestPurchase_PhaseRateApplied(t *testing.T) {
	e := testEngine()

	// Phase 0, rate 200: contribution 1000 grants 2000.
	st, err := e.Purchase(inter.UserState{}, 1000, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), st.LockedTokens)
	assert.Equal(t, inter.Timestamp(1_000_000), st.LockStart)
	assert.Equal(t, inter.Timestamp(1_000_000+pledge.VestingPeriod), st.VestingEnd)

	// Final phase, rate 100: contribution passes through 1:1.
	st, err = e.Purchase(inter.UserState{}, 1000, 10*1_296_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), st.LockedTokens)
}

func TestPurchase_FlooredDivision(t *testing.T) {
	e := New(pledge.MainNetRules(), logrus.New())

	// 3 * 175 / 100 = 5.25, floored to 5.
	st, err := e.Purchase(inter.UserState{}, 3, 1_296_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), st.LockedTokens)
}

func TestPurchase_ZeroContribution(t *testing.T) {
	e := testEngine()

	st, err := e.Purchase(inter.UserState{}, 0, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), st.LockedTokens)
	// Even a no-op allocation restarts the vesting clock.
	assert.Equal(t, inter.Timestamp(1_000_000), st.LockStart)
}

func TestPurchase_CapEnforcement(t *testing.T) {
	e := testEngine()
	full := inter.UserState{LockedTokens: pledge.TotalPledgeSupply}

	_, err := e.Purchase(full, 1, 0)
	assert.ErrorIs(t, err, ErrCapExceeded)

	// A zero grant succeeds even at full cap.
	st, err := e.Purchase(full, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, pledge.TotalPledgeSupply, st.LockedTokens)

	// Exactly exhausting the headroom is allowed.
	half := inter.UserState{LockedTokens: pledge.TotalPledgeSupply - 200}
	st, err = e.Purchase(half, 100, 0) // rate 200 -> granted 200
	require.NoError(t, err)
	assert.Equal(t, pledge.TotalPledgeSupply, st.LockedTokens)

	// One token over the headroom is not.
	_, err = e.Purchase(inter.UserState{LockedTokens: pledge.TotalPledgeSupply - 199}, 100, 0)
	assert.ErrorIs(t, err, ErrCapExceeded)
}

func TestPurchase_CorruptLockedBalance(t *testing.T) {
	e := testEngine()

	// Locked above the cap can only come from corrupt state; any non-zero
	// grant is rejected rather than underflowing the headroom.
	corrupt := inter.UserState{LockedTokens: pledge.TotalPledgeSupply + 1}
	_, err := e.Purchase(corrupt, 1, 0)
	assert.ErrorIs(t, err, ErrCapExceeded)

	st, err := e.Purchase(corrupt, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, corrupt.LockedTokens, st.LockedTokens)
}

func TestPurchase_OverflowingContribution(t *testing.T) {
	e := testEngine()

	// amount*rate overflows 64 bits; the grant cannot fit any cap.
	_, err := e.Purchase(inter.UserState{}, math.MaxUint64, 0)
	assert.ErrorIs(t, err, ErrCapExceeded)
}

func TestPurchase_RejectionLeavesStateUntouched(t *testing.T) {
	e := testEngine()
	before := inter.UserState{
		LockedTokens: pledge.TotalPledgeSupply,
		LockStart:    5,
		VestingEnd:   6,
	}

	after, err := e.Purchase(before, 1000, 1_000_000)
	require.Error(t, err)
	assert.Equal(t, before, after)
}

func TestPurchase_VestingEndMonotonic(t *testing.T) {
	e := testEngine()

	st, err := e.Purchase(inter.UserState{}, 10, 1000)
	require.NoError(t, err)
	first := st.VestingEnd
	assert.Equal(t, inter.Timestamp(1000+pledge.VestingPeriod), first)

	st, err = e.Purchase(st, 10, 2000)
	require.NoError(t, err)
	assert.Equal(t, inter.Timestamp(2000+pledge.VestingPeriod), st.VestingEnd)

	// A purchase timestamped before the previous one must not shrink the
	// deadline.
	st, err = e.Purchase(st, 10, 500)
	require.NoError(t, err)
	assert.Equal(t, inter.Timestamp(2000+pledge.VestingPeriod), st.VestingEnd)
	assert.Equal(t, inter.Timestamp(500), st.LockStart)
}

func TestUpdateReward_MintsAfterVesting(t *testing.T) {
	e := testEngine()
	st := inter.UserState{
		LockedTokens: 1000,
		LockStart:    1_000_000,
		VestingEnd:   1_000_000 + inter.Timestamp(pledge.VestingPeriod),
	}

	now := inter.Timestamp(1_000_000 + pledge.VestingPeriod)
	st = e.UpdateReward(st, now)

	assert.Equal(t, uint64(40_000), st.RewardBalance, "1000 locked * rate 40")
	assert.Equal(t, uint64(0), st.LockedTokens)
	assert.Equal(t, inter.Timestamp(0), st.VestingEnd)
	assert.Equal(t, now, st.LockStart)
}

func TestUpdateReward_AccumulatesAcrossRounds(t *testing.T) {
	e := testEngine()
	st := inter.UserState{RewardBalance: 5, LockedTokens: 10, LockStart: 0}

	st = e.UpdateReward(st, inter.Timestamp(pledge.VestingPeriod))
	assert.Equal(t, uint64(5+400), st.RewardBalance)
}

func TestUpdateReward_NotYetVested(t *testing.T) {
	e := testEngine()
	before := inter.UserState{
		LockedTokens: 1000,
		LockStart:    1_000_000,
		VestingEnd:   1_000_000 + inter.Timestamp(pledge.VestingPeriod),
	}

	after := e.UpdateReward(before, 1_000_001)
	assert.Equal(t, before, after, "neither deadline has passed")
}

func TestUpdateReward_ForceUnlockWithoutMint(t *testing.T) {
	e := testEngine()

	// The absolute deadline has passed but the relative clock was pushed
	// forward by a later purchase: unlock fires with no reward minted.
	st := inter.UserState{
		LockedTokens: 1000,
		LockStart:    90_000_000,
		VestingEnd:   63_072_100,
	}
	now := inter.Timestamp(90_000_010)

	st = e.UpdateReward(st, now)
	assert.Equal(t, uint64(0), st.RewardBalance)
	assert.Equal(t, uint64(0), st.LockedTokens)
	assert.Equal(t, inter.Timestamp(0), st.VestingEnd)
	// The force-unlock branch does not reset the relative clock.
	assert.Equal(t, inter.Timestamp(90_000_000), st.LockStart)
}

func TestUpdateReward_DualClockDivergence(t *testing.T) {
	// The two vesting deadlines are maintained independently and can
	// disagree; the relative clock wins when both have passed. This
	// asymmetry is inherited behavior, pinned here on purpose.
	e := testEngine()

	st, err := e.Purchase(inter.UserState{}, 10, 1000)
	require.NoError(t, err)

	// A second purchase resets LockStart but only grows VestingEnd.
	st, err = e.Purchase(st, 10, 2000)
	require.NoError(t, err)
	assert.Equal(t, inter.Timestamp(2000), st.LockStart)
	assert.Equal(t, inter.Timestamp(2000+pledge.VestingPeriod), st.VestingEnd)

	// At VestingEnd both conditions hold; the mint branch runs first.
	now := st.VestingEnd
	st = e.UpdateReward(st, now)
	assert.Equal(t, uint64(40*40), st.RewardBalance)
	assert.Equal(t, uint64(0), st.LockedTokens)
}

func TestUpdateReward_ClockMovedBackward(t *testing.T) {
	e := testEngine()
	before := inter.UserState{
		LockedTokens: 1000,
		LockStart:    1_000_000,
		VestingEnd:   1_000_000 + inter.Timestamp(pledge.VestingPeriod),
	}

	// now < LockStart clamps elapsed to zero instead of underflowing.
	after := e.UpdateReward(before, 999_999)
	assert.Equal(t, before, after)
}

func TestUpdateReward_EmptyRecordIsNoop(t *testing.T) {
	e := testEngine()

	// A fresh record has LockStart zero, so the mint branch fires with
	// nothing locked: no rewards, clock restarted.
	now := inter.Timestamp(pledge.VestingPeriod + 1)
	st := e.UpdateReward(inter.UserState{}, now)
	assert.Equal(t, uint64(0), st.RewardBalance)
	assert.Equal(t, uint64(0), st.LockedTokens)
	assert.Equal(t, now, st.LockStart)
}

func TestUpdateReward_SaturatesRewardBalance(t *testing.T) {
	e := testEngine()
	st := inter.UserState{
		LockedTokens:  math.MaxUint64,
		RewardBalance: 1,
	}

	st = e.UpdateReward(st, inter.Timestamp(pledge.VestingPeriod))
	assert.Equal(t, uint64(math.MaxUint64), st.RewardBalance)
}

func TestViewRewards(t *testing.T) {
	e := testEngine()
	st := inter.UserState{RewardBalance: 123}

	assert.Equal(t, uint64(123), e.ViewRewards(st))
	assert.Equal(t, uint64(123), st.RewardBalance)
}

func TestClaimRewards_ZeroBalanceIsNoop(t *testing.T) {
	e := testEngine()
	calls := 0
	transfer := func(amount uint64) error {
		calls++
		return nil
	}

	st, err := e.ClaimRewards(inter.UserState{LockedTokens: 7}, transfer)
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "no transfer for a zero balance")
	assert.Equal(t, uint64(7), st.LockedTokens)
}

func TestClaimRewards_Settles(t *testing.T) {
	e := testEngine()
	var transferred uint64
	transfer := func(amount uint64) error {
		transferred = amount
		return nil
	}

	st, err := e.ClaimRewards(inter.UserState{RewardBalance: 40_000}, transfer)
	require.NoError(t, err)
	assert.Equal(t, uint64(40_000), transferred)
	assert.Equal(t, uint64(0), st.RewardBalance)
}

func TestClaimRewards_PoolExceeded(t *testing.T) {
	e := testEngine()
	pool := pledge.MainNetRules().ClaimablePool()
	calls := 0
	transfer := func(amount uint64) error {
		calls++
		return nil
	}

	// One over the pool: rejected before any transfer.
	_, err := e.ClaimRewards(inter.UserState{RewardBalance: pool + 1}, transfer)
	assert.ErrorIs(t, err, ErrInsufficientPool)
	assert.Equal(t, 0, calls)

	// Exactly the pool is claimable.
	st, err := e.ClaimRewards(inter.UserState{RewardBalance: pool}, transfer)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), st.RewardBalance)
	assert.Equal(t, 1, calls)
}

func TestClaimRewards_TransferFailureKeepsBalance(t *testing.T) {
	e := testEngine()
	boom := errors.New("ledger unavailable")
	transfer := func(amount uint64) error {
		return boom
	}

	before := inter.UserState{RewardBalance: 500}
	after, err := e.ClaimRewards(before, transfer)
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.Equal(t, before, after, "failed transfer must not zero the balance")
}

func TestPurchaseAccrueClaim_FullCycle(t *testing.T) {
	e := testEngine()

	st, err := e.Purchase(inter.UserState{}, 1000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2000), st.LockedTokens)

	st = e.UpdateReward(st, inter.Timestamp(pledge.VestingPeriod))
	require.Equal(t, uint64(80_000), st.RewardBalance)
	require.Equal(t, uint64(0), st.LockedTokens)

	var paid uint64
	st, err = e.ClaimRewards(st, func(amount uint64) error {
		paid = amount
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(80_000), paid)
	assert.True(t, st.RewardBalance == 0)
}
