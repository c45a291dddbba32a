// Package pledgecore implements the pledge sale state transitions: purchase
// accounting under the supply cap, vesting-triggered reward accrual, and
// reward-claim settlement against an injected transfer capability.
//
// Every operation takes the participant record by value and returns the
// updated record, so a failed operation can never leave a partially mutated
// record behind; the caller replaces the persisted record wholesale.
package pledgecore

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	cmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/sirupsen/logrus"

	"github.com/solheist/go-pledge/inter"
	"github.com/solheist/go-pledge/metrics"
	"github.com/solheist/go-pledge/pledge"
)

var (
	// ErrCapExceeded is returned when a purchase would lift the locked
	// balance above the pledge supply cap. The record is unchanged and the
	// contribution is not consumed.
	ErrCapExceeded = errors.New("pledge allocation exceeds remaining supply")

	// ErrInsufficientPool is returned when a claim exceeds the claimable
	// reward pool. No transfer is attempted and the record is unchanged.
	ErrInsufficientPool = errors.New("claim exceeds claimable reward pool")

	// ErrTransferFailed wraps a failure reported by the transfer
	// capability. The record keeps its pre-claim balance.
	ErrTransferFailed = errors.New("reward transfer failed")
)

// TransferFn is the external capability that moves reward tokens to the
// participant. The engine only depends on its success or failure; the actual
// ledger lives with the host.
type TransferFn func(amount uint64) error

// Engine executes pledge sale operations under a fixed set of economic
// rules. It is stateless between calls and safe to reuse across records,
// but a single record must not be operated on concurrently; the host
// provides single-writer discipline per record.
type Engine struct {
	rules pledge.Rules
	log   logrus.FieldLogger
}

// New creates an engine bound to the given rules. The logger carries the
// engine's purchase/reward/claim notifications; nil selects the standard
// logger.
func New(rules pledge.Rules, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		rules: rules,
		log:   log,
	}
}

// Rules returns the economic rules the engine was built with.
func (e *Engine) Rules() pledge.Rules {
	return e.rules
}

// Purchase applies a pledge contribution at the given moment. The granted
// allocation is amount scaled by the phase rate in effect, floored. A zero
// contribution is a valid no-op allocation, even at full cap.
func (e *Engine) Purchase(st inter.UserState, amount uint64, now inter.Timestamp) (inter.UserState, error) {
	rate := e.rules.RateAt(uint64(now))
	granted, ok := grantedTokens(amount, rate)

	// A locked balance above the cap can only come from corrupt state;
	// treat the cap as exhausted rather than underflowing.
	headroom, underflow := cmath.SafeSub(e.rules.PledgeSupply, st.LockedTokens)
	if underflow {
		headroom = 0
	}
	if !ok || granted > headroom {
		metrics.RejectedOps.WithLabelValues("purchase").Inc()
		return st, ErrCapExceeded
	}

	st.LockedTokens += granted
	st.LockStart = now

	// The vesting deadline only ever grows across purchases.
	deadline, overflow := cmath.SafeAdd(uint64(now), e.rules.VestingPeriod)
	if overflow {
		deadline = math.MaxUint64
	}
	if inter.Timestamp(deadline) > st.VestingEnd {
		st.VestingEnd = inter.Timestamp(deadline)
	}

	metrics.PurchaseCount.Inc()
	metrics.GrantedTokens.Add(float64(granted))
	e.log.WithFields(logrus.Fields{
		"amount": amount,
		"rate":   rate,
		"locked": st.LockedTokens,
	}).Info("pledge tokens purchased")
	return st, nil
}

// UpdateReward evaluates vesting at the given moment. It never fails.
//
// Two independent deadlines are checked, in order:
//  1. the lock-start-relative clock: once the vesting period has elapsed
//     since LockStart, rewards are minted for the locked balance and the
//     tokens unlock;
//  2. the absolute VestingEnd deadline: tokens whose window has passed
//     unlock without minting, covering locks whose relative clock was
//     pushed forward by a later purchase.
//
// The two clocks can diverge; both are kept deliberately.
func (e *Engine) UpdateReward(st inter.UserState, now inter.Timestamp) inter.UserState {
	elapsed, underflow := cmath.SafeSub(uint64(now), uint64(st.LockStart))
	if underflow {
		// Clock moved backward, or the lock starts in the future.
		elapsed = 0
	}

	if elapsed >= e.rules.VestingPeriod {
		minted, overflow := cmath.SafeMul(st.LockedTokens, e.rules.RewardRate)
		if overflow {
			st.RewardBalance = math.MaxUint64
		} else if sum, overflow := cmath.SafeAdd(st.RewardBalance, minted); overflow {
			st.RewardBalance = math.MaxUint64
		} else {
			st.RewardBalance = sum
		}
		st.LockStart = now
		st = unlockVested(st)
		metrics.MintedRewards.Add(float64(minted))
	} else if now >= st.VestingEnd {
		st = unlockVested(st)
	}

	e.log.WithFields(logrus.Fields{
		"rewards": st.RewardBalance,
		"elapsed": elapsed,
	}).Info("rewards updated")
	return st
}

// ViewRewards reports the accrued reward balance without mutating anything.
func (e *Engine) ViewRewards(st inter.UserState) uint64 {
	e.log.WithField("rewards", st.RewardBalance).Info("rewards viewed")
	return st.RewardBalance
}

// ClaimRewards settles the accrued balance through the transfer capability.
// A zero balance is a valid no-op and performs no transfer. The balance is
// zeroed only after the transfer confirms success; any failure leaves the
// record exactly as it was.
func (e *Engine) ClaimRewards(st inter.UserState, transfer TransferFn) (inter.UserState, error) {
	if st.RewardBalance == 0 {
		e.log.Info("no rewards to claim")
		return st, nil
	}

	if st.RewardBalance > e.rules.ClaimablePool() {
		metrics.RejectedOps.WithLabelValues("claim").Inc()
		return st, ErrInsufficientPool
	}

	claimed := st.RewardBalance
	if err := transfer(claimed); err != nil {
		metrics.RejectedOps.WithLabelValues("claim").Inc()
		return st, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	st.RewardBalance = 0

	metrics.ClaimedRewards.Add(float64(claimed))
	// Reports the balance after clearing, matching the historical log
	// stream bit for bit.
	e.log.WithField("rewards", st.RewardBalance).Info("rewards claimed")
	return st, nil
}

// grantedTokens computes amount*rate/100 with a 128-bit intermediate.
// ok is false when the result does not fit in a uint64; such a grant always
// exceeds any representable supply cap.
func grantedTokens(amount, rate uint64) (granted uint64, ok bool) {
	hi, lo := bits.Mul64(amount, rate)
	if hi >= 100 {
		return 0, false
	}
	granted, _ = bits.Div64(hi, lo, 100)
	return granted, true
}

func unlockVested(st inter.UserState) inter.UserState {
	st.LockedTokens = 0
	st.VestingEnd = 0
	return st
}
