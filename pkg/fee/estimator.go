// Package fee estimates network fees for token actions by modelling the
// byte size of the transaction each action will produce.
//
// Estimates are advisory quotes: malformed input yields a conservative
// fixed quote instead of an error.
package fee

import (
	"math"

	"github.com/jln-wallet/tokencore/pkg/amount"
	"github.com/rs/zerolog"
)

// Estimate is a fee quote for one action.
type Estimate struct {
	Kind     string        `json:"kind"`
	Fee      amount.Atomic `json:"fee"`  // sats
	Size     uint64        `json:"size"` // modelled bytes, margin included
	Fallback bool          `json:"fallback,omitempty"`
}

// String formats the fee in XEC.
func (e Estimate) String() string {
	return amount.Format(e.Fee, amount.XECDecimals) + " XEC"
}

// Estimator quotes fees under a fixed policy. It holds no mutable state
// and is safe for concurrent use.
type Estimator struct {
	policy Policy
	logger zerolog.Logger
}

// NewEstimator creates an estimator for the given policy.
func NewEstimator(policy Policy, logger zerolog.Logger) *Estimator {
	return &Estimator{policy: policy, logger: logger}
}

// Policy returns the estimator's policy.
func (e *Estimator) Policy() Policy {
	return e.policy
}

// Estimate returns the fee quote for an action. It never fails: a nil
// action, a non-positive recipient count or a negative length yields the
// policy's fallback quote.
func (e *Estimator) Estimate(a Action) Estimate {
	p := e.policy
	switch act := a.(type) {
	case Send:
		if act.MessageLen < 0 {
			return e.fallback(act.Kind(), "negative message length")
		}
		payload := uint64(p.TokenSectionSize)
		if act.MessageLen > 0 {
			payload += pushSize(act.MessageLen)
		}
		return e.quote(act.Kind(), p.size(txShape{
			inputs:      1,
			tokenInputs: 1,
			outputs:     3, // recipient, token change, fee change
			hasData:     true,
			dataPayload: payload,
		}), p.SafetyMarginPct)

	case Airdrop:
		if act.Recipients < 1 {
			return e.fallback(act.Kind(), "no recipients")
		}
		if act.MessageLen < 0 {
			return e.fallback(act.Kind(), "negative message length")
		}
		n := uint64(act.Recipients)
		fanout := uint64(1)
		if p.FanoutPerInput > 1 {
			fanout = uint64(p.FanoutPerInput)
		}
		s := txShape{
			inputs:  ceilDiv(n, fanout) + 1,
			outputs: n + 1, // recipients + change
		}
		if act.MessageLen > 0 {
			s.hasData = true
			s.dataPayload = pushSize(act.MessageLen)
		}
		margin := p.SafetyMarginPct
		if p.LargeBatchThreshold > 0 && act.Recipients >= p.LargeBatchThreshold {
			margin = p.LargeBatchMarginPct
		}
		return e.quote(act.Kind(), p.size(s), margin)

	case Message:
		if act.MessageLen < 0 {
			return e.fallback(act.Kind(), "negative message length")
		}
		return e.quote(act.Kind(), p.size(txShape{
			inputs:      1,
			outputs:     1, // change
			hasData:     true,
			dataPayload: pushSize(act.MessageLen),
		}), p.SafetyMarginPct)

	case Mint:
		return e.quote(act.Kind(), uint64(p.MintSize), p.SafetyMarginPct)

	case Burn:
		return e.quote(act.Kind(), uint64(p.BurnSize), p.SafetyMarginPct)

	case nil:
		return e.fallback("unknown", "nil action")

	default:
		return e.fallback(a.Kind(), "unsupported action")
	}
}

// quote prices size at the policy rate. The DustLimit floor applies once
// per transaction, not per output.
func (e *Estimator) quote(kind string, size uint64, marginPct int) Estimate {
	size = withMargin(size, marginPct)
	f := feeForSize(size, e.policy.FeeRatePerKB)
	if f < e.policy.DustLimit {
		f = e.policy.DustLimit
	}
	return Estimate{Kind: kind, Fee: amount.Atomic(f), Size: size}
}

func (e *Estimator) fallback(kind, reason string) Estimate {
	f := e.policy.FallbackFee
	if f < e.policy.DustLimit {
		f = e.policy.DustLimit
	}
	e.logger.Warn().
		Str("action", kind).
		Str("reason", reason).
		Uint64("fee", f).
		Msg("Fee estimate fell back to fixed quote")
	return Estimate{Kind: kind, Fee: amount.Atomic(f), Fallback: true}
}

// Affordable returns how many transactions with the given quote a balance
// can pay for.
func Affordable(balance amount.Atomic, est Estimate) uint64 {
	if est.Fee == 0 {
		return math.MaxUint64
	}
	return uint64(balance) / uint64(est.Fee)
}

// CanAfford reports whether balance covers sending value plus the quoted fee.
func CanAfford(balance, value amount.Atomic, est Estimate) bool {
	return amount.SufficientBalance(value, balance, est.Fee)
}

var defaultEstimator = NewEstimator(DefaultPolicy(), zerolog.Nop())

// EstimateAction quotes an action under DefaultPolicy.
func EstimateAction(a Action) Estimate {
	return defaultEstimator.Estimate(a)
}
