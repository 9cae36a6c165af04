package fee

import (
	"errors"
	"fmt"
)

// Policy holds the network fee rules and the empirical size constants used
// by the estimator. All sizes are in bytes, amounts in sats.
type Policy struct {
	FeeRatePerKB uint64 // sats per 1000 bytes
	DustLimit    uint64 // minimum relayable output value, and the fee floor

	BaseOverhead     int // version(4) + locktime(4) + input count(1) + output count(1)
	InputSize        int // outpoint(36) + script len(1) + P2PKH scriptSig(107) + sequence(4)
	TokenInputSize   int // input carrying a token or mint baton
	OutputSize       int // value(8) + script len(1) + P2PKH script(25)
	OpReturnOverhead int // value(8) + script len(1) + OP_RETURN(1)
	TokenSectionSize int // eMPP marker plus the pushed ALP section

	FanoutPerInput      int // recipients one funding input covers
	SafetyMarginPct     int
	LargeBatchThreshold int // recipient count at which LargeBatchMarginPct applies
	LargeBatchMarginPct int

	MintSize int // canonical mint transaction size
	BurnSize int // canonical burn transaction size

	FallbackFee uint64 // quote used when the action cannot be modelled
}

// DefaultPolicy returns the eCash mainnet fee policy.
func DefaultPolicy() Policy {
	return Policy{
		FeeRatePerKB: 1200,
		DustLimit:    546,

		BaseOverhead:     10,
		InputSize:        148,
		TokenInputSize:   180,
		OutputSize:       34,
		OpReturnOverhead: 10,
		TokenSectionSize: 57,

		FanoutPerInput:      5,
		SafetyMarginPct:     10,
		LargeBatchThreshold: 100,
		LargeBatchMarginPct: 15,

		// mint: overhead + baton input + fee input + data(10+57) + token, baton, change outputs
		MintSize: 510,
		// burn: overhead + token input + fee input + data(10+57) + change output
		BurnSize: 440,

		FallbackFee: 2000,
	}
}

// Policy validation errors.
var (
	ErrZeroFeeRate = errors.New("fee rate must be positive")
	ErrBadSize     = errors.New("size constant must be positive")
	ErrBadMargin   = errors.New("safety margin out of range")
)

// Validate checks the policy for values the estimator cannot work with.
func (p Policy) Validate() error {
	if p.FeeRatePerKB == 0 {
		return ErrZeroFeeRate
	}
	sizes := []struct {
		name string
		v    int
	}{
		{"base_overhead", p.BaseOverhead},
		{"input_size", p.InputSize},
		{"token_input_size", p.TokenInputSize},
		{"output_size", p.OutputSize},
		{"opreturn_overhead", p.OpReturnOverhead},
		{"token_section_size", p.TokenSectionSize},
		{"fanout", p.FanoutPerInput},
		{"mint_size", p.MintSize},
		{"burn_size", p.BurnSize},
	}
	for _, s := range sizes {
		if s.v <= 0 {
			return fmt.Errorf("%w: %s = %d", ErrBadSize, s.name, s.v)
		}
	}
	if p.SafetyMarginPct < 0 || p.SafetyMarginPct > 100 {
		return fmt.Errorf("%w: margin %d%%", ErrBadMargin, p.SafetyMarginPct)
	}
	if p.LargeBatchMarginPct < p.SafetyMarginPct || p.LargeBatchMarginPct > 100 {
		return fmt.Errorf("%w: large batch margin %d%% (base %d%%)", ErrBadMargin, p.LargeBatchMarginPct, p.SafetyMarginPct)
	}
	return nil
}
