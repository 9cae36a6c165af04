package config

import (
	"github.com/jln-wallet/tokencore/pkg/fee"
	"github.com/jln-wallet/tokencore/pkg/message"
)

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	p := fee.DefaultPolicy()
	argon := message.DefaultArgon2Params()
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Fee: FeeConfig{
			RatePerKB:        p.FeeRatePerKB,
			Dust:             p.DustLimit,
			Overhead:         p.BaseOverhead,
			InputSize:        p.InputSize,
			TokenInputSize:   p.TokenInputSize,
			OutputSize:       p.OutputSize,
			OpReturnOverhead: p.OpReturnOverhead,
			TokenSectionSize: p.TokenSectionSize,
			Fanout:           p.FanoutPerInput,
			MarginPct:        p.SafetyMarginPct,
			LargeBatch:       p.LargeBatchThreshold,
			LargeMarginPct:   p.LargeBatchMarginPct,
			MintSize:         p.MintSize,
			BurnSize:         p.BurnSize,
			Fallback:         p.FallbackFee,
		},
		Message: MessageConfig{
			MaxBytes:          message.MaxMessageBytes,
			Scheme:            message.SchemePBKDF2.String(),
			Argon2Memory:      argon.Memory,
			Argon2Iterations:  argon.Iterations,
			Argon2Parallelism: argon.Parallelism,
		},
		Airdrop: AirdropConfig{
			Mode: "equal",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet. Testnet
// shares the mainnet fee rules.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
