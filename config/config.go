// Package config handles tokencore configuration.
//
// Values are resolved in order: network defaults, config file, flags.
// Fee constants live here rather than in code so a network fee change
// needs no rebuild.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/jln-wallet/tokencore/pkg/fee"
	"github.com/jln-wallet/tokencore/pkg/message"
	"github.com/jln-wallet/tokencore/pkg/types"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Fee     FeeConfig
	Message MessageConfig
	Airdrop AirdropConfig
	Log     LogConfig
}

// FeeConfig holds the fee policy. Sizes are bytes, amounts are sats.
type FeeConfig struct {
	RatePerKB        uint64 `conf:"fee.rate_per_kb"`
	Dust             uint64 `conf:"fee.dust"`
	Overhead         int    `conf:"fee.overhead"`
	InputSize        int    `conf:"fee.input_size"`
	TokenInputSize   int    `conf:"fee.token_input_size"`
	OutputSize       int    `conf:"fee.output_size"`
	OpReturnOverhead int    `conf:"fee.opreturn_overhead"`
	TokenSectionSize int    `conf:"fee.token_section_size"`
	Fanout           int    `conf:"fee.fanout"`
	MarginPct        int    `conf:"fee.margin_pct"`
	LargeBatch       int    `conf:"fee.large_batch"`
	LargeMarginPct   int    `conf:"fee.large_margin_pct"`
	MintSize         int    `conf:"fee.mint_size"`
	BurnSize         int    `conf:"fee.burn_size"`
	Fallback         uint64 `conf:"fee.fallback"`
}

// MessageConfig holds message size and encryption settings.
type MessageConfig struct {
	MaxBytes          uint32 `conf:"message.max_bytes"`
	Scheme            string `conf:"message.scheme"` // pbkdf2 or argon2
	Argon2Memory      uint32 `conf:"message.argon_memory"`
	Argon2Iterations  uint32 `conf:"message.argon_iterations"`
	Argon2Parallelism uint8  `conf:"message.argon_parallelism"`
}

// AirdropConfig holds distribution defaults.
type AirdropConfig struct {
	Mode      string   `conf:"airdrop.mode"`
	MinPayout uint64   `conf:"airdrop.min_payout"`
	Exclude   []string `conf:"airdrop.exclude"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// FeePolicy returns the fee policy for the estimator.
func (c *Config) FeePolicy() fee.Policy {
	f := c.Fee
	return fee.Policy{
		FeeRatePerKB:        f.RatePerKB,
		DustLimit:           f.Dust,
		BaseOverhead:        f.Overhead,
		InputSize:           f.InputSize,
		TokenInputSize:      f.TokenInputSize,
		OutputSize:          f.OutputSize,
		OpReturnOverhead:    f.OpReturnOverhead,
		TokenSectionSize:    f.TokenSectionSize,
		FanoutPerInput:      f.Fanout,
		SafetyMarginPct:     f.MarginPct,
		LargeBatchThreshold: f.LargeBatch,
		LargeBatchMarginPct: f.LargeMarginPct,
		MintSize:            f.MintSize,
		BurnSize:            f.BurnSize,
		FallbackFee:         f.Fallback,
	}
}

// CodecOptions returns the message codec options. Callers append their own
// logger or random source.
func (c *Config) CodecOptions() []message.Option {
	// Validate has already rejected unknown schemes.
	scheme, _ := message.ParseScheme(c.Message.Scheme)
	return []message.Option{
		message.WithScheme(scheme),
		message.WithArgon2Params(c.Argon2Params()),
	}
}

// Argon2Params returns the configured Argon2id cost.
func (c *Config) Argon2Params() message.Argon2Params {
	return message.Argon2Params{
		Memory:      c.Message.Argon2Memory,
		Iterations:  c.Message.Argon2Iterations,
		Parallelism: c.Message.Argon2Parallelism,
	}
}

// AddressPrefix returns the cashaddr prefix of the network.
func (c *Config) AddressPrefix() string {
	if c.Network == Testnet {
		return types.TestnetPrefix
	}
	return types.MainnetPrefix
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.tokencore
//	macOS:   ~/Library/Application Support/Tokencore
//	Windows: %APPDATA%\Tokencore
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tokencore"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Tokencore")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Tokencore")
		}
		return filepath.Join(home, "AppData", "Roaming", "Tokencore")
	default:
		return filepath.Join(home, ".tokencore")
	}
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "tokencore.conf")
}
