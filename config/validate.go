package config

import (
	"fmt"

	"github.com/jln-wallet/tokencore/internal/log"
	"github.com/jln-wallet/tokencore/pkg/airdrop"
	"github.com/jln-wallet/tokencore/pkg/message"
	"github.com/jln-wallet/tokencore/pkg/types"
)

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if err := cfg.FeePolicy().Validate(); err != nil {
		return fmt.Errorf("fee: %w", err)
	}

	if cfg.Message.MaxBytes == 0 {
		return fmt.Errorf("message.max_bytes must be positive")
	}
	scheme, err := message.ParseScheme(cfg.Message.Scheme)
	if err != nil {
		return fmt.Errorf("message.scheme: %w", err)
	}
	if scheme == message.SchemeArgon2 {
		if err := cfg.Argon2Params().Validate(); err != nil {
			return fmt.Errorf("message: %w", err)
		}
	}

	if _, err := airdrop.ParseMode(cfg.Airdrop.Mode); err != nil {
		return fmt.Errorf("airdrop.mode: %w", err)
	}
	prefix := cfg.AddressPrefix()
	for i, a := range cfg.Airdrop.Exclude {
		if _, _, err := types.CashaddrDecode(a, prefix); err != nil {
			return fmt.Errorf("airdrop.exclude[%d]: %w", i, err)
		}
	}

	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be one of %v", log.Levels)
	}
	return nil
}
