package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file. A missing file yields
// no values.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	var err error
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// Fee policy
	case "fee.rate_per_kb":
		cfg.Fee.RatePerKB, err = parseUint(value, 64)
	case "fee.dust":
		cfg.Fee.Dust, err = parseUint(value, 64)
	case "fee.fallback":
		cfg.Fee.Fallback, err = parseUint(value, 64)
	case "fee.overhead":
		cfg.Fee.Overhead, err = strconv.Atoi(value)
	case "fee.input_size":
		cfg.Fee.InputSize, err = strconv.Atoi(value)
	case "fee.token_input_size":
		cfg.Fee.TokenInputSize, err = strconv.Atoi(value)
	case "fee.output_size":
		cfg.Fee.OutputSize, err = strconv.Atoi(value)
	case "fee.opreturn_overhead":
		cfg.Fee.OpReturnOverhead, err = strconv.Atoi(value)
	case "fee.token_section_size":
		cfg.Fee.TokenSectionSize, err = strconv.Atoi(value)
	case "fee.fanout":
		cfg.Fee.Fanout, err = strconv.Atoi(value)
	case "fee.margin_pct":
		cfg.Fee.MarginPct, err = strconv.Atoi(value)
	case "fee.large_batch":
		cfg.Fee.LargeBatch, err = strconv.Atoi(value)
	case "fee.large_margin_pct":
		cfg.Fee.LargeMarginPct, err = strconv.Atoi(value)
	case "fee.mint_size":
		cfg.Fee.MintSize, err = strconv.Atoi(value)
	case "fee.burn_size":
		cfg.Fee.BurnSize, err = strconv.Atoi(value)

	// Messages
	case "message.max_bytes":
		var n uint64
		n, err = parseUint(value, 32)
		cfg.Message.MaxBytes = uint32(n)
	case "message.scheme":
		cfg.Message.Scheme = strings.ToLower(value)
	case "message.argon_memory":
		var n uint64
		n, err = parseUint(value, 32)
		cfg.Message.Argon2Memory = uint32(n)
	case "message.argon_iterations":
		var n uint64
		n, err = parseUint(value, 32)
		cfg.Message.Argon2Iterations = uint32(n)
	case "message.argon_parallelism":
		var n uint64
		n, err = parseUint(value, 8)
		cfg.Message.Argon2Parallelism = uint8(n)

	// Airdrop
	case "airdrop.mode":
		cfg.Airdrop.Mode = strings.ToLower(value)
	case "airdrop.min_payout":
		cfg.Airdrop.MinPayout, err = parseUint(value, 64)
	case "airdrop.exclude":
		cfg.Airdrop.Exclude = parseStringList(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return err
}

func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, bits)
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	d := Default(network)
	content := `# tokencore configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# ============================================================================
# Fees (sats, sizes in bytes)
# ============================================================================

fee.rate_per_kb = ` + strconv.FormatUint(d.Fee.RatePerKB, 10) + `
fee.dust = ` + strconv.FormatUint(d.Fee.Dust, 10) + `
fee.fallback = ` + strconv.FormatUint(d.Fee.Fallback, 10) + `
fee.margin_pct = ` + strconv.Itoa(d.Fee.MarginPct) + `
fee.large_batch = ` + strconv.Itoa(d.Fee.LargeBatch) + `
fee.large_margin_pct = ` + strconv.Itoa(d.Fee.LargeMarginPct) + `
# fee.overhead = ` + strconv.Itoa(d.Fee.Overhead) + `
# fee.input_size = ` + strconv.Itoa(d.Fee.InputSize) + `
# fee.token_input_size = ` + strconv.Itoa(d.Fee.TokenInputSize) + `
# fee.output_size = ` + strconv.Itoa(d.Fee.OutputSize) + `
# fee.opreturn_overhead = ` + strconv.Itoa(d.Fee.OpReturnOverhead) + `
# fee.token_section_size = ` + strconv.Itoa(d.Fee.TokenSectionSize) + `
# fee.fanout = ` + strconv.Itoa(d.Fee.Fanout) + `
# fee.mint_size = ` + strconv.Itoa(d.Fee.MintSize) + `
# fee.burn_size = ` + strconv.Itoa(d.Fee.BurnSize) + `

# ============================================================================
# Messages
# ============================================================================

message.max_bytes = ` + strconv.FormatUint(uint64(d.Message.MaxBytes), 10) + `
# pbkdf2 (ENC:, readable by all clients) or argon2 (ENCX:)
message.scheme = ` + d.Message.Scheme + `
# message.argon_memory = ` + strconv.FormatUint(uint64(d.Message.Argon2Memory), 10) + `
# message.argon_iterations = ` + strconv.FormatUint(uint64(d.Message.Argon2Iterations), 10) + `
# message.argon_parallelism = ` + strconv.FormatUint(uint64(d.Message.Argon2Parallelism), 10) + `

# ============================================================================
# Airdrops
# ============================================================================

# equal or prorata
airdrop.mode = ` + d.Airdrop.Mode + `
# airdrop.min_payout = 0
# airdrop.exclude = ecash:qq...,ecash:qp...

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
