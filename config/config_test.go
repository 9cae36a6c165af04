package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jln-wallet/tokencore/pkg/fee"
	"github.com/jln-wallet/tokencore/pkg/message"
	"github.com/jln-wallet/tokencore/pkg/types"
)

func TestDefault_Valid(t *testing.T) {
	for _, n := range []NetworkType{Mainnet, Testnet} {
		cfg := Default(n)
		if err := Validate(cfg); err != nil {
			t.Fatalf("Validate(Default(%s)) error: %v", n, err)
		}
		if cfg.FeePolicy() != fee.DefaultPolicy() {
			t.Errorf("%s: FeePolicy() = %+v, want defaults", n, cfg.FeePolicy())
		}
	}
}

func TestAddressPrefix(t *testing.T) {
	if got := Default(Mainnet).AddressPrefix(); got != types.MainnetPrefix {
		t.Errorf("mainnet prefix = %q", got)
	}
	if got := Default(Testnet).AddressPrefix(); got != types.TestnetPrefix {
		t.Errorf("testnet prefix = %q", got)
	}
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokencore.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConf(t, `
# comment
fee.rate_per_kb = 2000
message.scheme = "argon2"
log.json = yes
airdrop.exclude = ecash:qzrpf4j09vpa9hf9h4w209hvefex9ysng5yectwda9, 
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if values["message.scheme"] != "argon2" {
		t.Errorf("quotes not stripped: %q", values["message.scheme"])
	}

	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if cfg.Fee.RatePerKB != 2000 || !cfg.Log.JSON || cfg.Message.Scheme != "argon2" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Airdrop.Exclude) != 1 {
		t.Errorf("Exclude = %v, want one entry", cfg.Airdrop.Exclude)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := writeConf(t, "fee.dust 546\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("LoadFile() error = %v, want line 1 error", err)
	}
}

func TestApplyFileConfig_BadNumber(t *testing.T) {
	tests := map[string]string{
		"fee.rate_per_kb":           "-1",
		"fee.input_size":            "big",
		"message.max_bytes":         "4294967296",
		"message.argon_parallelism": "256",
	}
	for key, value := range tests {
		cfg := DefaultMainnet()
		if err := ApplyFileConfig(cfg, map[string]string{key: value}); err == nil {
			t.Errorf("ApplyFileConfig(%s=%s) should fail", key, value)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad network", func(c *Config) { c.Network = "regtest" }},
		{"zero fee rate", func(c *Config) { c.Fee.RatePerKB = 0 }},
		{"zero fanout", func(c *Config) { c.Fee.Fanout = 0 }},
		{"margin too high", func(c *Config) { c.Fee.MarginPct = 101 }},
		{"zero max bytes", func(c *Config) { c.Message.MaxBytes = 0 }},
		{"unknown scheme", func(c *Config) { c.Message.Scheme = "xor" }},
		{"argon zero iterations", func(c *Config) {
			c.Message.Scheme = "argon2"
			c.Message.Argon2Iterations = 0
		}},
		{"unknown airdrop mode", func(c *Config) { c.Airdrop.Mode = "lottery" }},
		{"bad exclude address", func(c *Config) { c.Airdrop.Exclude = []string{"ecash:notanaddress"} }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should fail")
	}
}

func TestCodecOptions(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.Message.Scheme = "argon2"
	cfg.Message.Argon2Memory = 64
	cfg.Message.Argon2Iterations = 1
	cfg.Message.Argon2Parallelism = 1

	c := message.NewCodec(cfg.CodecOptions()...)
	if c.Scheme() != message.SchemeArgon2 {
		t.Fatalf("Scheme() = %v, want argon2", c.Scheme())
	}
	ct, err := c.Encrypt("hi", "pw")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if ct.Params != cfg.Argon2Params() {
		t.Errorf("Params = %+v, want %+v", ct.Params, cfg.Argon2Params())
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--testnet", "--fee-rate", "1500", "--log-json=false", "fee", "--kind", "send"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}
	if f.Network != "testnet" || f.FeeRate != 1500 || !f.SetLogJSON {
		t.Errorf("flags = %+v", f)
	}
	if strings.Join(f.Args, " ") != "fee --kind send" {
		t.Errorf("Args = %v", f.Args)
	}

	if _, err := ParseFlags([]string{"--no-such-flag"}, io.Discard); err == nil {
		t.Error("ParseFlags() should reject unknown flags")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	conf := "fee.rate_per_kb = 2000\nfee.dust = 600\nlog.level = warn\n"
	if err := os.WriteFile(filepath.Join(dir, "tokencore.conf"), []byte(conf), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg, _, err := Load([]string{"--datadir", dir, "--fee-rate", "3000", "parse"}, io.Discard)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Fee.RatePerKB != 3000 {
		t.Errorf("RatePerKB = %d, want flag value 3000", cfg.Fee.RatePerKB)
	}
	if cfg.Fee.Dust != 600 || cfg.Log.Level != "warn" {
		t.Errorf("file values not applied: dust %d level %s", cfg.Fee.Dust, cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConf(t, "log.level = loud\n")
	if _, _, err := Load([]string{"--config", path}, io.Discard); err == nil {
		t.Error("Load() should fail validation")
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokencore.conf")
	if err := WriteDefaultConfig(path, Testnet); err != nil {
		t.Fatalf("WriteDefaultConfig() error: %v", err)
	}
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if cfg.Network != Testnet {
		t.Errorf("Network = %s, want testnet", cfg.Network)
	}
	if cfg.FeePolicy() != fee.DefaultPolicy() {
		t.Errorf("written defaults differ: %+v", cfg.FeePolicy())
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}
