// tokencore-cli quotes fees, plans airdrops and handles token amounts and
// on-chain messages for eCash tokens.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jln-wallet/tokencore/config"
	"github.com/jln-wallet/tokencore/internal/log"
	"github.com/jln-wallet/tokencore/pkg/airdrop"
	"github.com/jln-wallet/tokencore/pkg/amount"
	"github.com/jln-wallet/tokencore/pkg/fee"
	"github.com/jln-wallet/tokencore/pkg/message"
	"github.com/jln-wallet/tokencore/pkg/types"
)

const version = "0.1.0"

// app carries the components wired from configuration.
type app struct {
	cfg         *config.Config
	estimator   *fee.Estimator
	distributor *airdrop.Distributor
	codec       *message.Codec
}

func main() {
	cfg, flags, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage()
			return
		}
		fatal("%v", err)
	}
	if flags.Help {
		usage()
		return
	}
	if flags.Version {
		fmt.Printf("tokencore-cli version %s\n", version)
		return
	}

	if err := log.Init(os.Stderr, cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}
	defer log.Close()
	types.SetAddressPrefix(cfg.AddressPrefix())

	a := &app{
		cfg:         cfg,
		estimator:   fee.NewEstimator(cfg.FeePolicy(), log.Fee),
		distributor: airdrop.NewDistributor(log.Airdrop),
		codec:       message.NewCodec(append(cfg.CodecOptions(), message.WithLogger(log.Message))...),
	}
	log.CLI.Debug().
		Str("network", string(cfg.Network)).
		Uint64("fee_rate", cfg.Fee.RatePerKB).
		Str("scheme", a.codec.Scheme().String()).
		Msg("Configuration loaded")

	if len(flags.Args) == 0 {
		usage()
		log.Close()
		os.Exit(1)
	}
	cmd, cmdArgs := flags.Args[0], flags.Args[1:]

	switch cmd {
	case "parse":
		a.cmdParse(cmdArgs)
	case "format":
		a.cmdFormat(cmdArgs)
	case "fee":
		a.cmdFee(cmdArgs)
	case "airdrop":
		a.cmdAirdrop(cmdArgs)
	case "size":
		a.cmdSize(cmdArgs)
	case "encrypt":
		a.cmdEncrypt(cmdArgs)
	case "decrypt":
		a.cmdDecrypt(cmdArgs)
	case "init":
		a.cmdInit()
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		log.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tokencore-cli [global flags] <command> [flags]

Global flags:
  --network <net>     mainnet (default) or testnet
  --testnet           Shorthand for --network=testnet
  --datadir <path>    Data directory (default: ~/.tokencore)
  --config, -c <path> Config file (default: <datadir>/tokencore.conf)
  --fee-rate <sats>   Fee rate per 1000 bytes (default: 1200)
  --scheme <name>     Message encryption: pbkdf2 (default) or argon2
  --log-level <lvl>   debug, info (default), warn, error
  --log-file <path>   Also write JSON logs to a file
  --log-json          Output logs as JSON
  --version           Show version information

Commands:
  parse <amount> [--decimals n]   Convert a decimal amount to atomic units
  format <atomic> [--decimals n] [--grouped]
                                  Convert atomic units to a decimal amount
  fee --kind <send|airdrop|mint|burn|message> [--recipients n]
      [--message <text>] [--encrypt] [--balance <xec>]
                                  Quote the network fee for an action
  airdrop --holders <file.json> --total <amount> [--decimals n]
      [--mode equal|prorata] [--min <amount>] [--min-payout <amount>]
      [--exclude a,b] [--json]    Plan a token airdrop
  size <message>                  Show message byte size and encrypted sizes
  encrypt <message>               Encrypt a message for on-chain use
  decrypt <payload>               Decrypt an on-chain message
  init                            Write a default config file
`)
}

// ── parse / format ──────────────────────────────────────────────────────

func (a *app) cmdParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	decimals := fs.Uint("decimals", amount.XECDecimals, "Token decimals (0-8)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: tokencore-cli parse <amount> [--decimals n]")
	}

	v, err := amount.Parse(fs.Arg(0), checkDecimals(*decimals))
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	fmt.Println(uint64(v))
}

func (a *app) cmdFormat(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	decimals := fs.Uint("decimals", amount.XECDecimals, "Token decimals (0-8)")
	grouped := fs.Bool("grouped", false, "Group thousands")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("Usage: tokencore-cli format <atomic> [--decimals n] [--grouped]")
	}
	dec := checkDecimals(*decimals)

	v, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		fatal("invalid atomic amount: %v", err)
	}
	if *grouped {
		fmt.Println(amount.FormatGrouped(amount.Atomic(v), dec))
		return
	}
	fmt.Println(amount.Format(amount.Atomic(v), dec))
}

// ── fee ─────────────────────────────────────────────────────────────────

func (a *app) cmdFee(args []string) {
	fs := flag.NewFlagSet("fee", flag.ExitOnError)
	kind := fs.String("kind", "send", "Action: send, airdrop, mint, burn, message")
	recipients := fs.Int("recipients", 1, "Airdrop recipient count")
	text := fs.String("message", "", "Attached message text")
	encrypt := fs.Bool("encrypt", false, "Size the message as encrypted")
	balanceStr := fs.String("balance", "", "XEC balance to check affordability against")
	fs.Parse(args)

	msgLen, err := messageLength(*text, a.cfg.Message.MaxBytes, *encrypt, a.codec.Scheme())
	if err != nil {
		fatal("message: %v", err)
	}
	action, err := buildAction(*kind, *recipients, msgLen)
	if err != nil {
		fatal("%v", err)
	}

	est := a.estimator.Estimate(action)
	fmt.Printf("Action:  %s\n", est.Kind)
	if est.Fallback {
		fmt.Printf("Size:    unknown (fixed quote)\n")
	} else {
		fmt.Printf("Size:    %d bytes\n", est.Size)
	}
	fmt.Printf("Fee:     %s (%d sats)\n", est, uint64(est.Fee))

	if *balanceStr != "" {
		bal, err := amount.Parse(*balanceStr, amount.XECDecimals)
		if err != nil {
			fatal("invalid balance: %v", err)
		}
		fmt.Printf("Covers:  %s transactions\n", amount.FormatGrouped(amount.Atomic(fee.Affordable(bal, est)), 0))
	}
}

// ── airdrop ─────────────────────────────────────────────────────────────

func (a *app) cmdAirdrop(args []string) {
	fs := flag.NewFlagSet("airdrop", flag.ExitOnError)
	holdersPath := fs.String("holders", "", "Holders JSON file")
	totalStr := fs.String("total", "", "Total to distribute")
	decimals := fs.Uint("decimals", 0, "Token decimals (0-8)")
	modeStr := fs.String("mode", a.cfg.Airdrop.Mode, "equal or prorata")
	minStr := fs.String("min", "", "Minimum holder balance to be eligible")
	minPayoutStr := fs.String("min-payout", "", "Drop recipients whose payout would be below this")
	exclude := fs.String("exclude", "", "Comma-separated addresses to exclude")
	asJSON := fs.Bool("json", false, "Print the plan as JSON")
	fs.Parse(args)

	if *holdersPath == "" || *totalStr == "" {
		fatal("Usage: tokencore-cli airdrop --holders <file.json> --total <amount> [flags]")
	}
	dec := checkDecimals(*decimals)

	data, err := os.ReadFile(*holdersPath)
	if err != nil {
		fatal("read holders file: %v", err)
	}
	holders, err := parseHolders(data)
	if err != nil {
		fatal("%v", err)
	}

	mode, err := airdrop.ParseMode(*modeStr)
	if err != nil {
		fatal("%v", err)
	}
	req := airdrop.Request{
		Mode:    mode,
		Prefix:  a.cfg.AddressPrefix(),
		Exclude: append(append([]string(nil), a.cfg.Airdrop.Exclude...), parseList(*exclude)...),
	}
	if req.Total, err = amount.Parse(*totalStr, dec); err != nil {
		fatal("invalid total: %v", err)
	}
	if *minStr != "" {
		if req.MinEligible, err = amount.Parse(*minStr, dec); err != nil {
			fatal("invalid minimum balance: %v", err)
		}
	}
	req.MinPayout = amount.Atomic(a.cfg.Airdrop.MinPayout)
	if *minPayoutStr != "" {
		if req.MinPayout, err = amount.Parse(*minPayoutStr, dec); err != nil {
			fatal("invalid minimum payout: %v", err)
		}
	}

	plan, err := a.distributor.Distribute(req, holders)
	if err != nil {
		fatal("plan airdrop: %v", err)
	}

	var est fee.Estimate
	if !plan.IsEmpty() {
		est = a.estimator.Estimate(fee.Airdrop{Recipients: len(plan.Payouts)})
	}

	if *asJSON {
		out := struct {
			*airdrop.Plan
			Fee *fee.Estimate `json:"fee,omitempty"`
		}{Plan: plan}
		if !plan.IsEmpty() {
			out.Fee = &est
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fatal("encode plan: %v", err)
		}
		return
	}

	if plan.IsEmpty() {
		fmt.Printf("No eligible holders (%d holders, %d eligible)\n", len(holders), plan.EligibleCount)
		return
	}
	fmt.Printf("Mode:        %s\n", plan.Mode)
	fmt.Printf("Total:       %s\n", amount.FormatGrouped(plan.Total, dec))
	fmt.Printf("Recipients:  %d of %d eligible", len(plan.Payouts), plan.EligibleCount)
	if plan.Dropped > 0 {
		fmt.Printf(" (%d below minimum payout)", plan.Dropped)
	}
	fmt.Println()
	fmt.Printf("Fingerprint: %s\n", plan.Fingerprint)
	fmt.Printf("Network fee: %s\n\n", est)

	fmt.Printf("%-56s %22s %8s\n", "ADDRESS", "AMOUNT", "SHARE")
	for i, po := range plan.Payouts {
		fmt.Printf("%-56s %22s %7s%%\n", po.Address, amount.FormatGrouped(po.Amount, dec), plan.Share(i))
	}
}

// ── messages ────────────────────────────────────────────────────────────

func (a *app) cmdSize(args []string) {
	if len(args) != 1 {
		fatal("Usage: tokencore-cli size <message>")
	}
	limit := a.cfg.Message.MaxBytes
	n, err := message.ValidateSize(args[0], limit)
	var se *message.SizeError
	if err != nil && !errors.As(err, &se) {
		fatal("%v", err)
	}

	fmt.Printf("Plain:  %d / %d bytes\n", n, limit)
	for _, s := range []message.Scheme{message.SchemePBKDF2, message.SchemeArgon2} {
		size := message.EncryptedSize(int(n), s)
		status := "ok"
		if size > int(limit) {
			status = "too large"
		}
		fmt.Printf("%-7s %d / %d bytes (%s)\n", s.Prefix(), size, limit, status)
	}
	if se != nil {
		log.Close()
		os.Exit(1)
	}
}

func (a *app) cmdEncrypt(args []string) {
	if len(args) != 1 {
		fatal("Usage: tokencore-cli encrypt <message>")
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if password != confirm {
		fatal("passwords do not match")
	}

	done := log.Timed(log.Message, "encrypt")
	payload, err := a.codec.Seal(args[0], password, a.cfg.Message.MaxBytes)
	done()
	if err != nil {
		fatal("encrypt: %v", err)
	}
	fmt.Println(payload)
}

func (a *app) cmdDecrypt(args []string) {
	if len(args) != 1 {
		fatal("Usage: tokencore-cli decrypt <payload>")
	}
	if !message.IsEncrypted(args[0]) {
		fmt.Println(args[0])
		return
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	done := log.Timed(log.Message, "decrypt")
	plain, err := a.codec.Open(args[0], password)
	done()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(plain)
}

// ── init ────────────────────────────────────────────────────────────────

func (a *app) cmdInit() {
	if err := os.MkdirAll(a.cfg.DataDir, 0755); err != nil {
		fatal("create data dir: %v", err)
	}
	path := a.cfg.ConfigFile()
	if _, err := os.Stat(path); err == nil {
		fatal("config file already exists: %s", path)
	}
	if err := config.WriteDefaultConfig(path, a.cfg.Network); err != nil {
		fatal("write config: %v", err)
	}
	fmt.Printf("Wrote %s\n", filepath.Clean(path))
}

func checkDecimals(d uint) uint8 {
	if d > amount.MaxDecimals {
		fatal("invalid decimals: %d (max %d)", d, amount.MaxDecimals)
	}
	return uint8(d)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	log.Close()
	os.Exit(1)
}
