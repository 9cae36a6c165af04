package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"syscall"

	"github.com/jln-wallet/tokencore/pkg/airdrop"
	"github.com/jln-wallet/tokencore/pkg/fee"
	"github.com/jln-wallet/tokencore/pkg/message"
	"golang.org/x/term"
)

// holderRecord is one entry of a holders file. Balances may be JSON numbers
// or decimal strings, since indexers emit both.
type holderRecord struct {
	Address string          `json:"address"`
	Balance json.RawMessage `json:"balance"`
}

// parseHolders decodes a holders file: a JSON array of
// {"address": "...", "balance": "123"} objects with atomic balances.
func parseHolders(data []byte) ([]airdrop.Holder, error) {
	var recs []holderRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse holders JSON: %w", err)
	}
	out := make([]airdrop.Holder, 0, len(recs))
	for i, r := range recs {
		raw := string(bytes.TrimSpace(r.Balance))
		raw = strings.Trim(raw, `"`)
		if raw == "" || raw == "null" {
			return nil, fmt.Errorf("holder %d: %w: balance is missing", i, airdrop.ErrMalformedHolderBalance)
		}
		bal, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("holder %d: %w: %q is not an integer", i, airdrop.ErrMalformedHolderBalance, raw)
		}
		out = append(out, airdrop.Holder{Address: r.Address, Balance: bal})
	}
	return out, nil
}

// buildAction maps fee command flags to an action.
func buildAction(kind string, recipients int, messageLen int) (fee.Action, error) {
	switch strings.ToLower(kind) {
	case "send":
		return fee.Send{MessageLen: messageLen}, nil
	case "airdrop":
		return fee.Airdrop{Recipients: recipients, MessageLen: messageLen}, nil
	case "mint":
		return fee.Mint{}, nil
	case "burn":
		return fee.Burn{}, nil
	case "message":
		return fee.Message{MessageLen: messageLen}, nil
	default:
		return nil, fmt.Errorf("unknown action %q (send, airdrop, mint, burn, message)", kind)
	}
}

// messageLength returns the byte length a note will occupy on chain. An
// encrypted note is measured after encryption.
func messageLength(text string, maxBytes uint32, encrypted bool, scheme message.Scheme) (int, error) {
	if text == "" {
		return 0, nil
	}
	n, err := message.ValidateSize(text, maxBytes)
	if err != nil {
		return 0, err
	}
	if !encrypted {
		return int(n), nil
	}
	size := message.EncryptedSize(int(n), scheme)
	if size > int(maxBytes) {
		return 0, &message.SizeError{Actual: uint32(size), Max: maxBytes}
	}
	return size, nil
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stdinLines is shared by every piped read so that buffered input left
// over from one read is seen by the next.
var stdinLines = bufio.NewReader(os.Stdin)

// readPassword prompts on stderr and reads without echo. When stdin is not
// a terminal, one line is read instead so passwords can be piped.
func readPassword(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return readLine(stdinLines)
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
