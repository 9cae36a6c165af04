// Package types defines the address primitives shared by the token core.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// HashSize is the length of an address hash in bytes.
const HashSize = 20

// Address prefixes for cashaddr encoding.
const (
	MainnetPrefix = "ecash"
	TestnetPrefix = "ectest"
)

// activePrefix is the prefix assumed for addresses given without one.
// Set once at startup via SetAddressPrefix(), before any concurrent use.
// Default is mainnet. Code that must not depend on it passes a prefix to
// NormalizeAddressPrefix instead.
var activePrefix = MainnetPrefix

// SetAddressPrefix sets the active address prefix. It is not safe to call
// concurrently with address parsing; call it once at startup.
func SetAddressPrefix(prefix string) {
	activePrefix = strings.ToLower(prefix)
}

// GetAddressPrefix returns the currently active address prefix.
func GetAddressPrefix() string {
	return activePrefix
}

// AddressType is the script template an address pays to.
type AddressType uint8

const (
	P2PKH AddressType = 0
	P2SH  AddressType = 1
)

// String returns the lowercase type name.
func (t AddressType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2SH:
		return "p2sh"
	default:
		return fmt.Sprintf("type%d", uint8(t))
	}
}

// Address is a decoded cashaddr: prefix, type and 160-bit hash.
type Address struct {
	Prefix string
	Type   AddressType
	Hash   [HashSize]byte
}

// NewAddress builds an address with the active prefix.
func NewAddress(t AddressType, hash [HashSize]byte) Address {
	return Address{Prefix: activePrefix, Type: t, Hash: hash}
}

// String returns the cashaddr form (e.g. "ecash:qz...").
func (a Address) String() string {
	prefix := a.Prefix
	if prefix == "" {
		prefix = activePrefix
	}
	// Version byte: type in bits 3-6, size code 0 (160-bit hash).
	payload := make([]byte, 0, 1+HashSize)
	payload = append(payload, byte(a.Type)<<3)
	payload = append(payload, a.Hash[:]...)
	s, err := CashaddrEncode(prefix, payload)
	if err != nil {
		return prefix + ":" + hex.EncodeToString(a.Hash[:])
	}
	return s
}

// MarshalJSON encodes the address as a cashaddr string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a cashaddr string into an address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses a cashaddr string, with or without its prefix.
// Addresses without a prefix are checked against the active prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, fmt.Errorf("empty address")
	}
	prefix, payload, err := CashaddrDecode(s, activePrefix)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address: %w", err)
	}
	if len(payload) != 1+HashSize {
		return Address{}, fmt.Errorf("address payload must be %d bytes, got %d", 1+HashSize, len(payload))
	}
	version := payload[0]
	if version&0x07 != 0 {
		return Address{}, fmt.Errorf("unsupported address hash size code %d", version&0x07)
	}
	if version&0x80 != 0 {
		return Address{}, fmt.Errorf("invalid address version byte 0x%02x", version)
	}
	a := Address{Prefix: prefix, Type: AddressType(version >> 3)}
	copy(a.Hash[:], payload[1:])
	return a, nil
}

// NormalizeAddress returns the canonical comparison key for an address
// string: trimmed, lowercased and carrying the active prefix when none was
// given. It does not validate the checksum; use ParseAddress for that.
func NormalizeAddress(s string) string {
	return NormalizeAddressPrefix(s, activePrefix)
}

// NormalizeAddressPrefix is NormalizeAddress with an explicit default
// prefix. It reads no package state.
func NormalizeAddressPrefix(s, prefix string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ":") {
		return strings.ToLower(prefix) + ":" + s
	}
	return s
}
