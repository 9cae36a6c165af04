package types

import (
	"fmt"
	"strings"
)

// Cashaddr uses the bech32 character set with a 40-bit BCH checksum.
const cashaddrCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const cashaddrChecksumLen = 8

// cashaddrCharsetRev maps charset characters to their 5-bit values. -1 = invalid.
var cashaddrCharsetRev [128]int8

func init() {
	for i := range cashaddrCharsetRev {
		cashaddrCharsetRev[i] = -1
	}
	for i, c := range cashaddrCharset {
		cashaddrCharsetRev[c] = int8(i)
	}
}

// CashaddrEncode encodes a prefix and payload (version byte followed by the
// hash) into "prefix:payload" form.
func CashaddrEncode(prefix string, payload []byte) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("cashaddr: empty prefix")
	}
	prefix = strings.ToLower(prefix)
	for _, c := range prefix {
		if c < 'a' || c > 'z' {
			if c < '0' || c > '9' {
				return "", fmt.Errorf("cashaddr: invalid prefix character %q", c)
			}
		}
	}

	conv, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("cashaddr: convert bits: %w", err)
	}

	chk := cashaddrChecksum(prefix, conv)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(conv) + cashaddrChecksumLen)
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, b := range conv {
		sb.WriteByte(cashaddrCharset[b])
	}
	for _, b := range chk {
		sb.WriteByte(cashaddrCharset[b])
	}
	return sb.String(), nil
}

// CashaddrDecode decodes "prefix:payload" into the prefix and payload bytes.
// A string without a prefix is checked against defaultPrefix.
func CashaddrDecode(s, defaultPrefix string) (string, []byte, error) {
	if s == "" {
		return "", nil, fmt.Errorf("cashaddr: empty string")
	}

	hasUpper := false
	hasLower := false
	for _, c := range s {
		if c >= 'A' && c <= 'Z' {
			hasUpper = true
		}
		if c >= 'a' && c <= 'z' {
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return "", nil, fmt.Errorf("cashaddr: mixed case")
	}
	s = strings.ToLower(s)

	prefix, dataStr, ok := strings.Cut(s, ":")
	if !ok {
		prefix, dataStr = strings.ToLower(defaultPrefix), s
	}
	if prefix == "" {
		return "", nil, fmt.Errorf("cashaddr: missing prefix")
	}
	if len(dataStr) <= cashaddrChecksumLen {
		return "", nil, fmt.Errorf("cashaddr: too short")
	}

	data5 := make([]byte, len(dataStr))
	for i, c := range dataStr {
		if c > 127 || cashaddrCharsetRev[c] < 0 {
			return "", nil, fmt.Errorf("cashaddr: invalid character %q", c)
		}
		data5[i] = byte(cashaddrCharsetRev[c])
	}

	if cashaddrPolymod(append(cashaddrPrefixExpand(prefix), data5...)) != 0 {
		return "", nil, fmt.Errorf("cashaddr: invalid checksum")
	}

	data8, err := convertBits(data5[:len(data5)-cashaddrChecksumLen], 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("cashaddr: convert bits: %w", err)
	}
	return prefix, data8, nil
}

// cashaddrPolymod computes the 40-bit BCH checksum, already XORed with 1.
func cashaddrPolymod(values []byte) uint64 {
	gen := [5]uint64{0x98f2bc8e61, 0x79b76d99e2, 0xf33e5fb3c4, 0xae2eabe2a8, 0x1e4f43e470}
	c := uint64(1)
	for _, v := range values {
		top := c >> 35
		c = (c&0x07ffffffff)<<5 ^ uint64(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				c ^= gen[i]
			}
		}
	}
	return c ^ 1
}

// cashaddrPrefixExpand maps the prefix to its low 5 bits plus a zero separator.
func cashaddrPrefixExpand(prefix string) []byte {
	ret := make([]byte, 0, len(prefix)+1)
	for _, c := range prefix {
		ret = append(ret, byte(c&31))
	}
	return append(ret, 0)
}

func cashaddrChecksum(prefix string, data []byte) []byte {
	values := append(cashaddrPrefixExpand(prefix), data...)
	values = append(values, make([]byte, cashaddrChecksumLen)...)
	mod := cashaddrPolymod(values)
	ret := make([]byte, cashaddrChecksumLen)
	for i := 0; i < cashaddrChecksumLen; i++ {
		ret[i] = byte((mod >> uint(5*(7-i))) & 31)
	}
	return ret
}

// convertBits converts between bit groups.
// fromBits/toBits are the source/destination group sizes (e.g. 8 and 5).
// pad controls whether incomplete groups are zero-padded.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	maxv := uint32((1 << toBits) - 1)
	var ret []byte

	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, fmt.Errorf("invalid data byte: %d", b)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte((acc>>bits)&maxv))
		}
	}

	if pad {
		if bits > 0 {
			ret = append(ret, byte((acc<<(toBits-bits))&maxv))
		}
	} else {
		if bits >= fromBits {
			return nil, fmt.Errorf("non-zero padding")
		}
		if (acc<<(toBits-bits))&maxv != 0 {
			return nil, fmt.Errorf("non-zero padding")
		}
	}

	return ret, nil
}
