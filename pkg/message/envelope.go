package message

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Scheme identifies how a payload was encrypted. The scheme is carried in
// the payload's text prefix, so decryption needs only the password.
type Scheme uint8

const (
	// SchemePBKDF2 is PBKDF2-HMAC-SHA256 with AES-256-GCM ("ENC:").
	SchemePBKDF2 Scheme = iota
	// SchemeArgon2 is Argon2id with XChaCha20-Poly1305 ("ENCX:").
	SchemeArgon2
)

// Payload layout constants.
const (
	SaltSize = 16

	pbkdf2Prefix = "ENC:"
	argon2Prefix = "ENCX:"

	gcmNonceSize = 12
	gcmTagSize   = 16

	// memory(4) | iterations(4) | parallelism(1)
	argon2ParamsSize = 9
)

// String returns the scheme name used in configuration.
func (s Scheme) String() string {
	switch s {
	case SchemePBKDF2:
		return "pbkdf2"
	case SchemeArgon2:
		return "argon2"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// Prefix returns the payload text prefix of the scheme.
func (s Scheme) Prefix() string {
	if s == SchemeArgon2 {
		return argon2Prefix
	}
	return pbkdf2Prefix
}

// ParseScheme parses "pbkdf2" or "argon2".
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pbkdf2", "enc":
		return SchemePBKDF2, nil
	case "argon2", "argon2id", "encx":
		return SchemeArgon2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

func (s Scheme) valid() bool {
	return s == SchemePBKDF2 || s == SchemeArgon2
}

func (s Scheme) nonceSize() int {
	if s == SchemeArgon2 {
		return chacha20poly1305.NonceSizeX
	}
	return gcmNonceSize
}

// headerSize is the raw byte count before the sealed data.
func (s Scheme) headerSize() int {
	if s == SchemeArgon2 {
		return SaltSize + argon2ParamsSize + chacha20poly1305.NonceSizeX
	}
	return SaltSize + gcmNonceSize
}

// Ciphertext is a decoded encrypted payload.
//
// ENC:  base64(salt(16) | iv(12) | ciphertext+tag)
// ENCX: base64(salt(16) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext+tag)
type Ciphertext struct {
	Scheme Scheme
	Salt   []byte
	Nonce  []byte
	Params Argon2Params // ENCX only
	Sealed []byte       // ciphertext with the authentication tag appended
}

// String encodes the ciphertext as its on-chain text payload.
func (c *Ciphertext) String() string {
	raw := make([]byte, 0, c.Scheme.headerSize()+len(c.Sealed))
	raw = append(raw, c.Salt...)
	if c.Scheme == SchemeArgon2 {
		raw = binary.LittleEndian.AppendUint32(raw, c.Params.Memory)
		raw = binary.LittleEndian.AppendUint32(raw, c.Params.Iterations)
		raw = append(raw, c.Params.Parallelism)
	}
	raw = append(raw, c.Nonce...)
	raw = append(raw, c.Sealed...)
	return c.Scheme.Prefix() + base64.StdEncoding.EncodeToString(raw)
}

// ParseCiphertext decodes an encrypted text payload. It checks structure
// only; authenticity is established by Decrypt.
func ParseCiphertext(s string) (*Ciphertext, error) {
	var scheme Scheme
	var body string
	switch {
	case strings.HasPrefix(s, argon2Prefix):
		scheme, body = SchemeArgon2, s[len(argon2Prefix):]
	case strings.HasPrefix(s, pbkdf2Prefix):
		scheme, body = SchemePBKDF2, s[len(pbkdf2Prefix):]
	default:
		return nil, fmt.Errorf("%w: missing scheme prefix", ErrMalformedPayload)
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	hdr := scheme.headerSize()
	if len(raw) < hdr+gcmTagSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedPayload, len(raw), hdr+gcmTagSize)
	}

	c := &Ciphertext{Scheme: scheme, Salt: raw[:SaltSize]}
	off := SaltSize
	if scheme == SchemeArgon2 {
		c.Params = Argon2Params{
			Memory:      binary.LittleEndian.Uint32(raw[off:]),
			Iterations:  binary.LittleEndian.Uint32(raw[off+4:]),
			Parallelism: raw[off+8],
		}
		off += argon2ParamsSize
	}
	c.Nonce = raw[off : off+scheme.nonceSize()]
	c.Sealed = raw[off+scheme.nonceSize():]
	return c, nil
}

// IsEncrypted reports whether s carries an encryption scheme prefix.
func IsEncrypted(s string) bool {
	return strings.HasPrefix(s, pbkdf2Prefix) || strings.HasPrefix(s, argon2Prefix)
}

// EncryptedSize returns the exact text payload length of a plaintext of
// plainLen bytes encrypted under scheme.
func EncryptedSize(plainLen int, scheme Scheme) int {
	raw := scheme.headerSize() + plainLen + gcmTagSize
	return len(scheme.Prefix()) + base64.StdEncoding.EncodedLen(raw)
}

// SecureMessage is a message payload as found on chain.
type SecureMessage struct {
	Payload   []byte
	Encrypted bool
}

// Decode classifies an on-chain payload.
func Decode(payload []byte) SecureMessage {
	return SecureMessage{Payload: payload, Encrypted: IsEncrypted(string(payload))}
}
