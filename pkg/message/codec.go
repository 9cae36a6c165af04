package message

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Iterations is fixed so ENC: payloads stay readable by every client.
const PBKDF2Iterations = 100_000

const keySize = 32

// Bounds on Argon2 parameters accepted from a payload.
const (
	maxArgon2Memory     = 1 << 20 // KiB
	maxArgon2Iterations = 64
)

// Argon2Params holds Argon2id parameters.
type Argon2Params struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params returns recommended Argon2id parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

// Validate checks the parameters are usable and within decode bounds.
func (p Argon2Params) Validate() error {
	switch {
	case p.Iterations == 0 || p.Iterations > maxArgon2Iterations:
		return fmt.Errorf("argon2 iterations %d out of range [1, %d]", p.Iterations, maxArgon2Iterations)
	case p.Parallelism == 0:
		return errors.New("argon2 parallelism must be at least 1")
	case p.Memory < 8*uint32(p.Parallelism) || p.Memory > maxArgon2Memory:
		return fmt.Errorf("argon2 memory %d KiB out of range [%d, %d]", p.Memory, 8*uint32(p.Parallelism), maxArgon2Memory)
	}
	return nil
}

// Option configures a Codec.
type Option func(*Codec)

// WithRandom sets the source of salts and nonces.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) { c.rand = r }
}

// WithScheme sets the scheme used by Encrypt.
func WithScheme(s Scheme) Option {
	return func(c *Codec) { c.scheme = s }
}

// WithArgon2Params sets the Argon2id cost for the ENCX: scheme.
func WithArgon2Params(p Argon2Params) Option {
	return func(c *Codec) { c.argon = p }
}

// WithLogger sets the codec logger. Passwords and plaintexts are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// Codec encrypts and decrypts message payloads. A Codec holds no mutable
// state and is safe for concurrent use if its random source is.
type Codec struct {
	rand   io.Reader
	scheme Scheme
	argon  Argon2Params
	logger zerolog.Logger
}

// NewCodec creates a codec. The default scheme is ENC: with crypto/rand.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		rand:   rand.Reader,
		scheme: SchemePBKDF2,
		argon:  DefaultArgon2Params(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scheme returns the scheme used by Encrypt.
func (c *Codec) Scheme() Scheme {
	return c.scheme
}

// Encrypt derives a key from password with a fresh salt and seals plaintext
// under a fresh nonce. Key derivation is CPU-bound; callers wanting
// cancellation run it in their own goroutine.
func (c *Codec) Encrypt(plaintext, password string) (*Ciphertext, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if !utf8.ValidString(plaintext) {
		return nil, ErrInvalidUTF8
	}
	if !c.scheme.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, uint8(c.scheme))
	}
	if c.scheme == SchemeArgon2 {
		if err := c.argon.Validate(); err != nil {
			return nil, err
		}
	}

	ct := &Ciphertext{
		Scheme: c.scheme,
		Salt:   make([]byte, SaltSize),
		Nonce:  make([]byte, c.scheme.nonceSize()),
	}
	if c.scheme == SchemeArgon2 {
		ct.Params = c.argon
	}
	if _, err := io.ReadFull(c.rand, ct.Salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := io.ReadFull(c.rand, ct.Nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	aead, key, err := newAEAD(ct, []byte(password))
	defer zero(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	ct.Sealed = aead.Seal(nil, ct.Nonce, []byte(plaintext), nil)

	c.logger.Debug().
		Str("scheme", ct.Scheme.String()).
		Int("plain_bytes", len(plaintext)).
		Int("payload_bytes", EncryptedSize(len(plaintext), ct.Scheme)).
		Msg("Message encrypted")
	return ct, nil
}

// Decrypt opens ct with password. Every failure, including a wrong
// password, tampering and bad parameters, returns ErrDecrypt.
func (c *Codec) Decrypt(ct *Ciphertext, password string) (string, error) {
	if ct == nil || !ct.Scheme.valid() || len(ct.Salt) != SaltSize || len(ct.Nonce) != ct.Scheme.nonceSize() {
		return "", ErrDecrypt
	}
	if ct.Scheme == SchemeArgon2 && ct.Params.Validate() != nil {
		c.logger.Debug().Str("scheme", ct.Scheme.String()).Msg("Rejected payload argon2 parameters")
		return "", ErrDecrypt
	}

	aead, key, err := newAEAD(ct, []byte(password))
	defer zero(key)
	if err != nil {
		return "", ErrDecrypt
	}
	plain, err := aead.Open(nil, ct.Nonce, ct.Sealed, nil)
	if err != nil || !utf8.Valid(plain) {
		c.logger.Debug().Str("scheme", ct.Scheme.String()).Msg("Message decryption failed")
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// Seal encrypts plaintext and returns the text payload. The plaintext is
// checked against maxBytes before encryption and the payload after, since
// encryption overhead can push a valid message past the limit.
func (c *Codec) Seal(plaintext, password string, maxBytes uint32) (string, error) {
	if _, err := ValidateSize(plaintext, maxBytes); err != nil {
		return "", err
	}
	ct, err := c.Encrypt(plaintext, password)
	if err != nil {
		return "", err
	}
	payload := ct.String()
	if _, err := ValidateSize(payload, maxBytes); err != nil {
		return "", fmt.Errorf("encrypted payload: %w", err)
	}
	return payload, nil
}

// Open returns the plaintext of an on-chain payload. Payloads without a
// scheme prefix are public messages and are returned unchanged.
func (c *Codec) Open(payload, password string) (string, error) {
	if !IsEncrypted(payload) {
		if !utf8.ValidString(payload) {
			return "", ErrInvalidUTF8
		}
		return payload, nil
	}
	ct, err := ParseCiphertext(payload)
	if err != nil {
		return "", ErrDecrypt
	}
	return c.Decrypt(ct, password)
}

// newAEAD derives the key for ct and builds its cipher. The caller zeroes
// the returned key.
func newAEAD(ct *Ciphertext, password []byte) (cipher.AEAD, []byte, error) {
	if ct.Scheme == SchemeArgon2 {
		key := argon2.IDKey(password, ct.Salt, ct.Params.Iterations, ct.Params.Memory, ct.Params.Parallelism, chacha20poly1305.KeySize)
		aead, err := chacha20poly1305.NewX(key)
		return aead, key, err
	}

	key := pbkdf2.Key(password, ct.Salt, PBKDF2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, key, err
	}
	aead, err := cipher.NewGCM(block)
	return aead, key, err
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
