package message

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() Argon2Params {
	return Argon2Params{
		Memory:      64, // 64 KiB
		Iterations:  1,
		Parallelism: 1,
	}
}

// counterReader yields 0, 1, 2, ... so outputs are reproducible but never
// repeat within one reader.
type counterReader struct {
	mu  sync.Mutex
	ctr byte
}

func (r *counterReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range p {
		p[i] = r.ctr
		r.ctr++
	}
	return len(p), nil
}

func codecs() map[string]*Codec {
	return map[string]*Codec{
		"pbkdf2": NewCodec(),
		"argon2": NewCodec(WithScheme(SchemeArgon2), WithArgon2Params(fastParams())),
	}
}

func TestCodec_Roundtrip(t *testing.T) {
	plaintexts := []string{"", "gm", "thanks for holding 🚀", strings.Repeat("x", 500)}
	for name, c := range codecs() {
		for _, p := range plaintexts {
			ct, err := c.Encrypt(p, "hunter2")
			if err != nil {
				t.Fatalf("%s: Encrypt() error: %v", name, err)
			}
			got, err := c.Decrypt(ct, "hunter2")
			if err != nil {
				t.Fatalf("%s: Decrypt() error: %v", name, err)
			}
			if got != p {
				t.Errorf("%s: Decrypt() = %q, want %q", name, got, p)
			}
		}
	}
}

func TestCodec_WrongPassword(t *testing.T) {
	for name, c := range codecs() {
		ct, err := c.Encrypt("secret", "right")
		if err != nil {
			t.Fatalf("%s: Encrypt() error: %v", name, err)
		}
		if _, err := c.Decrypt(ct, "wrong"); !errors.Is(err, ErrDecrypt) {
			t.Errorf("%s: Decrypt(wrong) error = %v, want ErrDecrypt", name, err)
		}
		if _, err := c.Decrypt(ct, ""); !errors.Is(err, ErrDecrypt) {
			t.Errorf("%s: Decrypt(empty) error = %v, want ErrDecrypt", name, err)
		}
	}
}

func TestCodec_FreshSaltAndNonce(t *testing.T) {
	for name, c := range codecs() {
		a, err := c.Encrypt("same", "pw")
		if err != nil {
			t.Fatalf("%s: Encrypt() error: %v", name, err)
		}
		b, err := c.Encrypt("same", "pw")
		if err != nil {
			t.Fatalf("%s: Encrypt() error: %v", name, err)
		}
		if a.String() == b.String() {
			t.Errorf("%s: two encryptions produced identical payloads", name)
		}
		if bytes.Equal(a.Salt, b.Salt) || bytes.Equal(a.Nonce, b.Nonce) {
			t.Errorf("%s: salt or nonce reused", name)
		}
	}
}

func TestCodec_DeterministicRandom(t *testing.T) {
	enc := func() string {
		c := NewCodec(WithRandom(&counterReader{}))
		ct, err := c.Encrypt("hello", "pw")
		if err != nil {
			t.Fatalf("Encrypt() error: %v", err)
		}
		return ct.String()
	}
	a, b := enc(), enc()
	if a != b {
		t.Errorf("same random stream produced %q and %q", a, b)
	}

	ct, err := ParseCiphertext(a)
	if err != nil {
		t.Fatalf("ParseCiphertext() error: %v", err)
	}
	for i, v := range ct.Salt {
		if v != byte(i) {
			t.Fatalf("salt[%d] = %d, want %d", i, v, i)
		}
	}
	if ct.Nonce[0] != SaltSize {
		t.Errorf("nonce should follow salt in the random stream, got %d", ct.Nonce[0])
	}
}

func TestCodec_RandomFailure(t *testing.T) {
	c := NewCodec(WithRandom(bytes.NewReader(make([]byte, 4))))
	if _, err := c.Encrypt("hello", "pw"); err == nil {
		t.Error("Encrypt() should fail when the random source is exhausted")
	}
}

func TestCodec_EncryptRejects(t *testing.T) {
	c := NewCodec()
	if _, err := c.Encrypt("hello", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("empty password error = %v", err)
	}
	if _, err := c.Encrypt("bad\xff", "pw"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("invalid utf8 error = %v", err)
	}
	if _, err := NewCodec(WithScheme(Scheme(7))).Encrypt("hi", "pw"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("unknown scheme error = %v", err)
	}
	bad := NewCodec(WithScheme(SchemeArgon2), WithArgon2Params(Argon2Params{Memory: 64, Iterations: 0, Parallelism: 1}))
	if _, err := bad.Encrypt("hi", "pw"); err == nil {
		t.Error("Encrypt() should reject zero argon2 iterations")
	}
}

func TestCodec_Tamper(t *testing.T) {
	for name, c := range codecs() {
		ct, err := c.Encrypt("do not touch", "pw")
		if err != nil {
			t.Fatalf("%s: Encrypt() error: %v", name, err)
		}
		tampered := []*Ciphertext{
			{Scheme: ct.Scheme, Salt: flip(ct.Salt), Nonce: ct.Nonce, Params: ct.Params, Sealed: ct.Sealed},
			{Scheme: ct.Scheme, Salt: ct.Salt, Nonce: flip(ct.Nonce), Params: ct.Params, Sealed: ct.Sealed},
			{Scheme: ct.Scheme, Salt: ct.Salt, Nonce: ct.Nonce, Params: ct.Params, Sealed: flip(ct.Sealed)},
			{Scheme: ct.Scheme, Salt: ct.Salt[:8], Nonce: ct.Nonce, Params: ct.Params, Sealed: ct.Sealed},
			nil,
		}
		for i, tc := range tampered {
			if _, err := c.Decrypt(tc, "pw"); !errors.Is(err, ErrDecrypt) {
				t.Errorf("%s: tampered[%d] error = %v, want ErrDecrypt", name, i, err)
			}
		}
	}
}

func TestCodec_RejectsHostileArgon2Params(t *testing.T) {
	c := NewCodec(WithScheme(SchemeArgon2), WithArgon2Params(fastParams()))
	ct, err := c.Encrypt("hi", "pw")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	ct.Params.Memory = 0xFFFFFFFF
	if _, err := c.Decrypt(ct, "pw"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() error = %v, want ErrDecrypt", err)
	}
}

func TestCodec_DecryptAcrossSchemes(t *testing.T) {
	// A codec decrypts any scheme; its own scheme only selects how it encrypts.
	argon := NewCodec(WithScheme(SchemeArgon2), WithArgon2Params(fastParams()))
	payload, err := argon.Seal("cross", "pw", 1000)
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	got, err := NewCodec().Open(payload, "pw")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got != "cross" {
		t.Errorf("Open() = %q, want %q", got, "cross")
	}
}

func TestCodec_Seal(t *testing.T) {
	c := NewCodec()
	// 118 plaintext bytes encrypt to exactly 220 payload bytes.
	payload, err := c.Seal(strings.Repeat("a", 118), "pw", MaxMessageBytes)
	if err != nil {
		t.Fatalf("Seal(118) error: %v", err)
	}
	if len(payload) != MaxMessageBytes {
		t.Errorf("payload length = %d, want %d", len(payload), MaxMessageBytes)
	}

	_, err = c.Seal(strings.Repeat("a", 119), "pw", MaxMessageBytes)
	var se *SizeError
	if !errors.As(err, &se) {
		t.Fatalf("Seal(119) error = %v, want *SizeError", err)
	}
	if se.Actual != 224 {
		t.Errorf("SizeError.Actual = %d, want 224", se.Actual)
	}

	_, err = c.Seal(strings.Repeat("a", 221), "pw", MaxMessageBytes)
	if !errors.As(err, &se) || se.Actual != 221 {
		t.Errorf("Seal(221) error = %v, want plaintext SizeError with actual 221", err)
	}
}

func TestCodec_Open(t *testing.T) {
	c := NewCodec()
	payload, err := c.Seal("private note", "pw", MaxMessageBytes)
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	got, err := c.Open(payload, "pw")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got != "private note" {
		t.Errorf("Open() = %q", got)
	}

	if got, err := c.Open("public note", ""); err != nil || got != "public note" {
		t.Errorf("Open(public) = %q, %v", got, err)
	}

	malformed := []string{"ENC:", "ENC:!!!", "ENC:" + base64.StdEncoding.EncodeToString(make([]byte, 20)), "ENCX:AAAA"}
	for _, m := range malformed {
		if _, err := c.Open(m, "pw"); !errors.Is(err, ErrDecrypt) {
			t.Errorf("Open(%q) error = %v, want ErrDecrypt", m, err)
		}
	}
}

func TestCodec_DoesNotLogSecrets(t *testing.T) {
	var buf bytes.Buffer
	c := NewCodec(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	ct, err := c.Encrypt("top-secret-text", "pa55word")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	_, _ = c.Decrypt(ct, "wrong-pa55word")
	out := buf.String()
	if !strings.Contains(out, "Message encrypted") {
		t.Errorf("expected encrypt log, got %q", out)
	}
	for _, secret := range []string{"top-secret-text", "pa55word"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output contains %q", secret)
		}
	}
}

func flip(b []byte) []byte {
	out := append([]byte(nil), b...)
	out[0] ^= 0x01
	return out
}
