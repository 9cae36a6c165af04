package message

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestEncryptedSize(t *testing.T) {
	enc := NewCodec()
	encx := NewCodec(WithScheme(SchemeArgon2), WithArgon2Params(fastParams()))
	for _, n := range []int{0, 1, 2, 3, 50, 94, 118, 200} {
		plain := strings.Repeat("m", n)
		for _, c := range []*Codec{enc, encx} {
			ct, err := c.Encrypt(plain, "pw")
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if got, want := len(ct.String()), EncryptedSize(n, c.Scheme()); got != want {
				t.Errorf("%s n=%d: payload length %d, EncryptedSize %d", c.Scheme(), n, got, want)
			}
		}
	}
}

func TestPayloadLayout(t *testing.T) {
	ct, err := NewCodec(WithRandom(&counterReader{})).Encrypt("abc", "pw")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	s := ct.String()
	if !strings.HasPrefix(s, "ENC:") {
		t.Fatalf("payload %q lacks ENC: prefix", s)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "ENC:"))
	if err != nil {
		t.Fatalf("base64 decode error: %v", err)
	}
	if len(raw) != SaltSize+12+3+16 {
		t.Fatalf("raw length = %d, want %d", len(raw), SaltSize+12+3+16)
	}
	if !bytes.Equal(raw[:SaltSize], ct.Salt) || !bytes.Equal(raw[SaltSize:SaltSize+12], ct.Nonce) {
		t.Error("payload should start with salt then iv")
	}
}

func TestParseCiphertext_Argon2Params(t *testing.T) {
	c := NewCodec(WithScheme(SchemeArgon2), WithArgon2Params(fastParams()))
	ct, err := c.Encrypt("params travel with the payload", "pw")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	parsed, err := ParseCiphertext(ct.String())
	if err != nil {
		t.Fatalf("ParseCiphertext() error: %v", err)
	}
	if parsed.Scheme != SchemeArgon2 || parsed.Params != fastParams() {
		t.Errorf("parsed = %+v", parsed)
	}
	if !bytes.Equal(parsed.Sealed, ct.Sealed) || !bytes.Equal(parsed.Nonce, ct.Nonce) {
		t.Error("parsed ciphertext differs from original")
	}
}

func TestParseCiphertext_Errors(t *testing.T) {
	tests := []string{
		"",
		"hello",
		"ENC:not base64",
		"ENC:" + base64.StdEncoding.EncodeToString(make([]byte, SaltSize+12+15)),
		"ENCX:" + base64.StdEncoding.EncodeToString(make([]byte, SaltSize+9+24)),
	}
	for _, s := range tests {
		if _, err := ParseCiphertext(s); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("ParseCiphertext(%q) error = %v, want ErrMalformedPayload", s, err)
		}
	}
}

func TestIsEncryptedAndDecode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ENC:abcd", true},
		{"ENCX:abcd", true},
		{"enc:abcd", false},
		{"ENCRYPTED", false},
		{"hello", false},
	}
	for _, tt := range tests {
		if got := IsEncrypted(tt.in); got != tt.want {
			t.Errorf("IsEncrypted(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got := Decode([]byte(tt.in)); got.Encrypted != tt.want || string(got.Payload) != tt.in {
			t.Errorf("Decode(%q) = %+v", tt.in, got)
		}
	}
}

func TestParseScheme(t *testing.T) {
	for in, want := range map[string]Scheme{"pbkdf2": SchemePBKDF2, "ENC": SchemePBKDF2, "argon2": SchemeArgon2, "argon2id": SchemeArgon2} {
		got, err := ParseScheme(in)
		if err != nil || got != want {
			t.Errorf("ParseScheme(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseScheme("rot13"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("ParseScheme(rot13) error = %v", err)
	}
}
