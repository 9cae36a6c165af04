package crypto

import (
	"encoding/json"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		},
		{
			name:  "hello",
			input: []byte("hello"),
			want:  "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hash(tt.input).String(); got != tt.want {
				t.Errorf("Hash(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashFields_Boundaries(t *testing.T) {
	a := HashFields([]byte("ab"), []byte("c"))
	b := HashFields([]byte("a"), []byte("bc"))
	if a == b {
		t.Error("field boundaries must change the digest")
	}
	if a != HashFields([]byte("ab"), []byte("c")) {
		t.Error("HashFields is not deterministic")
	}
	if HashFields().IsZero() {
		t.Error("digest of no fields should not be zero")
	}
}

func TestDigest_JSON(t *testing.T) {
	d := Hash([]byte("plan"))
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var back Digest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back != d {
		t.Errorf("roundtrip = %s, want %s", back, d)
	}

	if err := json.Unmarshal([]byte(`"abcd"`), &back); err == nil {
		t.Error("short digest should fail to decode")
	}
}
