// Package message validates on-chain message sizes and encrypts message
// payloads with password-derived keys.
package message

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// MaxMessageBytes is the largest message payload a transaction may embed.
const MaxMessageBytes = 220

// Message errors.
var (
	ErrTooLarge         = errors.New("message too large")
	ErrInvalidUTF8      = errors.New("message is not valid UTF-8")
	ErrDecrypt          = errors.New("message decryption failed")
	ErrEmptyPassword    = errors.New("password is empty")
	ErrUnknownScheme    = errors.New("unknown encryption scheme")
	ErrMalformedPayload = errors.New("malformed encrypted payload")
)

// SizeError reports a message whose encoded length exceeds the limit.
// It matches ErrTooLarge with errors.Is.
type SizeError struct {
	Actual uint32
	Max    uint32
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v: %d bytes, max %d", ErrTooLarge, e.Actual, e.Max)
}

// Is reports whether target is ErrTooLarge.
func (e *SizeError) Is(target error) bool {
	return target == ErrTooLarge
}

// ValidateSize returns the UTF-8 byte length of msg, or a *SizeError if it
// exceeds maxBytes. Lengths are bytes, never characters.
func ValidateSize(msg string, maxBytes uint32) (uint32, error) {
	if !utf8.ValidString(msg) {
		return 0, ErrInvalidUTF8
	}
	n := uint32(math.MaxUint32)
	if uint64(len(msg)) < math.MaxUint32 {
		n = uint32(len(msg))
	}
	if n > maxBytes {
		return n, &SizeError{Actual: n, Max: maxBytes}
	}
	return n, nil
}
