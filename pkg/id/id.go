// Package id generates identifiers for records, sessions and requests.
package id

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Alphabet is the URL-safe character set used by New.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// Size is the length of identifiers returned by New.
const Size = 16

// New returns a 16-character random identifier over Alphabet.
// The alphabet has 64 symbols, so masking a random byte keeps the
// distribution uniform (96 bits of entropy).
func New() string {
	var buf [Size]byte
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(buf[:])
	for i, b := range buf {
		buf[i] = Alphabet[b&63]
	}
	return string(buf[:])
}

// Valid reports whether s looks like an identifier produced by New.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := range len(s) {
		if !isAlphabet(s[i]) {
			return false
		}
	}
	return true
}

func isAlphabet(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}

// NewRequestID returns a time-ordered UUIDv7 string for request tracing.
// Falls back to a random UUIDv4 if the clock sequence cannot be read.
func NewRequestID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}
