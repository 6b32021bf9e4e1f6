// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmpty    = errors.New("password: empty password")
	ErrTooLong  = errors.New("password: exceeds 72 bytes")
	ErrBadCost  = errors.New("password: invalid bcrypt cost")
	ErrNoHash   = errors.New("password: empty hash")
	ErrMismatch = errors.New("password: mismatch")
)

// Hasher hashes passwords with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using the given cost.
// Zero selects bcrypt.DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, ErrBadCost
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmpty
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil if plaintext matches hash, ErrMismatch if it does not.
func (h *Hasher) Compare(plaintext, hash string) error {
	if hash == "" {
		return ErrNoHash
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Verify reports whether plaintext matches hash.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return h.Compare(plaintext, hash) == nil
}

// Hash hashes plaintext with bcrypt.DefaultCost.
func Hash(plaintext string) (string, error) {
	return defaultHasher.Hash(plaintext)
}

// Verify checks plaintext against hash.
func Verify(plaintext, hash string) bool {
	return defaultHasher.Verify(plaintext, hash)
}

var defaultHasher = &Hasher{cost: bcrypt.DefaultCost}
