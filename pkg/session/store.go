package session

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("session: not found")
	// ErrExpired means the session outlived its absolute lifetime.
	ErrExpired      = errors.New("session: expired")
	ErrInvalidID    = errors.New("session: invalid id")
	ErrTypeMismatch = errors.New("session: stored value has a different type")
)

// Store persists sessions.
type Store interface {
	// Create starts a new empty session with a fresh id.
	Create(ctx context.Context) (*Session, error)

	// Get returns ErrNotFound for unknown ids and ErrExpired for sessions
	// past their absolute lifetime.
	Get(ctx context.Context, id string) (*Session, error)

	// Set replaces the stored session and refreshes its idle timeout.
	Set(ctx context.Context, s *Session) error

	// Delete removes the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all live sessions.
	List(ctx context.Context) ([]string, error)
}
