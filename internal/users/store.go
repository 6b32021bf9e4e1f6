package users

import "context"

// Store persists users. Implementations return full records including the
// password hash and enforce username and email uniqueness.
type Store interface {
	List(ctx context.Context) ([]User, error)

	// FindByID and FindByUsername return ErrNotFound on a miss.
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// UsernameTaken and EmailTaken ignore the record with excludeID.
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)

	// Insert and Update return ErrDuplicateUsername or ErrDuplicateEmail
	// when a uniqueness constraint is violated.
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error

	// Delete returns ErrNotFound if no record was removed.
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
}
