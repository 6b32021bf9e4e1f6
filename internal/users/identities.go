package users

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/userdesk/pkg/cache"
)

// DefaultIdentityTTL bounds how long a cached identity may be served.
const DefaultIdentityTTL = 5 * time.Minute

// Identities resolves authenticated user ids to records through a cache.
// Entries are dropped whenever the repository changes a user.
type Identities struct {
	repo  *Repository
	cache cache.Cache[User]
	ttl   time.Duration
}

// NewIdentities wires a cache in front of repo lookups by id.
func NewIdentities(repo *Repository, c cache.Cache[User], ttl time.Duration) *Identities {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	i := &Identities{repo: repo, cache: c, ttl: ttl}
	repo.OnChange(func(ctx context.Context, u User) {
		_ = i.cache.Delete(ctx, u.ID)
	})
	return i
}

// Identity returns the user with userID, or ErrNotFound.
func (i *Identities) Identity(ctx context.Context, userID string) (*User, error) {
	u, err := cache.GetOrSet(ctx, i.cache, userID, func(ctx context.Context) (User, time.Duration, error) {
		res, err := i.repo.FindByID(ctx, userID)
		if err != nil {
			return User{}, 0, err
		}
		if !res.OK() {
			return User{}, 0, ErrNotFound
		}
		return *res.Data, i.ttl, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
