package users

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps users in process memory. Uniqueness is checked under
// the same lock as the write.
type MemoryStore struct {
	byID  map[string]User
	order []string
	mu    sync.RWMutex
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]User)}
}

func (s *MemoryStore) List(context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UsernameTaken(_ context.Context, username, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taken(func(u User) bool { return u.Username == username }, excludeID), nil
}

func (s *MemoryStore) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taken(func(u User) bool { return u.Email == email }, excludeID), nil
}

func (s *MemoryStore) Insert(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(*u); err != nil {
		return err
	}
	s.byID[u.ID] = *u
	s.order = append(s.order, u.ID)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; !ok {
		return ErrNotFound
	}
	if err := s.checkUnique(*u); err != nil {
		return err
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// checkUnique expects the caller to hold the lock.
func (s *MemoryStore) checkUnique(u User) error {
	if s.taken(func(o User) bool { return o.Username == u.Username }, u.ID) {
		return ErrDuplicateUsername
	}
	if s.taken(func(o User) bool { return o.Email == u.Email }, u.ID) {
		return ErrDuplicateEmail
	}
	return nil
}

func (s *MemoryStore) taken(match func(User) bool, excludeID string) bool {
	for id, u := range s.byID {
		if id != excludeID && match(u) {
			return true
		}
	}
	return false
}

var _ Store = (*MemoryStore)(nil)
