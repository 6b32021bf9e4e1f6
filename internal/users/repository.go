package users

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/userdesk/pkg/id"
	"github.com/dmitrymomot/userdesk/pkg/password"
	"github.com/dmitrymomot/userdesk/pkg/sanitizer"
	"github.com/dmitrymomot/userdesk/pkg/validate"
)

// Hasher hashes and checks passwords.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Hook observes committed changes. Hooks run synchronously after the
// store call succeeds; they must not fail the operation.
type Hook func(ctx context.Context, u User)

// Repository is the single entry point for user reads and writes.
// Business failures (validation, uniqueness, missing record) come back in
// Result.Errors; the error return is reserved for storage failures.
type Repository struct {
	store    Store
	hasher   Hasher
	newID    func() string
	now      func() time.Time
	onCreate []Hook
	onChange []Hook
}

// Option configures a Repository.
type Option func(*Repository)

// WithHasher overrides the password hasher.
func WithHasher(h Hasher) Option {
	return func(r *Repository) {
		if h != nil {
			r.hasher = h
		}
	}
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository returns a Repository over store.
func NewRepository(store Store, opts ...Option) *Repository {
	h, _ := password.NewHasher(0)
	r := &Repository{
		store:  store,
		hasher: h,
		newID:  id.New,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnCreate registers a hook called with every newly created user.
func (r *Repository) OnCreate(h Hook) {
	r.onCreate = append(r.onCreate, h)
}

// OnChange registers a hook called after a user is updated, patched or removed.
func (r *Repository) OnChange(h Hook) {
	r.onChange = append(r.onChange, h)
}

// FindOption tunes single-record lookups.
type FindOption func(*findOptions)

type findOptions struct {
	withPassword bool
}

// WithPassword keeps the password hash on the returned record.
func WithPassword() FindOption {
	return func(o *findOptions) {
		o.withPassword = true
	}
}

// List returns every user without password hashes.
func (r *Repository) List(ctx context.Context) (Result[[]User], error) {
	list, err := r.store.List(ctx)
	if err != nil {
		return Result[[]User]{}, err
	}
	for i := range list {
		list[i] = list[i].withoutPassword()
	}
	return Result[[]User]{Data: list}, nil
}

// Count returns the number of stored users.
func (r *Repository) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// FindByID loads one user.
func (r *Repository) FindByID(ctx context.Context, userID string, opts ...FindOption) (Result[*User], error) {
	if userID == "" {
		return failedAll[*User](MsgMissingID), nil
	}
	u, err := r.store.FindByID(ctx, userID)
	return found(u, err, opts)
}

// FindByUsername loads one user by exact username.
func (r *Repository) FindByUsername(ctx context.Context, username string, opts ...FindOption) (Result[*User], error) {
	if username == "" {
		return failedAll[*User](MsgMissingUsername), nil
	}
	u, err := r.store.FindByUsername(ctx, username)
	return found(u, err, opts)
}

func found(u *User, err error, opts []FindOption) (Result[*User], error) {
	if errors.Is(err, ErrNotFound) {
		return failedAll[*User](MsgNotFound), nil
	}
	if err != nil {
		return Result[*User]{}, err
	}
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.withPassword {
		u.Password = ""
	}
	return Result[*User]{Data: u}, nil
}

// IsUsernameTaken reports whether another user (not excludeID) has username.
func (r *Repository) IsUsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return r.store.UsernameTaken(ctx, username, excludeID)
}

// IsEmailTaken reports whether another user (not excludeID) has email.
func (r *Repository) IsEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.store.EmailTaken(ctx, email, excludeID)
}

// Create validates input against CreateSchema and stores a new user.
// Role defaults to "user". The result carries the new id.
func (r *Repository) Create(ctx context.Context, in Input) (Result[string], error) {
	data := clean(in)
	if data["role"] == "" {
		data["role"] = string(RoleUser)
	}

	if res := validate.Validate(validate.Data(data), CreateSchema); !res.Valid {
		return failed[string](res.Errors), nil
	}
	if errs, err := r.uniqueness(ctx, data["username"], data["email"], ""); err != nil || errs != nil {
		return failed[string](errs), err
	}

	hash, err := r.hasher.Hash(data["password"])
	if err != nil {
		return Result[string]{}, err
	}

	now := r.now()
	u := User{
		ID:        r.newID(),
		Username:  data["username"],
		Email:     data["email"],
		Name:      data["name"],
		Role:      Role(data["role"]),
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Insert(ctx, &u); err != nil {
		if errs := duplicateErrors(err); errs != nil {
			return failed[string](errs), nil
		}
		return Result[string]{}, err
	}

	r.fire(ctx, r.onCreate, u.withoutPassword())
	return Result[string]{Data: u.ID}, nil
}

// Update merges input onto the stored record and validates the result
// against UpdateSchema. A non-empty password is re-hashed; an empty name
// clears the stored name.
func (r *Repository) Update(ctx context.Context, userID string, in Input) (Result[*User], error) {
	return r.modify(ctx, userID, in, UpdateSchema)
}

// Patch is Update validated against CreateSchema, so the merged record must
// carry a new password supplied in the input.
func (r *Repository) Patch(ctx context.Context, userID string, in Input) (Result[*User], error) {
	return r.modify(ctx, userID, in, CreateSchema)
}

func (r *Repository) modify(ctx context.Context, userID string, in Input, schema validate.Schema) (Result[*User], error) {
	if userID == "" {
		return failedAll[*User](MsgMissingID), nil
	}
	current, err := r.store.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return failedAll[*User](MsgNotFound), nil
	}
	if err != nil {
		return Result[*User]{}, err
	}

	data := current.fields()
	for k, v := range clean(in) {
		data[k] = v
	}
	data["id"] = current.ID
	if data["name"] == "" {
		delete(data, "name")
	}

	if res := validate.Validate(validate.Data(data), schema); !res.Valid {
		return failed[*User](res.Errors), nil
	}
	if errs, err := r.uniqueness(ctx, data["username"], data["email"], current.ID); err != nil || errs != nil {
		return failed[*User](errs), err
	}

	next := *current
	next.Username = data["username"]
	next.Email = data["email"]
	next.Name = data["name"]
	next.Role = Role(data["role"])
	next.UpdatedAt = r.now()
	if pw := data["password"]; pw != "" {
		if next.Password, err = r.hasher.Hash(pw); err != nil {
			return Result[*User]{}, err
		}
	}

	if err := r.store.Update(ctx, &next); err != nil {
		if errs := duplicateErrors(err); errs != nil {
			return failed[*User](errs), nil
		}
		if errors.Is(err, ErrNotFound) {
			return failedAll[*User](MsgNotFound), nil
		}
		return Result[*User]{}, err
	}

	out := next.withoutPassword()
	r.fire(ctx, r.onChange, out)
	return Result[*User]{Data: &out}, nil
}

// Remove deletes the user and returns the deleted record.
func (r *Repository) Remove(ctx context.Context, userID string) (Result[*User], error) {
	if userID == "" {
		return failedAll[*User](MsgMissingID), nil
	}
	current, err := r.store.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return failedAll[*User](MsgNotFound), nil
	}
	if err != nil {
		return Result[*User]{}, err
	}

	if err := r.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return failedAll[*User](MsgNotFound), nil
		}
		return Result[*User]{}, err
	}

	out := current.withoutPassword()
	r.fire(ctx, r.onChange, out)
	return Result[*User]{Data: &out}, nil
}

// Authenticate returns the user when username and password match.
// A nil user with a nil error means the credentials are wrong.
func (r *Repository) Authenticate(ctx context.Context, username, plaintext string) (*User, error) {
	res, err := r.FindByUsername(ctx, username, WithPassword())
	if err != nil || !res.OK() {
		return nil, err
	}
	if !r.hasher.Verify(plaintext, res.Data.Password) {
		return nil, nil
	}
	res.Data.Password = ""
	return res.Data, nil
}

// VerifyPassword checks plaintext against the stored hash of userID.
func (r *Repository) VerifyPassword(ctx context.Context, userID, plaintext string) (bool, error) {
	res, err := r.FindByID(ctx, userID, WithPassword())
	if err != nil || !res.OK() {
		return false, err
	}
	return r.hasher.Verify(plaintext, res.Data.Password), nil
}

func (r *Repository) uniqueness(ctx context.Context, username, email, excludeID string) (Errors, error) {
	errs := Errors{}
	taken, err := r.store.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		errs["username"] = MsgUsernameTaken
	}
	if taken, err = r.store.EmailTaken(ctx, email, excludeID); err != nil {
		return nil, err
	}
	if taken {
		errs["email"] = MsgEmailTaken
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

func (r *Repository) fire(ctx context.Context, hooks []Hook, u User) {
	for _, h := range hooks {
		h(ctx, u)
	}
}

func duplicateErrors(err error) Errors {
	switch {
	case errors.Is(err, ErrDuplicateUsername):
		return Errors{"username": MsgUsernameTaken}
	case errors.Is(err, ErrDuplicateEmail):
		return Errors{"email": MsgEmailTaken}
	}
	return nil
}

var userFields = []string{"username", "email", "name", "role", "password"}

// clean keeps the known user fields, strips markup and trims them.
// Passwords are passed through untouched.
func clean(in Input) Input {
	out := make(Input, len(userFields))
	for _, f := range userFields {
		if v, ok := in[f]; ok {
			out[f] = v
		}
	}
	return sanitizer.Fields(out, "password")
}
