// Package users holds user records, their validation schemas and the
// repository that every page handler goes through.
package users

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Roles lists the valid roles in display order.
var Roles = []string{string(RoleAdmin), string(RoleUser)}

// User is a persisted user record. Password holds the bcrypt hash and is
// empty unless the record was loaded with WithPassword.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the name if set, the username otherwise.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// withoutPassword returns a copy with the hash cleared.
func (u User) withoutPassword() User {
	u.Password = ""
	return u
}

// fields flattens the user into validation input.
func (u User) fields() Input {
	in := Input{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     string(u.Role),
	}
	if u.Name != "" {
		in["name"] = u.Name
	}
	return in
}

// Input is untrusted user data keyed by field name.
type Input map[string]string

// Errors maps field names to messages. The AllKey entry holds
// record-level failures such as "User not found".
type Errors map[string]string

// AllKey is the Errors key for failures not tied to a field.
const AllKey = "all"

// Result carries either data or business-level errors.
type Result[T any] struct {
	Data   T
	Errors Errors
}

// OK reports whether the result has no errors.
func (r Result[T]) OK() bool {
	return len(r.Errors) == 0
}

func failed[T any](errs Errors) Result[T] {
	return Result[T]{Errors: errs}
}

func failedAll[T any](msg string) Result[T] {
	return failed[T](Errors{AllKey: msg})
}
