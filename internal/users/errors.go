package users

import "errors"

// Store errors.
var (
	ErrNotFound          = errors.New("users: not found")
	ErrDuplicateUsername = errors.New("users: username already exists")
	ErrDuplicateEmail    = errors.New("users: email already exists")
)

// Messages surfaced through Result.Errors.
const (
	MsgNotFound        = "User not found"
	MsgMissingID       = "Missing id"
	MsgMissingUsername = "Missing username"
	MsgUsernameTaken   = "Username already exists"
	MsgEmailTaken      = "Email already exists"
)
