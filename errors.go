package userdesk

import "errors"

var (
	ErrSeedAdmin   = errors.New("userdesk: failed to seed admin user")
	ErrBuildServer = errors.New("userdesk: failed to build server")
)
