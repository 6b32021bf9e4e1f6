package fsroute

import "errors"

var (
	ErrInvalidPattern = errors.New("fsroute: invalid pattern")
	ErrDuplicateParam = errors.New("fsroute: duplicate parameter name")
	ErrDuplicateRoute = errors.New("fsroute: duplicate route")
	ErrMethodRequired = errors.New("fsroute: method required")
)
