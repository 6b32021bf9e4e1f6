package handlers

import (
	"errors"

	"github.com/dmitrymomot/userdesk/internal"
)

// ErrTest is raised by /error-test.
var ErrTest = errors.New("handlers: test error")

// Dev exposes routes that only exist in development.
type Dev struct{}

// Routes declares /error-test, which fails on purpose so the error page
// and its stack trace can be inspected.
func (Dev) Routes(r internal.Router) {
	r.GET("/error-test", func(internal.Context) error {
		return ErrTest
	})
}
