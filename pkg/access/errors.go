package access

import "fmt"

// DeniedError is returned by Authorize when a check rejects the request.
type DeniedError struct {
	Reason string
	Method string
	Path   string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access: %s %s denied: %s", e.Method, e.Path, e.Reason)
}
