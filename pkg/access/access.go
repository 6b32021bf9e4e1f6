package access

import (
	"path"
	"strings"
	"sync"
)

// All registers checks for every method that has no method-specific entry.
const All = "*"

// Role names understood by the built-in checks.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Request is the subset of an HTTP request the checks look at.
type Request struct {
	// Params receives the values bound by the matching patterns.
	Params map[string]string
	// Body is the parsed request body, nil when there is none.
	Body          map[string]any
	Method        string
	Path          string
	UserID        string
	Role          string
	Authenticated bool
}

// Param returns a bound path parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Check inspects a request and returns a denial reason, or "" to allow it.
type Check func(r *Request) string

type entry struct {
	methods  map[string][]Check
	segments []string
}

// Table holds the access rules. Protect is meant to be called during
// startup; Authorize is safe for concurrent use.
type Table struct {
	entries []*entry
	mu      sync.RWMutex
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Protect appends checks for pattern and method. Calling it again for the
// same pattern and method extends the existing list.
func (t *Table) Protect(pattern, method string, checks ...Check) *Table {
	segs := split(pattern)
	method = strings.ToUpper(method)
	if method == "" {
		method = All
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if equalSegments(e.segments, segs) {
			e.methods[method] = append(e.methods[method], checks...)
			return t
		}
	}
	t.entries = append(t.entries, &entry{
		segments: segs,
		methods:  map[string][]Check{method: checks},
	})
	return t
}

// Authorize runs every check registered for the request path and method.
// Entries are visited in registration order and the first non-empty
// reason is returned as a *DeniedError.
func (t *Table) Authorize(r *Request) error {
	parts := split(r.Path)
	method := strings.ToUpper(r.Method)

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.entries {
		params, ok := match(e.segments, parts)
		if !ok {
			continue
		}
		if len(params) > 0 {
			if r.Params == nil {
				r.Params = make(map[string]string, len(params))
			}
			for k, v := range params {
				r.Params[k] = v
			}
		}

		checks, ok := e.methods[method]
		if !ok {
			checks = e.methods[All]
		}
		for _, check := range checks {
			if reason := check(r); reason != "" {
				return &DeniedError{Reason: reason, Method: method, Path: r.Path}
			}
		}
	}
	return nil
}

func split(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

func match(pattern, parts []string) (map[string]string, bool) {
	if len(pattern) != len(parts) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = parts[i]
			continue
		}
		if !strings.EqualFold(seg, parts[i]) {
			return nil, false
		}
	}
	return params, true
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
