package fsroute

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

type segment struct {
	value string // literal text (lower-cased) or parameter name
	param bool
}

// Route is one entry of a Map.
type Route[H any] struct {
	handlers map[string]H
	// Pattern is the canonical key, e.g. "/user/[id]/edit".
	Pattern string
	// Source is the page file the route was discovered from, relative to
	// the scanned root. Empty for explicit registrations.
	Source   string
	Params   []string
	segments []segment
}

func newRoute[H any](pattern string) (*Route[H], error) {
	segs, params, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Route[H]{
		Pattern:  canonical(segs),
		Params:   params,
		segments: segs,
		handlers: make(map[string]H),
	}, nil
}

// Dynamic reports whether the route has parameters.
func (r *Route[H]) Dynamic() bool {
	return len(r.Params) > 0
}

// Handler returns the handler for method. HEAD falls back to GET.
func (r *Route[H]) Handler(method string) (H, bool) {
	method = strings.ToUpper(method)
	if h, ok := r.handlers[method]; ok {
		return h, true
	}
	if method == http.MethodHead {
		h, ok := r.handlers[http.MethodGet]
		return h, ok
	}
	var zero H
	return zero, false
}

// Methods returns the sorted list of methods with a handler.
func (r *Route[H]) Methods() []string {
	return slices.Sorted(maps.Keys(r.handlers))
}

func (r *Route[H]) literals() int {
	n := 0
	for _, s := range r.segments {
		if !s.param {
			n++
		}
	}
	return n
}

// match binds parameters when path segments fit the route.
func (r *Route[H]) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var params map[string]string
	for i, s := range r.segments {
		if s.param {
			if params == nil {
				params = make(map[string]string, len(r.Params))
			}
			params[s.value] = parts[i]
			continue
		}
		if !strings.EqualFold(s.value, parts[i]) {
			return nil, false
		}
	}
	return params, true
}

// parsePattern accepts "/a/[b]/c" and "/a/:b/c".
func parsePattern(pattern string) ([]segment, []string, error) {
	p := Normalize(pattern)
	if p == "/" {
		return nil, nil, nil
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	segs := make([]segment, 0, len(parts))
	var params []string
	for _, part := range parts {
		name, isParam := paramName(part)
		if !isParam {
			if strings.ContainsAny(part, "[]") {
				return nil, nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
			}
			segs = append(segs, segment{value: strings.ToLower(part)})
			continue
		}
		if !validName(name) {
			return nil, nil, fmt.Errorf("%w: bad parameter in %q", ErrInvalidPattern, pattern)
		}
		if slices.Contains(params, name) {
			return nil, nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
		}
		params = append(params, name)
		segs = append(segs, segment{value: name, param: true})
	}
	return segs, params, nil
}

func paramName(part string) (string, bool) {
	if strings.HasPrefix(part, ":") {
		return part[1:], true
	}
	if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") {
		return part[1 : len(part)-1], true
	}
	return "", false
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func canonical(segs []segment) string {
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		if s.param {
			b.WriteString("[" + s.value + "]")
		} else {
			b.WriteString(s.value)
		}
	}
	return b.String()
}

// less orders dynamic routes: more literals first, then literal-before-param
// at the first differing position, then pattern text.
func less[H any](a, b *Route[H]) int {
	if la, lb := a.literals(), b.literals(); la != lb {
		return lb - la
	}
	for i := range min(len(a.segments), len(b.segments)) {
		pa, pb := a.segments[i].param, b.segments[i].param
		if pa != pb {
			if pa {
				return 1
			}
			return -1
		}
	}
	return strings.Compare(a.Pattern, b.Pattern)
}
