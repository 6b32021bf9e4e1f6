package fsroute

import (
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
)

// Map holds the route table. It is built at startup and must not be
// modified while serving requests.
type Map[H any] struct {
	exact   map[string]*Route[H]
	dynamic []*Route[H]
}

// Match is a resolved route with its bound parameters.
type Match[H any] struct {
	Route  *Route[H]
	Params map[string]string
}

// New returns an empty Map.
func New[H any]() *Map[H] {
	return &Map[H]{exact: make(map[string]*Route[H])}
}

// Build scans root inside fsys and registers a route for every page file.
func Build[H any](fsys fs.FS, root string) (*Map[H], error) {
	m := New[H]()
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(d.Name(), "_") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel := p
		if root != "." {
			rel = strings.TrimPrefix(p, root+"/")
		}
		key := KeyFromFile(rel)
		if existing, ok := m.lookup(key); ok {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrDuplicateRoute, existing.Source, rel, key)
		}
		r, err := m.Add(key)
		if err != nil {
			return err
		}
		r.Source = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// KeyFromFile derives the route key for a page file path.
func KeyFromFile(file string) string {
	dir, name := path.Split(file)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	key := strings.ToLower(path.Join("/", dir, name))
	if key == "/index" {
		return "/"
	}
	return strings.TrimSuffix(key, "/index")
}

// Normalize cleans a request path: single leading slash, no duplicate or
// trailing slashes.
func Normalize(p string) string {
	return path.Clean("/" + p)
}

// Add registers pattern and returns its route. Registering an existing
// pattern returns the existing route.
func (m *Map[H]) Add(pattern string) (*Route[H], error) {
	r, err := newRoute[H](pattern)
	if err != nil {
		return nil, err
	}
	if existing, ok := m.lookup(r.Pattern); ok {
		return existing, nil
	}

	if !r.Dynamic() {
		m.exact[r.Pattern] = r
		return r, nil
	}
	m.dynamic = append(m.dynamic, r)
	slices.SortStableFunc(m.dynamic, less[H])
	return r, nil
}

// Handle registers h for method on pattern, adding the route if needed.
func (m *Map[H]) Handle(pattern, method string, h H) error {
	if method == "" {
		return ErrMethodRequired
	}
	r, err := m.Add(pattern)
	if err != nil {
		return err
	}
	r.handlers[strings.ToUpper(method)] = h
	return nil
}

// Lookup returns the route registered under pattern.
func (m *Map[H]) Lookup(pattern string) (*Route[H], bool) {
	segs, _, err := parsePattern(pattern)
	if err != nil {
		return nil, false
	}
	return m.lookup(canonical(segs))
}

func (m *Map[H]) lookup(key string) (*Route[H], bool) {
	if r, ok := m.exact[key]; ok {
		return r, true
	}
	for _, r := range m.dynamic {
		if r.Pattern == key {
			return r, true
		}
	}
	return nil, false
}

// Routes returns all routes: static ones sorted by pattern, then dynamic
// ones in resolution order.
func (m *Map[H]) Routes() []*Route[H] {
	out := make([]*Route[H], 0, len(m.exact)+len(m.dynamic))
	for _, k := range slices.Sorted(maps.Keys(m.exact)) {
		out = append(out, m.exact[k])
	}
	return append(out, m.dynamic...)
}

// Resolve finds the route for a request path.
func (m *Map[H]) Resolve(requestPath string) (Match[H], bool) {
	p := Normalize(requestPath)
	if r, ok := m.exact[strings.ToLower(p)]; ok {
		return Match[H]{Route: r}, true
	}
	if p == "/" {
		return Match[H]{}, false
	}

	parts := strings.Split(p[1:], "/")
	for _, r := range m.dynamic {
		if params, ok := r.match(parts); ok {
			return Match[H]{Route: r, Params: params}, true
		}
	}
	return Match[H]{}, false
}
