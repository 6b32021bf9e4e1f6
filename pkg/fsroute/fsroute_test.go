package fsroute_test

import (
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/pkg/fsroute"
)

func pages() fstest.MapFS {
	return fstest.MapFS{
		"pages/index.html":                     {Data: []byte("home")},
		"pages/_layout.html":                   {Data: []byte("layout")},
		"pages/_partials/nav.html":             {Data: []byte("nav")},
		"pages/auth/login.html":                {Data: []byte("login")},
		"pages/auth/Register.html":             {Data: []byte("register")},
		"pages/user/index.html":                {Data: []byte("users")},
		"pages/user/create.html":               {Data: []byte("create")},
		"pages/user/[id]/index.html":           {Data: []byte("detail")},
		"pages/user/[id]/edit.html.tmpl":       {Data: []byte("edit")},
		"pages/user/[id]/change-password.html": {Data: []byte("change")},
	}
}

func TestKeyFromFile(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"index.html":             "/",
		"auth/login.html":        "/auth/login",
		"user/index.html":        "/user",
		"user/[id]/index.html":   "/user/[id]",
		"user/[id]/edit.html.js": "/user/[id]/edit",
		"About/Team.html":        "/about/team",
	}
	for in, want := range tests {
		assert.Equal(t, want, fsroute.KeyFromFile(in), in)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	m, err := fsroute.Build[string](pages(), "pages")
	require.NoError(t, err)

	var patterns []string
	for _, r := range m.Routes() {
		patterns = append(patterns, r.Pattern)
	}
	assert.ElementsMatch(t, []string{
		"/", "/auth/login", "/auth/register", "/user", "/user/create",
		"/user/[id]", "/user/[id]/edit", "/user/[id]/change-password",
	}, patterns)

	r, ok := m.Lookup("/user/:id/edit")
	require.True(t, ok)
	assert.Equal(t, "user/[id]/edit.html.tmpl", r.Source)
	assert.Equal(t, []string{"id"}, r.Params)
}

func TestBuildRejectsCollisions(t *testing.T) {
	t.Parallel()

	_, err := fsroute.Build[string](fstest.MapFS{
		"p/user.html":       {},
		"p/user/index.html": {},
	}, "p")
	require.ErrorIs(t, err, fsroute.ErrDuplicateRoute)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	m, err := fsroute.Build[string](pages(), "pages")
	require.NoError(t, err)

	tests := []struct {
		path    string
		pattern string
		params  map[string]string
	}{
		{"/", "/", nil},
		{"", "/", nil},
		{"/auth/login/", "/auth/login", nil},
		{"/AUTH/Login", "/auth/login", nil},
		{"//user//", "/user", nil},
		{"/user/create", "/user/create", nil},
		{"/user/AbC123", "/user/[id]", map[string]string{"id": "AbC123"}},
		{"/user/u1/edit", "/user/[id]/edit", map[string]string{"id": "u1"}},
		{"/USER/u1/EDIT/", "/user/[id]/edit", map[string]string{"id": "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			match, ok := m.Resolve(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.pattern, match.Route.Pattern)
			assert.Equal(t, tt.params, match.Params)
		})
	}

	for _, p := range []string{"/nope", "/user/u1/edit/extra", "/auth"} {
		_, ok := m.Resolve(p)
		assert.False(t, ok, p)
	}
}

func TestResolvePrecedenceIndependentOfOrder(t *testing.T) {
	t.Parallel()

	m := fsroute.New[string]()
	_, err := m.Add("/[section]/[id]")
	require.NoError(t, err)
	_, err = m.Add("/[section]/new")
	require.NoError(t, err)
	_, err = m.Add("/user/[id]")
	require.NoError(t, err)
	_, err = m.Add("/user/create")
	require.NoError(t, err)

	match, ok := m.Resolve("/user/create")
	require.True(t, ok)
	assert.Equal(t, "/user/create", match.Route.Pattern)

	match, ok = m.Resolve("/user/new")
	require.True(t, ok)
	assert.Equal(t, "/user/[id]", match.Route.Pattern, "earlier literal wins on equal literal count")

	match, ok = m.Resolve("/post/new")
	require.True(t, ok)
	assert.Equal(t, "/[section]/new", match.Route.Pattern)

	match, ok = m.Resolve("/post/42")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"section": "post", "id": "42"}, match.Params)
}

func TestHandle(t *testing.T) {
	t.Parallel()

	m := fsroute.New[string]()
	require.NoError(t, m.Handle("/user/:id", "get", "show"))
	require.NoError(t, m.Handle("/user/[id]", http.MethodPost, "update"))
	require.ErrorIs(t, m.Handle("/x", "", "h"), fsroute.ErrMethodRequired)

	match, ok := m.Resolve("/user/7")
	require.True(t, ok)
	assert.Equal(t, []string{"GET", "POST"}, match.Route.Methods())

	h, ok := match.Route.Handler(http.MethodHead)
	require.True(t, ok)
	assert.Equal(t, "show", h)

	_, ok = match.Route.Handler(http.MethodDelete)
	assert.False(t, ok)
}

func TestAddRejectsBadPatterns(t *testing.T) {
	t.Parallel()

	m := fsroute.New[string]()
	_, err := m.Add("/a/[id]/b/:id")
	require.ErrorIs(t, err, fsroute.ErrDuplicateParam)

	_, err = m.Add("/a/[]")
	require.ErrorIs(t, err, fsroute.ErrInvalidPattern)

	_, err = m.Add("/a/x[y")
	require.ErrorIs(t, err, fsroute.ErrInvalidPattern)
}
