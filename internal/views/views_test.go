package views_test

import (
	"bytes"
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/internal/views"
	"github.com/dmitrymomot/userdesk/pkg/fsroute"
)

func render(t *testing.T, r *views.Renderer, name string, data map[string]any) string {
	t.Helper()
	base := map[string]any{
		"User":   (*users.User)(nil),
		"Alert":  (*internal.Alert)(nil),
		"Dev":    false,
		"Nonce":  "n0nce",
		"Path":   "/",
		"Form":   map[string]string{},
		"Errors": map[string]string{},
	}
	for k, v := range data {
		base[k] = v
	}
	comp, err := r.Page(name, base)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, comp.Render(context.Background(), &buf))
	return buf.String()
}

func TestEmbeddedPagesParse(t *testing.T) {
	t.Parallel()

	r, err := views.Default(false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"_error",
		"index",
		"auth/login",
		"auth/register",
		"auth/profile",
		"user/index",
		"user/create",
		"user/[id]/index",
		"user/[id]/edit",
		"user/[id]/change-password",
	}, r.Names())
}

func TestEmbeddedPagesBuildRoutes(t *testing.T) {
	t.Parallel()

	m, err := fsroute.Build[struct{}](views.Files, views.PagesDir)
	require.NoError(t, err)

	for _, p := range []string{"/", "/auth/login", "/user", "/user/create", "/user/[id]", "/user/[id]/change-password"} {
		_, ok := m.Lookup(p)
		assert.True(t, ok, p)
	}
	_, ok := m.Lookup("/_error")
	assert.False(t, ok)
}

func TestRenderPages(t *testing.T) {
	t.Parallel()

	r, err := views.Default(false)
	require.NoError(t, err)

	admin := &users.User{ID: "a1", Username: "james", Email: "james@example.com", Role: users.RoleAdmin}
	member := &users.User{ID: "u1", Username: "bob", Email: "bob@example.com", Role: users.RoleUser, CreatedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)}

	t.Run("home renders markdown", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "index", nil)
		assert.Contains(t, out, "<h1>Welcome to Userdesk</h1>")
		assert.Contains(t, out, `<script src="/public/scripts.js" nonce="n0nce">`)
		assert.Contains(t, out, `href="/auth/login"`)
	})

	t.Run("nav for admin", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "index", map[string]any{"User": admin})
		assert.Contains(t, out, `href="/user"`)
		assert.Contains(t, out, "Log out")
		assert.NotContains(t, out, `href="/auth/register"`)
	})

	t.Run("record level error wins over alert", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "auth/login", map[string]any{
			"Errors": users.Errors{"all": "Invalid credentials"},
			"Alert":  &internal.Alert{Message: "hello", Type: internal.AlertInfo},
		})
		assert.Contains(t, out, `<div class="alert alert-error" role="alert">Invalid credentials</div>`)
		assert.NotContains(t, out, "hello")
	})

	t.Run("alert", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "index", map[string]any{
			"Alert": &internal.Alert{Message: "Saved", Type: internal.AlertSuccess},
		})
		assert.Contains(t, out, `<div class="alert alert-success" role="status">Saved</div>`)
	})

	t.Run("register keeps values and shows field errors", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "auth/register", map[string]any{
			"Form":   users.Input{"username": "<b>x</b>", "email": "bad"},
			"Errors": users.Errors{"email": "Invalid email"},
		})
		assert.Contains(t, out, `value="&lt;b&gt;x&lt;/b&gt;"`)
		assert.Contains(t, out, `<small class="field-error">Invalid email</small>`)
		assert.NotContains(t, out, "<b>x</b>")
	})

	t.Run("user list", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "user/index", map[string]any{"User": admin, "Users": []users.User{*admin, *member}})
		assert.Contains(t, out, "Found 2 users")
		assert.Contains(t, out, `<a href="/user/u1">bob</a>`)
	})

	t.Run("empty user list", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "user/index", map[string]any{"User": admin, "Users": []users.User{}})
		assert.Contains(t, out, "No users found")
	})

	t.Run("detail hides delete from non admins", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "user/[id]/index", map[string]any{"User": member, "Selected": member})
		assert.Contains(t, out, "2024-01-02 03:04")
		assert.NotContains(t, out, "deleteModal")

		out = render(t, r, "user/[id]/index", map[string]any{"User": admin, "Selected": member})
		assert.Contains(t, out, `action="/user/u1/delete"`)
	})

	t.Run("edit shows role select to admins only", func(t *testing.T) {
		t.Parallel()
		form := users.Input{"username": "bob", "email": "bob@example.com", "role": "user"}
		out := render(t, r, "user/[id]/edit", map[string]any{"User": member, "Selected": member, "Form": form})
		assert.NotContains(t, out, `name="role"`)

		out = render(t, r, "user/[id]/edit", map[string]any{"User": admin, "Selected": member, "Form": form})
		assert.Contains(t, out, `<option value="user" selected>`)
	})

	t.Run("change password", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "user/[id]/change-password", map[string]any{"User": admin, "Selected": member})
		assert.Contains(t, out, "You are resetting another user")
		assert.NotContains(t, out, "currentPassword")

		out = render(t, r, "user/[id]/change-password", map[string]any{"User": member, "Selected": member})
		assert.NotContains(t, out, "You are resetting another user")
		assert.Contains(t, out, `name="currentPassword"`)
	})

	t.Run("error page", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, "_error", map[string]any{"Status": 403, "Message": "Forbidden", "Path": "/user"})
		assert.Contains(t, out, "<title>Error 403</title>")
		assert.Contains(t, out, "You are not logged in.")

		out = render(t, r, "_error", map[string]any{"Status": 404, "Message": "Page not found", "Path": "/nope", "Stack": "trace"})
		assert.Contains(t, out, "could not be found")
		assert.Contains(t, out, "<pre>trace</pre>")
	})
}

func TestUnknownPage(t *testing.T) {
	t.Parallel()

	r, err := views.Default(false)
	require.NoError(t, err)
	_, err = r.Page("missing", nil)
	require.ErrorIs(t, err, views.ErrPageNotFound)
}

func testFS(body string) fstest.MapFS {
	return fstest.MapFS{
		"pages/_layout.html":       {Data: []byte(`{{define "layout"}}[{{template "title" .}}]{{template "content" .}}{{end}}`)},
		"pages/_partials/nop.html": {Data: []byte(`{{define "nop"}}{{end}}`)},
		"pages/index.html":         {Data: []byte(body)},
		"content/doc.md":           {Data: []byte("*hi*")},
	}
}

func TestDevReparses(t *testing.T) {
	t.Parallel()

	fsys := testFS(`{{define "title"}}A{{end}}{{define "content"}}{{markdown "doc.md"}}{{end}}`)
	r, err := views.NewRenderer(fsys, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	comp, err := r.Page("index", nil)
	require.NoError(t, err)
	require.NoError(t, comp.Render(context.Background(), &buf))
	assert.Equal(t, "[A]<p><em>hi</em></p>\n", buf.String())

	fsys["pages/index.html"] = &fstest.MapFile{Data: []byte(`{{define "title"}}B{{end}}{{define "content"}}{{end}}`)}
	buf.Reset()
	comp, err = r.Page("index", nil)
	require.NoError(t, err)
	require.NoError(t, comp.Render(context.Background(), &buf))
	assert.Equal(t, "[B]", buf.String())
}

func TestBrokenTemplate(t *testing.T) {
	t.Parallel()

	_, err := views.NewRenderer(testFS(`{{define "content"}}{{.Oops`), false)
	require.Error(t, err)
}

func TestPublicAssets(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"styles.css", "scripts.js"} {
		_, err := fs.Stat(views.Public, name)
		assert.NoError(t, err, name)
	}
}
