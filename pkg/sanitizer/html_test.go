package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/userdesk/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script injection", `<p>Hello</p><script>alert('xss')</script>`, "Hello"},
		{"nested tags", `<p>Hello <strong>world</strong></p>`, "Hello world"},
		{"event handler", `<img src="x" onerror="alert('xss')">`, ""},
		{"javascript url", `<a href="javascript:alert('xss')">click</a>`, "click"},
		{"plain text with ampersand", `Tom & Jerry`, "Tom & Jerry"},
		{"quotes survive", `O'Brien "Bob"`, `O'Brien "Bob"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	out := sanitizer.Fields(map[string]string{
		"username": "  <b>james</b> ",
		"password": " <secret> ",
	}, "password")

	assert.Equal(t, "james", out["username"])
	assert.Equal(t, " <secret> ", out["password"])
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	out := sanitizer.SanitizeHTML(`<p>Hi <a href="https://example.com">there</a></p><script>x()</script>`)
	assert.Contains(t, out, "<p>Hi ")
	assert.Contains(t, out, "nofollow")
	assert.NotContains(t, out, "<script>")
}
