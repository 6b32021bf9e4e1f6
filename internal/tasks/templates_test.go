package tasks

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRooted(t *testing.T) {
	t.Parallel()

	_, err := fs.Stat(Templates, "welcome.md")
	require.NoError(t, err)

	assert.Panics(t, func() { mustSub(templates, "../templates") })
}
