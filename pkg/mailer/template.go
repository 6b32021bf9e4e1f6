package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontmatterDelim = []byte("---")

// Template is a markdown body with its YAML front matter.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits "---\n<yaml>\n---\n<markdown>". Content without a
// leading delimiter is all body.
func ParseTemplate(content []byte) (*Template, error) {
	tpl := &Template{Metadata: map[string]any{}}
	if !bytes.HasPrefix(content, frontmatterDelim) {
		tpl.Body = string(content)
		return tpl, nil
	}

	rest := bytes.TrimLeft(content[len(frontmatterDelim):], "\r\n")
	end := bytes.Index(rest, frontmatterDelim)
	if end == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	if meta := bytes.TrimSpace(rest[:end]); len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &tpl.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+len(frontmatterDelim):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	tpl.Body = string(body)
	return tpl, nil
}
