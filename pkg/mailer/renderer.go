package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Renderer turns markdown templates with front matter into HTML wrapped
// in a layout. Parsed templates are cached; rendered output is not.
type Renderer struct {
	fs          fs.FS
	md          goldmark.Markdown
	templates   map[string]*parsedTemplate
	layouts     map[string]*template.Template
	templateDir string
	layoutDir   string
	mu          sync.RWMutex
}

type parsedTemplate struct {
	metadata map[string]any
	body     *texttemplate.Template
}

// RenderResult is a rendered message. Text is the markdown after template
// execution and serves as the plain-text alternative.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTemplateDir sets the directory holding markdown templates (default ".").
func WithTemplateDir(dir string) RendererOption {
	return func(r *Renderer) { r.templateDir = dir }
}

// WithLayoutDir sets the directory holding HTML layouts (default "layouts").
func WithLayoutDir(dir string) RendererOption {
	return func(r *Renderer) { r.layoutDir = dir }
}

// NewRenderer reads templates from fsys.
func NewRenderer(fsys fs.FS, opts ...RendererOption) *Renderer {
	r := &Renderer{
		fs:          fsys,
		md:          goldmark.New(goldmark.WithExtensions(ButtonExtension())),
		templates:   make(map[string]*parsedTemplate),
		layouts:     make(map[string]*template.Template),
		templateDir: ".",
		layoutDir:   "layouts",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render executes the named template with data, converts it to HTML and
// places the result in layout as .Content.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	tpl, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := tpl.body.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := lt.Execute(&out, map[string]any{
		"Content":  template.HTML(content.String()), //nolint:gosec // produced by goldmark from our own templates
		"Metadata": tpl.metadata,
	}); err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{
		Metadata: tpl.metadata,
		HTML:     out.String(),
		Text:     markdown.String(),
	}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	body, err := texttemplate.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tpl = &parsedTemplate{metadata: parsed.Metadata, body: body}
	r.mu.Lock()
	r.templates[name] = tpl
	r.mu.Unlock()
	return tpl, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	lt, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return lt, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}
	lt, err = template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
	}

	r.mu.Lock()
	r.layouts[name] = lt
	r.mu.Unlock()
	return lt, nil
}
