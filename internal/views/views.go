// Package views holds the page templates, the markdown content and the
// public assets, all embedded into the binary.
//
// Every file under pages/ that does not start with an underscore becomes a
// route. A page defines the "title" and "content" templates and is
// rendered inside _layout.html together with the _partials.
package views

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dmitrymomot/userdesk/internal"
)

//go:embed all:pages content public
var files embed.FS

// PagesDir is the directory in Files holding the page templates.
const PagesDir = "pages"

// Files is the embedded tree: pages/, content/ and public/.
var Files fs.FS = files

// Public is the static asset tree served under /public.
var Public = mustSub(files, "public")

// ErrPageNotFound is returned for names without a template.
var ErrPageNotFound = errors.New("views: page not found")

const layoutName = "layout"

// Renderer executes page templates. In dev mode templates are parsed on
// every call so edits show up without a restart.
type Renderer struct {
	fsys fs.FS
	md   goldmark.Markdown
	dev  bool

	mu    sync.RWMutex
	pages map[string]*template.Template
	docs  map[string]template.HTML
}

// NewRenderer parses the pages in fsys. fsys must have the same layout as
// Files.
func NewRenderer(fsys fs.FS, dev bool) (*Renderer, error) {
	r := &Renderer{
		fsys: fsys,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		dev:  dev,
		docs: make(map[string]template.HTML),
	}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

// Default renders the embedded templates.
func Default(dev bool) (*Renderer, error) {
	return NewRenderer(files, dev)
}

// Page returns the component for name, e.g. "user/[id]/edit" or "_error".
func (r *Renderer) Page(name string, data map[string]any) (internal.Component, error) {
	pages := r.current()
	if r.dev {
		var err error
		if pages, err = r.parse(); err != nil {
			return nil, err
		}
	}

	tpl, ok := pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, name)
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return tpl.ExecuteTemplate(w, layoutName, data)
	}), nil
}

// Names lists the parsed pages.
func (r *Renderer) Names() []string {
	pages := r.current()
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	return names
}

func (r *Renderer) current() map[string]*template.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pages
}

func (r *Renderer) parse() (map[string]*template.Template, error) {
	base, err := template.New(layoutName).
		Funcs(r.funcs()).
		ParseFS(r.fsys, PagesDir+"/_layout.html", PagesDir+"/_partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("views: parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(r.fsys, PagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, PagesDir+"/")
		if d.IsDir() {
			if rel == "_partials" {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != ".html" || rel == "_layout.html" {
			return nil
		}

		tpl, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := tpl.ParseFS(r.fsys, p); err != nil {
			return fmt.Errorf("views: parse %s: %w", rel, err)
		}
		pages[internal.PageName(rel)] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": r.markdown,
		"lower":    strings.ToLower,
		"date": func(t interface{ Format(string) string }) string {
			return t.Format("2006-01-02 15:04")
		},
	}
}

// markdown renders content/<name> once and caches the result outside dev.
func (r *Renderer) markdown(name string) (template.HTML, error) {
	if !r.dev {
		r.mu.RLock()
		doc, ok := r.docs[name]
		r.mu.RUnlock()
		if ok {
			return doc, nil
		}
	}

	src, err := fs.ReadFile(r.fsys, path.Join("content", name))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", err
	}
	doc := template.HTML(buf.String()) //nolint:gosec // embedded content, not user input

	r.mu.Lock()
	r.docs[name] = doc
	r.mu.Unlock()
	return doc, nil
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
