package middlewares

import (
	"bytes"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrymomot/userdesk/internal"
)

const (
	cacheFonts  = "public, max-age=31536000, immutable"
	cacheAssets = "public, max-age=86400"
)

var fontTypes = map[string]string{
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
}

// Static serves files of fsys under the URL prefix and skips the rest of
// the chain for them. Paths that name no file fall through. Directories
// are refused with 403.
//
// In production, a ".br" sibling of an html, css or js file is served to
// clients that accept br, and cache headers are set. In dev the no-cache
// header from SecureHeaders stays.
func Static(fsys fs.FS, prefix string, prod bool) internal.Middleware {
	prefix = "/" + strings.Trim(prefix, "/")

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				return next(c)
			}

			rel, ok := strings.CutPrefix(r.URL.Path, prefix)
			if !ok || (rel != "" && rel[0] != '/') {
				return next(c)
			}
			name := strings.TrimPrefix(path.Clean("/"+rel), "/")
			if name == "" {
				name = "."
			}
			if !fs.ValidPath(name) {
				return next(c)
			}

			info, err := fs.Stat(fsys, name)
			if err != nil {
				return next(c)
			}
			if info.IsDir() {
				return internal.ErrForbidden("Directory listing not allowed")
			}

			return serveFile(c, fsys, name, prod)
		}
	}
}

func serveFile(c internal.Context, fsys fs.FS, name string, prod bool) error {
	h := c.Response().Header()
	ext := path.Ext(name)
	ctype, isFont := fontTypes[ext]
	if !isFont {
		ctype = mime.TypeByExtension(ext)
	}
	if ctype != "" {
		h.Set("Content-Type", ctype)
	}

	served := name
	if prod && compressible(ext) {
		h.Add("Vary", "Accept-Encoding")
		if strings.Contains(c.Header("Accept-Encoding"), "br") {
			if bi, err := fs.Stat(fsys, name+".br"); err == nil && bi.Mode().IsRegular() {
				served = name + ".br"
				h.Set("Content-Encoding", "br")
			}
		}
	}

	if prod {
		if isFont {
			h.Set("Cache-Control", cacheFonts)
		} else {
			h.Set("Cache-Control", cacheAssets)
		}
	}

	f, err := fsys.Open(served)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		rs = bytes.NewReader(data)
	}

	http.ServeContent(c.Response(), c.Request(), "", info.ModTime(), rs)
	return nil
}

func compressible(ext string) bool {
	switch ext {
	case ".html", ".css", ".js":
		return true
	}
	return false
}
