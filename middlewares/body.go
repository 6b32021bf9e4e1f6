package middlewares

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/dmitrymomot/userdesk/internal"
)

// DefaultBodyLimit bounds request bodies to 1 MiB.
const DefaultBodyLimit int64 = 1 << 20

// Body parses POST, PUT and PATCH bodies into the context. JSON objects and
// urlencoded or multipart forms are supported. A form field sent once is a
// string, repeated fields are []string. Unsupported types, malformed
// payloads and bodies over maxBytes leave the body nil.
func Body(maxBytes int64) internal.Middleware {
	if maxBytes <= 0 {
		maxBytes = DefaultBodyLimit
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				return next(c)
			}

			r.Body = http.MaxBytesReader(c.Response(), r.Body, maxBytes)
			body, err := parseBody(r, maxBytes)
			if err != nil {
				c.LogDebug("request body ignored", "error", err, "content_type", r.Header.Get("Content-Type"))
			}
			c.SetBody(body)
			return next(c)
		}
	}
}

func parseBody(r *http.Request, maxBytes int64) (map[string]any, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	switch mediaType {
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		return body, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	body := make(map[string]any, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) == 1 {
			body[k] = vs[0]
		} else {
			body[k] = vs
		}
	}
	return body, nil
}
