package internal

import "strings"

// ExtractorSource reads one candidate value from the request. An empty
// value counts as absent.
type ExtractorSource = func(Context) (string, bool)

// Extractor returns the first value found by its sources, in order.
type Extractor []ExtractorSource

// NewExtractor builds an Extractor from sources.
func NewExtractor(sources ...ExtractorSource) Extractor { return sources }

func (e Extractor) Extract(c Context) (string, bool) {
	for _, read := range e {
		if v, ok := read(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Header(name)
		return v, v != ""
	}
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Query(name)
		return v, v != ""
	}
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookies().Get(c.Request(), name)
		return v, err == nil && v != ""
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header,
// matching the scheme case-insensitively.
func FromBearerToken() ExtractorSource {
	const scheme = "bearer "
	return func(c Context) (string, bool) {
		h := c.Header("Authorization")
		if len(h) < len(scheme) || !strings.EqualFold(h[:len(scheme)], scheme) {
			return "", false
		}
		tok := strings.TrimSpace(h[len(scheme):])
		return tok, tok != ""
	}
}
