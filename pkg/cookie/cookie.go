package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoSecret = errors.New("cookie: secret required")
	ErrBadSig   = errors.New("cookie: invalid signature")
	ErrDecode   = errors.New("cookie: malformed value")
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

// Manager handles cookie operations.
type Manager struct {
	secret   []byte // nil = unsigned
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager. Defaults: path "/", HttpOnly, SameSite=Strict.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteStrictMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the signing secret. Secrets shorter than
// MinSecretLength are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= MinSecretLength {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		m.path = path
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Signed reports whether a secret is configured.
func (m *Manager) Signed() bool {
	return m.secret != nil
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie. A zero maxAge makes it a session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, m.cookie(name, value, int(maxAge/time.Second)))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// GetSigned returns the value of a cookie written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	value, err := m.unsign(raw)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// SetSigned sets a cookie carrying an HMAC-SHA256 signature.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge time.Duration) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	m.Set(w, name, m.sign([]byte(value)), maxAge)
	return nil
}

// SetJSON stores v as base64url JSON, signed when a secret is configured.
func (m *Manager) SetJSON(w http.ResponseWriter, name string, v any, maxAge time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if m.secret != nil {
		m.Set(w, name, m.sign(data), maxAge)
		return nil
	}
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(data), maxAge)
	return nil
}

// GetJSON decodes a cookie written by SetJSON into dest.
func (m *Manager) GetJSON(r *http.Request, name string, dest any) error {
	raw, err := m.Get(r, name)
	if err != nil {
		return err
	}

	var data []byte
	if m.secret != nil {
		data, err = m.unsign(raw)
	} else {
		data, err = base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			err = ErrDecode
		}
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// Flash reads a JSON cookie into dest and deletes it. The cookie is
// deleted even when it cannot be decoded.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, name string, dest any) error {
	err := m.GetJSON(r, name, dest)
	if errors.Is(err, ErrNotFound) {
		return err
	}
	m.Delete(w, name)
	return err
}

// format: base64(value).base64(signature)
func (m *Manager) sign(value []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	return base64.RawURLEncoding.EncodeToString(value) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) unsign(raw string) ([]byte, error) {
	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return nil, ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return nil, ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return nil, ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrBadSig
	}
	return value, nil
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
