// Package jwt issues and verifies HS256-signed JSON Web Tokens.
//
// It wraps github.com/golang-jwt/jwt/v5 with a small service that owns the
// signing secret and the token lifetime:
//
//	svc, err := jwt.NewFromString(os.Getenv("JWT_SECRET"), jwt.WithTTL(7*24*time.Hour))
//	token, err := svc.Issue(user.ID)
//	claims, err := svc.Verify(token) // claims.Subject == user.ID
//
// Custom claim types are supported through Generate and Parse.
package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted signing secret size in bytes.
const MinSecretLength = 32

// DefaultTTL is the token lifetime used when WithTTL is not given.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrSecretTooShort   = errors.New("jwt: secret must be at least 32 bytes")
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token expired")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrMissingSubject   = errors.New("jwt: missing subject")
)

// StandardClaims is the claim set used by Issue and Verify.
type StandardClaims = gojwt.RegisteredClaims

// Service signs and parses tokens with a single HMAC secret.
type Service struct {
	now    func() time.Time
	issuer string
	secret []byte
	ttl    time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the lifetime of tokens created by Issue.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithIssuer sets the iss claim on issued tokens and requires it on verify.
func WithIssuer(iss string) Option {
	return func(s *Service) {
		s.issuer = iss
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service with the given secret.
func New(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	s := &Service{
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is New for string secrets, typically read from the environment.
func NewFromString(secret string, opts ...Option) (*Service, error) {
	return New([]byte(secret), opts...)
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token whose subject is the given id.
func (s *Service) Issue(subject string) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	return s.Generate(StandardClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
	})
}

// Verify parses a token created by Issue and returns its claims.
func (s *Service) Verify(token string) (*StandardClaims, error) {
	var claims StandardClaims
	if err := s.Parse(token, &claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return &claims, nil
}

// Generate signs arbitrary claims with HS256.
func (s *Service) Generate(claims gojwt.Claims) (string, error) {
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the token signature and expiry and decodes it into claims,
// which must be a pointer to a type implementing jwt.Claims.
func (s *Service) Parse(token string, claims gojwt.Claims) error {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
