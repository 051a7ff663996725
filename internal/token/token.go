// Package token signs and verifies the short-lived access and longer-lived
// refresh credentials. Access and refresh tokens are signed with independent
// secrets so that compromise of one never grants the other capability.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TypeAccess and TypeRefresh are embedded as the token_type claim and
	// checked on verification, in addition to the secret split.
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrExpired indicates a well-formed, correctly signed token whose
	// expiry has passed. Callers rely on the distinction to trigger a
	// silent refresh instead of a re-login.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid covers malformed tokens, bad signatures and tokens
	// presented against the wrong secret or token type.
	ErrInvalid = errors.New("token: invalid")
)

// Claims are the verified contents of a credential.
type Claims struct {
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec mints and verifies both credential kinds. It is pure computation and
// safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// Option configures Codec behavior.
type Option func(*Codec)

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.refreshTTL = ttl
		}
	}
}

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = strings.TrimSpace(issuer)
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a codec. The two secrets must be non-empty and distinct.
func NewCodec(accessSecret, refreshSecret string, opts ...Option) (*Codec, error) {
	accessSecret = strings.TrimSpace(accessSecret)
	refreshSecret = strings.TrimSpace(refreshSecret)
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token: both secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	c := &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     defaultAccessTTL,
		refreshTTL:    defaultRefreshTTL,
		issuer:        "streetpoints",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess mints an access token embedding the subject identity and role.
func (c *Codec) IssueAccess(subjectID, role string) (string, time.Time, error) {
	return c.issue(subjectID, role, TypeAccess, c.accessTTL, c.accessSecret)
}

// IssueRefresh mints a refresh token. It carries no role: the role is
// re-resolved from the directory when the token is redeemed.
func (c *Codec) IssueRefresh(subjectID string) (string, time.Time, error) {
	return c.issue(subjectID, "", TypeRefresh, c.refreshTTL, c.refreshSecret)
}

func (c *Codec) issue(subjectID, role, tokenType string, ttl time.Duration, secret []byte) (string, time.Time, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", time.Time{}, errors.New("token: subject is required")
	}
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess validates an access token and returns its claims.
func (c *Codec) VerifyAccess(token string) (Claims, error) {
	return c.verify(token, TypeAccess, c.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (c *Codec) VerifyRefresh(token string) (Claims, error) {
	return c.verify(token, TypeRefresh, c.refreshSecret)
}

func (c *Codec) verify(token, tokenType string, secret []byte) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalid
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }), jwt.WithIssuer(c.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.TokenType != tokenType {
		return Claims{}, ErrInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalid
	}
	return *claims, nil
}
