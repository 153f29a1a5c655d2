package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/newsdesk-cms/newsdesk/internal/accounts"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Claims is the token payload: the account id plus email and role title.
// The role claim exists for client display only and is never consulted
// for authorization; grants are re-fetched from the store per request.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 bearer tokens. There is no
// refresh mechanism; an expired token requires a fresh login.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with the shared signing secret
// and token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue produces a signed, time-bounded credential for the account.
func (t *TokenIssuer) Issue(a *accounts.Account) (string, error) {
	now := t.now().UTC()
	claims := Claims{
		ID:    a.ID,
		Email: a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	if a.Role != nil {
		claims.Role = a.Role.Title
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a raw token string. Malformed, expired, or
// wrongly-signed tokens all fail as ErrUnauthenticated.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, shared.Wrap(shared.ErrUnauthenticated, "invalid or expired token")
	}
	return claims, nil
}
