package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "ministore-console"

var ErrInvalidToken = errors.New("invalid session token")

// TokenMaker signs the console's own session cookie.
type TokenMaker struct {
	secret []byte
	now    func() time.Time
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{secret: []byte(secret), now: time.Now}
}

type Claims struct {
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	OrgCode string `json:"org_code,omitempty"`
	jwt.RegisteredClaims
}

// New signs a cookie token for s. The backend token is deliberately not embedded.
func (t *TokenMaker) New(s *Session) (string, error) {
	now := t.now()

	claims := Claims{
		Email:   s.Email,
		Role:    s.Role,
		OrgCode: s.OrgCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || token == nil || !token.Valid || c.ID == "" {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}

// BackendExpiry reads the exp claim of a backend-issued JWT without verifying it;
// the console cannot verify it and only uses the value to bound its own session.
// ok is false when the token is not a JWT or carries no expiry.
func BackendExpiry(token string) (exp time.Time, ok bool) {
	var c jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return time.Time{}, false
	}
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}
