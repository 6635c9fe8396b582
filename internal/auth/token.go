// Package auth implements credential issuance and verification: session
// tokens, registration and login, and the request guard for protected
// routes.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single outcome for any token the service will not
// accept: bad signature, wrong algorithm, malformed structure, or expired.
// Callers are told nothing that would help forging.
var ErrInvalidToken = errors.New("invalid token")

// validationLeeway absorbs modest clock skew between issuer and validator
// when checking exp/iat.
const validationLeeway = 30 * time.Second

// TokenService issues and validates HS256-signed session tokens. Tokens are
// self-contained (subject, issued-at, expiry) and never revoked server-side;
// expiry is the only termination mechanism.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token whose subject is the user id.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	return token.SignedString(s.secret)
}

// Validate checks signature, algorithm and expiry and returns the subject
// user id. Any failure collapses to ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(validationLeeway),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
