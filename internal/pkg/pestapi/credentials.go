package pestapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials carries the caller's bearer token for one request.
type Credentials struct {
	Token string
}

func (c Credentials) token() string {
	return strings.TrimSpace(c.Token)
}

// Present reports whether a token was supplied at all.
func (c Credentials) Present() bool {
	return c.token() != ""
}

// check runs the local pre-flight: a token must exist, and a JWT must not be expired.
// Signatures are not verified here; the marketplace API owns that.
func (c Credentials) check(now time.Time) error {
	token := c.token()
	if token == "" {
		return ErrMissingToken
	}
	if strings.Count(token, ".") != 2 {
		return nil
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// Opaque tokens that merely look like JWTs go through unchanged.
		return nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(now) {
		return ErrExpiredToken
	}
	return nil
}
