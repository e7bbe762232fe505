package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
	"github.com/pestguard/pestguard-web/internal/pkg/response"
)

type contextKey string

const CredentialsKey contextKey = "credentials"

// Credentials copies the bearer token into the request context. Requests
// without one continue with empty credentials.
func Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := pestapi.Credentials{Token: bearerToken(r.Header.Get("Authorization"))}
		ctx := context.WithValue(r.Context(), CredentialsKey, creds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCredentials rejects requests that carry no bearer token.
func RequireCredentials(next http.Handler) http.Handler {
	return Credentials(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetCredentials(r.Context()).Present() {
			response.Unauthorized(w, pestapi.ErrMissingToken.Error())
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// GetCredentials extracts credentials from context
func GetCredentials(ctx context.Context) pestapi.Credentials {
	if creds, ok := ctx.Value(CredentialsKey).(pestapi.Credentials); ok {
		return creds
	}
	return pestapi.Credentials{}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
