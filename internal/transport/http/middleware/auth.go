package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shrinkr-io/shrinkr/internal/constants"
	"github.com/shrinkr-io/shrinkr/internal/processing/auth"
	"github.com/shrinkr-io/shrinkr/pkg/httputils"
)

// AuthTokenHeader carries the raw signed token. The standard
// Authorization: Bearer form is accepted as well.
const AuthTokenHeader = "X-Auth-Token"

type identityKey struct{}

// IdentityFromContext returns the authenticated user id attached by
// OptionalAuth, if any.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// WithIdentity returns a copy of ctx carrying the given user id. Exposed
// for handler tests.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// OptionalAuth verifies a bearer token when one is present. A request
// without a token proceeds unauthenticated; a request with an invalid or
// expired token is rejected before reaching the handler.
func OptionalAuth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				httputils.WriteAPIError(w, r, constants.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AuthTokenHeader)); token != "" {
		return token
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
