package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fixacareer/fixauth"
)

type principalContextKey struct{}

// PrincipalFromContext returns the [fixauth.Principal] attached by [Guard],
// if any.
func PrincipalFromContext(ctx context.Context) (*fixauth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*fixauth.Principal)
	return p, ok
}

// Guard gates a route on a bearer access token and a required role. On
// success the resolved principal (credential fields excluded) is attached
// to the request context. Missing or malformed headers, verification
// failures, and role mismatches all answer 401; a credential store outage
// answers 503, since the token itself may well be good.
func Guard(engine *fixauth.Engine, required fixauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := engine.Authorize(r.Context(), token, required)
			if err != nil {
				if errors.Is(err, fixauth.ErrStoreUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
