package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/gatekeep/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer token and stores its claims on the
// request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				WriteBearerError(w, "", "Not authenticated")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Info("bearer token rejected", "err", err)
				if errors.Is(err, jwtx.ErrExpired) {
					WriteBearerError(w, "token expired", "Could not validate credentials")
					return
				}
				WriteBearerError(w, "token verification failed", "Could not validate credentials")
				return
			}

			ctx = WithClaims(ctx, claims)
			ctx = slogx.WithUser(ctx, claims.UserID(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header. The
// scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteBearerError writes a 401 with an RFC 6750 challenge. desc is only
// included in the challenge when non-empty.
func WriteBearerError(w http.ResponseWriter, desc, detail string) {
	challenge := "Bearer"
	if desc != "" {
		challenge = `Bearer error="invalid_token", error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	WriteDetail(w, http.StatusUnauthorized, detail)
}
