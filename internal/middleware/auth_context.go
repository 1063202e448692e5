package middleware

import (
	"context"
	"net/http"
	"strings"

	"psyjaciele/internal/ports/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// AuthContext:
// - Si verifier != nil y viene Bearer token => intenta Verify() y setea el principal.
// - Si verifier == nil => modo dev: X-Debug-User-ID (+ X-Debug-Role opcional).
// - Token ausente o inválido => anonymous; los handlers deciden 401/403.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev mode: permitir inyectar user sin verifier
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					claims := auth.Claims{
						UserID: uid,
						Role:   auth.ParseRole(r.Header.Get("X-Debug-Role")),
					}
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Principal())))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// No cortamos aquí. Un token malo equivale a no mandar token.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Principal())))
		})
	}
}

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Principal devuelve quien llama; anonymous si no hay nada en el contexto.
func Principal(ctx context.Context) auth.Principal {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	if !ok {
		return auth.Anonymous()
	}
	return p
}

// RequireAuthenticated corta con 401 si el request no trae identidad.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Principal(r.Context()).IsAuthenticated() {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
