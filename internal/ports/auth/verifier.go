package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma un token para un principal ya autenticado (login/register).
type TokenIssuer interface {
	Issue(p Principal) (string, error)
}
