package users

import (
	"context"
	"fmt"
	"strings"

	"psyjaciele/internal/ports/auth"
)

// Verifier envuelve el verificador de tokens y vuelve a leer el usuario
// en cada request: el rol sale del store, no del token. Un usuario que ya
// no existe queda como token inválido.
type Verifier struct {
	tokens auth.AuthVerifier
	repo   Repository
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(tokens auth.AuthVerifier, repo Repository) *Verifier {
	return &Verifier{tokens: tokens, repo: repo}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := v.tokens.Verify(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}

	u, err := v.repo.GetByID(ctx, strings.TrimSpace(claims.UserID))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: user %s: %w", ErrUnauthenticated, claims.UserID, storeErr(err))
	}

	p := u.Principal()
	return auth.Claims{
		UserID:   p.UserID,
		Email:    p.Email,
		Username: p.Username,
		Role:     p.Role,
	}, nil
}
