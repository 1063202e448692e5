package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"psyjaciele/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("jwt manager not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token invalid or expired")
)

const (
	DefaultTTL    = 30 * 24 * time.Hour
	defaultIssuer = "psyjaciele"
)

type Config struct {
	Secret string
	TTL    time.Duration // si es <= 0 se usa DefaultTTL
	Issuer string
}

type userClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager firma y verifica tokens HS256.
// Implementa auth.AuthVerifier y auth.TokenIssuer.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewManager(cfg Config) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

func (m *Manager) IsConfigured() bool {
	return m != nil && len(m.secret) > 0
}

func (m *Manager) Issue(p auth.Principal) (string, error) {
	if !m.IsConfigured() {
		return "", ErrNotConfigured
	}
	if !p.IsAuthenticated() {
		return "", errors.New("cannot issue token for anonymous principal")
	}

	now := m.now()
	claims := userClaims{
		UserID:   p.UserID,
		Email:    p.Email,
		Username: p.Username,
		Role:     string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(_ context.Context, token string) (auth.Claims, error) {
	if !m.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parsed, err := jwt.ParseWithClaims(token, &userClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := parsed.Claims.(*userClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(c.UserID) == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing user_id", ErrTokenInvalid)
	}

	return auth.Claims{
		UserID:   strings.TrimSpace(c.UserID),
		Email:    strings.TrimSpace(c.Email),
		Username: strings.TrimSpace(c.Username),
		Role:     auth.ParseRole(c.Role),
	}, nil
}
