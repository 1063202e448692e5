package users

import (
	"time"

	"psyjaciele/internal/ports/auth"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt; nunca sale por la API
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Principal() auth.Principal {
	return auth.Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
}
