package auth

import "strings"

// Role es el rol resuelto para quien llama. Anonymous es explícito (no "vacío").
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// ParseRole normaliza el rol que viene en un token. Desconocido => user.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleAnonymous:
		return RoleAnonymous
	default:
		return RoleUser
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID   string
	Email    string
	Username string
	Role     Role
}

// Principal es la identidad de quien llama, resuelta una sola vez por request
// y pasada explícitamente a cada operación del dominio.
type Principal struct {
	UserID   string
	Email    string
	Username string
	Role     Role
}

func Anonymous() Principal {
	return Principal{Role: RoleAnonymous}
}

func (c Claims) Principal() Principal {
	userID := strings.TrimSpace(c.UserID)
	if userID == "" {
		return Anonymous()
	}
	role := c.Role
	if role == "" || role == RoleAnonymous {
		role = RoleUser
	}
	return Principal{
		UserID:   userID,
		Email:    strings.TrimSpace(c.Email),
		Username: strings.TrimSpace(c.Username),
		Role:     role,
	}
}

func (p Principal) IsAuthenticated() bool {
	return p.Role != RoleAnonymous && p.Role != "" && strings.TrimSpace(p.UserID) != ""
}

func (p Principal) IsAdmin() bool {
	return p.IsAuthenticated() && p.Role == RoleAdmin
}

// EffectiveRole devuelve anonymous para cualquier principal sin identidad.
func (p Principal) EffectiveRole() Role {
	if !p.IsAuthenticated() {
		return RoleAnonymous
	}
	return p.Role
}
