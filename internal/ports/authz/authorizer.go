package authz

import "psyjaciele/internal/ports/auth"

type Action string

const (
	ActionReadPublic  Action = "incidents:read_public"
	ActionMarkHelpful Action = "incidents:mark_helpful"
	ActionCreate      Action = "incidents:create"
	ActionAttach      Action = "incidents:attach"
	ActionReadAll     Action = "incidents:read_all"
	ActionModerate    Action = "incidents:moderate"
	ActionDelete      Action = "incidents:delete"
)

// Authorizer decide si un rol puede ejecutar una acción.
type Authorizer interface {
	Can(role auth.Role, action Action) bool
}
