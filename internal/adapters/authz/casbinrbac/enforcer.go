package casbinrbac

import (
	"fmt"

	"psyjaciele/internal/ports/auth"
	"psyjaciele/internal/ports/authz"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// rbacModel: roles con herencia (g) y acciones planas, sin objeto.
const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

// Políticas por defecto. admin hereda de user y user de anonymous.
var defaultPolicies = [][]string{
	{string(auth.RoleAnonymous), string(authz.ActionReadPublic)},
	{string(auth.RoleAnonymous), string(authz.ActionMarkHelpful)},
	{string(auth.RoleUser), string(authz.ActionCreate)},
	{string(auth.RoleUser), string(authz.ActionAttach)},
	{string(auth.RoleAdmin), string(authz.ActionReadAll)},
	{string(auth.RoleAdmin), string(authz.ActionModerate)},
	{string(auth.RoleAdmin), string(authz.ActionDelete)},
}

var defaultGroupings = [][]string{
	{string(auth.RoleUser), string(auth.RoleAnonymous)},
	{string(auth.RoleAdmin), string(auth.RoleUser)},
}

// Authorizer implementa authz.Authorizer sobre un enforcer casbin en memoria.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}

	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("casbin policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, fmt.Errorf("casbin roles: %w", err)
	}

	return &Authorizer{enforcer: e}, nil
}

// MustNew es para wiring y tests: el modelo es constante, si falla es bug.
func MustNew() *Authorizer {
	a, err := New()
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Authorizer) Can(role auth.Role, action authz.Action) bool {
	if a == nil || a.enforcer == nil {
		return false
	}
	if role == "" {
		role = auth.RoleAnonymous
	}
	ok, err := a.enforcer.Enforce(string(role), string(action))
	if err != nil {
		return false
	}
	return ok
}
