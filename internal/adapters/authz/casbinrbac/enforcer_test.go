package casbinrbac

import (
	"testing"

	"psyjaciele/internal/ports/auth"
	"psyjaciele/internal/ports/authz"
)

func TestAuthorizer_RoleMatrix(t *testing.T) {
	a := MustNew()

	cases := []struct {
		role   auth.Role
		action authz.Action
		want   bool
	}{
		{auth.RoleAnonymous, authz.ActionReadPublic, true},
		{auth.RoleAnonymous, authz.ActionMarkHelpful, true},
		{auth.RoleAnonymous, authz.ActionCreate, false},
		{auth.RoleAnonymous, authz.ActionModerate, false},
		{auth.RoleUser, authz.ActionReadPublic, true},
		{auth.RoleUser, authz.ActionCreate, true},
		{auth.RoleUser, authz.ActionAttach, true},
		{auth.RoleUser, authz.ActionReadAll, false},
		{auth.RoleUser, authz.ActionModerate, false},
		{auth.RoleUser, authz.ActionDelete, false},
		{auth.RoleAdmin, authz.ActionMarkHelpful, true},
		{auth.RoleAdmin, authz.ActionCreate, true},
		{auth.RoleAdmin, authz.ActionReadAll, true},
		{auth.RoleAdmin, authz.ActionModerate, true},
		{auth.RoleAdmin, authz.ActionDelete, true},
		{"", authz.ActionReadPublic, true},
		{"", authz.ActionCreate, false},
	}

	for _, tc := range cases {
		if got := a.Can(tc.role, tc.action); got != tc.want {
			t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestAuthorizer_NilDeniesEverything(t *testing.T) {
	var a *Authorizer
	if a.Can(auth.RoleAdmin, authz.ActionDelete) {
		t.Fatalf("nil authorizer must deny")
	}
}
