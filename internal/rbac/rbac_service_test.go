package rbac_test

import (
	"testing"

	"go-hrms/internal/domain"
	"go-hrms/internal/rbac"
	"go-hrms/internal/rbac/infra"
	"go-hrms/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) rbac.Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)

	svc, err := rbac.NewService(enforcer)
	assert.NoError(t, err)
	return svc
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name      string
		role      string
		resource  string
		action    string
		relations []string
		want      bool
	}{
		{"employee reads any employee", domain.RoleEmployee, rbac.ResourceEmployee, rbac.ActionRead, nil, true},
		{"employee cannot list employees", domain.RoleEmployee, rbac.ResourceEmployee, rbac.ActionList, nil, false},
		{"manager lists employees", domain.RoleManager, rbac.ResourceEmployee, rbac.ActionList, nil, true},
		{"manager cannot update other employee", domain.RoleManager, rbac.ResourceEmployee, rbac.ActionUpdate, nil, false},
		{"admin updates any employee", domain.RoleAdmin, rbac.ResourceEmployee, rbac.ActionUpdate, nil, true},
		{"employee updates self", domain.RoleEmployee, rbac.ResourceEmployee, rbac.ActionUpdateSelf, []string{domain.RelationSelf}, true},
		{"employee cannot update role", domain.RoleEmployee, rbac.ResourceEmployee, rbac.ActionUpdateRole, []string{domain.RelationSelf}, false},

		{"owner reads own leave", domain.RoleEmployee, rbac.ResourceLeave, rbac.ActionRead, []string{domain.RelationOwner}, true},
		{"employee cannot read other leave", domain.RoleEmployee, rbac.ResourceLeave, rbac.ActionRead, nil, false},
		{"manager reads any leave", domain.RoleManager, rbac.ResourceLeave, rbac.ActionRead, nil, true},
		{"owner cannot change leave status", domain.RoleEmployee, rbac.ResourceLeave, rbac.ActionUpdateStatus, []string{domain.RelationOwner}, false},
		{"manager changes leave status", domain.RoleManager, rbac.ResourceLeave, rbac.ActionUpdateStatus, nil, true},
		{"admin changes leave status", domain.RoleAdmin, rbac.ResourceLeave, rbac.ActionUpdateStatus, nil, true},
		{"owner deletes leave", domain.RoleEmployee, rbac.ResourceLeave, rbac.ActionDelete, []string{domain.RelationOwner}, true},
		{"manager cannot delete other leave", domain.RoleManager, rbac.ResourceLeave, rbac.ActionDelete, nil, false},
		{"admin deletes any leave", domain.RoleAdmin, rbac.ResourceLeave, rbac.ActionDelete, nil, true},

		{"employee cannot create fun task", domain.RoleEmployee, rbac.ResourceFunTask, rbac.ActionCreate, nil, false},
		{"manager creates fun task", domain.RoleManager, rbac.ResourceFunTask, rbac.ActionCreate, nil, true},
		{"creator updates fun task", domain.RoleManager, rbac.ResourceFunTask, rbac.ActionUpdate, []string{domain.RelationCreator}, true},
		{"manager non creator cannot update fun task", domain.RoleManager, rbac.ResourceFunTask, rbac.ActionUpdate, nil, false},
		{"assignee cannot edit fun task fields", domain.RoleEmployee, rbac.ResourceFunTask, rbac.ActionUpdate, []string{domain.RelationAssignee}, false},
		{"assignee updates fun task status", domain.RoleEmployee, rbac.ResourceFunTask, rbac.ActionUpdateStatus, []string{domain.RelationAssignee}, true},
		{"employee cannot delete fun task", domain.RoleEmployee, rbac.ResourceFunTask, rbac.ActionDelete, []string{domain.RelationAssignee}, false},
		{"creator manager deletes fun task", domain.RoleManager, rbac.ResourceFunTask, rbac.ActionDelete, []string{domain.RelationCreator}, true},
		{"admin deletes any fun task", domain.RoleAdmin, rbac.ResourceFunTask, rbac.ActionDelete, nil, true},

		{"member reads project", domain.RoleEmployee, rbac.ResourceProject, rbac.ActionRead, []string{domain.RelationMember}, true},
		{"outsider cannot read project", domain.RoleManager, rbac.ResourceProject, rbac.ActionRead, nil, false},
		{"member cannot update project", domain.RoleEmployee, rbac.ResourceProject, rbac.ActionUpdate, []string{domain.RelationMember}, false},
		{"owning manager updates project", domain.RoleManager, rbac.ResourceProject, rbac.ActionUpdate, []string{domain.RelationManager, domain.RelationMember}, true},
		{"other manager cannot add task", domain.RoleManager, rbac.ResourceProject, rbac.ActionAddTask, nil, false},
		{"admin lists all projects", domain.RoleAdmin, rbac.ResourceProject, rbac.ActionListAll, nil, true},
		{"manager cannot list all projects", domain.RoleManager, rbac.ResourceProject, rbac.ActionListAll, nil, false},

		{"assignee updates task", domain.RoleEmployee, rbac.ResourceTask, rbac.ActionUpdate, []string{domain.RelationAssignee}, true},
		{"member cannot update task", domain.RoleEmployee, rbac.ResourceTask, rbac.ActionUpdate, []string{domain.RelationMember}, false},
		{"project manager deletes task", domain.RoleManager, rbac.ResourceTask, rbac.ActionDelete, []string{domain.RelationManager}, true},
		{"assignee cannot delete task", domain.RoleEmployee, rbac.ResourceTask, rbac.ActionDelete, []string{domain.RelationAssignee}, false},

		{"unknown role denied", "guest", rbac.ResourceFunTask, rbac.ActionRead, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := svc.Enforce(rbac.EnforceRequest{
				Role:      tc.role,
				Resource:  tc.resource,
				Action:    tc.action,
				Relations: tc.relations,
			})
			assert.NoError(t, err)
			assert.Equal(t, tc.want, allowed)
		})
	}
}

func TestRBACService_RouteGateWildcard(t *testing.T) {
	svc := newTestService(t)
	gate := []string{domain.RelationWildcard}

	allowed, err := svc.Enforce(rbac.EnforceRequest{Role: domain.RoleManager, Resource: rbac.ResourceFunTask, Action: rbac.ActionDelete, Relations: gate})
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Enforce(rbac.EnforceRequest{Role: domain.RoleEmployee, Resource: rbac.ResourceFunTask, Action: rbac.ActionDelete, Relations: gate})
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRBACService_Authorize(t *testing.T) {
	svc := newTestService(t)

	err := svc.Authorize(rbac.EnforceRequest{Role: domain.RoleEmployee, Resource: rbac.ResourceFunTask, Action: rbac.ActionCreate})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = svc.Authorize(rbac.EnforceRequest{Role: domain.RoleAdmin, Resource: rbac.ResourceFunTask, Action: rbac.ActionCreate})
	assert.NoError(t, err)
}

func TestRBACService_PermissionsForRole(t *testing.T) {
	svc := newTestService(t)

	employeePerms, err := svc.PermissionsForRole(domain.RoleEmployee)
	assert.NoError(t, err)
	adminPerms, err := svc.PermissionsForRole(domain.RoleAdmin)
	assert.NoError(t, err)

	assert.NotEmpty(t, employeePerms)
	assert.Greater(t, len(adminPerms), len(employeePerms))

	none, err := svc.PermissionsForRole("guest")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestRelationMatch(t *testing.T) {
	assert.True(t, infra.RelationMatch("", domain.RelationAny))
	assert.True(t, infra.RelationMatch("owner,assignee", domain.RelationAssignee))
	assert.True(t, infra.RelationMatch(domain.RelationWildcard, domain.RelationCreator))
	assert.False(t, infra.RelationMatch("member", domain.RelationManager))
	assert.False(t, infra.RelationMatch("", domain.RelationOwner))
}
