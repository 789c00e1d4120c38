package rbac

import (
	"sort"

	"go-hrms/internal/domain"
)

const (
	ResourceEmployee = "employee"
	ResourceLeave    = "leave"
	ResourceFunTask  = "fun_task"
	ResourceProject  = "project"
	ResourceTask     = "task"
)

const (
	ActionCreate       = "create"
	ActionRead         = "read"
	ActionList         = "list"
	ActionListAll      = "list_all"
	ActionUpdate       = "update"
	ActionUpdateSelf   = "update_self"
	ActionUpdateRole   = "update_role"
	ActionUpdateStatus = "update_status"
	ActionDelete       = "delete"
	ActionAddTask      = "add_task"
)

type Rule struct {
	Role     string
	Relation string
}

func allow(role, relation string) Rule { return Rule{Role: role, Relation: relation} }

// RoleHierarchy lists child -> parent links: a manager holds every employee
// rule and an admin holds every manager rule.
var RoleHierarchy = [][2]string{
	{domain.RoleManager, domain.RoleEmployee},
	{domain.RoleAdmin, domain.RoleManager},
}

// Policy is the access table, keyed by resource then action.
var Policy = map[string]map[string][]Rule{
	ResourceEmployee: {
		ActionRead:       {allow(domain.RoleEmployee, domain.RelationAny)},
		ActionList:       {allow(domain.RoleManager, domain.RelationAny)},
		ActionUpdate:     {allow(domain.RoleAdmin, domain.RelationAny)},
		ActionUpdateSelf: {allow(domain.RoleEmployee, domain.RelationSelf)},
		ActionUpdateRole: {allow(domain.RoleAdmin, domain.RelationAny)},
		ActionDelete:     {allow(domain.RoleAdmin, domain.RelationAny)},
	},
	ResourceLeave: {
		ActionCreate:       {allow(domain.RoleEmployee, domain.RelationAny)},
		ActionRead:         {allow(domain.RoleEmployee, domain.RelationOwner), allow(domain.RoleManager, domain.RelationAny)},
		ActionList:         {allow(domain.RoleEmployee, domain.RelationOwner), allow(domain.RoleManager, domain.RelationAny)},
		ActionListAll:      {allow(domain.RoleManager, domain.RelationAny)},
		ActionUpdateStatus: {allow(domain.RoleManager, domain.RelationAny)},
		ActionDelete:       {allow(domain.RoleEmployee, domain.RelationOwner), allow(domain.RoleAdmin, domain.RelationAny)},
	},
	ResourceFunTask: {
		ActionRead:   {allow(domain.RoleEmployee, domain.RelationAny)},
		ActionList:   {allow(domain.RoleEmployee, domain.RelationAny)},
		ActionCreate: {allow(domain.RoleManager, domain.RelationAny)},
		ActionUpdate: {allow(domain.RoleEmployee, domain.RelationCreator), allow(domain.RoleAdmin, domain.RelationAny)},
		ActionUpdateStatus: {
			allow(domain.RoleEmployee, domain.RelationCreator),
			allow(domain.RoleEmployee, domain.RelationAssignee),
			allow(domain.RoleAdmin, domain.RelationAny),
		},
		ActionDelete: {allow(domain.RoleManager, domain.RelationCreator), allow(domain.RoleAdmin, domain.RelationAny)},
	},
	ResourceProject: {
		ActionCreate: {allow(domain.RoleManager, domain.RelationAny)},
		ActionRead: {
			allow(domain.RoleEmployee, domain.RelationMember),
			allow(domain.RoleEmployee, domain.RelationManager),
			allow(domain.RoleAdmin, domain.RelationAny),
		},
		ActionList:    {allow(domain.RoleEmployee, domain.RelationSelf), allow(domain.RoleAdmin, domain.RelationAny)},
		ActionListAll: {allow(domain.RoleAdmin, domain.RelationAny)},
		ActionUpdate:  {allow(domain.RoleManager, domain.RelationManager), allow(domain.RoleAdmin, domain.RelationAny)},
		ActionDelete:  {allow(domain.RoleManager, domain.RelationManager), allow(domain.RoleAdmin, domain.RelationAny)},
		ActionAddTask: {allow(domain.RoleManager, domain.RelationManager), allow(domain.RoleAdmin, domain.RelationAny)},
	},
	ResourceTask: {
		ActionUpdate: {
			allow(domain.RoleEmployee, domain.RelationAssignee),
			allow(domain.RoleEmployee, domain.RelationManager),
			allow(domain.RoleAdmin, domain.RelationAny),
		},
		ActionDelete: {allow(domain.RoleManager, domain.RelationManager), allow(domain.RoleAdmin, domain.RelationAny)},
	},
}

// policyRows flattens Policy into casbin p rows in a stable order.
func policyRows() [][]string {
	rows := make([][]string, 0, 64)
	for resource, actions := range Policy {
		for action, rules := range actions {
			for _, rule := range rules {
				rows = append(rows, []string{rule.Role, resource, action, rule.Relation})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		for k := range rows[i] {
			if rows[i][k] != rows[j][k] {
				return rows[i][k] < rows[j][k]
			}
		}
		return false
	})
	return rows
}
