package domain

import "github.com/google/uuid"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

var Roles = []string{RoleEmployee, RoleManager, RoleAdmin}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller as loaded by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// EnforceRequest asks whether Role may perform Action on Resource given the
// caller's Relations to the record.
type EnforceRequest struct {
	Role      string   `json:"role" binding:"required"`
	Resource  string   `json:"resource" binding:"required"`
	Action    string   `json:"action" binding:"required"`
	Relations []string `json:"relations"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

// Relations a caller can hold towards a record.
const (
	RelationAny      = "any"
	RelationWildcard = "*"
	RelationSelf     = "self"
	RelationOwner    = "owner"
	RelationCreator  = "creator"
	RelationAssignee = "assignee"
	RelationManager  = "manager"
	RelationMember   = "member"
)
