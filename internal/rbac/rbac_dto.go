package rbac

import "go-hrms/internal/domain"

type EnforceRequest = domain.EnforceRequest

type EnforceResponse = domain.EnforceResponse

type CheckRequest struct {
	Resource  string   `json:"resource" binding:"required"`
	Action    string   `json:"action" binding:"required"`
	Relations []string `json:"relations"`
}

type PermissionResponse struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Relation string `json:"relation"`
}
