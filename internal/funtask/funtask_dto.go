package funtask

import "go-hrms/internal/domain"

type CreateFunTaskRequest struct {
	Title        string `json:"title" binding:"required,max=150"`
	Description  string `json:"description" binding:"required"`
	Points       int    `json:"points" binding:"required,gt=0"`
	AssignedToID string `json:"assignedTo" binding:"required,uuid"`
}

// UpdateFunTaskRequest is a partial update. A request carrying only Status is
// a status change; anything else edits the task.
type UpdateFunTaskRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=150"`
	Description  *string `json:"description" binding:"omitempty,min=1"`
	Points       *int    `json:"points" binding:"omitempty,gt=0"`
	AssignedToID *string `json:"assignedTo" binding:"omitempty,uuid"`
	Status       *string `json:"status" binding:"omitempty,oneof=pending completed approved"`
}

func (r UpdateFunTaskRequest) editsDetails() bool {
	return r.Title != nil || r.Description != nil || r.Points != nil || r.AssignedToID != nil
}

type ListFilter struct {
	Status       string
	AssignedToID string
}

type FunTaskResponse struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Points       int                     `json:"points"`
	Status       string                  `json:"status"`
	CreatedByID  string                  `json:"createdById"`
	CreatedBy    *domain.EmployeeSummary `json:"createdBy,omitempty"`
	AssignedToID string                  `json:"assignedToId"`
	AssignedTo   *domain.EmployeeSummary `json:"assignedTo,omitempty"`
	CompletedAt  *string                 `json:"completedAt"`
	CreatedAt    string                  `json:"createdAt"`
	UpdatedAt    string                  `json:"updatedAt"`
}
