package project

import "go-hrms/internal/domain"

type CreateProjectRequest struct {
	Name        string   `json:"name" binding:"required,max=150"`
	Description string   `json:"description" binding:"required"`
	StartDate   string   `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     string   `json:"endDate" binding:"required,datetime=2006-01-02"`
	Status      string   `json:"status" binding:"omitempty,oneof='not started' 'in progress' completed 'on hold'"`
	TeamMembers []string `json:"teamMembers" binding:"omitempty,dive,uuid"`
}

// UpdateProjectRequest leaves nil fields untouched. A non-nil TeamMembers
// replaces the whole set, so an empty list clears it.
type UpdateProjectRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=150"`
	Description *string   `json:"description" binding:"omitempty,min=1"`
	StartDate   *string   `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string   `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Status      *string   `json:"status" binding:"omitempty,oneof='not started' 'in progress' completed 'on hold'"`
	TeamMembers *[]string `json:"teamMembers" binding:"omitempty,dive,uuid"`
}

type CreateTaskRequest struct {
	Name         string  `json:"name" binding:"required,max=150"`
	Description  string  `json:"description" binding:"required"`
	AssignedToID *string `json:"assignedTo" binding:"omitempty,uuid"`
	Status       string  `json:"status" binding:"omitempty,oneof=todo 'in progress' completed"`
	DueDate      *string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateTaskRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=150"`
	Description  *string `json:"description" binding:"omitempty,min=1"`
	AssignedToID *string `json:"assignedTo" binding:"omitempty,uuid"`
	Status       *string `json:"status" binding:"omitempty,oneof=todo 'in progress' completed"`
	DueDate      *string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

// ListFilter narrows a listing to projects an employee manages or belongs
// to. An empty MemberID lists every project.
type ListFilter struct {
	MemberID string
}

type TaskResponse struct {
	ID           string                  `json:"id"`
	ProjectID    string                  `json:"projectId"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	AssignedToID *string                 `json:"assignedToId"`
	AssignedTo   *domain.EmployeeSummary `json:"assignedTo,omitempty"`
	Status       string                  `json:"status"`
	DueDate      *string                 `json:"dueDate"`
	CreatedAt    string                  `json:"createdAt"`
	UpdatedAt    string                  `json:"updatedAt"`
}

type ProjectResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	StartDate   string                   `json:"startDate"`
	EndDate     string                   `json:"endDate"`
	Status      string                   `json:"status"`
	ManagerID   string                   `json:"managerId"`
	Manager     *domain.EmployeeSummary  `json:"manager,omitempty"`
	TeamMembers []domain.EmployeeSummary `json:"teamMembers"`
	Tasks       []TaskResponse           `json:"tasks"`
	CreatedAt   string                   `json:"createdAt"`
	UpdatedAt   string                   `json:"updatedAt"`
}
