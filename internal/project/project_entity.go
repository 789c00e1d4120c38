package project

import (
	"time"

	"go-hrms/internal/domain"

	"github.com/google/uuid"
)

const (
	StatusNotStarted = "not started"
	StatusInProgress = "in progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on hold"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in progress"
	TaskStatusCompleted  = "completed"
)

type Project struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Name        string               `gorm:"type:varchar(150);not null"`
	Description string               `gorm:"type:text;not null"`
	StartDate   time.Time            `gorm:"type:date;not null;index:idx_projects_start_date"`
	EndDate     time.Time            `gorm:"type:date;not null"`
	Status      string               `gorm:"type:varchar(20);not null;default:'not started'"`
	ManagerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Manager     *domain.EmployeeRef  `gorm:"foreignKey:ManagerID;constraint:OnDelete:RESTRICT"`
	TeamMembers []domain.EmployeeRef `gorm:"many2many:project_team_members;joinForeignKey:ProjectID;joinReferences:EmployeeID"`
	Tasks       []Task               `gorm:"foreignKey:ProjectID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Project) HasMember(id uuid.UUID) bool {
	for _, m := range p.TeamMembers {
		if m.ID == id {
			return true
		}
	}
	return false
}

// ProjectMember is one row of the project_team_members link table.
type ProjectMember struct {
	ProjectID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (ProjectMember) TableName() string { return "project_team_members" }

type Task struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ProjectID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name         string              `gorm:"type:varchar(150);not null"`
	Description  string              `gorm:"type:text;not null"`
	AssignedToID *uuid.UUID          `gorm:"type:uuid;index"`
	AssignedTo   *domain.EmployeeRef `gorm:"foreignKey:AssignedToID;constraint:OnDelete:RESTRICT"`
	Status       string              `gorm:"type:varchar(20);not null;default:'todo'"`
	DueDate      *time.Time          `gorm:"type:date"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
