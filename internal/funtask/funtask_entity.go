package funtask

import (
	"time"

	"go-hrms/internal/domain"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusApproved  = "approved"
)

type FunTask struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(150);not null"`
	Description string    `gorm:"type:text;not null"`
	Points      int       `gorm:"not null"`

	CreatedByID  uuid.UUID `gorm:"type:uuid;not null;index:idx_fun_tasks_created_by"`
	AssignedToID uuid.UUID `gorm:"type:uuid;not null;index:idx_fun_tasks_assigned_to"`

	Status      string `gorm:"type:varchar(20);not null;default:'pending';index:idx_fun_tasks_status"`
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	CreatedBy  *domain.EmployeeRef `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT"`
	AssignedTo *domain.EmployeeRef `gorm:"foreignKey:AssignedToID;constraint:OnDelete:RESTRICT"`
}

func (FunTask) TableName() string { return "fun_tasks" }

// LeaderboardEntry is one ranked employee on the points board.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Points     int64  `json:"points"`
}
