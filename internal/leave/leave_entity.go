package leave

import (
	"time"

	"go-hrms/internal/domain"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeSick      = "sick"
	TypeCasual    = "casual"
	TypeAnnual    = "annual"
	TypeMaternity = "maternity"
	TypePaternity = "paternity"
	TypeUnpaid    = "unpaid"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_start,priority:1"`

	LeaveType string    `gorm:"type:varchar(20);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_start,priority:2"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Reason    string    `gorm:"type:text;not null"`

	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leaves_status"`
	ApprovedByID *uuid.UUID `gorm:"type:uuid;index:idx_leaves_approved_by"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee   *domain.EmployeeRef `gorm:"foreignKey:EmployeeID;constraint:OnDelete:RESTRICT"`
	ApprovedBy *domain.EmployeeRef `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:RESTRICT"`
}

// Days is the inclusive length of the leave.
func (l Leave) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}
