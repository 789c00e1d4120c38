package employee

import (
	"time"

	"github.com/google/uuid"
)

const DefaultProfilePicture = "default.jpg"

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(100);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_employees_email"`
	Password       string    `gorm:"type:varchar(255);not null" json:"-"`
	Role           string    `gorm:"type:varchar(20);not null;default:'employee';index"`
	Department     string    `gorm:"type:varchar(100);not null"`
	Position       string    `gorm:"type:varchar(100);not null"`
	JoiningDate    time.Time `gorm:"not null"`
	ContactNumber  string    `gorm:"type:varchar(30);not null"`
	ProfilePicture string    `gorm:"type:varchar(255);not null;default:'default.jpg'"`
	LeavesTaken    int       `gorm:"not null;default:0"`
	FunTaskPoints  int       `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Dependents counts rows in other tables that reference an employee.
type Dependents struct {
	Leaves         int64
	FunTasks       int64
	ManagedProject int64
	AssignedTasks  int64
}

func (d Dependents) Total() int64 {
	return d.Leaves + d.FunTasks + d.ManagedProject + d.AssignedTasks
}
