package domain

import "github.com/google/uuid"

// EmployeeRef is the public summary of an employee embedded in other
// resources. It reads from the employees table and is never written through.
type EmployeeRef struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (EmployeeRef) TableName() string { return "employees" }

// EmployeeSummary is the response form of EmployeeRef.
type EmployeeSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *EmployeeRef) Summary() *EmployeeSummary {
	if r == nil {
		return nil
	}
	return &EmployeeSummary{ID: r.ID.String(), Name: r.Name, Email: r.Email}
}
