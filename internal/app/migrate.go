package app

import (
	"go-hrms/internal/employee"
	"go-hrms/internal/funtask"
	"go-hrms/internal/leave"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/project"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the API owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&leave.Leave{},
		&funtask.FunTask{},
		&project.Project{},
		&project.ProjectMember{},
		&project.Task{},
		&kafka.OutboxRecord{},
	)
}
