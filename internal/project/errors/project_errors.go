package projecterrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrProjectNotFound = apperror.New(
		apperror.CodeNotFound,
		"Project not found",
		http.StatusNotFound,
	)
	ErrProjectOrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"Project or task not found",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.Validation([]string{
		"Dates must be in YYYY-MM-DD format",
	})
	ErrInvalidDateRange = apperror.Validation([]string{
		"End date must be after start date",
	})
	ErrMemberNotFound = apperror.Validation([]string{
		"Every team member must be an existing employee",
	})
	ErrAssigneeNotFound = apperror.Validation([]string{
		"Assigned employee does not exist",
	})
)
