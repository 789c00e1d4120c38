package employeeerrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrDuplicateEmail = apperror.New(
		apperror.CodeDuplicateEmail,
		"Email already exists",
		http.StatusBadRequest,
	)
	ErrInvalidJoiningDate = apperror.Validation([]string{
		"Joining Date must be a date in YYYY-MM-DD format",
	})
	ErrPrivilegedSelfUpdate = apperror.New(
		apperror.CodeForbidden,
		"Role, leaves taken and fun task points cannot be changed on your own profile; an admin can change them through PUT /employees/:id",
		http.StatusForbidden,
	)
	ErrEmployeeHasDependents = apperror.New(
		apperror.CodeConflict,
		"Employee is still referenced by leaves, fun tasks, projects or tasks",
		http.StatusConflict,
	)
)
