package funtaskerrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrFunTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"Fun task not found",
		http.StatusNotFound,
	)
	ErrAssigneeNotFound = apperror.Validation([]string{
		"Assigned employee does not exist",
	})
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"Fun task status cannot be changed from its current status",
		http.StatusBadRequest,
	)
	ErrCompletedTaskLocked = apperror.New(
		apperror.CodeInvalidState,
		"Points and assignee cannot change once a task is completed",
		http.StatusBadRequest,
	)
)
