package leaveerrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave not found",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.Validation([]string{
		"Dates must be in YYYY-MM-DD format",
	})
	ErrInvalidDateRange = apperror.Validation([]string{
		"End date must be on or after start date",
	})
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"Leave status cannot be changed from its current status",
		http.StatusBadRequest,
	)
)
