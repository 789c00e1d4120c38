package autherrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeInvalidCredentials,
		"Invalid credentials",
		http.StatusUnauthorized,
	)
	ErrMissingCredentials = apperror.New(
		apperror.CodeValidation,
		"Please provide an email and password",
		http.StatusBadRequest,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeInvalidToken,
		"Not authorized to access this route",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeTokenExpired,
		"Token has expired, please log in again",
		http.StatusUnauthorized,
	)
	ErrNoEmployeeForToken = apperror.New(
		apperror.CodeUnauthorized,
		"No employee found with this token",
		http.StatusUnauthorized,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Could not issue token",
		http.StatusInternalServerError,
	)
)
