package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Not authorized to access this route",
		http.StatusUnauthorized,
	)

	ErrConcurrentUpdate = New(
		CodeConflict,
		"The record was modified concurrently, please retry",
		http.StatusConflict,
	)

	ErrTooManyRequests = New(
		CodeTooManyRequests,
		"Too many requests, please slow down",
		http.StatusTooManyRequests,
	)
)
