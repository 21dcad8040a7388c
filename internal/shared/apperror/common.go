package apperror

import (
	"fmt"
	"net/http"
)

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
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)
)

// RequiredField builds the message for a missing required binding field.
func RequiredField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s is required", field),
		http.StatusBadRequest,
	)
}

// InvalidField builds the message for a field that failed any other binding
// rule.
func InvalidField(field string) *AppError {
	return New(
		CodeInvalidInput,
		fmt.Sprintf("%s is invalid", field),
		http.StatusBadRequest,
	)
}
