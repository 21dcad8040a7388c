package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the flattened shape handlers write into the response envelope.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps any error to its HTTP representation. Unknown errors collapse
// into the generic internal error so raw driver messages never leak to
// clients.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}
	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
	}
}
