package failure

import (
	"errors"
	"net/http"
)

// Failure is an error carrying the HTTP status it maps to.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var (
	ForbiddenError          = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
	ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}
)

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest wraps err as a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict reports a write that clashes with the current state, such as a duplicate or a stale transition.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// GetCode returns the status of the first Failure in err's chain, 500 when there is none.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
