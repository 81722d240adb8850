package errors

import (
	"errors"
	"net/http"
)

// HTTPError represents a backend failure with its HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// ErrSessionExpired is returned when the backend rejects the stored
// credential with a 401. The transport clears the persisted token first.
var ErrSessionExpired = NewHTTPError(http.StatusUnauthorized, "session expired, please login again")

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Code == http.StatusUnauthorized
}

// IsClientError reports whether err is a 4xx validation-style failure.
func IsClientError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Code >= 400 && he.Code < 500
}

// IsServerError reports whether err is a 5xx backend failure.
func IsServerError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Code >= 500
}
