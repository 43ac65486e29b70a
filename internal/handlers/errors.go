package handlers

import (
	"fmt"
	"net/http"
)

// ErrorDetail is the wire form of a request error.
type ErrorDetail struct {
	Code    string `doc:"Machine-readable error code" example:"NOT_FOUND"             json:"code"`
	Message string `doc:"Human-readable message"      example:"No stats for abc123"   json:"message"`
}

// Error is an API error carrying the {"error":{code,message}} body.
// It implements huma.StatusError so handlers can return it directly.
type Error struct {
	status int
	Detail ErrorDetail `json:"error"`
}

func (e *Error) Error() string {
	return e.Detail.Message
}

// GetStatus returns the HTTP status for this error.
func (e *Error) GetStatus() int {
	return e.status
}

// NotFoundError builds a 404 with code NOT_FOUND.
func NotFoundError(format string, args ...any) *Error {
	return &Error{
		status: http.StatusNotFound,
		Detail: ErrorDetail{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf(format, args...),
		},
	}
}

// InternalError builds a 500 with code INTERNAL. The message must stay
// generic; query text and connection details belong in the server log.
func InternalError(message string) *Error {
	return &Error{
		status: http.StatusInternalServerError,
		Detail: ErrorDetail{
			Code:    "INTERNAL",
			Message: message,
		},
	}
}
