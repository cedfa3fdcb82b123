package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the JSON structure returned to clients by framework
// adapters.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	}
}

// IsError checks if an error is a dikit Error.
func IsError(err error) bool {
	var de *Error
	return stderrors.As(err, &de)
}

// AsError converts an error to a dikit Error if possible.
func AsError(err error) (*Error, bool) {
	var de *Error
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of err, or ErrCodeInternal when err carries no code.
func CodeOf(err error) ErrorCode {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err or any error it wraps carries the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if de, ok := AsError(err); ok && de.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// StatusOf returns the recommended HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	if de, ok := AsError(err); ok && de.HTTPStatus != 0 {
		return de.HTTPStatus
	}
	return http.StatusInternalServerError
}
