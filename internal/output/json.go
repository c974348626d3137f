package output

import (
	"encoding/json"
	"io"
	"net/http"
)

// ErrorCode represents a machine-readable error classification.
type ErrorCode string

// Error code constants.
const (
	ErrGeneral     ErrorCode = "GENERAL_ERROR"
	ErrNotFound    ErrorCode = "NOT_FOUND"
	ErrValidation  ErrorCode = "VALIDATION_ERROR"
	ErrConflict    ErrorCode = "CONFLICT"
	ErrAuth        ErrorCode = "AUTH_ERROR"
	ErrUnavailable ErrorCode = "UNAVAILABLE"
)

// Exit code constants.
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitNotFound    = 2
	ExitValidation  = 3
	ExitConflict    = 4
	ExitAuth        = 5
	ExitUnavailable = 6
)

// ExitCodeForError maps an ErrorCode to its corresponding exit code.
func ExitCodeForError(code ErrorCode) int {
	switch code {
	case ErrNotFound:
		return ExitNotFound
	case ErrValidation:
		return ExitValidation
	case ErrConflict:
		return ExitConflict
	case ErrAuth:
		return ExitAuth
	case ErrUnavailable:
		return ExitUnavailable
	default:
		return ExitGeneral
	}
}

// CodeForStatus classifies an HTTP status returned by the issue server.
// A zero status means no response was received at all.
func CodeForStatus(status int) ErrorCode {
	switch {
	case status == 0, status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return ErrUnavailable
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusBadRequest:
		return ErrValidation
	default:
		return ErrGeneral
	}
}

// successEnvelope is the JSON structure for successful responses.
type successEnvelope struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// errorEnvelope is the JSON structure for error responses.
type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// writeJSONSuccess writes a success envelope to w.
func writeJSONSuccess(w io.Writer, data any, message string) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(successEnvelope{
		OK:      true,
		Data:    data,
		Message: message,
	})
}

// writeJSONError writes an error envelope to w.
func writeJSONError(w io.Writer, err error, code ErrorCode) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(errorEnvelope{
		OK:    false,
		Error: err.Error(),
		Code:  code,
	})
}
