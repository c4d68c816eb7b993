// Package errs defines the error types returned to API clients.
//
// Every error that leaves the HTTP layer is shaped as an HTTPError so
// clients always receive the same JSON structure:
//
//	{"code":"NOT_FOUND","message":"...","status":404,"override":false,"errors":null,"action":null}
//
// Field-level problems (validation) travel in Errors.
package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "tags", "error": "must contain at least 1 item" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRetry tells the client the request can be retried later.
	// Value holds the number of seconds to wait.
	ActionTypeRetry ActionType = "retry"
)

// Action is an optional "what the client should do next" instruction.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the main custom error type for API responses.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "POST_NOT_FOUND").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: whether the client may show Message to the user as-is.
//   - Errors: per-field errors (validation).
//   - Action: client instruction (optional).
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
	Action *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, &HTTPError{}) match any *HTTPError regardless of
// Code or Status. Compare the fields explicitly when they matter.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
