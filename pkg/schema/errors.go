package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeParse      = "PARSE_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeUnmappable = "UNMAPPABLE_ELEMENT"
	ErrCodeQuery      = "QUERY_ERROR"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
)

// PortError is the structured error type for all bpmnport operations.
type PortError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	ElementID string         `json:"element_id,omitempty"`
	Cause     error          `json:"-"`
}

func (e *PortError) Error() string {
	if e.ElementID != "" {
		return fmt.Sprintf("[%s] element %s: %s", e.Code, e.ElementID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PortError) Unwrap() error {
	return e.Cause
}

// NewError creates a new PortError.
func NewError(code, message string) *PortError {
	return &PortError{Code: code, Message: message}
}

// NewErrorf creates a new PortError with a formatted message.
func NewErrorf(code, format string, args ...any) *PortError {
	return &PortError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithElement attaches a source element ID to the error.
func (e *PortError) WithElement(elementID string) *PortError {
	e.ElementID = elementID
	return e
}

// WithCause attaches an underlying cause.
func (e *PortError) WithCause(err error) *PortError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *PortError) WithDetails(details map[string]any) *PortError {
	e.Details = details
	return e
}
