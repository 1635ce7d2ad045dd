package apperror

import "errors"

type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	// Fields holds per-field messages for validation failures, keyed by input name.
	Fields map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Validation builds a validation error out of collected field messages.
func Validation(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "invalid input",
		Fields:  fields,
	}
}

func GetCode(err error) Code {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return CodeInternal
}

func FieldErrors(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
