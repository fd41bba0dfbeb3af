// Typed application errors shared by validation, repositories and services.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Code string

const (
	CodeInvalidEnum        Code = "INVALID_ENUM"
	CodeEmptyRequiredField Code = "EMPTY_REQUIRED_FIELD"
	CodeMalformedID        Code = "MALFORMED_IDENTIFIER"
	CodeInvalidRange       Code = "INVALID_RANGE"
	CodeInvalidState       Code = "INVALID_STATE"
	CodePersistence        Code = "PERSISTENCE_ERROR"
)

// AppError carries a stable machine code alongside the human message.
// Validation errors additionally name the offending field.
type AppError struct {
	Code    Code
	Field   string
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func InvalidEnum(field, value string) *AppError {
	return &AppError{Code: CodeInvalidEnum, Field: field, Message: fmt.Sprintf("value %q is not allowed", value)}
}

func EmptyRequiredField(field string) *AppError {
	return &AppError{Code: CodeEmptyRequiredField, Field: field, Message: "value is required and cannot be empty"}
}

func MalformedIdentifier(field string) *AppError {
	return &AppError{Code: CodeMalformedID, Field: field, Message: "value is not a valid UUID"}
}

func InvalidRange(field, message string) *AppError {
	return &AppError{Code: CodeInvalidRange, Field: field, Message: message}
}

func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message}
}

// Persistence wraps a storage or external-collaborator failure. The caller
// may retry the same operation; mutations are idempotent on retry.
func Persistence(op string, cause error) *AppError {
	return &AppError{Code: CodePersistence, Message: fmt.Sprintf("%s failed", op), cause: cause}
}

// CodeOf extracts the error code, or empty string for untyped errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps an error to the response status used by the error
// handler middleware. Untyped errors come back as 500.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidEnum, CodeEmptyRequiredField, CodeMalformedID, CodeInvalidRange:
		return fiber.StatusBadRequest
	case CodeInvalidState:
		return fiber.StatusConflict
	case CodePersistence:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
