package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes reported next to every field message.
const (
	CodeBlank            = "blank"
	CodeInvalid          = "invalid"
	CodeNotFound         = "not_found"
	CodeMaxLength        = "max_length"
	CodeMinLength        = "min_length"
	CodeUnique           = "unique"
	CodeForbidden        = "forbidden"
	CodeMismatch         = "mismatch"
	CodeNotAuthenticated = "not_authenticated"
	CodePermissionDenied = "permission_denied"
	CodeServerError      = "server_error"
)

// ErrorDetail is the wire form of a single field error.
type ErrorDetail struct {
	String string `json:"string"`
	Code   string `json:"code"`
}

// APIError is an error that knows how it is answered over HTTP.
type APIError interface {
	error
	Status() int
	Body() fiber.Map
}

// FieldErrors maps a request field to what is wrong with it.
type FieldErrors map[string]ErrorDetail

func (f FieldErrors) body() fiber.Map {
	body := make(fiber.Map, len(f))
	for field, detail := range f {
		body[field] = detail
	}
	return body
}

func (f FieldErrors) String() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, f[field].String))
	}
	return strings.Join(parts, ", ")
}

// ValidationError is a 400 carrying one entry per offending field.
type ValidationError struct {
	Fields FieldErrors
}

func Invalid(field, message, code string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: {String: message, Code: code}}}
}

func (e *ValidationError) Error() string   { return "validation failed: " + e.Fields.String() }
func (e *ValidationError) Status() int     { return fiber.StatusBadRequest }
func (e *ValidationError) Body() fiber.Map { return e.Fields.body() }

// NotFoundError is a 404 for a referenced id that does not exist.
type NotFoundError struct {
	Field   string
	Message string
}

func NotFound(field, message string) *NotFoundError {
	return &NotFoundError{Field: field, Message: message}
}

func (e *NotFoundError) Error() string { return e.Field + ": " + e.Message }
func (e *NotFoundError) Status() int   { return fiber.StatusNotFound }
func (e *NotFoundError) Body() fiber.Map {
	return fiber.Map{e.Field: ErrorDetail{String: e.Message, Code: CodeNotFound}}
}

// ForbiddenError is a 403 tied to a field, for rules that hold even for admins.
type ForbiddenError struct {
	Field   string
	Message string
}

func Forbidden(field, message string) *ForbiddenError {
	return &ForbiddenError{Field: field, Message: message}
}

func (e *ForbiddenError) Error() string { return e.Field + ": " + e.Message }
func (e *ForbiddenError) Status() int   { return fiber.StatusForbidden }
func (e *ForbiddenError) Body() fiber.Map {
	return fiber.Map{e.Field: ErrorDetail{String: e.Message, Code: CodeForbidden}}
}

type authError struct {
	message string
	code    string
}

func (e *authError) Error() string { return e.message }
func (e *authError) Status() int   { return fiber.StatusForbidden }
func (e *authError) Body() fiber.Map {
	return fiber.Map{"detail": ErrorDetail{String: e.message, Code: e.code}}
}

var (
	// ErrAuthentication: unknown user, blank token or token mismatch.
	ErrAuthentication APIError = &authError{
		message: "Authentication credentials were not provided or are invalid.",
		code:    CodeNotAuthenticated,
	}
	// ErrAuthorization: not an admin, or the entity belongs to another team.
	// Both cases answer identically.
	ErrAuthorization APIError = &authError{
		message: "You do not have permission to perform this action.",
		code:    CodePermissionDenied,
	}
)

// SendError writes err as a JSON response. Errors that are not APIErrors are
// logged and answered with 500.
func SendError(c *fiber.Ctx, err error) error {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status()).JSON(apiErr.Body())
	}

	LogError("request_failed", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": ErrorDetail{String: "Something went wrong.", Code: CodeServerError},
	})
}
