package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Machine readable error codes returned to clients.
const (
	CodeValidation         = "VALIDATION"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeForbidden          = "FORBIDDEN"
	CodeNoScope            = "NO_SCOPE"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeUnknownField       = "UNKNOWN_FIELD"
	CodeFieldNotEditable   = "FIELD_NOT_EDITABLE"
	CodeTooManyRecords     = "TOO_MANY_RECORDS"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServerError        = "SERVER_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewAccountDisabled() error {
	return NewDomainError(CodeAccountDisabled, "Account disabled. Contact admin.", http.StatusForbidden, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewNoScope() error {
	return NewDomainError(CodeNoScope, "User has no Salesforce scope configured", http.StatusForbidden, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewAlreadyExists(message string) error {
	return NewDomainError(CodeAlreadyExists, message, http.StatusConflict, nil)
}

func NewUnknownField(field string) error {
	return NewDomainError(CodeUnknownField, "Unknown field: "+field, http.StatusBadRequest, map[string]any{"field": field})
}

func NewFieldNotEditable(field string) error {
	return NewDomainError(CodeFieldNotEditable, "Field not editable: "+field, http.StatusBadRequest, map[string]any{"field": field})
}

func NewTooManyRecords(max int) error {
	return NewDomainError(CodeTooManyRecords, fmt.Sprintf("Max %d records per request", max), http.StatusBadRequest, nil)
}

func NewRateLimited() error {
	return NewDomainError(CodeRateLimited, "Too many requests, try again later", http.StatusTooManyRequests, nil)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeServerError,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUpstreamError wraps an external system failure. The upstream message is kept in Err so
// the transport can decide whether to reveal it.
func NewUpstreamError(message string, err error) error {
	return &DomainError{
		Code:       CodeServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       CodeServerError,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func fromFiberError(e *fiber.Error) *DomainError {
	code := CodeServerError
	switch {
	case e.Code == http.StatusNotFound:
		code = CodeNotFound
	case e.Code == http.StatusUnauthorized:
		code = CodeUnauthorized
	case e.Code == http.StatusForbidden:
		code = CodeForbidden
	case e.Code == http.StatusTooManyRequests:
		code = CodeRateLimited
	case e.Code >= 400 && e.Code < 500:
		code = CodeValidation
	}
	return &DomainError{Code: code, Message: e.Message, HTTPStatus: e.Code}
}

func MapError(err error) error {
	return ToDomainError(err)
}
