package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Login pipeline outcomes. All are expected, client-actionable results,
	// surfaced verbatim with a machine-readable code.
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountBlocked      ErrorCode = "ACCOUNT_BLOCKED"
	ErrCodeSubscriptionBlocked ErrorCode = "SUBSCRIPTION_BLOCKED"
	ErrCodeTwoFactorRequired   ErrorCode = "2FA_REQUIRED"
	ErrCodeTwoFactorInvalid    ErrorCode = "2FA_INVALID_CODE"
	ErrCodeEmploymentPending   ErrorCode = "EMPLOYMENT_PENDING"
	ErrCodeNoEmployment        ErrorCode = "NO_EMPLOYMENT"

	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"

	ErrCodeTwoFactorAlreadyEnabled ErrorCode = "2FA_ALREADY_ENABLED"
	ErrCodeTwoFactorNotEnabled     ErrorCode = "2FA_NOT_ENABLED"
	ErrCodeTwoFactorNotPending     ErrorCode = "2FA_NOT_PENDING"
	ErrCodeWeakPassword            ErrorCode = "WEAK_PASSWORD"
	ErrCodePasswordReused          ErrorCode = "PASSWORD_REUSED"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeTenantNotFound     ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeEmploymentNotFound ErrorCode = "EMPLOYMENT_NOT_FOUND"
	ErrCodeEmploymentExists   ErrorCode = "EMPLOYMENT_EXISTS"
	ErrCodeEmploymentDecided  ErrorCode = "EMPLOYMENT_ALREADY_DECIDED"
	ErrCodeRolePriority       ErrorCode = "ROLE_PRIORITY_EXCEEDED"
	ErrCodeTenantRequired     ErrorCode = "TENANT_CONTEXT_REQUIRED"
	ErrCodeInsufficientPerms  ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeSystemManagerOnly  ErrorCode = "SYSTEM_MANAGER_ONLY"
	ErrCodeForbiddenTarget    ErrorCode = "FORBIDDEN_TARGET"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Messages() string {
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Shared sentinel errors for the identity core. InvalidCredentials keeps an
// identical shape for unknown email, missing password hash and wrong
// password so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials  = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrAccountBlocked      = NewForbiddenError("Account is blocked", ErrCodeAccountBlocked)
	ErrSubscriptionBlocked = NewForbiddenError("Subscription is blocked", ErrCodeSubscriptionBlocked)
	ErrTwoFactorRequired   = NewForbiddenError("Two-factor code required", ErrCodeTwoFactorRequired)
	ErrTwoFactorInvalid    = NewForbiddenError("Invalid two-factor code", ErrCodeTwoFactorInvalid)
	ErrEmploymentPending   = NewForbiddenError("Employment request awaiting approval", ErrCodeEmploymentPending)
	ErrNoEmployment        = NewForbiddenError("No active employment", ErrCodeNoEmployment)

	ErrInvalidToken = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrTenantNotFound     = NewNotFoundError("Tenant not found", ErrCodeTenantNotFound)
	ErrRoleNotFound       = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrEmploymentNotFound = NewNotFoundError("Employment not found", ErrCodeEmploymentNotFound)
	ErrEmploymentExists   = NewConflictError("User already has an employment or pending request for this tenant", ErrCodeEmploymentExists)
	ErrEmploymentDecided  = NewConflictError("Employment request was already decided", ErrCodeEmploymentDecided)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
