// Package errors provides the error taxonomy shared by all Azure DevOps operations.
//
// Every remote failure is re-wrapped into one of these kinds at the operation
// boundary. Errors that are already one of these kinds pass through unchanged.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// AuthenticationError indicates the connection handshake with Azure DevOps failed.
type AuthenticationError struct {
	OrgURL string // organization URL the handshake targeted
	Reason string // human-readable failure reason
	Err    error  // underlying transport or SDK error
}

func (e *AuthenticationError) Error() string {
	msg := "failed to connect to Azure DevOps"
	if e.OrgURL != "" {
		msg += " at " + e.OrgURL
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NewAuthenticationError creates an AuthenticationError from a cause.
func NewAuthenticationError(orgURL string, err error) *AuthenticationError {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return &AuthenticationError{OrgURL: orgURL, Reason: reason, Err: err}
}

// NotFoundError indicates a requested resource does not exist.
type NotFoundError struct {
	EntityType string // "work items", "project", ...
	Identifier string // comma-separated IDs or the name that was requested
}

func (e *NotFoundError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("%s not found: %s", e.EntityType, e.Identifier)
	}
	return fmt.Sprintf("not found: %s", e.Identifier)
}

// NewNotFoundError creates a NotFoundError for the given entity type and identifier.
func NewNotFoundError(entityType, identifier string) *NotFoundError {
	return &NotFoundError{EntityType: entityType, Identifier: identifier}
}

// NewWorkItemsNotFoundError lists the work item IDs that produced no result.
func NewWorkItemsNotFoundError(ids []int) *NotFoundError {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return NewNotFoundError("work items", strings.Join(parts, ", "))
}

// WikiNotFoundError indicates the wiki itself does not exist.
type WikiNotFoundError struct {
	Wiki string
}

func (e *WikiNotFoundError) Error() string {
	return fmt.Sprintf("wiki not found: %s", e.Wiki)
}

// WikiPageNotFoundError indicates the wiki exists but the page does not.
type WikiPageNotFoundError struct {
	Wiki string
	Path string
}

func (e *WikiPageNotFoundError) Error() string {
	return fmt.Sprintf("wiki page not found: %s in wiki %s", e.Path, e.Wiki)
}

// APIError is the catch-all for remote failures. StatusCode is 0 when the
// failure happened before an HTTP response was received.
type APIError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError creates an APIError.
func NewAPIError(message string, statusCode int, err error) *APIError {
	return &APIError{Message: message, StatusCode: statusCode, Err: err}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsAuthentication reports whether err is or wraps an AuthenticationError.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	var wnf *WikiNotFoundError
	var pnf *WikiPageNotFoundError
	return errors.As(err, &nf) || errors.As(err, &wnf) || errors.As(err, &pnf)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAPI reports whether err is or wraps an APIError.
func IsAPI(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsTaxonomy reports whether err already belongs to this package's taxonomy.
// Such errors are returned as-is instead of being wrapped again.
func IsTaxonomy(err error) bool {
	return IsAuthentication(err) || IsNotFound(err) || IsValidation(err) || IsAPI(err)
}

// Kind returns a short label for err, used for metrics and logs.
func Kind(err error) string {
	var (
		auth *AuthenticationError
		wnf  *WikiNotFoundError
		pnf  *WikiPageNotFoundError
		nf   *NotFoundError
		val  *ValidationError
		api  *APIError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &auth):
		return "authentication"
	case errors.As(err, &wnf):
		return "wiki_not_found"
	case errors.As(err, &pnf):
		return "wiki_page_not_found"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &val):
		return "validation"
	case errors.As(err, &api):
		return "api"
	default:
		return "unknown"
	}
}
