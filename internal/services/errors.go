package services

import (
	"errors"
	"fmt"
)

// Sentinel errors; handlers map these onto HTTP semantics (status codes or
// redirects with a flash message).
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource already exists")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")

	// ErrInvalidCredentials is deliberately opaque: it never reveals whether
	// the identifier or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError carries which entity was missing for the user-facing message.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError marks a uniqueness violation (duplicate enrollment, username,
// email or course title).
type ConflictError struct {
	Resource string
	Field    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func NewConflictError(resource, field string) error {
	return &ConflictError{Resource: resource, Field: field}
}

// PermissionError marks a failed role predicate; handlers redirect the caller
// to their own profile with a message rather than rendering a denial page.
type PermissionError struct {
	AccountID uint
	Resource  string
	Action    string
	Reason    string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("account %d may not %s %s: %s", e.AccountID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }

func NewPermissionError(accountID uint, resource, action, reason string) error {
	return &PermissionError{AccountID: accountID, Resource: resource, Action: action, Reason: reason}
}
