package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrContentNotFound  = errors.New("content not found")

	// ErrConflict is a uniqueness violation reported by the store.
	ErrConflict = errors.New("conflict")

	ErrAlreadyAdmin       = errors.New("user is already an admin")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailInUse         = errors.New("email used by another profile")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAccessDenied       = errors.New("admin privileges required")
	ErrSamePassword       = errors.New("new password same as current")

	// ErrConfirmationInvalid covers unknown, expired and tampered email
	// confirmation tokens.
	ErrConfirmationInvalid = errors.New("confirmation token invalid or expired")

	// ErrNoSession means the caller presented no session at all.
	ErrNoSession = errors.New("no session")
	// ErrSessionInvalid covers expired, revoked and malformed sessions.
	ErrSessionInvalid = errors.New("session invalid or expired")
)

// userMessages holds the wording shown in the admin shell for errors that
// reach the user.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrAlreadyAdmin, "This user is already an admin"},
	{ErrEmailTaken, "An account with this email already exists. Please use a different email or contact support."},
	{ErrEmailInUse, "An account with this email already exists."},
	{ErrInvalidCredentials, "Invalid login credentials"},
	{ErrEmailNotConfirmed, "Please confirm your email address before signing in."},
	{ErrAccessDenied, "Access denied. Admin privileges required."},
	{ErrSamePassword, "New password must be different from your current password."},
	{ErrConfirmationInvalid, "This confirmation link is invalid or has expired."},
	{ErrSessionInvalid, "Session expired. Please refresh the page and try again."},
	{ErrNoSession, "Session expired. Please refresh the page and try again."},
	{ErrIdentityNotFound, "Session expired. Please refresh the page and try again."},
}

// UserMessage returns the user-facing text for err, or "" when err has no
// dedicated wording.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return ""
}

// ValidationError reports bad input shape. Message is safe to show to the
// user as-is.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError is a generic backend failure on a named operation.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err means the session can no longer be trusted.
func IsAuth(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrSessionInvalid) ||
		errors.Is(err, ErrIdentityNotFound)
}
