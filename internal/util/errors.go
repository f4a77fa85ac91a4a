package util

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error classes. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrCourseNotFound     = fmt.Errorf("%w: course not found", ErrNotFound)
	ErrModuleNotFound     = fmt.Errorf("%w: module not found", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("%w: curriculum item not found", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("%w: enrollment not found", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrSourcingNotFound   = fmt.Errorf("%w: sourcing request not found", ErrNotFound)
	ErrContactNotFound    = fmt.Errorf("%w: contact message not found", ErrNotFound)

	ErrEmailRegistered    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyEnrolled    = fmt.Errorf("%w: already enrolled in this course", ErrConflict)
	ErrInvalidTransition  = fmt.Errorf("%w: invalid status transition", ErrConflict)
	ErrVersionConflict    = fmt.Errorf("%w: course was modified by someone else, reload and retry", ErrConflict)
	ErrCourseLocked       = fmt.Errorf("%w: course cannot be edited in its current status", ErrConflict)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrPermissionDenied   = fmt.Errorf("%w: permission denied", ErrForbidden)
	ErrAccountDisabled    = fmt.Errorf("%w: account disabled", ErrForbidden)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	ErrInvalidFileType = fmt.Errorf("%w: file type not allowed", ErrValidation)
	ErrFileTooLarge    = fmt.Errorf("%w: file too large", ErrValidation)
)

// Validationf builds a validation error with a caller-facing message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundOr converts gorm.ErrRecordNotFound into notFound and passes other errors through.
func NotFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
