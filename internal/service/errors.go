package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateEmail        = errors.New("user with this email already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired refresh token")
	ErrInvalidToken          = errors.New("invalid token")
	ErrUserNotFound          = errors.New("user not found")
	ErrRoleNotFound          = errors.New("role not found")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("resource conflict")
	// ErrStorage hides persistence detail from callers. The cause is logged.
	ErrStorage = errors.New("storage failure")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storageFailure(op string, err error) error {
	logrus.WithError(err).WithField("op", op).Error("storage operation failed")
	return fmt.Errorf("%w: %s", ErrStorage, op)
}

// isServiceError reports whether err already carries one of the service kinds.
func isServiceError(err error) bool {
	for _, kind := range []error{
		ErrValidation, ErrDuplicateEmail, ErrInvalidCredentials, ErrInvalidOrExpiredToken,
		ErrInvalidToken, ErrUserNotFound, ErrRoleNotFound, ErrNotFound, ErrConflict, ErrStorage,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// txFailure turns an error escaping a transaction into a service error.
func txFailure(op string, err error) error {
	if err == nil || isServiceError(err) {
		return err
	}
	return storageFailure(op, err)
}
