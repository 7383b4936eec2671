// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"tasker/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, rejected input).
	UserError = 1

	// AuthError indicates a missing or refused session.
	AuthError = 2

	// BackendError indicates a network failure or an unusable server response.
	BackendError = 3
)

// FromError maps a failure to an exit code. Errors that are not a
// *service.Error count as backend failures.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var se *service.Error
	if !errors.As(err, &se) {
		return BackendError
	}
	switch se.Kind {
	case service.KindValidation, service.KindRejected, service.KindNotFound:
		return UserError
	case service.KindUnauthorized:
		return AuthError
	default:
		return BackendError
	}
}
