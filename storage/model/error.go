package model

import (
	"fmt"
)

// NotFoundError is an error signaling that something was not found in the
// user store
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that something already exists
// in the user store
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// InvalidCredentialsError is an error signaling a failed authentication.
// Its message is deliberately generic so callers cannot learn whether the
// username or the password was wrong.
type InvalidCredentialsError struct{}

// Error implements the error interface
func (InvalidCredentialsError) Error() string {
	return "invalid username or password"
}
