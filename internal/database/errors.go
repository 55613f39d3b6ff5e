package database

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the query layer. Handlers match on these with
// errors.Is to pick the right HTTP status, instead of parsing driver error
// strings all over the API package.
var (
	// ErrNotFound is returned when a lookup finds no row where one was
	// expected to exist for a further operation.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an (event id, keycode) pair does not
	// match a stored event. It deliberately covers both "no such event" and
	// "wrong keycode" so that a failed guess learns nothing about which
	// events exist.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is the login-specific variant of ErrUnauthorized,
	// distinguished only by call site.
	ErrInvalidCredentials = errors.New("invalid event name or keycode")

	// ErrConstraintViolation is returned when the storage engine rejects a
	// write: a duplicate event or team name, or a location update referencing
	// a team/event combination that does not exist.
	ErrConstraintViolation = errors.New("constraint violation")
)

// translateConstraint wraps SQLite constraint failures in
// ErrConstraintViolation so callers can match with errors.Is. Other errors
// pass through untouched.
func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return err
}
