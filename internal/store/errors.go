package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrRecordingNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned by RunInTransaction when the
	// transaction machinery itself fails to begin or commit. Errors from
	// the work done inside the transaction are passed through unchanged.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrJobFinalized is returned when a conditional terminal write finds
	// the job no longer in processing: a concurrent reconciler already
	// applied a terminal state. Callers should re-read the job instead of
	// overwriting it.
	ErrJobFinalized = errors.New("job already finalized")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrRecordingNotFound indicates that the requested recording does not
	// exist in the store, or is owned by a different user. The two cases are
	// deliberately indistinguishable to avoid leaking existence.
	ErrRecordingNotFound = fmt.Errorf("%w: recording", ErrNotFound)

	// ErrJobNotFound indicates that the requested job does not exist in the
	// store, or is owned by a different user.
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
