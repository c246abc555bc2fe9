// Package common defines shared constants and sentinel errors used across
// the store, backup and CLI layers of AccountKeeper. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrorNotFound reports that an entity id or name is absent.
	ErrorNotFound = errors.New("not found")

	// ErrorAlreadyExists reports a uniqueness violation (email, group, tag).
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorValidation covers malformed JSON, failed round-trip checks and
	// invalid backup or import content.
	ErrorValidation = errors.New("validation error")

	// ErrorIO wraps filesystem failures.
	ErrorIO = errors.New("io error")
)

// WrapIO tags err as an IO failure while keeping the original error
// matchable (e.g. errors.Is(err, fs.ErrNotExist) still works).
func WrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrorIO, err))
}

// WrapValidation tags err as a validation failure.
func WrapValidation(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrorValidation, err))
}
