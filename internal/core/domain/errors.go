package domain

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrRollNotFound = errors.New("roll not found")
	ErrRollExists   = errors.New("roll already processed")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
	ErrUnparseable  = errors.New("unparseable extraction payload")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// PageError tags a terminal per-page extraction failure with its page index.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page+1, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
