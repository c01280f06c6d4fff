package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict with current state")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrCutoffPassed is a conflict raised when sales for a week have closed.
	ErrCutoffPassed = fmt.Errorf("%w: purchases are closed for this week", ErrConflict)
)
