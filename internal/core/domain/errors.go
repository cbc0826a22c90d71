package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionClosed        = errors.New("voting session is closed")
	ErrBudgetExhausted      = errors.New("vote budget exhausted")
	ErrNothingToRemove      = errors.New("no votes allocated to this feature")
	ErrIncompleteAllocation = errors.New("the whole vote budget must be allocated before submitting")
	ErrBudgetSubmitted      = errors.New("votes already submitted for this session")
	ErrImportFailed         = errors.New("feature import failed")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidInput         = errors.New("invalid input")
	ErrPersistence          = errors.New("persistence failure")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
)

var (
	ErrFeatureNotFound = fmt.Errorf("feature %w", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("voting session %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrGrantNotFound   = fmt.Errorf("role grant %w", ErrNotFound)

	ErrProtectedUser = fmt.Errorf("protected user: %w", ErrForbidden)
)

// ImportFailed wraps the reason an import was abandoned.
func ImportFailed(cause error) error {
	return fmt.Errorf("%w: %w", ErrImportFailed, cause)
}

// PersistenceFailure wraps an error returned by a storage collaborator.
func PersistenceFailure(cause error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, cause)
}

func InvalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
