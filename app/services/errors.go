package services

import (
	"errors"

	"notebook/app/repositories"
)

var (
	// ErrNotFound is returned when a post does not exist or belongs to another owner.
	// The two cases are indistinguishable to callers.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an identifier is not a well-formed UUID.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrUnauthorized is returned when an operation has no resolved owner or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned by Register when the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// StoreError wraps an infrastructure failure of the document store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr translates repository errors into service errors.
func storeErr(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}
