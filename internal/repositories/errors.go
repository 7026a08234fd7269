package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a unique
	// constraint (username, email, course title, (account, course) pair).
	ErrDuplicate = errors.New("duplicate record")
)
