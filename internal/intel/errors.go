package intel

import "errors"

var (
	// ErrInvalidInput marks structurally invalid input (negative value,
	// unknown enum). Raised immediately, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBadTrainingData marks an empty or inconsistent training set.
	ErrBadTrainingData = errors.New("bad training data")

	// ErrNotFound is returned by readers for unknown ids.
	ErrNotFound = errors.New("not found")
)
