package model

import "errors"

var (
	// ErrValidation marks input that was rejected before any state changed
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an update or delete that referenced an unknown id
	ErrNotFound = errors.New("not found")

	// ErrNoActiveCase is returned when an action needs an active case and none is set
	ErrNoActiveCase = errors.New("no active case")
)
