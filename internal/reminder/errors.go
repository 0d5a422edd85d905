package reminder

import (
	"errors"
	"fmt"
)

// Validation reasons.
const (
	ReasonNoDate      = "no date selected"
	ReasonEmptyTitle  = "empty title"
	ReasonInvalidDate = "invalid date"
	ReasonInvalidTime = "invalid time"
)

var (
	ErrSoundNotLoaded = errors.New("alarm sound is not loaded")
	ErrClosed         = errors.New("scheduler closed")
)

// ValidationError reports bad user input. Nothing is mutated when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// CollaboratorError wraps a failure of the notification or audio collaborator.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
