package booking

import "fmt"

// ReasonOverlap is the conflict reason for an interval that collides with
// an existing appointment.
const ReasonOverlap = "overlap"

// ConflictError is returned when the candidate overlaps another appointment.
// It has the same shape whether the overlap was found by the check or
// reported by the store at commit time.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "appointment time conflicts with another appointment: " + e.Reason
}

// FatalError wraps any other store failure. Err is the underlying error, unchanged.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func overlapConflict() *ConflictError {
	return &ConflictError{Reason: ReasonOverlap}
}
