package notes

import "fmt"

// FieldError describes a single content field that failed validation.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// NotFoundError reports a note (or note version) that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError reports a lifecycle transition that is not legal from the
// note's current status.
type InvalidStateError struct {
	Status     Status
	Transition Transition
	Reason     string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("cannot %s a note in status %s", e.Transition, e.Status)
}

// ValidationError carries the complete list of failing fields, so callers can
// surface everything at once instead of one failure per round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// AuthorizationError reports an action the acting user is not allowed to
// perform on the note.
type AuthorizationError struct {
	Action Action
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized to %s this note", e.Action)
}

// ConflictError reports a lost update (stale version) or an invalid foreign
// reference. The caller should reload and retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
