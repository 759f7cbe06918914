package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing phase, task or parent task.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a phase or task id that is already in use.
	ErrConflict = errors.New("already exists")
	// ErrInvalidPosition reports a move whose id or target index is out of range.
	ErrInvalidPosition = errors.New("invalid position")
)

// Entity names the kind of object an Error refers to.
type Entity string

const (
	EntityPhase      Entity = "phase"
	EntityTask       Entity = "task"
	EntityParentTask Entity = "parent task"
)

// Error identifies the entity an operation failed on.
type Error struct {
	Entity  Entity
	ID      string
	PhaseID string // phase the entity was looked up in, empty for phases
	Err     error
}

func (e *Error) Error() string {
	if e.Entity != EntityPhase && e.PhaseID != "" {
		return fmt.Sprintf("%s %q in phase %q: %v", e.Entity, e.ID, e.PhaseID, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Entity, e.ID, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

func phaseNotFound(id string) error {
	return &Error{Entity: EntityPhase, ID: id, Err: ErrNotFound}
}

func taskNotFound(phaseID, id string) error {
	return &Error{Entity: EntityTask, ID: id, PhaseID: phaseID, Err: ErrNotFound}
}
