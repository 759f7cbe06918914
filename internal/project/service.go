// Package project coordinates mutations of a loaded project document.
//
// Every mutating method validates its arguments, applies the change to a
// copy of the document, stamps the last update time and saves the copy. The
// copy replaces the held document only when the save succeeds, so a failed
// call leaves both memory and disk unchanged.
package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/planner-go/internal/clock"
	"github.com/nibzard/planner-go/internal/logging"
	"github.com/nibzard/planner-go/internal/plan"
	"github.com/nibzard/planner-go/internal/progress"
)

// ErrPersistence wraps failures of the save collaborator.
var ErrPersistence = errors.New("save project")

// Store loads and saves the whole project document.
type Store interface {
	Load() *plan.Project
	Save(p *plan.Project) error
}

// Journal records successful mutations.
type Journal interface {
	Append(e logging.Entry) error
}

// Hook is notified after each successful mutation.
type Hook interface {
	Notify(e logging.Entry) error
}

// Service holds the loaded project and applies mutations to it.
type Service struct {
	store   Store
	project *plan.Project
	clock   clock.Clock
	logger  *log.Logger
	journal Journal
	hooks   []Hook
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithJournal records every successful mutation in j.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithHook runs h after every successful mutation. Hook failures are logged
// and do not fail the mutation.
func WithHook(h Hook) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, h)
	}
}

// New loads the project from store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  clock.Real(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.project = store.Load()
	if s.project == nil {
		s.project = plan.NewProject("", s.clock.Now())
	}
	return s
}

// mutation changes next and describes what it did for the journal.
type mutation func(next *plan.Project, now time.Time) (logging.Entry, error)

func (s *Service) apply(op string, fn mutation) error {
	next := s.project.Clone()
	now := s.clock.Now()

	entry, err := fn(next, now)
	if err != nil {
		return err
	}
	next.Touch(now)
	if err := s.store.Save(next); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.project = next

	entry.Time = now
	entry.Op = op
	s.logger.Debug("project updated", "op", op, "phase", entry.Phase, "task", entry.Task)
	if s.journal != nil {
		if err := s.journal.Append(entry); err != nil {
			s.logger.Warn("cannot write journal entry", "op", op, "err", err)
		}
	}
	for _, h := range s.hooks {
		if err := h.Notify(entry); err != nil {
			s.logger.Warn("hook failed", "op", op, "err", err)
		}
	}
	return nil
}

// Project returns a copy of the current document.
func (s *Service) Project() *plan.Project {
	return s.project.Clone()
}

// Progress returns the project-wide completion ratios.
func (s *Service) Progress() progress.ProjectProgress {
	return progress.Calculate(s.project)
}

// DetailedProgress returns the overall ratios and the status of every phase
// in order.
func (s *Service) DetailedProgress() progress.DetailedProgress {
	return progress.Detailed(s.project)
}

// RenameProject changes the project name.
func (s *Service) RenameProject(name string) error {
	return s.apply("rename-project", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		next.Name = name
		return logging.Entry{Detail: name}, nil
	})
}

// AddPhase appends a new phase.
func (s *Service) AddPhase(id, name string) error {
	return s.apply("add-phase", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		if _, err := next.AddPhase(id, name); err != nil {
			return logging.Entry{}, err
		}
		return logging.Entry{Phase: id, Detail: name}, nil
	})
}

// RenamePhase changes a phase's name.
func (s *Service) RenamePhase(id, name string) error {
	return s.apply("rename-phase", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		ph := next.Phases.Get(id)
		if ph == nil {
			return logging.Entry{}, phaseNotFound(id)
		}
		ph.Rename(name)
		return logging.Entry{Phase: id, Detail: name}, nil
	})
}

// MovePhase moves a phase to newIndex in the phase order.
func (s *Service) MovePhase(id string, newIndex int) error {
	return s.apply("move-phase", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		if next.Phases.Get(id) == nil {
			return logging.Entry{}, phaseNotFound(id)
		}
		if !next.MovePhase(id, newIndex) {
			return logging.Entry{}, fmt.Errorf("could not move phase %q to position %d: %w", id, newIndex, plan.ErrInvalidPosition)
		}
		return logging.Entry{Phase: id, Target: fmt.Sprint(newIndex)}, nil
	})
}

// RemovePhase deletes a phase and all its tasks.
func (s *Service) RemovePhase(id string) error {
	return s.apply("remove-phase", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		if !next.RemovePhase(id) {
			return logging.Entry{}, phaseNotFound(id)
		}
		return logging.Entry{Phase: id}, nil
	})
}

// AddTask appends a top-level task to a phase.
func (s *Service) AddTask(phaseID, taskID, name string) error {
	return s.apply("add-task", func(next *plan.Project, now time.Time) (logging.Entry, error) {
		if _, err := next.AddTask(phaseID, taskID, name, now); err != nil {
			return logging.Entry{}, err
		}
		return logging.Entry{Phase: phaseID, Task: taskID, Detail: name}, nil
	})
}

// AddSubtask appends a subtask under parentID, which may be at any depth.
func (s *Service) AddSubtask(phaseID, parentID, taskID, name string) error {
	return s.apply("add-subtask", func(next *plan.Project, now time.Time) (logging.Entry, error) {
		if _, err := next.AddSubtask(phaseID, parentID, taskID, name, now); err != nil {
			return logging.Entry{}, err
		}
		return logging.Entry{Phase: phaseID, Task: taskID, Target: parentID, Detail: name}, nil
	})
}

// MoveTask moves a top-level task to the end of another phase. Moving within
// the same phase puts the task last.
func (s *Service) MoveTask(sourcePhaseID, targetPhaseID, taskID string) error {
	return s.apply("move-task", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		src, dst, err := lookupPhases(next, sourcePhaseID, targetPhaseID)
		if err != nil {
			return logging.Entry{}, err
		}
		if src.FindTask(taskID) == nil {
			return logging.Entry{}, taskNotFound(sourcePhaseID, taskID)
		}
		index := len(dst.Tasks)
		if src == dst {
			index = len(dst.Tasks) - 1
		}
		if !plan.MoveTaskBetweenPhases(src, dst, taskID, index) {
			return logging.Entry{}, fmt.Errorf("could not move task %q: only top-level tasks can be moved: %w", taskID, plan.ErrInvalidPosition)
		}
		return logging.Entry{Phase: sourcePhaseID, Task: taskID, Target: targetPhaseID}, nil
	})
}

// ReorderTask moves a top-level task to newIndex within its phase.
func (s *Service) ReorderTask(phaseID, taskID string, newIndex int) error {
	return s.apply("reorder-task", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		task, ph := next.FindTask(phaseID, taskID)
		if ph == nil {
			return logging.Entry{}, phaseNotFound(phaseID)
		}
		if task == nil {
			return logging.Entry{}, taskNotFound(phaseID, taskID)
		}
		if !ph.MoveTask(taskID, newIndex) {
			return logging.Entry{}, fmt.Errorf("could not move task %q to position %d: %w", taskID, newIndex, plan.ErrInvalidPosition)
		}
		return logging.Entry{Phase: phaseID, Task: taskID, Target: fmt.Sprint(newIndex)}, nil
	})
}

// RenameTask changes a task's name.
func (s *Service) RenameTask(phaseID, taskID, name string) error {
	return s.apply("rename-task", func(next *plan.Project, now time.Time) (logging.Entry, error) {
		task, err := findTask(next, phaseID, taskID)
		if err != nil {
			return logging.Entry{}, err
		}
		plan.RenameTask(task, name, now)
		return logging.Entry{Phase: phaseID, Task: taskID, Detail: name}, nil
	})
}

// DescribeTask sets a task's markdown description. An empty text clears it.
func (s *Service) DescribeTask(phaseID, taskID, description string) error {
	return s.apply("describe-task", func(next *plan.Project, now time.Time) (logging.Entry, error) {
		task, err := findTask(next, phaseID, taskID)
		if err != nil {
			return logging.Entry{}, err
		}
		plan.DescribeTask(task, description, now)
		return logging.Entry{Phase: phaseID, Task: taskID}, nil
	})
}

// RemoveTask deletes a task and its subtree.
func (s *Service) RemoveTask(phaseID, taskID string) error {
	return s.apply("remove-task", func(next *plan.Project, _ time.Time) (logging.Entry, error) {
		if _, err := findTask(next, phaseID, taskID); err != nil {
			return logging.Entry{}, err
		}
		next.Phases.Get(phaseID).RemoveTask(taskID)
		return logging.Entry{Phase: phaseID, Task: taskID}, nil
	})
}

// CompleteTask marks a task completed and settles its parent and phase.
func (s *Service) CompleteTask(phaseID, taskID string) error {
	return s.setStatus("complete", phaseID, taskID, true)
}

// PendingTask marks a task pending and settles its parent and phase.
func (s *Service) PendingTask(phaseID, taskID string) error {
	return s.setStatus("pending", phaseID, taskID, false)
}

func (s *Service) setStatus(op, phaseID, taskID string, completed bool) error {
	return s.apply(op, func(next *plan.Project, now time.Time) (logging.Entry, error) {
		ph := next.Phases.Get(phaseID)
		if ph == nil {
			return logging.Entry{}, phaseNotFound(phaseID)
		}
		if _, err := ph.SetTaskStatus(taskID, completed, now); err != nil {
			return logging.Entry{}, err
		}
		return logging.Entry{Phase: phaseID, Task: taskID}, nil
	})
}

func findTask(p *plan.Project, phaseID, taskID string) (*plan.Task, error) {
	task, ph := p.FindTask(phaseID, taskID)
	if ph == nil {
		return nil, phaseNotFound(phaseID)
	}
	if task == nil {
		return nil, taskNotFound(phaseID, taskID)
	}
	return task, nil
}

func lookupPhases(p *plan.Project, sourceID, targetID string) (*plan.Phase, *plan.Phase, error) {
	src := p.Phases.Get(sourceID)
	if src == nil {
		return nil, nil, phaseNotFound(sourceID)
	}
	dst := p.Phases.Get(targetID)
	if dst == nil {
		return nil, nil, phaseNotFound(targetID)
	}
	return src, dst, nil
}

func phaseNotFound(id string) error {
	return &plan.Error{Entity: plan.EntityPhase, ID: id, Err: plan.ErrNotFound}
}

func taskNotFound(phaseID, id string) error {
	return &plan.Error{Entity: plan.EntityTask, ID: id, PhaseID: phaseID, Err: plan.ErrNotFound}
}
