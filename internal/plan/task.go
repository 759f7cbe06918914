package plan

import (
	"slices"
	"time"
)

// NewTask returns a pending task created at now. parentID is empty for
// top-level tasks.
func NewTask(id, name, parentID string, now time.Time) Task {
	ts := At(now)
	return Task{
		ID:        id,
		Name:      name,
		ParentID:  parentID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// FindTask returns the task with id anywhere in the phase's tree, or nil.
func (ph *Phase) FindTask(id string) *Task {
	return findTask(ph.Tasks, id)
}

func findTask(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
		if found := findTask(tasks[i].Subtasks, id); found != nil {
			return found
		}
	}
	return nil
}

// FindTask looks up a task inside one phase. The phase is returned even when
// the task is missing so callers can tell the two failures apart.
func (p *Project) FindTask(phaseID, taskID string) (*Task, *Phase) {
	ph := p.Phases.Get(phaseID)
	if ph == nil {
		return nil, nil
	}
	return ph.FindTask(taskID), ph
}

// LocateTask searches every phase for a task id.
func (p *Project) LocateTask(taskID string) (*Task, *Phase) {
	for _, ph := range p.Phases {
		if t := ph.FindTask(taskID); t != nil {
			return t, ph
		}
	}
	return nil, nil
}

// checkTaskID fails with ErrConflict when id is already used in any phase.
func (p *Project) checkTaskID(id string) error {
	if _, ph := p.LocateTask(id); ph != nil {
		return &Error{Entity: EntityTask, ID: id, PhaseID: ph.ID, Err: ErrConflict}
	}
	return nil
}

// AddTask appends a new top-level task to a phase.
func (p *Project) AddTask(phaseID, taskID, name string, now time.Time) (*Task, error) {
	ph := p.Phases.Get(phaseID)
	if ph == nil {
		return nil, phaseNotFound(phaseID)
	}
	if err := p.checkTaskID(taskID); err != nil {
		return nil, err
	}
	ph.Tasks = append(ph.Tasks, NewTask(taskID, name, "", now))
	ph.Recompute()
	return &ph.Tasks[len(ph.Tasks)-1], nil
}

// AddSubtask appends a new subtask under parentID. The parent may sit at any
// depth of the phase's tree.
func (p *Project) AddSubtask(phaseID, parentID, taskID, name string, now time.Time) (*Task, error) {
	ph := p.Phases.Get(phaseID)
	if ph == nil {
		return nil, phaseNotFound(phaseID)
	}
	parent := ph.FindTask(parentID)
	if parent == nil {
		return nil, &Error{Entity: EntityParentTask, ID: parentID, PhaseID: phaseID, Err: ErrNotFound}
	}
	if err := p.checkTaskID(taskID); err != nil {
		return nil, err
	}
	parent.Subtasks = append(parent.Subtasks, NewTask(taskID, name, parentID, now))
	parent.UpdatedAt = At(now)
	// A new pending child reopens a completed parent.
	if parent.Completed {
		parent.Completed = false
	}
	ph.Recompute()
	return &parent.Subtasks[len(parent.Subtasks)-1], nil
}

// UpdateTaskStatus sets the completion flag and refreshes UpdatedAt. It does
// not propagate; use Phase.SetTaskStatus for that.
func UpdateTaskStatus(t *Task, completed bool, now time.Time) {
	t.Completed = completed
	t.UpdatedAt = At(now)
}

// SetTaskStatus changes a task's completion flag, settles its immediate
// parent and recomputes the phase flag.
func (ph *Phase) SetTaskStatus(taskID string, completed bool, now time.Time) (*Task, error) {
	t := ph.FindTask(taskID)
	if t == nil {
		return nil, taskNotFound(ph.ID, taskID)
	}
	UpdateTaskStatus(t, completed, now)

	if t.ParentID != "" {
		if parent := ph.FindTask(t.ParentID); parent != nil {
			settleParent(parent, completed, now)
		}
	}
	ph.Recompute()
	return t, nil
}

func settleParent(parent *Task, childCompleted bool, now time.Time) {
	if childCompleted {
		if AllCompleted(parent.Subtasks) {
			parent.Completed = true
			parent.UpdatedAt = At(now)
		}
		return
	}
	if parent.Completed {
		parent.Completed = false
		parent.UpdatedAt = At(now)
	}
}

// AllCompleted reports whether every task in tasks is complete. It is false
// for an empty slice.
func AllCompleted(tasks []Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// RenameTask changes a task's name.
func RenameTask(t *Task, name string, now time.Time) {
	t.Name = name
	t.UpdatedAt = At(now)
}

// DescribeTask replaces a task's markdown description.
func DescribeTask(t *Task, description string, now time.Time) {
	t.Description = description
	t.UpdatedAt = At(now)
}

// MoveTask repositions a top-level task within the phase. newIndex must be in
// [0, len(tasks)).
func (ph *Phase) MoveTask(taskID string, newIndex int) bool {
	from := topLevelIndex(ph.Tasks, taskID)
	if from < 0 || newIndex < 0 || newIndex >= len(ph.Tasks) {
		return false
	}
	t := ph.Tasks[from]
	ph.Tasks = slices.Delete(ph.Tasks, from, from+1)
	ph.Tasks = slices.Insert(ph.Tasks, newIndex, t)
	return true
}

// MoveTaskBetweenPhases moves a top-level task from src into dst at newIndex,
// which must be in [0, len(dst.Tasks)]. The task keeps its id, subtasks and
// completion state. Both phase flags are recomputed.
func MoveTaskBetweenPhases(src, dst *Phase, taskID string, newIndex int) bool {
	if src == dst {
		return src.MoveTask(taskID, newIndex)
	}
	from := topLevelIndex(src.Tasks, taskID)
	if from < 0 || newIndex < 0 || newIndex > len(dst.Tasks) {
		return false
	}
	t := src.Tasks[from]
	src.Tasks = slices.Delete(src.Tasks, from, from+1)
	dst.Tasks = slices.Insert(dst.Tasks, newIndex, t)
	src.Recompute()
	dst.Recompute()
	return true
}

func topLevelIndex(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

// RemoveTask deletes a task and its whole subtree from any depth of the
// phase. A parent losing its last pending child is not auto-completed.
func (ph *Phase) RemoveTask(taskID string) bool {
	var removed bool
	ph.Tasks, removed = removeTask(ph.Tasks, taskID)
	if removed {
		ph.Recompute()
	}
	return removed
}

func removeTask(tasks []Task, id string) ([]Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return slices.Delete(tasks, i, i+1), true
		}
		if sub, ok := removeTask(tasks[i].Subtasks, id); ok {
			tasks[i].Subtasks = sub
			return tasks, true
		}
	}
	return tasks, false
}

// Walk visits tasks depth first, parents before children. depth is 0 for
// the tasks passed in.
func Walk(tasks []Task, fn func(t *Task, depth int)) {
	walk(tasks, 0, fn)
}

func walk(tasks []Task, depth int, fn func(t *Task, depth int)) {
	for i := range tasks {
		fn(&tasks[i], depth)
		walk(tasks[i].Subtasks, depth+1, fn)
	}
}

// CountTasks returns the total and completed counts over a flattened tree.
func CountTasks(tasks []Task) (completed, total int) {
	Walk(tasks, func(t *Task, _ int) {
		total++
		if t.Completed {
			completed++
		}
	})
	return completed, total
}
