package plan

import "slices"

// NewPhase returns an empty, pending phase.
func NewPhase(id, name string) *Phase {
	return &Phase{ID: id, Name: name, Tasks: []Task{}}
}

// AddPhase appends a new phase to the project.
func (p *Project) AddPhase(id, name string) (*Phase, error) {
	if p.Phases.Get(id) != nil {
		return nil, &Error{Entity: EntityPhase, ID: id, Err: ErrConflict}
	}
	ph := NewPhase(id, name)
	p.Phases = append(p.Phases, ph)
	return ph, nil
}

// Rename changes the phase's display name.
func (ph *Phase) Rename(name string) {
	ph.Name = name
}

// RemovePhase deletes a phase and every task it contains.
func (p *Project) RemovePhase(id string) bool {
	i := p.Phases.Index(id)
	if i < 0 {
		return false
	}
	p.Phases = slices.Delete(p.Phases, i, i+1)
	return true
}

// MovePhase moves a phase to newIndex in the phase order, keeping the
// relative order of the others. newIndex must be in [0, len(phases)).
func (p *Project) MovePhase(id string, newIndex int) bool {
	from := p.Phases.Index(id)
	if from < 0 || newIndex < 0 || newIndex >= len(p.Phases) {
		return false
	}
	ph := p.Phases[from]
	p.Phases = slices.Delete(p.Phases, from, from+1)
	p.Phases = slices.Insert(p.Phases, newIndex, ph)
	return true
}

// Recompute derives the phase flag from its top-level tasks. A phase with
// no tasks is never complete.
func (ph *Phase) Recompute() {
	ph.Completed = AllCompleted(ph.Tasks)
}

// Progress is a completed/total ratio. Percentage is 0 when Total is 0.
type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// NewProgress builds a Progress from counts.
func NewProgress(completed, total int) Progress {
	pr := Progress{Completed: completed, Total: total}
	if total > 0 {
		pr.Percentage = float64(completed) / float64(total) * 100
	}
	return pr
}

// Done reports whether the ratio covers at least one item and all are
// complete.
func (pr Progress) Done() bool {
	return pr.Total > 0 && pr.Completed == pr.Total
}

// CalculatePhaseProgress counts every task and subtask in the phase at every
// depth.
func CalculatePhaseProgress(ph *Phase) Progress {
	return NewProgress(CountTasks(ph.Tasks))
}
