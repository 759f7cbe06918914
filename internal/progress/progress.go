// Package progress aggregates completion figures for a project.
package progress

import (
	"github.com/nibzard/planner-go/internal/plan"
)

// Status is the coarse state of a phase.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Label returns a human readable form of the status.
func (s Status) Label() string {
	switch s {
	case StatusCompleted:
		return "Completed"
	case StatusInProgress:
		return "In progress"
	default:
		return "Not started"
	}
}

// ProjectProgress holds the flattened task ratio and the phase ratio.
type ProjectProgress struct {
	Tasks  plan.Progress `json:"tasks"`
	Phases plan.Progress `json:"phases"`
}

// TaskStats counts a phase's top-level tasks by state.
type TaskStats struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// PhaseStatus describes one phase.
type PhaseStatus struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Progress  plan.Progress `json:"progress"`
	Status    Status        `json:"status"`
	TaskStats TaskStats     `json:"task_stats"`
}

// Calculate returns the project-wide task and phase ratios. A phase counts as
// completed when its flattened tree has tasks and all of them are complete.
func Calculate(p *plan.Project) ProjectProgress {
	var tasksDone, tasksTotal, phasesDone int
	for _, ph := range p.Phases {
		pr := plan.CalculatePhaseProgress(ph)
		tasksDone += pr.Completed
		tasksTotal += pr.Total
		if pr.Done() {
			phasesDone++
		}
	}
	return ProjectProgress{
		Tasks:  plan.NewProgress(tasksDone, tasksTotal),
		Phases: plan.NewProgress(phasesDone, len(p.Phases)),
	}
}

// PhaseStatusOf reports the status of a single phase. The status follows the
// flattened percentage; TaskStats only looks at top-level tasks.
func PhaseStatusOf(ph *plan.Phase) PhaseStatus {
	pr := plan.CalculatePhaseProgress(ph)
	st := PhaseStatus{
		ID:       ph.ID,
		Name:     ph.Name,
		Progress: pr,
		Status:   statusFor(pr.Percentage),
	}
	for _, t := range ph.Tasks {
		if t.Completed {
			st.TaskStats.Completed++
		} else {
			st.TaskStats.Pending++
		}
	}
	st.TaskStats.InProgress = len(ph.Tasks) - st.TaskStats.Pending - st.TaskStats.Completed
	return st
}

func statusFor(percentage float64) Status {
	switch {
	case percentage == 100:
		return StatusCompleted
	case percentage > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// DetailedProgress pairs the project-wide ratios with every phase's status.
type DetailedProgress struct {
	Overall ProjectProgress `json:"overall"`
	Phases  []PhaseStatus   `json:"phases"`
}

// Detailed returns the overall ratios and the status of every phase in
// project order.
func Detailed(p *plan.Project) DetailedProgress {
	phases := make([]PhaseStatus, 0, len(p.Phases))
	for _, ph := range p.Phases {
		phases = append(phases, PhaseStatusOf(ph))
	}
	return DetailedProgress{
		Overall: Calculate(p),
		Phases:  phases,
	}
}
