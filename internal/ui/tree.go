package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/nibzard/planner-go/internal/plan"
	progresscalc "github.com/nibzard/planner-go/internal/progress"
)

// Filter selects which tasks a tree shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterPending
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterPending:
		return "pending"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// ParseFilter reads a filter name.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "pending", "open":
		return FilterPending, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (use all, pending or completed)", s)
}

func (f Filter) matches(t *plan.Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// keeps reports whether t or any of its descendants passes the filter.
func (f Filter) keeps(t *plan.Task) bool {
	if f.matches(t) {
		return true
	}
	for i := range t.Subtasks {
		if f.keeps(&t.Subtasks[i]) {
			return true
		}
	}
	return false
}

// Bar draws a completion ratio.
type Bar struct {
	model progress.Model
}

// NewBar returns a gradient bar width cells wide.
func NewBar(width int) *Bar {
	return &Bar{model: progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)}
}

// View renders pr as a bar.
func (b *Bar) View(pr plan.Progress) string {
	return b.model.ViewAs(pr.Percentage / 100)
}

// TreeOptions controls RenderTree.
type TreeOptions struct {
	Filter Filter
	// MaxDepth limits nesting; 1 shows top-level tasks only. Zero is unlimited.
	MaxDepth     int
	Descriptions bool
	DateFormat   string
	// Bar, when set, draws a bar next to each phase.
	Bar *Bar
}

// RenderTree renders the project as an indented outline.
func RenderTree(p *plan.Project, st *Styles, opts TreeOptions) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(p.Name))
	if !p.LastUpdate.IsZero() {
		layout := opts.DateFormat
		if layout == "" {
			layout = "2006-01-02 15:04"
		}
		b.WriteString(st.Faint.Render("  updated " + p.LastUpdate.Local().Format(layout)))
	}
	b.WriteByte('\n')

	if len(p.Phases) == 0 {
		b.WriteString(st.Faint.Render("  no phases yet") + "\n")
		return b.String()
	}

	shown := 0
	for _, ph := range p.Phases {
		if opts.Filter != FilterAll && !phaseKept(ph, opts.Filter) {
			continue
		}
		shown++
		writePhase(&b, ph, st, opts)
	}
	if shown == 0 {
		b.WriteString(st.Faint.Render("  no "+opts.Filter.String()+" tasks") + "\n")
	}
	return b.String()
}

func phaseKept(ph *plan.Phase, f Filter) bool {
	for i := range ph.Tasks {
		if f.keeps(&ph.Tasks[i]) {
			return true
		}
	}
	return false
}

func writePhase(b *strings.Builder, ph *plan.Phase, st *Styles, opts TreeOptions) {
	status := progresscalc.PhaseStatusOf(ph)
	nameStyle := st.Phase
	if ph.Completed {
		nameStyle = st.PhaseDone
	}
	b.WriteString(checkbox(ph.Completed) + " " + nameStyle.Render(ph.Name) + " " + st.ID.Render(ph.ID))
	b.WriteString("  " + st.Ratio.Render(FormatRatio(status.Progress)))
	if opts.Bar != nil && status.Progress.Total > 0 {
		b.WriteString("  " + opts.Bar.View(status.Progress))
	}
	b.WriteByte('\n')
	writeTasks(b, ph.Tasks, 1, st, opts)
}

func writeTasks(b *strings.Builder, tasks []plan.Task, depth int, st *Styles, opts TreeOptions) {
	indent := strings.Repeat("  ", depth)
	for i := range tasks {
		t := &tasks[i]
		if !opts.Filter.keeps(t) {
			continue
		}
		nameStyle := st.Task
		if t.Completed {
			nameStyle = st.TaskDone
		}
		b.WriteString(indent + checkbox(t.Completed) + " " + nameStyle.Render(t.Name) + " " + st.ID.Render(t.ID))

		hidden := opts.MaxDepth > 0 && depth >= opts.MaxDepth && len(t.Subtasks) > 0
		if hidden {
			_, total := plan.CountTasks(t.Subtasks)
			b.WriteString(st.Faint.Render(" (+" + strconv.Itoa(total) + " nested)"))
		}
		b.WriteByte('\n')

		if opts.Descriptions && t.Description != "" {
			for _, line := range strings.Split(strings.TrimSpace(t.Description), "\n") {
				b.WriteString(indent + "    " + st.Faint.Render(line) + "\n")
			}
		}
		if !hidden {
			writeTasks(b, t.Subtasks, depth+1, st, opts)
		}
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// FormatRatio formats pr as "done/total percent%".
func FormatRatio(pr plan.Progress) string {
	return fmt.Sprintf("%d/%d %s%%", pr.Completed, pr.Total, strconv.FormatFloat(pr.Percentage, 'f', 1, 64))
}
