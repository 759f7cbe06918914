// Package report renders a project as a standalone HTML page.
//
// Every user-supplied string (project, phase and task names and ids) is
// escaped for &, <, >, ' and ". Task descriptions are Markdown and are
// rendered with raw HTML disabled.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/nibzard/planner-go/internal/plan"
	"github.com/nibzard/planner-go/internal/progress"
)

//go:embed report.html.tmpl
var pageTemplate string

//go:embed style.css
var styles string

// DefaultDateFormat is the layout used for the last-update line.
const DefaultDateFormat = "2006-01-02 15:04"

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"esc": Escape,
	"pct": formatPercent,
}).Parse(pageTemplate))

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&#039;",
	`"`, "&quot;",
)

// Escape replaces the five HTML-significant characters with entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Renderer turns projects into HTML reports.
type Renderer struct {
	dateFormat string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDateFormat sets the Go time layout used for the last-update line.
func WithDateFormat(layout string) Option {
	return func(r *Renderer) {
		if layout != "" {
			r.dateFormat = layout
		}
	}
}

// New returns a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{dateFormat: DefaultDateFormat}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type pageView struct {
	Name       string
	LastUpdate string
	Styles     string
	Tasks      plan.Progress
	PhaseRatio plan.Progress
	Phases     []phaseView
}

type phaseView struct {
	ID        string
	Name      string
	Completed bool
	Progress  plan.Progress
	Tasks     []nodeView
}

type nodeView struct {
	Block       string // CSS block: task or subtask
	ID          string
	Name        string
	Completed   bool
	Description string // rendered HTML
	Children    []nodeView
}

// Render produces the report for p. p is only read.
func (r *Renderer) Render(p *plan.Project) (string, error) {
	view, err := r.buildView(p)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Export renders p and writes it to path, creating parent directories.
func (r *Renderer) Export(p *plan.Project, path string) error {
	out, err := r.Render(p)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Render renders p with the default options.
func Render(p *plan.Project) (string, error) {
	return New().Render(p)
}

func (r *Renderer) buildView(p *plan.Project) (*pageView, error) {
	pp := progress.Calculate(p)
	view := &pageView{
		Name:       p.Name,
		Styles:     styles,
		Tasks:      pp.Tasks,
		PhaseRatio: pp.Phases,
	}
	if !p.LastUpdate.IsZero() {
		view.LastUpdate = p.LastUpdate.Format(r.dateFormat)
	}
	for _, ph := range p.Phases {
		nodes, err := buildNodes(ph.Tasks, "task")
		if err != nil {
			return nil, err
		}
		view.Phases = append(view.Phases, phaseView{
			ID:        ph.ID,
			Name:      ph.Name,
			Completed: ph.Completed,
			Progress:  plan.CalculatePhaseProgress(ph),
			Tasks:     nodes,
		})
	}
	return view, nil
}

func buildNodes(tasks []plan.Task, block string) ([]nodeView, error) {
	nodes := make([]nodeView, 0, len(tasks))
	for _, t := range tasks {
		desc, err := renderMarkdown(t.Description)
		if err != nil {
			return nil, fmt.Errorf("task %q description: %w", t.ID, err)
		}
		children, err := buildNodes(t.Subtasks, "subtask")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, nodeView{
			Block:       block,
			ID:          t.ID,
			Name:        t.Name,
			Completed:   t.Completed,
			Description: desc,
			Children:    children,
		})
	}
	return nodes, nil
}
