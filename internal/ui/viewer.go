package ui

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/planner-go/internal/plan"
	progresscalc "github.com/nibzard/planner-go/internal/progress"
)

// ErrNotTTY is returned by Run when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// Loader reads the current project. The viewer calls it on every refresh.
type Loader func() (*plan.Project, error)

// Viewer is a read-only live view of a project document.
type Viewer struct {
	load       Loader
	source     string
	interval   time.Duration
	dateFormat string

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	bar      *Bar
	styles   *Styles

	project      *plan.Project
	loadErr      error
	filter       Filter
	descriptions bool
	collapsed    bool
	ready        bool
	width        int
	height       int
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithInterval sets how often the document is reloaded.
func WithInterval(d time.Duration) ViewerOption {
	return func(v *Viewer) {
		if d > 0 {
			v.interval = d
		}
	}
}

// WithStyles replaces the default styles.
func WithStyles(st *Styles) ViewerOption {
	return func(v *Viewer) {
		v.styles = st
	}
}

// WithDateFormat sets the layout for the last update line.
func WithDateFormat(layout string) ViewerOption {
	return func(v *Viewer) {
		v.dateFormat = layout
	}
}

// NewViewer returns a viewer over load. source names the document in the
// header.
func NewViewer(load Loader, source string, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		load:     load,
		source:   source,
		interval: time.Second,
		keys:     DefaultKeyMap,
		help:     help.New(),
		viewport: viewport.New(80, 20),
		bar:      NewBar(30),
		styles:   NewStyles(lipgloss.DefaultRenderer(), DefaultTheme),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run starts the viewer in the alternate screen until the user quits or ctx
// ends.
func Run(ctx context.Context, v *Viewer) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	program := tea.NewProgram(v, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (v *Viewer) Init() tea.Cmd {
	v.refresh()
	return tickCmd(v.interval)
}

// Update implements tea.Model.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.help.Width = msg.Width
		v.ready = true
		v.layout()
		return v, nil
	case tickMsg:
		v.refresh()
		return v, tickCmd(v.interval)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Refresh):
			v.refresh()
			return v, nil
		case key.Matches(msg, v.keys.FilterAll):
			v.setFilter(FilterAll)
			return v, nil
		case key.Matches(msg, v.keys.FilterPending):
			v.setFilter(FilterPending)
			return v, nil
		case key.Matches(msg, v.keys.FilterDone):
			v.setFilter(FilterCompleted)
			return v, nil
		case key.Matches(msg, v.keys.Descriptions):
			v.descriptions = !v.descriptions
			v.renderContent()
			return v, nil
		case key.Matches(msg, v.keys.Collapse):
			v.collapsed = !v.collapsed
			v.renderContent()
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.help.ShowAll = !v.help.ShowAll
			v.layout()
			return v, nil
		}
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View implements tea.Model.
func (v *Viewer) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, v.header(), v.viewport.View(), v.footer())
}

func (v *Viewer) setFilter(f Filter) {
	v.filter = f
	v.renderContent()
	v.viewport.GotoTop()
}

func (v *Viewer) refresh() {
	p, err := v.load()
	if err != nil {
		v.loadErr = err
	} else {
		v.loadErr = nil
		v.project = p
	}
	v.renderContent()
}

// layout sizes the viewport to what the header and footer leave over.
func (v *Viewer) layout() {
	if !v.ready {
		return
	}
	v.viewport.Width = v.width
	h := v.height - lipgloss.Height(v.header()) - lipgloss.Height(v.footer())
	if h < 1 {
		h = 1
	}
	v.viewport.Height = h
	v.renderContent()
}

func (v *Viewer) renderContent() {
	if v.project == nil {
		v.viewport.SetContent(v.styles.Faint.Render("loading..."))
		return
	}
	opts := TreeOptions{
		Filter:       v.filter,
		Descriptions: v.descriptions,
		DateFormat:   v.dateFormat,
		Bar:          v.bar,
	}
	if v.collapsed {
		opts.MaxDepth = 1
	}
	v.viewport.SetContent(RenderTree(v.project, v.styles, opts))
}

func (v *Viewer) header() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("planner") + v.styles.Faint.Render("  "+v.source))
	if v.project != nil {
		pr := progresscalc.Calculate(v.project)
		b.WriteString("\n" + v.bar.View(pr.Tasks) + "  " + v.styles.Ratio.Render("tasks "+FormatRatio(pr.Tasks)))
		b.WriteString(v.styles.Faint.Render("  phases " + FormatRatio(pr.Phases)))
	}
	if v.filter != FilterAll {
		b.WriteString("\n" + v.styles.Faint.Render("filter: "+v.filter.String()+" (0 to clear)"))
	}
	if v.loadErr != nil {
		b.WriteString("\n" + v.styles.Error.Render("reload failed: "+v.loadErr.Error()))
	}
	return b.String() + "\n"
}

func (v *Viewer) footer() string {
	return v.help.View(v.keys)
}
