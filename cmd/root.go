// Package cmd implements the CLI command structure for planner.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/nibzard/planner-go/internal/clock"
	"github.com/nibzard/planner-go/internal/config"
	"github.com/nibzard/planner-go/internal/hooks"
	"github.com/nibzard/planner-go/internal/logging"
	"github.com/nibzard/planner-go/internal/project"
	"github.com/nibzard/planner-go/internal/store"
	"github.com/nibzard/planner-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// generatedID is the id argument that asks for a generated id.
const generatedID = "-"

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources map[string]config.ConfigSource
	files   []string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger *log.Logger
	styles *ui.Styles
	clock  clock.Clock
	newID  func() string
}

// command is one planner subcommand.
type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"init", "[name]", "Create the project document, or rename the project", initCommand},
		{"rename-project", "<name>", "Rename the project", renameProjectCommand},
		{"add-phase", "<id|-> <name>", "Append a phase", addPhaseCommand},
		{"rename-phase", "<id> <name>", "Rename a phase", renamePhaseCommand},
		{"move-phase", "<id> <index>", "Move a phase to a zero-based position", movePhaseCommand},
		{"remove-phase", "<id>", "Remove a phase and its tasks", removePhaseCommand},
		{"add-task", "<phase> <id|-> <name>", "Append a task to a phase", addTaskCommand},
		{"add-subtask", "<phase> <parent> <id|-> <name>", "Append a subtask under any task", addSubtaskCommand},
		{"move-task", "<from-phase> <to-phase> <task>", "Move a top-level task to the end of a phase", moveTaskCommand},
		{"reorder-task", "<phase> <task> <index>", "Move a top-level task within its phase", reorderTaskCommand},
		{"rename-task", "<phase> <task> <name>", "Rename a task", renameTaskCommand},
		{"describe-task", "<phase> <task> [text|-]", "Set a task's markdown description", describeTaskCommand},
		{"remove-task", "<phase> <task>", "Remove a task and its subtasks", removeTaskCommand},
		{"complete", "<phase> <task>", "Mark a task completed", completeCommand},
		{"pending", "<phase> <task>", "Mark a task pending", pendingCommand},
		{"list", "", "Print the task tree", listCommand},
		{"progress", "", "Print completion figures", progressCommand},
		{"export-html", "[output]", "Write the HTML report", exportHTMLCommand},
		{"show", "", "Print the project document", showCommand},
		{"metrics", "[file]", "Write progress in Prometheus text format", metricsCommand},
		{"tui", "", "Open the live terminal viewer", tuiCommand},
		{"history", "", "Show the mutation journal", historyCommand},
		{"doctor", "", "Check the project document and configuration", doctorCommand},
		{"config", "", "Print the resolved configuration", configCommand},
		{"version", "", "Print the version", func(_ context.Context, a *app, _ []string) error { return versionCommand(a) }},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Run executes the planner CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("planner", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.BoolP("help", "h", false, "Show help")
	showVersion := fs.BoolP("version", "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cws, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(a)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stdout)
		return nil
	}
	name, rest := remaining[0], remaining[1:]
	if name == "help" {
		if len(rest) > 0 {
			if c, ok := lookupCommand(rest[0]); ok {
				fmt.Fprintf(stdout, "Usage: planner %s %s\n\n%s\n", c.name, c.args, c.summary)
				return nil
			}
		}
		printUsage(fs, stdout)
		return nil
	}

	c, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", name)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", name)
	}
	a.logger.Debug("running command", "command", name, "file", a.cfg.ProjectFile)
	if err := c.run(ctx, a, rest); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return nil
}

func newApp(cws *config.ConfigWithSources, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg := cws.Config
	opts := logging.DefaultOptions()
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	formatter, err := logging.ParseFormatter(cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("log_format: %w", err)
	}
	opts.Level = level
	opts.Formatter = formatter
	opts.ReportTimestamp = cfg.LogTimestamps
	opts.ReportCaller = cfg.LogCaller

	return &app{
		cfg:     cfg,
		sources: cws.Sources,
		files:   cws.Files,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logging.NewLogger(stderr, opts),
		styles:  ui.NewStyles(lipgloss.NewRenderer(stdout), ui.DefaultTheme),
		clock:   clock.Real(),
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}, nil
}

// openStore returns the file store for the configured document.
func (a *app) openStore() *store.FileStore {
	return store.New(a.cfg.ProjectFile,
		store.WithDefaultName(a.cfg.DefaultProjectName),
		store.WithClock(a.clock),
		store.WithLogger(a.logger),
	)
}

// openService loads the document into an orchestrator. The journal is best
// effort: when it cannot be opened mutations still go through.
func (a *app) openService(ctx context.Context) *project.Service {
	opts := []project.Option{
		project.WithClock(a.clock),
		project.WithLogger(a.logger),
	}
	if a.cfg.Journal {
		j, err := logging.OpenJournal(a.cfg.JournalDir, a.cfg.ProjectFile)
		if err != nil {
			a.logger.Warn("journal disabled", "err", err)
		} else {
			opts = append(opts, project.WithJournal(j))
		}
	}
	if a.cfg.HookCommand != "" {
		opts = append(opts, project.WithHook(hooks.NewRunner(ctx, hooks.Options{
			Command:  a.cfg.HookCommand,
			Document: a.cfg.ProjectFile,
			WorkDir:  a.cfg.ProjectRoot,
			Stdout:   a.stderr,
			Stderr:   a.stderr,
		})))
	}
	return project.New(a.openStore(), opts...)
}

// flagSet returns a subcommand FlagSet that reports to stderr.
func (a *app) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("planner "+name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		c, _ := lookupCommand(name)
		fmt.Fprintf(a.stderr, "Usage: planner %s %s\n\n%s\n", c.name, c.args, c.summary)
		if fs.HasFlags() {
			fmt.Fprintf(a.stderr, "\nOptions:\n%s", fs.FlagUsages())
		}
	}
	return fs
}

// resolveID replaces the generated id marker with a fresh id.
func (a *app) resolveID(id string) string {
	if id == generatedID {
		return a.newID()
	}
	return id
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintln(a.stdout, a.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// errUsage reports wrong positional arguments for c.
func errUsage(name string) error {
	c, _ := lookupCommand(name)
	return fmt.Errorf("usage: planner %s %s", c.name, c.args)
}

// positional parses fs and checks the positional count is within [min, max].
// A negative max means no upper bound.
func positional(fs *pflag.FlagSet, name string, args []string, min, max int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < min || (max >= 0 && len(rest) > max) {
		return nil, errUsage(name)
	}
	return rest, nil
}

// joinName joins trailing words so names need no quoting.
func joinName(words []string) string {
	return strings.TrimSpace(strings.Join(words, " "))
}

func versionCommand(a *app) error {
	fmt.Fprintf(a.stdout, "planner %s\n", Version)
	return nil
}

func printUsage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "planner - hierarchical phase and task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  planner [global options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	width := 0
	for _, c := range commands {
		if n := len(c.name); n > width {
			width = n
		}
	}
	for _, c := range commands {
		fmt.Fprintf(w, "  %-*s  %s\n", width, c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-*s  %s\n", width, "help", "Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use - as an id to generate one.")
}
