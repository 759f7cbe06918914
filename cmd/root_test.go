package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nibzard/planner-go/internal/plan"
	"github.com/nibzard/planner-go/internal/store"
	"github.com/nibzard/planner-go/internal/ui"
)

var plannerEnv = []string{
	"PLANNER_PROJECT_FILE", "PLANNER_REPORT_FILE", "PLANNER_PROJECT_NAME",
	"PLANNER_DATE_FORMAT", "PLANNER_JOURNAL", "PLANNER_LOG_LEVEL",
	"PLANNER_LOG_FORMAT", "PLANNER_LOG_TIMESTAMPS", "PLANNER_LOG_CALLER",
	"PLANNER_HOOK",
}

type harness struct {
	dir     string
	journal string
	stdin   string
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

// newHarness runs commands in a fresh directory with no user config.
func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, name := range plannerEnv {
		t.Setenv(name, "")
	}
	journal := filepath.Join(home, "journal")
	t.Setenv("PLANNER_JOURNAL_DIR", journal)

	dir := t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return &harness{dir: dir, journal: journal}
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	return run(context.Background(), args, strings.NewReader(h.stdin), &h.stdout, &h.stderr)
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := h.run(args...); err != nil {
		t.Fatalf("planner %s: %v\nstderr: %s", strings.Join(args, " "), err, h.stderr.String())
	}
	return h.stdout.String()
}

func (h *harness) project(t *testing.T) *plan.Project {
	t.Helper()
	p, err := store.New(filepath.Join(h.dir, "planner.json")).Read()
	if err != nil {
		t.Fatalf("reading project: %v", err)
	}
	return p
}

func (h *harness) seed(t *testing.T) {
	t.Helper()
	h.mustRun(t, "init", "Launch")
	h.mustRun(t, "add-phase", "p1", "Planning", "and", "design")
	h.mustRun(t, "add-phase", "p2", "Build")
	h.mustRun(t, "add-task", "p1", "t1", "Write", "brief")
	h.mustRun(t, "add-task", "p1", "t2", "Review")
	h.mustRun(t, "add-subtask", "p1", "t1", "s1", "Draft")
	h.mustRun(t, "add-task", "p2", "t3", "Implement")
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{name: "no args", args: nil, wantOut: "Commands:"},
		{name: "help flag", args: []string{"--help"}, wantOut: "add-subtask"},
		{name: "short help flag", args: []string{"-h"}, wantOut: "Global options:"},
		{name: "help command", args: []string{"help"}, wantOut: "export-html"},
		{name: "help for command", args: []string{"help", "add-task"}, wantOut: "Usage: planner add-task <phase> <id|-> <name>"},
		{name: "version flag", args: []string{"--version"}, wantOut: "planner dev"},
		{name: "version command", args: []string{"version"}, wantOut: "planner dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			out := h.mustRun(t, tt.args...)
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, out)
			}
		})
	}
}

func TestRunUnknownCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if !strings.Contains(h.stderr.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr: got %q", h.stderr.String())
	}
}

func TestRunInvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	if err := h.run("--log-level", "loud", "list"); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestInitCommand(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun(t, "init")
	if !strings.Contains(out, `Created project "New Project"`) {
		t.Errorf("init output: %q", out)
	}
	if got := h.project(t).Name; got != "New Project" {
		t.Errorf("name: got %q, want New Project", got)
	}

	out = h.mustRun(t, "init")
	if !strings.Contains(out, "already exists") {
		t.Errorf("second init output: %q", out)
	}

	h.mustRun(t, "init", "Moon", "Base")
	if got := h.project(t).Name; got != "Moon Base" {
		t.Errorf("name: got %q, want Moon Base", got)
	}
}

func TestTaskWorkflow(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	p := h.project(t)
	if got := strings.Join(p.Phases.IDs(), ","); got != "p1,p2" {
		t.Fatalf("phases: got %s, want p1,p2", got)
	}
	if p.Phases.Get("p1").Name != "Planning and design" {
		t.Errorf("phase name: got %q", p.Phases.Get("p1").Name)
	}

	out := h.mustRun(t, "complete", "p1", "s1")
	if !strings.Contains(out, "Task s1 completed") {
		t.Errorf("complete output: %q", out)
	}
	p = h.project(t)
	t1, _ := p.FindTask("p1", "t1")
	if !t1.Completed {
		t.Error("parent of the only completed subtask should be completed")
	}
	if p.Phases.Get("p1").Completed {
		t.Error("phase p1 should stay open while t2 is pending")
	}

	h.mustRun(t, "complete", "p1", "t2")
	if !h.project(t).Phases.Get("p1").Completed {
		t.Error("phase p1 should be completed")
	}

	h.mustRun(t, "pending", "p1", "s1")
	p = h.project(t)
	t1, _ = p.FindTask("p1", "t1")
	if t1.Completed || p.Phases.Get("p1").Completed {
		t.Error("marking s1 pending should reopen t1 and p1")
	}
}

func TestProgressCommand(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.mustRun(t, "complete", "p1", "s1")
	h.mustRun(t, "complete", "p1", "t2")

	out := h.mustRun(t, "progress")
	for _, want := range []string{"Launch", "Tasks:  3/4 75.0%", "Phases: 1/2 50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Implement") {
		t.Errorf("summary should not list tasks:\n%s", out)
	}

	out = h.mustRun(t, "progress", "-d")
	for _, want := range []string{"Planning and design p1  3/3 100.0%  Completed", "Build p2  0/1 0.0%  Not started", "pending 0, in progress 0, completed 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	out = h.mustRun(t, "progress", "--json", "--detailed")
	for _, want := range []string{`"overall"`, `"percentage": 75`, `"status": "completed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFailedCommandLeavesDocument(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	path := filepath.Join(h.dir, "planner.json")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing phase", args: []string{"add-task", "nope", "t9", "X"}, wantErr: `phase "nope": not found`},
		{name: "duplicate phase", args: []string{"add-phase", "p1", "Again"}, wantErr: "already exists"},
		{name: "duplicate task id", args: []string{"add-task", "p2", "s1", "Clash"}, wantErr: "already exists"},
		{name: "missing parent", args: []string{"add-subtask", "p1", "ghost", "s9", "X"}, wantErr: `parent task "ghost"`},
		{name: "missing task", args: []string{"complete", "p1", "t42"}, wantErr: `task "t42" in phase "p1": not found`},
		{name: "phase out of range", args: []string{"move-phase", "p1", "5"}, wantErr: `could not move phase "p1"`},
		{name: "bad index", args: []string{"move-phase", "p1", "first"}, wantErr: "expected an integer"},
		{name: "negative phase position", args: []string{"move-phase", "p1", "-1"}, wantErr: `could not move phase "p1" to position -1`},
		{name: "negative position after separator", args: []string{"move-phase", "p1", "--", "-2"}, wantErr: `could not move phase "p1" to position -2`},
		{name: "negative task position", args: []string{"reorder-task", "p1", "t1", "-1"}, wantErr: `could not move task "t1" to position -1`},
		{name: "move subtask", args: []string{"move-task", "p1", "p2", "s1"}, wantErr: "only top-level tasks"},
		{name: "usage", args: []string{"add-phase", "p3"}, wantErr: "usage: planner add-phase <id|-> <name>"},
		{name: "too many args", args: []string{"remove-phase", "p1", "p2"}, wantErr: "usage: planner remove-phase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.run(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error: got %v, want containing %q", err, tt.wantErr)
			}
			after, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !bytes.Equal(before, after) {
				t.Error("document changed after a failed command")
			}
		})
	}
}

func TestMoveAndReorderCommands(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	h.mustRun(t, "move-phase", "p2", "0")
	if got := strings.Join(h.project(t).Phases.IDs(), ","); got != "p2,p1" {
		t.Errorf("phases after move: got %s, want p2,p1", got)
	}

	h.mustRun(t, "reorder-task", "p1", "t2", "0")
	if got := taskIDs(h.project(t).Phases.Get("p1")); got != "t2,t1" {
		t.Errorf("p1 tasks after reorder: got %s, want t2,t1", got)
	}

	h.mustRun(t, "move-task", "p1", "p2", "t1")
	p := h.project(t)
	if got := taskIDs(p.Phases.Get("p2")); got != "t3,t1" {
		t.Errorf("p2 tasks after move: got %s, want t3,t1", got)
	}
	if moved, _ := p.FindTask("p2", "s1"); moved == nil {
		t.Error("subtask did not move with its parent")
	}
}

func TestEditCommands(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	h.mustRun(t, "rename-phase", "p2", "Build", "it")
	h.mustRun(t, "rename-task", "p1", "s1", "First", "draft")
	h.mustRun(t, "describe-task", "p1", "t1", "Keep", "it", "**short**")
	h.mustRun(t, "rename-project", "Launch", "v2")

	p := h.project(t)
	if p.Name != "Launch v2" || p.Phases.Get("p2").Name != "Build it" {
		t.Errorf("renames: got %q / %q", p.Name, p.Phases.Get("p2").Name)
	}
	s1, _ := p.FindTask("p1", "s1")
	if s1.Name != "First draft" {
		t.Errorf("subtask name: got %q", s1.Name)
	}
	t1, _ := p.FindTask("p1", "t1")
	if t1.Description != "Keep it **short**" {
		t.Errorf("description: got %q", t1.Description)
	}

	h.stdin = "line one\nline two\n"
	h.mustRun(t, "describe-task", "p1", "t1", "-")
	t1, _ = h.project(t).FindTask("p1", "t1")
	if t1.Description != "line one\nline two" {
		t.Errorf("description from stdin: got %q", t1.Description)
	}

	out := h.mustRun(t, "describe-task", "p1", "t1")
	if !strings.Contains(out, "Cleared description") {
		t.Errorf("clear output: %q", out)
	}

	h.mustRun(t, "remove-task", "p1", "t1")
	p = h.project(t)
	if s, _ := p.FindTask("p1", "s1"); s != nil {
		t.Error("subtree of removed task still present")
	}
	h.mustRun(t, "remove-phase", "p2")
	if p := h.project(t); p.Phases.Get("p2") != nil {
		t.Error("phase p2 still present")
	}
}

func TestGeneratedIDs(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "add-phase", "-", "Generated")
	p := h.project(t)
	if len(p.Phases) != 1 {
		t.Fatalf("phases: got %d, want 1", len(p.Phases))
	}
	id, err := uuid.Parse(p.Phases[0].ID)
	if err != nil {
		t.Fatalf("phase id %q is not a uuid: %v", p.Phases[0].ID, err)
	}
	if id.Version() != 7 {
		t.Errorf("uuid version: got %d, want 7", id.Version())
	}

	h.mustRun(t, "add-task", id.String(), "-", "Task")
	if tasks := h.project(t).Phases[0].Tasks; len(tasks) != 1 || tasks[0].ID == "-" {
		t.Errorf("generated task id missing: %+v", tasks)
	}
}

func TestGlobalFileFlag(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "-f", "plans/other.json", "add-phase", "x", "X")
	if _, err := os.Stat(filepath.Join(h.dir, "plans", "other.json")); err != nil {
		t.Errorf("document not written to --file path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "planner.json")); !os.IsNotExist(err) {
		t.Errorf("default document should not exist, stat err = %v", err)
	}
}

func TestListCommand(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.mustRun(t, "complete", "p1", "t2")

	out := h.mustRun(t, "list")
	for _, want := range []string{
		"Launch",
		"[ ] Planning and design p1  1/3 33.3%",
		"  [ ] Write brief t1",
		"    [ ] Draft s1",
		"  [x] Review t2",
		"[ ] Build p2  0/1 0.0%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("escape codes written to a non-terminal:\n%q", out)
	}

	out = h.mustRun(t, "list", "--filter", "completed")
	if strings.Contains(out, "Draft") || !strings.Contains(out, "Review") {
		t.Errorf("completed filter:\n%s", out)
	}

	if err := h.run("list", "--filter", "someday"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestShowCommand(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	out := h.mustRun(t, "show")
	want, err := os.ReadFile(filepath.Join(h.dir, "planner.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if out != string(want) {
		t.Errorf("show json differs from document:\n%s", out)
	}

	out = h.mustRun(t, "show", "--format", "yaml")
	for _, want := range []string{"project: Launch", "phases:", "  p1:", "executed: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in yaml:\n%s", want, out)
		}
	}

	out = h.mustRun(t, "show", "--color", "always")
	if !strings.Contains(out, "\x1b[") {
		t.Error("expected highlighted output with --color always")
	}

	if err := h.run("show", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportHTMLCommand(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	h.mustRun(t, "export-html")
	data, err := os.ReadFile(filepath.Join(h.dir, "planner.html"))
	if err != nil {
		t.Fatalf("default report not written: %v", err)
	}
	if !strings.Contains(string(data), "Planning and design") {
		t.Error("report is missing phase name")
	}

	out := h.mustRun(t, "export-html", "reports/q4/index.html")
	path := filepath.Join(h.dir, "reports", "q4", "index.html")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report not written to %s: %v", path, err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output does not name the report path: %q", out)
	}
}

func TestMetricsCommand(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	out := h.mustRun(t, "metrics")
	if !strings.Contains(out, "planner_tasks_total 4") {
		t.Errorf("metrics output:\n%s", out)
	}

	h.mustRun(t, "metrics", "planner.prom")
	data, err := os.ReadFile(filepath.Join(h.dir, "planner.prom"))
	if err != nil {
		t.Fatalf("textfile not written: %v", err)
	}
	if !strings.Contains(string(data), `planner_phase_completion_ratio{phase="p2"} 0`) {
		t.Errorf("textfile content:\n%s", data)
	}
}

func TestHistoryCommand(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "history")
	if !strings.Contains(out, "No history recorded") {
		t.Errorf("empty history output: %q", out)
	}

	h.seed(t)
	h.mustRun(t, "complete", "p1", "t2")

	out = h.mustRun(t, "history", "-n", "2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("history lines: got %d, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "add-task phase=p2 task=t3") || !strings.Contains(lines[1], "complete phase=p1 task=t2") {
		t.Errorf("history:\n%s", out)
	}

	out = h.mustRun(t, "history", "--raw", "-n", "1")
	if !strings.Contains(out, `"op":"complete"`) {
		t.Errorf("raw history: %q", out)
	}
}

func TestHistoryDisabledJournal(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "--no-journal", "add-phase", "p1", "One")
	if _, err := os.Stat(h.journal); !os.IsNotExist(err) {
		t.Errorf("journal dir created with --no-journal, stat err = %v", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "doctor")
	if !strings.Contains(out, "not found") || !strings.Contains(out, "All checks passed.") {
		t.Errorf("doctor without document:\n%s", out)
	}

	h.seed(t)
	out = h.mustRun(t, "doctor", "-v")
	for _, want := range []string{"valid", `"Launch": 2 phases`, "journal_dir", "(environment)", "(default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	path := filepath.Join(h.dir, "planner.json")
	if err := os.WriteFile(path, []byte(`{"project": 3}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := h.run("doctor"); err == nil {
		t.Error("expected doctor to fail on a schema-invalid document")
	}
	if !strings.Contains(h.stdout.String(), "Some checks failed.") {
		t.Errorf("doctor output:\n%s", h.stdout.String())
	}
}

func TestHookRunsAfterMutation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook script uses sh")
	}
	h := newHarness(t)
	out := filepath.Join(h.dir, "hook.out")
	script := filepath.Join(h.dir, "hook.sh")
	body := "#!/bin/sh\necho \"$1 $2 $3\" >> " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("PLANNER_HOOK", script)

	h.mustRun(t, "init", "Launch")
	h.mustRun(t, "add-phase", "p1", "Plan")
	h.mustRun(t, "add-task", "p1", "t1", "Write")
	h.mustRun(t, "list")

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook output: %v", err)
	}
	want := "rename-project  \nadd-phase p1 \nadd-task p1 t1\n"
	if string(data) != want {
		t.Errorf("hook calls: got %q, want %q", data, want)
	}

	doctor := h.mustRun(t, "doctor")
	if !strings.Contains(doctor, script) {
		t.Errorf("doctor should report the hook path:\n%s", doctor)
	}
}

func TestHookFailureDoesNotFailCommand(t *testing.T) {
	h := newHarness(t)
	t.Setenv("PLANNER_HOOK", filepath.Join(h.dir, "missing-hook"))

	h.mustRun(t, "init", "Launch")
	h.mustRun(t, "add-phase", "p1", "Plan")
	if p := h.project(t); p.Phases.Get("p1") == nil {
		t.Fatal("phase p1 not saved")
	}
	if err := h.run("doctor"); err == nil {
		t.Error("expected doctor to fail for a missing hook")
	}
}

func TestConfigCommand(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun(t, "config", "--example")
	if !strings.Contains(out, `project_file = "planner.json"`) {
		t.Errorf("example config:\n%s", out)
	}

	out = h.mustRun(t, "--report", "out.html", "config")
	if !strings.Contains(out, filepath.Join(h.dir, "out.html")) || !strings.Contains(out, "(flag)") {
		t.Errorf("resolved config:\n%s", out)
	}
}

func TestSubcommandHelp(t *testing.T) {
	h := newHarness(t)
	if err := h.run("list", "--help"); err != nil {
		t.Fatalf("list --help: %v", err)
	}
	if !strings.Contains(h.stderr.String(), "Usage: planner list") || !strings.Contains(h.stderr.String(), "--filter") {
		t.Errorf("list help:\n%s", h.stderr.String())
	}
}

func TestTUIRequiresTerminal(t *testing.T) {
	h := newHarness(t)
	err := h.run("tui")
	if !errors.Is(err, ui.ErrNotTTY) {
		t.Errorf("tui without terminal: got %v, want ErrNotTTY", err)
	}
}

func taskIDs(ph *plan.Phase) string {
	ids := make([]string, len(ph.Tasks))
	for i, task := range ph.Tasks {
		ids[i] = task.ID
	}
	return strings.Join(ids, ",")
}
