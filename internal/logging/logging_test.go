package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"", log.WarnLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", log.WarnLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Formatter
		wantErr bool
	}{
		{"", log.TextFormatter, false},
		{"json", log.JSONFormatter, false},
		{"logfmt", log.LogfmtFormatter, false},
		{"xml", log.TextFormatter, true},
	}
	for _, tt := range tests {
		got, err := ParseFormatter(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormatter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormatter(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.DebugLevel
	opts.Formatter = log.JSONFormatter
	logger := NewLogger(&buf, opts)

	logger.Debug("task completed", "task", "t1")
	out := buf.String()
	for _, want := range []string{`"msg":"task completed"`, `"task":"t1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestDefaultLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, DefaultOptions())
	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestJournalAppendAndRead(t *testing.T) {
	base := t.TempDir()
	doc := filepath.Join(t.TempDir(), "planner.json")

	j, err := OpenJournal(base, doc)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	if !strings.HasPrefix(j.Dir, base) {
		t.Errorf("Dir: got %s, want under %s", j.Dir, base)
	}

	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := Entry{Time: at.Add(time.Duration(i) * time.Minute), Op: "add-task", Phase: "p1", Task: fmt.Sprintf("t%d", i)}
		if err := j.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := ReadEntries(j.Path, 2)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Task != "t3" || entries[1].Task != "t4" {
		t.Errorf("tail entries: got %s,%s want t3,t4", entries[0].Task, entries[1].Task)
	}

	all, err := ReadEntries(j.Path, 0)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("all entries: got %d, want 5", len(all))
	}
}

func TestJournalDirStable(t *testing.T) {
	base := t.TempDir()
	docA := filepath.Join(t.TempDir(), "planner.json")
	docB := filepath.Join(t.TempDir(), "planner.json")

	a1, err := JournalDir(base, docA)
	if err != nil {
		t.Fatalf("JournalDir failed: %v", err)
	}
	a2, _ := JournalDir(base, docA)
	b, _ := JournalDir(base, docB)
	if a1 != a2 {
		t.Errorf("same document, different dirs: %s vs %s", a1, a2)
	}
	if a1 == b {
		t.Errorf("different documents share dir %s", a1)
	}

	if _, err := JournalDir("", docA); err == nil {
		t.Error("expected error for empty base dir")
	}
}

func TestReadEntriesSkipsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), JournalFile)
	content := `{"time":"2026-10-18T09:00:00Z","op":"add-phase","phase":"p1"}
not json

{"time":"2026-10-18T09:01:00Z","op":"remove-phase","phase":"p1"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	entries, err := ReadEntries(path, 0)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Op != "remove-phase" {
		t.Errorf("entries: got %+v", entries)
	}

	missing, err := ReadEntries(filepath.Join(t.TempDir(), "none.jsonl"), 0)
	if err != nil || missing != nil {
		t.Errorf("missing file: got %v, %v", missing, err)
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{
		Time:   time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		Op:     "move-task",
		Phase:  "p1",
		Task:   "t1",
		Target: "p2",
		Detail: "moved",
	}
	want := `2026-10-18T09:00:00Z move-task phase=p1 task=t1 target=p2 "moved"`
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"Hello World", "Hello_World"},
		{"many   spaces", "many_spaces"},
		{"special@chars!", "special_chars"},
		{"", "project"},
		{"   ", "project"},
		{"___", "project"},
		{".", "project"},
		{"test.-_project", "test.-_project"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{name: "last three", n: 3, want: "line 8\nline 9\nline 10\n"},
		{name: "more than file", n: 50, want: strings.Join(lines, "\n") + "\n"},
		{name: "all", n: 0, want: strings.Join(lines, "\n") + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog failed: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTailLogFollowStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	if err := os.WriteFile(path, []byte("first\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	if err := TailLog(ctx, &buf, path, 0, true); err != nil {
		t.Fatalf("TailLog failed: %v", err)
	}
	if buf.String() != "first\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTailLogMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := TailLog(context.Background(), &buf, filepath.Join(t.TempDir(), "none"), 5, false); err == nil {
		t.Error("expected error for missing file")
	}
}
