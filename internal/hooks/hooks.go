// Package hooks invokes an external command after each recorded change.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nibzard/planner-go/internal/logging"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 30 * time.Second

// Options configures a hook invocation.
type Options struct {
	Command  string
	Document string
	WorkDir  string
	Timeout  time.Duration
	Stdout   io.Writer
	Stderr   io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook for one change. The command receives the operation,
// phase id, task id and target as arguments, and the same values plus the
// document path as PLANNER_HOOK_* environment variables.
func Invoke(ctx context.Context, opts Options, e logging.Entry) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opts.Command, e.Op, e.Phase, e.Task, e.Target)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"PLANNER_HOOK_OP="+e.Op,
		"PLANNER_HOOK_PHASE="+e.Phase,
		"PLANNER_HOOK_TASK="+e.Task,
		"PLANNER_HOOK_TARGET="+e.Target,
		"PLANNER_HOOK_DETAIL="+e.Detail,
		"PLANNER_HOOK_DOCUMENT="+opts.Document,
	)
	cmd.Stdout = writerOr(opts.Stdout, os.Stdout)
	cmd.Stderr = writerOr(opts.Stderr, os.Stderr)

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

// Runner binds hook options to a context so it can be notified of changes.
type Runner struct {
	ctx  context.Context
	opts Options
}

// NewRunner returns a Runner that invokes opts.Command for every change.
func NewRunner(ctx context.Context, opts Options) *Runner {
	return &Runner{ctx: ctx, opts: opts}
}

// Notify runs the hook for e.
func (r *Runner) Notify(e logging.Entry) error {
	_, err := Invoke(r.ctx, r.opts, e)
	return err
}

// Resolve finds the hook command on disk or in PATH.
func Resolve(command string) (string, error) {
	if command == "" {
		return "", errors.New("no hook command configured")
	}
	if strings.ContainsRune(command, filepath.Separator) || strings.ContainsRune(command, '/') {
		info, err := os.Stat(command)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", command)
		}
		if !isExecutable(command, info.Mode()) {
			return "", fmt.Errorf("%s is not executable", command)
		}
		return command, nil
	}
	return exec.LookPath(command)
}

func isExecutable(path string, mode os.FileMode) bool {
	if runtime.GOOS == "windows" {
		return windowsExecutableExtensions()[strings.ToLower(filepath.Ext(path))]
	}
	return mode&0o111 != 0
}

// windowsExecutableExtensions parses PATHEXT into a set of lowercase
// extensions with a leading dot.
func windowsExecutableExtensions() map[string]bool {
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	exts := map[string]bool{}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
