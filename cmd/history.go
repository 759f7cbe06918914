package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/planner-go/internal/logging"
)

func historyCommand(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("history")
	n := fs.IntP("lines", "n", 20, "Number of entries to show (0 = all)")
	follow := fs.BoolP("follow", "f", false, "Keep printing new entries until interrupted")
	raw := fs.Bool("raw", false, "Print the raw JSON lines")
	if _, err := positional(fs, "history", args, 0, 0); err != nil {
		return err
	}

	dir, err := logging.JournalDir(a.cfg.JournalDir, a.cfg.ProjectFile)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, logging.JournalFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !*follow {
			fmt.Fprintln(a.stdout, a.styles.Faint.Render("No history recorded for "+a.cfg.ProjectFile))
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("open journal: %w", err)
		}
		// Following a journal that does not exist yet: create it so the
		// next mutation shows up.
		if _, err := logging.OpenJournal(a.cfg.JournalDir, a.cfg.ProjectFile); err != nil {
			return err
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
	}

	if *raw || *follow {
		return logging.TailLog(ctx, a.stdout, path, *n, *follow)
	}

	entries, err := logging.ReadEntries(path, *n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(a.stdout, e.String())
	}
	return nil
}
