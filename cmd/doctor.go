package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/nibzard/planner-go/internal/config"
	"github.com/nibzard/planner-go/internal/hooks"
	"github.com/nibzard/planner-go/internal/logging"
	"github.com/nibzard/planner-go/internal/progress"
	"github.com/nibzard/planner-go/internal/ui"
)

// doctorCommand checks the project document, the journal, the hook and the
// configuration.
func doctorCommand(_ context.Context, a *app, args []string) error {
	fs := a.flagSet("doctor")
	verbose := fs.BoolP("verbose", "v", false, "Verbose output")
	if _, err := positional(fs, "doctor", args, 0, 0); err != nil {
		return err
	}

	w := a.stdout
	st := a.styles
	ok := func(msg string) { fmt.Fprintln(w, "  "+st.Success.Render("ok")+"   "+msg) }
	warn := func(msg string) { fmt.Fprintln(w, "  "+st.Ratio.Render("warn")+" "+msg) }
	fail := func(msg string) { fmt.Fprintln(w, "  "+st.Error.Render("fail")+" "+msg) }

	fmt.Fprintln(w, st.Title.Render("Planner Doctor"))
	fmt.Fprintln(w)
	allOK := true

	fmt.Fprintf(w, "Project file: %s\n", a.cfg.ProjectFile)
	info, err := os.Stat(a.cfg.ProjectFile)
	switch {
	case os.IsNotExist(err):
		warn("not found (run planner init to create it)")
	case err != nil:
		fail(err.Error())
		allOK = false
	case info.IsDir():
		fail("path is a directory")
		allOK = false
	default:
		p, err := a.openStore().Read()
		if err != nil {
			fail(err.Error())
			allOK = false
			break
		}
		ok("valid")
		pp := progress.Calculate(p)
		ok(fmt.Sprintf("%q: %d phases, tasks %s", p.Name, len(p.Phases), ui.FormatRatio(pp.Tasks)))
		if *verbose {
			for _, ps := range progress.Detailed(p).Phases {
				fmt.Fprintf(w, "       %s %s %s\n", ps.ID, ui.FormatRatio(ps.Progress), ps.Status.Label())
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Journal:")
	if !a.cfg.Journal {
		ok("disabled")
	} else if dir, err := logging.JournalDir(a.cfg.JournalDir, a.cfg.ProjectFile); err != nil {
		fail(err.Error())
		allOK = false
	} else if _, err := os.Stat(dir); err != nil {
		warn(dir + " not created yet")
	} else {
		ok(dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Hook:")
	if a.cfg.HookCommand == "" {
		ok("none configured")
	} else if path, err := hooks.Resolve(a.cfg.HookCommand); err != nil {
		fail(err.Error())
		allOK = false
	} else {
		ok(path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config:")
	if len(a.files) == 0 {
		ok("no config files, using defaults")
	}
	for _, f := range a.files {
		ok(f)
	}
	if *verbose {
		writeConfig(a, a.cfg, a.sources)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, st.Success.Render("All checks passed."))
		return nil
	}
	fmt.Fprintln(w, st.Error.Render("Some checks failed."))
	return fmt.Errorf("doctor checks failed")
}

func configCommand(_ context.Context, a *app, args []string) error {
	fs := a.flagSet("config")
	example := fs.Bool("example", false, "Print an example planner.toml")
	if _, err := positional(fs, "config", args, 0, 0); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}
	writeConfig(a, a.cfg, a.sources)
	return nil
}

func writeConfig(a *app, cfg *config.Config, sources map[string]config.ConfigSource) {
	values := map[string]string{
		"project_file":         cfg.ProjectFile,
		"report_file":          cfg.ReportFile,
		"default_project_name": cfg.DefaultProjectName,
		"date_format":          cfg.DateFormat,
		"journal":              fmt.Sprint(cfg.Journal),
		"journal_dir":          cfg.JournalDir,
		"hook_command":         cfg.HookCommand,
		"log_level":            cfg.LogLevel,
		"log_format":           cfg.LogFormat,
		"log_timestamps":       fmt.Sprint(cfg.LogTimestamps),
		"log_caller":           fmt.Sprint(cfg.LogCaller),
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.stdout, "  %-21s %s %s\n", k, values[k], a.styles.Faint.Render("("+string(sources[k])+")"))
	}
}
