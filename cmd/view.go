package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/nibzard/planner-go/internal/metrics"
	"github.com/nibzard/planner-go/internal/plan"
	"github.com/nibzard/planner-go/internal/report"
	"github.com/nibzard/planner-go/internal/store"
	"github.com/nibzard/planner-go/internal/ui"
)

func listCommand(_ context.Context, a *app, args []string) error {
	fs := a.flagSet("list")
	filterName := fs.String("filter", "all", "Tasks to show: all, pending, completed")
	depth := fs.Int("depth", 0, "Maximum task depth to show (0 = unlimited)")
	descriptions := fs.BoolP("descriptions", "d", false, "Show task descriptions")
	if _, err := positional(fs, "list", args, 0, 0); err != nil {
		return err
	}
	filter, err := ui.ParseFilter(*filterName)
	if err != nil {
		return err
	}

	opts := ui.TreeOptions{
		Filter:       filter,
		MaxDepth:     *depth,
		Descriptions: *descriptions,
		DateFormat:   a.cfg.DateFormat,
	}
	if ui.IsTTY(a.stdout) {
		opts.Bar = ui.NewBar(20)
	}
	fmt.Fprint(a.stdout, ui.RenderTree(a.openStore().Load(), a.styles, opts))
	return nil
}

func progressCommand(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("progress")
	detailed := fs.BoolP("detailed", "d", false, "Show per-phase status")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if _, err := positional(fs, "progress", args, 0, 0); err != nil {
		return err
	}
	svc := a.openService(ctx)
	overall := svc.Progress()

	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if *detailed {
			return enc.Encode(svc.DetailedProgress())
		}
		return enc.Encode(map[string]any{"overall": overall})
	}

	st := a.styles
	fmt.Fprintln(a.stdout, st.Title.Render(svc.Project().Name))
	fmt.Fprintf(a.stdout, "Tasks:  %s\n", st.Ratio.Render(ui.FormatRatio(overall.Tasks)))
	fmt.Fprintf(a.stdout, "Phases: %s\n", st.Ratio.Render(ui.FormatRatio(overall.Phases)))
	if !*detailed {
		return nil
	}
	fmt.Fprintln(a.stdout)
	for _, ps := range svc.DetailedProgress().Phases {
		fmt.Fprintf(a.stdout, "%s %s  %s  %s\n",
			st.Phase.Render(ps.Name),
			st.ID.Render(ps.ID),
			st.Ratio.Render(ui.FormatRatio(ps.Progress)),
			ps.Status.Label(),
		)
		fmt.Fprintf(a.stdout, "  %s\n", st.Faint.Render(fmt.Sprintf("pending %d, in progress %d, completed %d",
			ps.TaskStats.Pending, ps.TaskStats.InProgress, ps.TaskStats.Completed)))
	}
	return nil
}

func exportHTMLCommand(_ context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("export-html"), "export-html", args, 0, 1)
	if err != nil {
		return err
	}
	out := a.cfg.ReportFile
	if len(rest) == 1 {
		out = rest[0]
		if !filepath.IsAbs(out) {
			out = filepath.Join(a.cfg.ProjectRoot, out)
		}
	}
	r := report.New(report.WithDateFormat(a.cfg.DateFormat))
	if err := r.Export(a.openStore().Load(), out); err != nil {
		return err
	}
	a.success("Report written to %s", out)
	return nil
}

func showCommand(_ context.Context, a *app, args []string) error {
	fs := a.flagSet("show")
	format := fs.String("format", "json", "Output format: json or yaml")
	color := fs.String("color", "auto", "Highlight output: auto, always, never")
	if _, err := positional(fs, "show", args, 0, 0); err != nil {
		return err
	}

	p := a.openStore().Load()
	var (
		data []byte
		err  error
	)
	lexer := strings.ToLower(*format)
	switch lexer {
	case "json":
		data, err = store.Encode(p)
	case "yaml", "yml":
		lexer = "yaml"
		data, err = store.EncodeYAML(p)
	default:
		return fmt.Errorf("unknown format %q (use json or yaml)", *format)
	}
	if err != nil {
		return err
	}

	highlight := false
	switch *color {
	case "always":
		highlight = true
	case "auto":
		highlight = ui.IsTTY(a.stdout)
	case "never":
	default:
		return fmt.Errorf("unknown color mode %q (use auto, always or never)", *color)
	}
	if highlight {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, string(data), lexer, "terminal256", "monokai"); err == nil {
			_, err = a.stdout.Write(buf.Bytes())
			return err
		}
	}
	_, err = a.stdout.Write(data)
	return err
}

func metricsCommand(_ context.Context, a *app, args []string) error {
	rest, err := positional(a.flagSet("metrics"), "metrics", args, 0, 1)
	if err != nil {
		return err
	}
	c := metrics.New()
	c.Observe(a.openStore().Load())
	if len(rest) == 0 {
		return c.WriteText(a.stdout)
	}
	path := rest[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.ProjectRoot, path)
	}
	if err := c.WriteTextfile(path); err != nil {
		return err
	}
	a.success("Metrics written to %s", path)
	return nil
}

func tuiCommand(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("tui")
	interval := fs.Duration("interval", time.Second, "Reload interval")
	if _, err := positional(fs, "tui", args, 0, 0); err != nil {
		return err
	}
	st := a.openStore()
	load := func() (*plan.Project, error) {
		if !st.Exists() {
			return st.Load(), nil
		}
		return st.Read()
	}
	v := ui.NewViewer(load, st.Path(),
		ui.WithInterval(*interval),
		ui.WithDateFormat(a.cfg.DateFormat),
	)
	return ui.Run(ctx, v)
}
