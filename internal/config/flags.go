package config

import (
	"github.com/spf13/pflag"
)

// flagValues receives the parsed global flags before they are applied.
type flagValues struct {
	file       string
	report     string
	dateFormat string
	journalDir string
	noJournal  bool
	hook       string
	logLevel   string
	logFormat  string
	logTime    bool
	logCaller  bool
	verbose    bool
}

func registerFlags(fs *pflag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVarP(&v.file, "file", "f", "", "project document path (default planner.json)")
	fs.StringVar(&v.report, "report", "", "default HTML report path")
	fs.StringVar(&v.dateFormat, "date-format", "", "Go time layout for report dates")
	fs.StringVar(&v.journalDir, "journal-dir", "", "directory for mutation journals")
	fs.BoolVar(&v.noJournal, "no-journal", false, "do not record mutations")
	fs.StringVar(&v.hook, "hook", "", "command to run after every change")
	fs.StringVar(&v.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", "", "log format: text, json, logfmt")
	fs.BoolVar(&v.logTime, "log-timestamps", false, "include timestamps in log output")
	fs.BoolVar(&v.logCaller, "log-caller", false, "include caller location in log output")
	fs.BoolVar(&v.verbose, "verbose", false, "shorthand for --log-level=debug")
	return v
}

// applyFlags copies the flags the user set onto cfg.
func applyFlags(fs *pflag.FlagSet, v *flagValues, cfg *Config, sources map[string]ConfigSource) {
	type binding struct {
		flag  string
		key   string
		apply func()
	}
	bindings := []binding{
		{"file", "project_file", func() { cfg.ProjectFile = v.file }},
		{"report", "report_file", func() { cfg.ReportFile = v.report }},
		{"date-format", "date_format", func() { cfg.DateFormat = v.dateFormat }},
		{"journal-dir", "journal_dir", func() { cfg.JournalDir = v.journalDir }},
		{"no-journal", "journal", func() { cfg.Journal = !v.noJournal }},
		{"hook", "hook_command", func() { cfg.HookCommand = v.hook }},
		{"log-level", "log_level", func() { cfg.LogLevel = v.logLevel }},
		{"log-format", "log_format", func() { cfg.LogFormat = v.logFormat }},
		{"log-timestamps", "log_timestamps", func() { cfg.LogTimestamps = v.logTime }},
		{"log-caller", "log_caller", func() { cfg.LogCaller = v.logCaller }},
	}
	for _, b := range bindings {
		if fs.Changed(b.flag) {
			b.apply()
			setSource(sources, b.key, SourceFlag)
		}
	}
	if v.verbose && !fs.Changed("log-level") {
		cfg.LogLevel = "debug"
		setSource(sources, "log_level", SourceFlag)
	}
}
