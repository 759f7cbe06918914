package config

import (
	"fmt"
	"os"
	"strings"
)

const envPrefix = "PLANNER_"

// envBinding maps one PLANNER_* variable to a config key.
type envBinding struct {
	name  string
	key   string
	apply func(cfg *Config, value string) error
}

var envBindings = []envBinding{
	{"PROJECT_FILE", "project_file", func(c *Config, v string) error { c.ProjectFile = v; return nil }},
	{"REPORT_FILE", "report_file", func(c *Config, v string) error { c.ReportFile = v; return nil }},
	{"PROJECT_NAME", "default_project_name", func(c *Config, v string) error { c.DefaultProjectName = v; return nil }},
	{"DATE_FORMAT", "date_format", func(c *Config, v string) error { c.DateFormat = v; return nil }},
	{"JOURNAL", "journal", boolSetter(func(c *Config, b bool) { c.Journal = b })},
	{"JOURNAL_DIR", "journal_dir", func(c *Config, v string) error { c.JournalDir = v; return nil }},
	{"HOOK", "hook_command", func(c *Config, v string) error { c.HookCommand = v; return nil }},
	{"LOG_LEVEL", "log_level", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"LOG_FORMAT", "log_format", func(c *Config, v string) error { c.LogFormat = v; return nil }},
	{"LOG_TIMESTAMPS", "log_timestamps", boolSetter(func(c *Config, b bool) { c.LogTimestamps = b })},
	{"LOG_CALLER", "log_caller", boolSetter(func(c *Config, b bool) { c.LogCaller = b })},
}

// loadFromEnv applies every set PLANNER_* variable to cfg.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	for _, b := range envBindings {
		name := envPrefix + b.name
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		setSource(sources, b.key, SourceEnv)
	}
	return nil
}

func boolSetter(set func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		set(c, b)
		return nil
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
