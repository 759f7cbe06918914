package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Load registers the global flags on fs, parses args and returns the merged
// configuration.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources is Load that also reports where each key came from.
func LoadWithSources(fs *pflag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	sources := make(map[string]ConfigSource)
	setDefaults(cfg, sources)

	values := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg.ProjectRoot = root

	var files []string
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(path, cfg, sources, SourceUserFile); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if path := findProjectConfigFile(root); path != "" {
		if err := loadConfigFile(path, cfg, sources, SourceProjFile); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, err
	}
	applyFlags(fs, values, cfg, sources)

	finalizeConfig(cfg)
	return &ConfigWithSources{Config: cfg, Sources: sources, Files: files}, nil
}

func setDefaults(cfg *Config, sources map[string]ConfigSource) {
	cfg.ProjectFile = DefaultProjectFile
	cfg.ReportFile = DefaultReportFile
	cfg.DefaultProjectName = DefaultProjectName
	cfg.DateFormat = DefaultDateFormat
	cfg.Journal = DefaultJournalEnabled
	cfg.JournalDir = DefaultJournalDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	for _, key := range configFields() {
		sources[key] = SourceDefault
	}
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the file
// change cfg and its sources.
func loadConfigFile(path string, cfg *Config, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	for _, key := range configFields() {
		if md.IsDefined(key) {
			setSource(sources, key, source)
		}
	}
	return nil
}

// finalizeConfig expands and absolutizes paths relative to the project root.
func finalizeConfig(cfg *Config) {
	cfg.ProjectFile = resolvePath(cfg.ProjectRoot, cfg.ProjectFile)
	cfg.ReportFile = resolvePath(cfg.ProjectRoot, cfg.ReportFile)
	cfg.JournalDir = resolvePath(cfg.ProjectRoot, cfg.JournalDir)
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
}

// configFields returns every TOML key Config understands, sorted.
func configFields() []string {
	keys := []string{
		"project_file",
		"report_file",
		"default_project_name",
		"date_format",
		"journal",
		"journal_dir",
		"hook_command",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
	sort.Strings(keys)
	return keys
}

func setSource[T ~string](sources map[string]T, key string, source T) {
	if sources != nil {
		sources[key] = source
	}
}
