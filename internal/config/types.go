package config

// Config holds the resolved settings for one invocation.
type Config struct {
	// Paths
	ProjectFile string `toml:"project_file"`
	ReportFile  string `toml:"report_file"`

	// Document defaults
	DefaultProjectName string `toml:"default_project_name"`
	DateFormat         string `toml:"date_format"`

	// Mutation journal
	Journal    bool   `toml:"journal"`
	JournalDir string `toml:"journal_dir"`

	// Command run after every successful change
	HookCommand string `toml:"hook_command"`

	// Diagnostics
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Computed at load time
	ProjectRoot string `toml:"-"`
}

// ConfigSource names the layer a setting was last taken from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources pairs a loaded config with the source of each key.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Defaults
const (
	DefaultProjectFile    = "planner.json"
	DefaultReportFile     = "planner.html"
	DefaultProjectName    = "New Project"
	DefaultDateFormat     = "2006-01-02 15:04"
	DefaultJournalEnabled = true
	DefaultJournalDir     = "~/.planner"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
)

const (
	appDirName     = "planner"
	configFileName = "planner.toml"
)
