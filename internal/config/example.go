package config

// ExampleConfig returns a commented planner.toml with the default values.
func ExampleConfig() string {
	return `# planner configuration
#
# Place this file at ~/.planner/planner.toml for user-wide settings or at
# ./planner.toml to override them for one directory.

# Project document, relative to the working directory.
project_file = "planner.json"

# Default output of export-html.
report_file = "planner.html"

# Name given to a project created from scratch.
default_project_name = "New Project"

# Go time layout for the report's last update line.
date_format = "2006-01-02 15:04"

# Record every change in a per-document journal under journal_dir.
journal = true
journal_dir = "~/.planner"

# Command run after every change with the operation, phase id, task id and
# target as arguments. Empty disables it.
hook_command = ""

# Diagnostics on stderr.
log_level = "warn"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
