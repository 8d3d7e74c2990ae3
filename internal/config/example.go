package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todolist configuration file
# Values can be overridden by TODOLIST_* environment variables or CLI flags.

# Task data file (relative to the working directory)
data_file = "todolist_data.json"

# Session log directory (supports ~ expansion; empty disables session logs)
# log_dir = "~/.todolist/logs"

# Logging: level is debug, info, warn or error; format is text, json or logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

# Refuse to start when the data file is corrupted instead of starting empty
strict_load = false
`
}
