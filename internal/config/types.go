package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotEnv   ConfigSource = "dotenv file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultDataFile  = "todolist_data.json"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for todolist.
type Config struct {
	// Paths
	DataFile string `toml:"data_file"`
	LogDir   string `toml:"log_dir"` // Session log directory; empty disables session logs

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Refuse to start when the data file is corrupted instead of starting empty
	StrictLoad bool `toml:"strict_load"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_file",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"strict_load",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}
