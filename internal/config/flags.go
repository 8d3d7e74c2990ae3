package config

import (
	"flag"
)

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsHelper(cfg, fs, args, nil)
}

// parseFlagsHelper is the shared implementation for flag parsing.
// Only flags that were set on the command line change cfg. If sources is
// non-nil, those fields are attributed to SourceFlag.
func parseFlagsHelper(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todolist", flag.ContinueOnError)
	}

	dataFile := cfg.DataFile
	logDir := cfg.LogDir
	logLevel := cfg.LogLevel
	logFormat := cfg.LogFormat
	logTimestamps := cfg.LogTimestamps
	logCaller := cfg.LogCaller
	strictLoad := cfg.StrictLoad

	// Paths
	fs.StringVar(&dataFile, "file", dataFile, "Path to the task data file")
	fs.StringVar(&logDir, "log-dir", logDir, "Session log directory (empty disables session logs)")

	// Logging
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", logCaller, "Show caller location in logs")

	// Loading
	fs.BoolVar(&strictLoad, "strict-load", strictLoad, "Fail instead of starting empty when the data file is corrupted")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"file":           "data_file",
		"log-dir":        "log_dir",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
		"strict-load":    "strict_load",
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.DataFile = dataFile
		case "log-dir":
			cfg.LogDir = logDir
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-format":
			cfg.LogFormat = logFormat
		case "log-timestamps":
			cfg.LogTimestamps = logTimestamps
		case "log-caller":
			cfg.LogCaller = logCaller
		case "strict-load":
			cfg.StrictLoad = strictLoad
		}
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	return nil
}
