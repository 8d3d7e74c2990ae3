package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/nibzard/todolist-go/internal/utils"
)

// dotEnvFile is read from the working directory.
const dotEnvFile = ".env"

// Environment variable names.
const (
	EnvDataFile      = "TODOLIST_FILE"
	EnvLogDir        = "TODOLIST_LOG_DIR"
	EnvLogLevel      = "TODOLIST_LOG_LEVEL"
	EnvLogFormat     = "TODOLIST_LOG_FORMAT"
	EnvLogTimestamps = "TODOLIST_LOG_TIMESTAMPS"
	EnvLogCaller     = "TODOLIST_LOG_CALLER"
	EnvStrictLoad    = "TODOLIST_STRICT_LOAD"
)

// loadDotEnv copies variables from a .env file into the process environment
// without overriding variables that are already set. It returns the names it
// set. A missing file is not an error.
func loadDotEnv(path string) (map[string]bool, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	set := make(map[string]bool)
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, err
		}
		set[key] = true
	}
	return set, nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvHelper(cfg, nil, nil)
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value; variables named
// in dotenv are attributed to the .env file.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource, dotenv map[string]bool) {
	track := func(env, field string) {
		if sources == nil {
			return
		}
		if dotenv[env] {
			sources[field] = SourceDotEnv
			return
		}
		sources[field] = SourceEnv
	}

	if v := os.Getenv(EnvDataFile); v != "" {
		cfg.DataFile = v
		track(EnvDataFile, "data_file")
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.LogDir = v
		track(EnvLogDir, "log_dir")
	}

	// Logging configuration
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		track(EnvLogLevel, "log_level")
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		track(EnvLogFormat, "log_format")
	}
	if v := os.Getenv(EnvLogTimestamps); v != "" {
		cfg.LogTimestamps = utils.BoolFromString(v)
		track(EnvLogTimestamps, "log_timestamps")
	}
	if v := os.Getenv(EnvLogCaller); v != "" {
		cfg.LogCaller = utils.BoolFromString(v)
		track(EnvLogCaller, "log_caller")
	}

	if v := os.Getenv(EnvStrictLoad); v != "" {
		cfg.StrictLoad = utils.BoolFromString(v)
		track(EnvStrictLoad, "strict_load")
	}
}
