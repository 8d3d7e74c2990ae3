package config

import (
	"fmt"
	"path/filepath"
)

// DataPath returns the data file path, resolved against the project root.
func (c *Config) DataPath() string {
	if c.DataFile == "" || filepath.IsAbs(c.DataFile) || c.ProjectRoot == "" {
		return c.DataFile
	}
	return filepath.Join(c.ProjectRoot, c.DataFile)
}

// Value returns the display form of a field named in Fields.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	case "strict_load":
		return fmt.Sprint(c.StrictLoad)
	default:
		return ""
	}
}
