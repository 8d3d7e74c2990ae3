package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// windowsEnvRef matches %NAME% references.
var windowsEnvRef = regexp.MustCompile(`%([A-Za-z0-9_()]+)%`)

// expandPath expands environment variables and a leading ~ in p.
// $VAR is expanded everywhere; %VAR% and a ~\ prefix only on Windows.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsEnvRef.ReplaceAllStringFunc(p, func(ref string) string {
			if val, ok := os.LookupEnv(strings.Trim(ref, "%")); ok {
				return val
			}
			return ref
		})
	}

	homeRelative := strings.HasPrefix(p, "~/") || (runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`))
	if p != "~" && !homeRelative {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
