package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"WARNING", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"chatty", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"text", log.TextFormatter},
		{"json", log.JSONFormatter},
		{"JSON", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"", log.TextFormatter},
		{"yaml", log.TextFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormatter(tt.in); got != tt.want {
				t.Errorf("ParseFormatter(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("level filters output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, Options{Level: "warn", Format: "logfmt", Prefix: Prefix})

		logger.Debug("hidden")
		logger.Info("hidden too")
		logger.Warn("due date ignored", "value", "2024/01/01")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("expected debug and info to be filtered, got %q", out)
		}
		if !strings.Contains(out, "due date ignored") || !strings.Contains(out, "2024/01/01") {
			t.Errorf("expected warning with field, got %q", out)
		}
		if !strings.Contains(out, Prefix) {
			t.Errorf("expected prefix %q, got %q", Prefix, out)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, Options{Level: "debug", Format: "json"})
		logger.Debug("tasks saved", "count", 3)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
		}
		if entry["msg"] != "tasks saved" {
			t.Errorf("msg: got %v, want tasks saved", entry["msg"])
		}
	})
}

func TestDiscard(t *testing.T) {
	// Must not panic or write anywhere.
	Discard().Error("ignored", "k", "v")
}

func TestNewSessionLog(t *testing.T) {
	t.Run("creates project directory and file", func(t *testing.T) {
		base := t.TempDir()
		work := filepath.Join(t.TempDir(), "my project")
		if err := os.Mkdir(work, 0755); err != nil {
			t.Fatal(err)
		}

		session, err := NewSessionLog(base, work)
		if err != nil {
			t.Fatalf("NewSessionLog: %v", err)
		}
		defer session.Close()

		if filepath.Dir(session.Dir) != base {
			t.Errorf("Dir: got %s, want a child of %s", session.Dir, base)
		}
		if !strings.HasPrefix(filepath.Base(session.Dir), "my_project-") {
			t.Errorf("Dir: got %s, want slug my_project-<hash>", session.Dir)
		}
		if filepath.Base(session.Path) != session.RunID+".log" {
			t.Errorf("Path: got %s, want %s.log", session.Path, session.RunID)
		}
		if _, err := os.Stat(session.Path); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("relative base dir resolves against work dir", func(t *testing.T) {
		work := t.TempDir()
		session, err := NewSessionLog("logs", work)
		if err != nil {
			t.Fatalf("NewSessionLog: %v", err)
		}
		defer session.Close()

		if !strings.HasPrefix(session.Dir, filepath.Join(work, "logs")) {
			t.Errorf("Dir: got %s, want under %s", session.Dir, filepath.Join(work, "logs"))
		}
	})

	t.Run("empty base dir", func(t *testing.T) {
		_, err := NewSessionLog("", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})
}

func TestSessionLogTee(t *testing.T) {
	session, err := NewSessionLog(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var console bytes.Buffer
	logger := New(session.Tee(&console), Options{Level: "info", Format: "logfmt"})
	logger.Info("task added", "title", "Buy milk")
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	content, err := os.ReadFile(session.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, console.Bytes()) {
		t.Errorf("file and console differ:\nfile    %q\nconsole %q", content, console.Bytes())
	}
	if !strings.Contains(string(content), "Buy milk") {
		t.Errorf("expected log line in file, got %q", content)
	}

	var nilSession *SessionLog
	if w := nilSession.Tee(&console); w != &console {
		t.Error("nil session should return the writer unchanged")
	}
	if err := nilSession.Close(); err != nil {
		t.Errorf("Close on nil session: %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"todolist", "todolist"},
		{"my project", "my_project"},
		{"a  //  b", "a_b"},
		{"v1.2-rc_3", "v1.2-rc_3"},
		{"café", "caf"},
		{"", "project"},
		{"///", "project"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := slugify(tt.in); got != tt.want {
				t.Errorf("slugify(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProjectSlugDistinguishesPaths(t *testing.T) {
	a := projectSlug(filepath.Join("one", "app"))
	b := projectSlug(filepath.Join("two", "app"))
	if a == b {
		t.Errorf("expected distinct slugs for same-named projects, both %s", a)
	}
	if !strings.HasPrefix(a, "app-") || len(a) != len("app-")+8 {
		t.Errorf("slug %q: want app-<8 hex chars>", a)
	}
}

func TestFindLogDir(t *testing.T) {
	base := t.TempDir()
	work := t.TempDir()

	dir, err := FindLogDir(base, work)
	if err != nil {
		t.Fatalf("FindLogDir: %v", err)
	}

	session, err := NewSessionLog(base, work)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	if dir != session.Dir {
		t.Errorf("FindLogDir: got %s, want %s", dir, session.Dir)
	}
}

func writeSession(t *testing.T, dir, name, content string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	older := writeSession(t, dir, "20240101-100000-1.log", "old\n", now.Add(-2*time.Hour))
	newer := writeSession(t, dir, "20240101-120000-2.log", "new\n", now.Add(-time.Hour))
	writeSession(t, dir, "notes.txt", "ignored", now)
	if err := os.Mkdir(filepath.Join(dir, "nested.log"), 0755); err != nil {
		t.Fatal(err)
	}

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2: %+v", len(sessions), sessions)
	}
	if sessions[0].Path != newer || sessions[1].Path != older {
		t.Errorf("order: got %s, %s; want newest first", sessions[0].Path, sessions[1].Path)
	}
	if sessions[0].RunID != "20240101-120000-2" {
		t.Errorf("RunID: got %s", sessions[0].RunID)
	}

	latest, err := FindLatestLog(dir)
	if err != nil {
		t.Fatalf("FindLatestLog: %v", err)
	}
	if latest != newer {
		t.Errorf("FindLatestLog: got %s, want %s", latest, newer)
	}
}

func TestFindLatestLogMissingDir(t *testing.T) {
	latest, err := FindLatestLog(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if latest != "" {
		t.Errorf("expected no log, got %s", latest)
	}
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	content := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"whole file", 0, content},
		{"last two", 2, "three\nfour\n"},
		{"more than available", 10, content},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(&buf, path, tt.n); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(&buf, filepath.Join(t.TempDir(), "absent.log"), 5); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
