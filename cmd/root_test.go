// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/ui"
)

// workspace isolates a test from the user's config, environment and working
// directory and returns the new working directory.
func workspace(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		config.EnvDataFile, config.EnvLogDir, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvLogTimestamps, config.EnvLogCaller, config.EnvStrictLoad,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	work := t.TempDir()
	t.Chdir(work)
	return work
}

func runCLI(t *testing.T, input string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, strings.NewReader(input), &out, &errOut)
	return out.String(), errOut.String(), err
}

func readTitles(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var records []todo.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}
	return titles
}

func assertContains(t *testing.T, output string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

// TestRun tests the main Run entry points that do not touch the data file.
func TestRun(t *testing.T) {
	workspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"help flag", []string{"--help"}, "Commands:"},
		{"short help flag", []string{"-h"}, "Commands:"},
		{"help command", []string{"help"}, "Global Options:"},
		{"version flag", []string{"--version"}, "todolist version " + Version},
		{"version command", []string{"version"}, "todolist version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, "", tt.args...)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			assertContains(t, out, tt.want)
		})
	}

	t.Run("unknown command returns error", func(t *testing.T) {
		_, errOut, err := runCLI(t, "", "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
		assertContains(t, errOut, "Unknown command: unknown-command")
	})

	t.Run("bad flag value returns error", func(t *testing.T) {
		if _, _, err := runCLI(t, "", "--log-format", "xml", "ls"); err == nil {
			t.Error("expected error for invalid log format")
		}
	})
}

func TestMenuAddAndView(t *testing.T) {
	work := workspace(t)

	out, _, err := runCLI(t, "1\nBuy milk\n\n\n2\n0\n")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	assertContains(t, out,
		"===== TO-DO LIST MENU =====",
		"Task 'Buy milk' added successfully.",
		"--- YOUR TASKS ---",
		"1. [ ] Buy milk\n    Due: N/A (Created: ",
		"Exiting To-Do List. Your tasks are saved. Goodbye!",
	)

	got := readTitles(t, filepath.Join(work, config.DefaultDataFile))
	if len(got) != 1 || got[0] != "Buy milk" {
		t.Errorf("data file titles: got %v, want [Buy milk]", got)
	}
}

func TestMenuMessages(t *testing.T) {
	workspace(t)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty title", "1\n   \n0\n", []string{"Task title cannot be empty. Task not added."}},
		{"bad due date", "1\nPay rent\n\n2024/01/01\n0\n", []string{
			"Warning: Due date '2024/01/01' for task 'Pay rent' is not in DD-MM-YYYY format. No due date set.",
			"Task 'Pay rent' added successfully.",
		}},
		{"invalid choice", "9\n0\n", []string{"Invalid choice. Please try again."}},
		{"input ends", "2\n", []string{"--- YOUR TASKS ---"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.input)
			if err != nil {
				t.Fatalf("menu: %v", err)
			}
			assertContains(t, out, tt.want...)
		})
	}
}

func TestMenuEmptyList(t *testing.T) {
	workspace(t)

	out, _, err := runCLI(t, "2\n3\n5\n6\n7\n8\n0\n")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	assertContains(t, out,
		"Your to-do list is empty!",
		"No tasks to mark.",
		"No tasks to edit.",
		"No tasks to remove.",
	)
	if strings.Contains(out, "--- YOUR TASKS ---") {
		t.Errorf("empty list should not print a listing header:\n%s", out)
	}
}

func TestMenuMarkEditRemove(t *testing.T) {
	work := workspace(t)
	dataPath := filepath.Join(work, config.DefaultDataFile)

	for _, title := range []string{"first", "second", "third"} {
		if _, _, err := runCLI(t, "", "add", title); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}

	script := strings.Join([]string{
		"5", "2", // complete "second"
		"6", "1", // back to pending
		"5", "3", // complete "third" (3rd pending)
		"4",                                       // completed listing
		"7", "1", "First!", "notes", "31-31-2024", // edit with bad date
		"8", "2", // remove "second"
		"8", "x", // bad input
		"5", "9", // out of range
		"0",
	}, "\n") + "\n"

	out, _, err := runCLI(t, script)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	assertContains(t, out,
		"--- Select a PENDING task to mark as complete ---",
		"2. second (Due: N/A)",
		"Task 'second' marked as complete.",
		"--- Select a COMPLETED task to mark as pending ---",
		"Task 'second' marked as pending.",
		"Task 'third' marked as complete.",
		"1. [X] third",
		"Editing Task: 'first'",
		"Current Description: N/A",
		"Warning: New due date '31-31-2024' is not in DD-MM-YYYY format. Due date not changed.",
		"Task 'First!' updated successfully.",
		"Task 'second' removed successfully.",
		"Invalid input. Please enter a number.",
		"Invalid task number.",
	)

	got := readTitles(t, dataPath)
	if strings.Join(got, ",") != "First!,third" {
		t.Errorf("data file titles: got %v, want [First! third]", got)
	}
}

func TestOneShotCommands(t *testing.T) {
	work := workspace(t)
	dataPath := filepath.Join(work, config.DefaultDataFile)

	out, _, err := runCLI(t, "", "add", "--desc", "Two litres", "--due", "03-05-2030", "Buy", "milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	assertContains(t, out, "Task 'Buy milk' added successfully.")

	if _, _, err := runCLI(t, "", "add", "Pay rent"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, _, err = runCLI(t, "", "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	assertContains(t, out,
		"1. [ ] Buy milk\n    Description: Two litres\n    Due: 03-05-2030",
		"2. [ ] Pay rent",
	)

	out, _, _ = runCLI(t, "", "done", "2")
	assertContains(t, out, "Task 'Pay rent' marked as complete.")

	out, _, _ = runCLI(t, "", "ls", "completed")
	assertContains(t, out, "1. [X] Pay rent")

	out, _, _ = runCLI(t, "", "done", "1")
	assertContains(t, out, "Task 'Buy milk' marked as complete.")

	out, _, _ = runCLI(t, "", "ls", "pending")
	assertContains(t, out, "No pending tasks.")

	out, _, _ = runCLI(t, "", "undo", "1")
	assertContains(t, out, "Task 'Buy milk' marked as pending.")

	out, _, err = runCLI(t, "", "edit", "1", "--desc", "clear", "--due", "clear", "--title", "Buy oat milk")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	assertContains(t, out, "Task 'Buy oat milk' updated successfully.")

	out, _, _ = runCLI(t, "", "rm", "2")
	assertContains(t, out, "Task 'Pay rent' removed successfully.")

	got := readTitles(t, dataPath)
	if len(got) != 1 || got[0] != "Buy oat milk" {
		t.Errorf("data file titles: got %v, want [Buy oat milk]", got)
	}
	data, _ := os.ReadFile(dataPath)
	if !strings.Contains(string(data), `"due_date": null`) || strings.Contains(string(data), "Two litres") {
		t.Errorf("edit did not clear fields:\n%s", data)
	}
}

func TestOneShotErrors(t *testing.T) {
	workspace(t)

	if _, _, err := runCLI(t, "", "add"); err == nil {
		t.Error("add without a title should be a usage error")
	}
	if _, _, err := runCLI(t, "", "done"); err == nil {
		t.Error("done without a number should be a usage error")
	}
	if _, _, err := runCLI(t, "", "ls", "someday"); err == nil {
		t.Error("ls with an unknown filter should fail")
	}

	out, _, err := runCLI(t, "", "rm", "1")
	if err != nil {
		t.Fatalf("rm on empty list: %v", err)
	}
	assertContains(t, out, "No tasks to remove.")

	if _, _, err := runCLI(t, "", "add", "only"); err != nil {
		t.Fatal(err)
	}
	out, _, _ = runCLI(t, "", "undo", "1")
	assertContains(t, out, "No tasks to mark as pending.")

	out, _, _ = runCLI(t, "", "done", "one")
	assertContains(t, out, "Invalid input. Please enter a number.")

	out, _, _ = runCLI(t, "", "edit", "5", "--title", "x")
	assertContains(t, out, "Invalid task number.")
}

func TestCorruptDataFile(t *testing.T) {
	work := workspace(t)
	dataPath := filepath.Join(work, config.DefaultDataFile)
	corrupt := []byte("{not json")
	if err := os.WriteFile(dataPath, corrupt, 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "", "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	assertContains(t, out,
		"Error: Could not read tasks from '"+dataPath+"'. File might be corrupted. Starting fresh.",
		"Your to-do list is empty!",
	)

	data, _ := os.ReadFile(dataPath)
	if !bytes.Equal(data, corrupt) {
		t.Errorf("loading must not rewrite the file, got %q", data)
	}

	if _, _, err := runCLI(t, "", "--strict-load", "ls"); err == nil {
		t.Error("expected strict load to abort")
	}
}

func TestInitCommand(t *testing.T) {
	work := workspace(t)

	out, _, err := runCLI(t, "", "init", "--schema")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	assertContains(t, out, "Created")

	for _, name := range []string{config.ProjectConfigFile, SchemaFile, config.DefaultDataFile} {
		if _, err := os.Stat(filepath.Join(work, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	data, _ := os.ReadFile(filepath.Join(work, config.DefaultDataFile))
	if string(data) != "[]\n" {
		t.Errorf("data file: got %q, want %q", data, "[]\n")
	}

	// The written config must load.
	if _, _, err := runCLI(t, "", "ls"); err != nil {
		t.Fatalf("ls after init: %v", err)
	}

	out, _, err = runCLI(t, "", "init")
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	assertContains(t, out, "Keeping existing", "use --force")

	out, _, err = runCLI(t, "", "init", "--force")
	if err != nil {
		t.Fatalf("init --force: %v", err)
	}
	assertContains(t, out, "Created "+filepath.Join(work, config.ProjectConfigFile))
}

func TestConfigCommand(t *testing.T) {
	work := workspace(t)
	if err := os.WriteFile(filepath.Join(work, config.ProjectConfigFile), []byte("log_level = \"warn\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvLogFormat, "json")

	out, _, err := runCLI(t, "", "--strict-load", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	assertContains(t, out,
		config.ProjectConfigFile,
		"log_level       warn  [project file]",
		"log_format      json  [environment]",
		"strict_load     true  [flag]",
		"log_dir         (empty)  [default]",
	)
}

func TestLogCommand(t *testing.T) {
	workspace(t)

	out, _, err := runCLI(t, "", "log")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	assertContains(t, out, "Session logs are disabled")

	out, _, _ = runCLI(t, "", "--log-dir", "logs", "log")
	assertContains(t, out, "No log files found.")

	_, errOut, err := runCLI(t, "", "--log-dir", "logs", "--log-level", "debug", "add", "Logged task")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	assertContains(t, errOut, "task added")

	out, _, err = runCLI(t, "", "--log-dir", "logs", "log")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	assertContains(t, out, "task added", "Logged task")

	out, _, err = runCLI(t, "", "--log-dir", "logs", "log", "--list")
	if err != nil {
		t.Fatalf("log --list: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(out), "\n") + 1; lines != 1 {
		t.Errorf("expected one session, got:\n%s", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	workspace(t)

	tests := []struct {
		shell  string
		needle string
	}{
		{"bash", "# todolist bash completion"},
		{"zsh", "#compdef todolist"},
		{"fish", "# todolist fish completion"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, _, err := runCLI(t, "", "completion", tt.shell)
			if err != nil {
				t.Fatalf("completion %s: %v", tt.shell, err)
			}
			assertContains(t, out, tt.needle, "undo")
		})
	}

	if _, _, err := runCLI(t, "", "completion"); err == nil {
		t.Error("expected error when shell is missing")
	}
	if _, _, err := runCLI(t, "", "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestTUIRequiresTTY(t *testing.T) {
	workspace(t)
	if ui.IsTTY(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	if _, _, err := runCLI(t, "", "tui"); err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("expected TTY error, got %v", err)
	}
}

func TestMenuCancelled(t *testing.T) {
	workspace(t)

	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, nil, pr, &out, io.Discard)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	assertContains(t, out.String(), "Enter your choice: ")
}
