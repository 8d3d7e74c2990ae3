// Package cmd implements the CLI command structure for todolist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// SchemaFile is the file name init --schema writes the data file schema to.
const SchemaFile = "todolist.schema.json"

// cli carries the loaded configuration and the streams commands talk to.
type cli struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	logger  *log.Logger
}

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		printUsage(fs, errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}

	c := &cli{
		cfg:     cws.Config,
		sources: cws,
		in:      in,
		out:     out,
		errOut:  errOut,
	}

	if *help {
		printUsage(fs, out)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	// Determine the subcommand
	subcommand := "menu"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Commands that never touch the data file
	switch subcommand {
	case "version":
		return c.versionCommand()
	case "help":
		printUsage(fs, out)
		return nil
	case "init":
		return c.initCommand(remainingArgs)
	case "config":
		return c.configCommand(remainingArgs)
	case "log":
		return c.logCommand(remainingArgs)
	case "completion":
		return c.completionCommand(remainingArgs)
	}

	var handler func(context.Context, *todo.Store, []string) error
	switch subcommand {
	case "menu":
		handler = c.menuCommand
	case "add":
		handler = c.addCommand
	case "ls", "list":
		handler = c.lsCommand
	case "done":
		handler = c.completionStateCommand(true)
	case "undo":
		handler = c.completionStateCommand(false)
	case "rm", "remove":
		handler = c.rmCommand
	case "edit":
		handler = c.editCommand
	case "tui":
		return c.tuiCommand(ctx, remainingArgs)
	default:
		fmt.Fprintf(errOut, "Unknown command: %s\n", subcommand)
		printUsage(fs, errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}

	closeLog := c.setupLogger()
	defer closeLog()

	store, err := c.openStore()
	if err != nil {
		return err
	}
	return handler(ctx, store, remainingArgs)
}

// setupLogger builds the console logger and, when log_dir is set, tees it
// into a session log file. The returned func closes the session log.
func (c *cli) setupLogger() func() {
	opts := logging.Options{
		Level:      c.cfg.LogLevel,
		Format:     c.cfg.LogFormat,
		Timestamps: c.cfg.LogTimestamps,
		Caller:     c.cfg.LogCaller,
		Prefix:     logging.Prefix,
	}
	c.logger = logging.New(c.errOut, opts)
	if c.cfg.LogDir == "" {
		return func() {}
	}

	session, err := logging.NewSessionLog(c.cfg.LogDir, c.cfg.ProjectRoot)
	if err != nil {
		c.logger.Warn("session log disabled", "err", err)
		return func() {}
	}
	c.logger = logging.New(session.Tee(c.errOut), opts)
	c.logger.Debug("session started", "run", session.RunID, "version", Version)
	return func() {
		if err := session.Close(); err != nil {
			fmt.Fprintf(c.errOut, "closing session log: %v\n", err)
		}
	}
}

// openStore loads the data file. A corrupted file is reported and replaced
// by an empty list unless strict loading is on, in which case it aborts.
func (c *cli) openStore() (*todo.Store, error) {
	store, err := todo.Open(todo.Options{
		Path:          c.cfg.DataFile,
		Logger:        c.logger,
		FailOnCorrupt: c.cfg.StrictLoad,
	})
	if store == nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if err != nil {
		c.reportLoadError(err)
	}
	return store, nil
}

func (c *cli) reportLoadError(err error) {
	var pe *todo.PersistenceError
	if errors.As(err, &pe) && pe.Corrupt {
		fmt.Fprintf(c.out, "Error: Could not read tasks from '%s'. File might be corrupted. Starting fresh.\n", pe.Path)
		return
	}
	if errors.As(err, &pe) {
		fmt.Fprintf(c.out, "Error: Could not access tasks file '%s'.\n", pe.Path)
		return
	}
	fmt.Fprintf(c.out, "Error: %v\n", err)
}

// addCommand adds a task from the command line.
func (c *cli) addCommand(_ context.Context, store *todo.Store, args []string) error {
	fs := flag.NewFlagSet("todolist add", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	desc := fs.String("desc", "", "Task description")
	due := fs.String("due", "", "Due date (DD-MM-YYYY)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("add: missing task title")
	}
	c.addTask(store, title, *desc, *due)
	return nil
}

// lsCommand prints a listing.
func (c *cli) lsCommand(_ context.Context, store *todo.Store, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	filter, err := todo.ParseFilter(name)
	if err != nil {
		return err
	}
	c.printListing(store, filter)
	return nil
}

// completionStateCommand returns the handler for done (target true) and
// undo (target false). N indexes the pending or completed listing.
func (c *cli) completionStateCommand(target bool) func(context.Context, *todo.Store, []string) error {
	return func(_ context.Context, store *todo.Store, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one task number, got %d arguments", len(args))
		}
		if store.Len() == 0 {
			fmt.Fprintln(c.out, "\nNo tasks to mark.")
			return nil
		}
		if _, err := store.Candidates(target); err != nil {
			fmt.Fprintf(c.out, "\nNo tasks to mark as %s.\n", statusWord(target))
			return nil
		}
		c.setCompletion(store, target, args[0])
		return nil
	}
}

// rmCommand removes the task at a position in the full listing.
func (c *cli) rmCommand(_ context.Context, store *todo.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one task number, got %d arguments", len(args))
	}
	if store.Len() == 0 {
		fmt.Fprintln(c.out, "\nNo tasks to remove.")
		return nil
	}
	c.removeTask(store, args[0])
	return nil
}

// editCommand edits the task at a position in the full listing.
func (c *cli) editCommand(_ context.Context, store *todo.Store, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("edit: missing task number")
	}
	selection := args[0]

	fs := flag.NewFlagSet("todolist edit", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description ('clear' removes it)")
	due := fs.String("due", "", "New due date in DD-MM-YYYY ('clear' removes it)")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if store.Len() == 0 {
		fmt.Fprintln(c.out, "\nNo tasks to edit.")
		return nil
	}

	n, err := todo.ParseSelection(selection)
	if err != nil {
		c.reportSelectionError(err)
		return nil
	}
	c.editTask(store, n, todo.Edit{Title: *title, Description: *desc, DueDate: *due})
	return nil
}

// tuiCommand launches the read-only viewer.
func (c *cli) tuiCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	path := c.cfg.DataFile
	strict := c.cfg.StrictLoad
	load := func() (*todo.Store, error) {
		return todo.Open(todo.Options{
			Path:          path,
			Logger:        logging.Discard(),
			FailOnCorrupt: strict,
		})
	}
	return ui.RunViewer(ctx, load, path)
}

// initCommand writes a config template and an empty data file.
func (c *cli) initCommand(args []string) error {
	fs := flag.NewFlagSet("todolist init", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	schema := fs.Bool("schema", false, "Also write the data file JSON Schema")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	configPath := filepath.Join(c.cfg.ProjectRoot, config.ProjectConfigFile)
	if err := c.writeIfAbsent(configPath, []byte(config.ExampleConfig()), *force); err != nil {
		return err
	}

	if *schema {
		schemaPath := filepath.Join(c.cfg.ProjectRoot, SchemaFile)
		if err := c.writeIfAbsent(schemaPath, todo.BundledSchema(), *force); err != nil {
			return err
		}
	}

	if _, err := os.Stat(c.cfg.DataFile); err == nil {
		fmt.Fprintf(c.out, "Keeping existing %s\n", c.cfg.DataFile)
		return nil
	}
	store, err := todo.Open(todo.Options{Path: c.cfg.DataFile})
	if err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	if err := store.Persist(); err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	fmt.Fprintf(c.out, "Created %s\n", c.cfg.DataFile)
	return nil
}

func (c *cli) writeIfAbsent(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(c.out, "Keeping existing %s (use --force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(c.out, "Created %s\n", path)
	return nil
}

// configCommand prints the effective configuration and where each value came from.
func (c *cli) configCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	if len(c.sources.Files) == 0 {
		fmt.Fprintln(c.out, "Config files: (none)")
	} else {
		fmt.Fprintln(c.out, "Config files:")
		for _, f := range c.sources.Files {
			fmt.Fprintf(c.out, "  %s\n", f)
		}
	}
	fmt.Fprintln(c.out)

	for _, field := range config.Fields() {
		value := c.cfg.Value(field)
		if value == "" {
			value = "(empty)"
		}
		fmt.Fprintf(c.out, "  %-15s %s  [%s]\n", field, value, c.sources.Sources[field])
	}
	return nil
}

// logCommand prints the latest session log, or lists sessions.
func (c *cli) logCommand(args []string) error {
	fs := flag.NewFlagSet("todolist log", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List session logs instead of printing the latest")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.cfg.LogDir == "" {
		fmt.Fprintln(c.out, "Session logs are disabled. Set log_dir to enable them.")
		return nil
	}

	logDir, err := logging.FindLogDir(c.cfg.LogDir, c.cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		sessions, err := logging.ListSessions(logDir)
		if err != nil {
			return fmt.Errorf("listing logs: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(c.out, "No log files found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(c.out, "%s  %s  %d bytes\n", s.RunID, s.ModTime.Format("02-01-2006 15:04:05"), s.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(c.out, "No log files found.")
		return nil
	}

	fmt.Fprintf(c.out, "Log: %s\n\n", logPath)
	return logging.TailLog(c.out, logPath, *n)
}

// versionCommand prints version information.
func (c *cli) versionCommand() error {
	fmt.Fprintf(c.out, "todolist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todolist - A file-backed to-do list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todolist [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  menu                Interactive menu (default command)")
	fmt.Fprintln(w, "  add [--desc D] [--due DD-MM-YYYY] TITLE")
	fmt.Fprintln(w, "                      Add a task")
	fmt.Fprintln(w, "  ls [all|pending|completed]")
	fmt.Fprintln(w, "                      List tasks")
	fmt.Fprintln(w, "  done N              Mark the Nth pending task as completed")
	fmt.Fprintln(w, "  undo N              Mark the Nth completed task as pending")
	fmt.Fprintln(w, "  rm N                Remove the Nth task")
	fmt.Fprintln(w, "  edit N [--title T] [--desc D] [--due D]")
	fmt.Fprintln(w, "                      Edit the Nth task ('clear' removes description or due date)")
	fmt.Fprintln(w, "  tui                 Launch the terminal viewer")
	fmt.Fprintln(w, "  init [--force] [--schema]")
	fmt.Fprintln(w, "                      Write todolist.toml and an empty data file")
	fmt.Fprintln(w, "  config              Show effective configuration and sources")
	fmt.Fprintln(w, "  log [-n N] [--list] Show the latest session log")
	fmt.Fprintln(w, "  completion SHELL    Print a shell completion script (bash, zsh, fish)")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
