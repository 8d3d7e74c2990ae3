package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a Store.
type Options struct {
	// Path is the data file location.
	Path string
	// Logger receives debug and warning events. Defaults to a discarding logger.
	Logger *log.Logger
	// FailOnCorrupt makes Open return no store when the data file exists but
	// cannot be decoded, instead of starting empty.
	FailOnCorrupt bool
}

// Outcome reports what a mutating operation did.
type Outcome struct {
	// Task is a copy of the affected task after the operation.
	Task Task
	// Position is the task's 1-based position in the full list, or 0 after removal.
	Position int
	// Changed is false when the operation left the task as it was.
	Changed bool
	// Notice is a human-readable note for no-op outcomes.
	Notice string
	// Warnings holds non-fatal *FormatWarning values.
	Warnings []error
}

// Edit holds replacement values for Store.Edit. An empty field keeps the
// current value; ClearKeyword removes a description or due date.
type Edit struct {
	Title       string
	Description string
	DueDate     string
}

// Store is an ordered, file-backed collection of tasks. Every mutating
// operation rewrites the whole data file. A Store is not safe for concurrent use.
type Store struct {
	path   string
	tasks  []*Task
	logger *log.Logger
}

// Open builds a store and loads the data file at opts.Path.
//
// A missing file yields an empty store and no error. A file that cannot be
// read or decoded yields an empty store together with a *PersistenceError;
// the store is still usable unless opts.FailOnCorrupt is set, in which case
// the returned store is nil.
func Open(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("data file path is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Store{
		path:   opts.Path,
		logger: logger,
	}
	if err := s.load(); err != nil {
		if opts.FailOnCorrupt {
			return nil, err
		}
		logger.Warn("starting with an empty list", "path", s.path, "err", err)
		return s, err
	}
	return s, nil
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns copies of all tasks in store order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

// Get returns a copy of the task at a 1-based position in the full list.
func (s *Store) Get(position int) (Task, error) {
	idx, err := s.index(position, len(s.tasks))
	if err != nil {
		return Task{}, err
	}
	return s.tasks[idx].clone(), nil
}

// Find returns a copy of the task with the given id.
func (s *Store) Find(id string) (Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].clone(), true
	}
	return Task{}, false
}

// Counts returns the number of pending and completed tasks.
func (s *Store) Counts() (pending, completed int) {
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}

// Add creates a task, appends it and persists. Validation failures leave the
// store untouched. A save failure is returned alongside a valid Outcome.
func (s *Store) Add(title, description, dueDate string) (Outcome, error) {
	t, warning, err := NewTask(title, description, dueDate, false)
	if err != nil {
		return Outcome{}, err
	}

	s.tasks = append(s.tasks, t)
	out := Outcome{
		Task:     t.clone(),
		Position: len(s.tasks),
		Changed:  true,
	}
	if warning != nil {
		out.Warnings = append(out.Warnings, warning)
		s.logger.Warn("due date ignored", "title", t.Title, "value", warning.Value)
	}
	s.logger.Debug("task added", "id", t.ID, "title", t.Title)

	return out, s.Persist()
}

// SetCompletion sets the completed flag of a task chosen from the
// Candidates(target) listing. Selecting a task already in the target state
// is a no-op reported through Outcome.Notice.
func (s *Store) SetCompletion(target bool, selection int) (Outcome, error) {
	ids := s.candidateIDs(target)
	idx, err := s.index(selection, len(ids))
	if err != nil {
		return Outcome{}, err
	}

	i := s.indexOf(ids[idx])
	t := s.tasks[i]
	if t.Completed == target {
		return Outcome{
			Task:     t.clone(),
			Position: i + 1,
			Notice:   fmt.Sprintf("Task '%s' is already marked as %s.", t.Title, statusWord(target)),
		}, nil
	}

	t.Completed = target
	s.logger.Debug("task status changed", "id", t.ID, "completed", target)
	return Outcome{
		Task:     t.clone(),
		Position: i + 1,
		Changed:  true,
	}, s.Persist()
}

// Remove deletes the task at a 1-based position in the full list and persists.
func (s *Store) Remove(selection int) (Outcome, error) {
	idx, err := s.index(selection, len(s.tasks))
	if err != nil {
		return Outcome{}, err
	}

	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.logger.Debug("task removed", "id", removed.ID, "title", removed.Title)

	return Outcome{
		Task:    removed.clone(),
		Changed: true,
	}, s.Persist()
}

// Edit updates the task at a 1-based position in the full list. Each field
// is applied independently; an unparsable due date keeps the current one and
// is reported as a warning. The store is persisted whenever the selection is valid.
func (s *Store) Edit(selection int, e Edit) (Outcome, error) {
	idx, err := s.index(selection, len(s.tasks))
	if err != nil {
		return Outcome{}, err
	}

	t := s.tasks[idx]
	before := t.clone()
	out := Outcome{Position: idx + 1}

	if title := strings.TrimSpace(e.Title); title != "" {
		t.Title = title
	}

	switch desc := strings.TrimSpace(e.Description); {
	case strings.EqualFold(desc, ClearKeyword):
		t.Description = ""
	case desc != "":
		t.Description = desc
	}

	switch due := strings.TrimSpace(e.DueDate); {
	case strings.EqualFold(due, ClearKeyword):
		t.DueDate = nil
	case due != "":
		parsed, err := ParseDueDate(due)
		if err != nil {
			out.Warnings = append(out.Warnings, &FormatWarning{Field: "new due date", Value: due})
			s.logger.Warn("due date not changed", "title", t.Title, "value", due)
		} else {
			t.DueDate = &parsed
		}
	}

	out.Task = t.clone()
	out.Changed = !sameContent(before, out.Task)
	s.logger.Debug("task edited", "id", t.ID, "changed", out.Changed)

	return out, s.Persist()
}

// Persist writes the full task list to the data file, replacing its content.
// On failure the in-memory list is left as it is.
func (s *Store) Persist() error {
	records := make([]Record, len(s.tasks))
	for i, t := range s.tasks {
		records[i] = t.ToRecord()
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return s.saveError(fmt.Errorf("marshal tasks: %w", err))
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return s.saveError(fmt.Errorf("create data dir: %w", err))
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return s.saveError(err)
	}

	s.logger.Debug("tasks saved", "path", s.path, "count", len(records))
	return nil
}

// ParseSelection converts user input to a 1-based position. Non-numeric
// input yields a *SelectionError.
func ParseSelection(text string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, &SelectionError{Input: text, NotNumber: true}
	}
	return n, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no data file, starting empty", "path", s.path)
			return nil
		}
		return &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	if errs := ValidateData(data); len(errs) > 0 {
		return &PersistenceError{Op: "load", Path: s.path, Corrupt: true, Err: errors.Join(errs...)}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return &PersistenceError{Op: "load", Path: s.path, Corrupt: true, Err: err}
	}

	tasks := make([]*Task, 0, len(records))
	for i, r := range records {
		t, err := FromRecord(r)
		if err != nil {
			return &PersistenceError{
				Op:      "load",
				Path:    s.path,
				Corrupt: true,
				Err:     fmt.Errorf("record %d: %w", i, err),
			}
		}
		tasks = append(tasks, t)
	}

	s.tasks = tasks
	s.logger.Debug("tasks loaded", "path", s.path, "count", len(tasks))
	return nil
}

func (s *Store) saveError(err error) error {
	s.logger.Error("could not save tasks", "path", s.path, "err", err)
	return &PersistenceError{Op: "save", Path: s.path, Err: err}
}

// index converts a 1-based selection into a slice index for a listing of n.
func (s *Store) index(selection, n int) (int, error) {
	if selection < 1 || selection > n {
		return 0, &SelectionError{Selection: selection, Max: n}
	}
	return selection - 1, nil
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func sameContent(a, b Task) bool {
	if a.Title != b.Title || a.Description != b.Description || a.Completed != b.Completed {
		return false
	}
	if a.DueDate == nil || b.DueDate == nil {
		return a.DueDate == nil && b.DueDate == nil
	}
	return a.DueDate.Equal(*b.DueDate)
}

func statusWord(completed bool) string {
	if completed {
		return "complete"
	}
	return "pending"
}
