package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the textual due date format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// parseDateLayout accepts single-digit days and months as well.
const parseDateLayout = "2-1-2006"

// createdLayout is how Render shows the creation timestamp.
const createdLayout = "02-01-2006 15:04"

// legacyTimestampLayouts are naive ISO-8601 forms written by older versions
// of the data file. They carry no offset and are read as local time.
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// ClearKeyword removes a description or due date when passed to Edit.
const ClearKeyword = "clear"

// Task represents a single to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	DueDate     *time.Time
	Completed   bool
}

// Record is the persisted form of a Task.
type Record struct {
	ID           string  `json:"id,omitempty"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	CreationDate string  `json:"creation_date"`
	DueDate      *string `json:"due_date"`
	Completed    bool    `json:"completed"`
}

// NewTask builds a task stamped with the current time.
// An empty or whitespace-only title fails with a *ValidationError. A due date
// that does not match DateLayout is dropped and reported as a *FormatWarning;
// the task is still returned.
func NewTask(title, description, dueDate string, completed bool) (*Task, *FormatWarning, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil, &ValidationError{
			Path: "title",
			Err:  fmt.Errorf("task title cannot be empty"),
		}
	}

	t := &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
		Completed:   completed,
	}

	var warning *FormatWarning
	if strings.TrimSpace(dueDate) != "" {
		due, err := ParseDueDate(dueDate)
		if err != nil {
			warning = &FormatWarning{Field: "due date", Value: dueDate}
		} else {
			t.DueDate = &due
		}
	}

	return t, warning, nil
}

// ParseDueDate parses text in DateLayout, also accepting "1-1-2024". The
// result is midnight UTC of that calendar day.
func ParseDueDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	due, err := time.Parse(parseDateLayout, text)
	if err != nil {
		return time.Time{}, &FormatWarning{Field: "due date", Value: text}
	}
	return due, nil
}

// DueDateText returns the due date in DateLayout, or "N/A" when unset.
func (t *Task) DueDateText() string {
	if t.DueDate == nil {
		return "N/A"
	}
	return t.DueDate.Format(DateLayout)
}

// StatusGlyph returns "[X]" for completed tasks and "[ ]" otherwise.
func (t *Task) StatusGlyph() string {
	if t.Completed {
		return "[X]"
	}
	return "[ ]"
}

// Render returns a human-readable summary of the task. It is for display
// only and is not a serialization format.
func (t *Task) Render() string {
	var b strings.Builder
	b.WriteString(t.StatusGlyph())
	b.WriteString(" ")
	b.WriteString(t.Title)
	if t.Description != "" {
		b.WriteString("\n    Description: ")
		b.WriteString(t.Description)
	}
	fmt.Fprintf(&b, "\n    Due: %s (Created: %s)", t.DueDateText(), t.CreatedAt.Format(createdLayout))
	return b.String()
}

// ToRecord converts the task to its persisted form.
func (t *Task) ToRecord() Record {
	r := Record{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		CreationDate: t.CreatedAt.Format(time.RFC3339Nano),
		Completed:    t.Completed,
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(DateLayout)
		r.DueDate = &due
	}
	return r
}

// FromRecord rebuilds a task from its persisted form. Records without an id
// are given a fresh one.
func FromRecord(r Record) (*Task, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, &ValidationError{Path: "title", Err: fmt.Errorf("missing required field")}
	}

	created, err := parseTimestamp(r.CreationDate)
	if err != nil {
		return nil, &ValidationError{Path: "creation_date", Err: err}
	}

	t := &Task{
		ID:          r.ID,
		Title:       title,
		Description: r.Description,
		CreatedAt:   created,
		Completed:   r.Completed,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	if r.DueDate != nil && *r.DueDate != "" {
		due, err := ParseDueDate(*r.DueDate)
		if err != nil {
			return nil, &ValidationError{Path: "due_date", Err: err}
		}
		t.DueDate = &due
	}

	return t, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing required field")
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// clone returns a copy that shares no mutable state with t.
func (t *Task) clone() Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return c
}
