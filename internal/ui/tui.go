// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todolist-go/internal/todo"
)

// Loader opens the task store. It is called on start, on every refresh tick
// and when the user presses r. A non-nil store returned with an error is
// shown together with the error.
type Loader func() (*todo.Store, error)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// RunViewer starts the read-only task viewer.
func RunViewer(ctx context.Context, load Loader, dataPath string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newViewerModel(load, dataPath)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type viewerModel struct {
	load         Loader
	dataPath     string
	store        *todo.Store
	loadErr      error
	filter       todo.Filter
	showHelp     bool
	tickInterval time.Duration
}

type tickMsg time.Time

func newViewerModel(load Loader, dataPath string) *viewerModel {
	return &viewerModel{
		load:         load,
		dataPath:     dataPath,
		filter:       todo.FilterAll,
		tickInterval: 2 * time.Second,
	}
}

func (m *viewerModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "0":
			m.filter = todo.FilterAll
		case "1":
			m.filter = todo.FilterPending
		case "2":
			m.filter = todo.FilterCompleted
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *viewerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("To-Do List") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks: "+m.loadErr.Error()) + "\n\n")
	}
	if m.store == nil {
		if m.loadErr == nil {
			b.WriteString("Loading...\n\n")
		}
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeOverview(&b, m.store, m.filter)
	writeListing(&b, m.store, m.filter)
	fmt.Fprintf(&b, "File: %s\n\n", m.dataPath)
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func (m *viewerModel) refresh() {
	store, err := m.load()
	m.loadErr = err
	if store != nil || err != nil {
		m.store = store
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func writeOverview(b *strings.Builder, store *todo.Store, filter todo.Filter) {
	pending, completed := store.Counts()
	fmt.Fprintf(b, "  Pending: %d  Completed: %d  Total: %d\n", pending, completed, store.Len())
	fmt.Fprintf(b, "  Showing: %s\n\n", filter)
}

func writeListing(b *strings.Builder, store *todo.Store, filter todo.Filter) {
	b.WriteString(headerStyle.Render("Tasks") + "\n\n")

	seq, err := store.View(filter)
	if err != nil {
		b.WriteString("  " + EmptyMessage(filter, err) + "\n\n")
		return
	}
	for pos, task := range seq {
		entry := fmt.Sprintf("%d. %s", pos, task.Render())
		if task.Completed {
			entry = doneStyle.Render(entry)
		}
		b.WriteString(entry + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString(headerStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload the data file\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  0            Show all tasks\n")
	b.WriteString("  1            Show pending tasks\n")
	b.WriteString("  2            Show completed tasks\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(footerStyle.Render(fmt.Sprintf("Press h for help | q to quit | Reloading every %s", interval)) + "\n")
}

// EmptyMessage describes an empty listing given the sentinel View returned.
func EmptyMessage(filter todo.Filter, err error) string {
	switch {
	case errors.Is(err, todo.ErrStoreEmpty):
		return "Your to-do list is empty!"
	case errors.Is(err, todo.ErrNoMatches):
		return fmt.Sprintf("No %s tasks.", filter)
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
