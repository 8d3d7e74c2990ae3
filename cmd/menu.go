package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/ui"
)

const separator = "--------------------"

// prompter reads one answer per line from the user. Lines are read on a
// separate goroutine so that a cancelled context interrupts a pending prompt.
type prompter struct {
	ctx   context.Context
	out   io.Writer
	lines <-chan string
}

func newPrompter(ctx context.Context, in io.Reader, out io.Writer) *prompter {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return &prompter{ctx: ctx, out: out, lines: lines}
}

// ask prints label and returns the next line with surrounding space removed.
// ok is false once input is exhausted or the context is cancelled.
func (p *prompter) ask(label string) (answer string, ok bool) {
	fmt.Fprint(p.out, label)
	select {
	case <-p.ctx.Done():
		return "", false
	case line, open := <-p.lines:
		if !open {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

// menuCommand runs the interactive menu until the user exits or input ends.
func (c *cli) menuCommand(ctx context.Context, store *todo.Store, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := newPrompter(ctx, c.in, c.out)

	for {
		c.displayMenu()
		choice, ok := p.ask("Enter your choice: ")
		if !ok {
			fmt.Fprintln(c.out)
			return ctx.Err()
		}

		switch choice {
		case "1":
			if !c.menuAdd(p, store) {
				return ctx.Err()
			}
		case "2":
			c.printListing(store, todo.FilterAll)
		case "3":
			c.printListing(store, todo.FilterPending)
		case "4":
			c.printListing(store, todo.FilterCompleted)
		case "5":
			if !c.menuSetCompletion(p, store, true) {
				return ctx.Err()
			}
		case "6":
			if !c.menuSetCompletion(p, store, false) {
				return ctx.Err()
			}
		case "7":
			if !c.menuEdit(p, store) {
				return ctx.Err()
			}
		case "8":
			if !c.menuRemove(p, store) {
				return ctx.Err()
			}
		case "0":
			fmt.Fprintln(c.out, "\nExiting To-Do List. Your tasks are saved. Goodbye!")
			return nil
		default:
			fmt.Fprintln(c.out, "\nInvalid choice. Please try again.")
		}
	}
}

func (c *cli) displayMenu() {
	fmt.Fprintln(c.out, "\n===== TO-DO LIST MENU =====")
	fmt.Fprintln(c.out, "1. Add New Task")
	fmt.Fprintln(c.out, "2. View All Tasks")
	fmt.Fprintln(c.out, "3. View Pending Tasks")
	fmt.Fprintln(c.out, "4. View Completed Tasks")
	fmt.Fprintln(c.out, "5. Mark Task as Completed")
	fmt.Fprintln(c.out, "6. Mark Task as Pending")
	fmt.Fprintln(c.out, "7. Edit Task")
	fmt.Fprintln(c.out, "8. Remove Task")
	fmt.Fprintln(c.out, "0. Exit")
	fmt.Fprintln(c.out, "===========================")
}

// The menu* helpers return false when input ran out mid-dialog.

func (c *cli) menuAdd(p *prompter, store *todo.Store) bool {
	fmt.Fprintln(c.out, "\n--- Add New Task ---")
	title, ok := p.ask("Enter task title: ")
	if !ok {
		return false
	}
	if title == "" {
		fmt.Fprintln(c.out, "Task title cannot be empty. Task not added.")
		return true
	}
	desc, ok := p.ask("Enter task description (optional): ")
	if !ok {
		return false
	}
	due, ok := p.ask("Enter due date (DD-MM-YYYY, optional, press Enter to skip): ")
	if !ok {
		return false
	}
	c.addTask(store, title, desc, due)
	return true
}

func (c *cli) menuSetCompletion(p *prompter, store *todo.Store, target bool) bool {
	action := statusWord(target)
	if store.Len() == 0 {
		fmt.Fprintln(c.out, "\nNo tasks to mark.")
		return true
	}
	seq, err := store.Candidates(target)
	if err != nil {
		fmt.Fprintf(c.out, "\nNo tasks to mark as %s.\n", action)
		return true
	}

	kind := "PENDING"
	if !target {
		kind = "COMPLETED"
	}
	fmt.Fprintf(c.out, "\n--- Select a %s task to mark as %s ---\n", kind, action)
	for pos, task := range seq {
		fmt.Fprintf(c.out, "%d. %s (Due: %s)\n", pos, task.Title, task.DueDateText())
	}
	fmt.Fprintln(c.out, separator)

	answer, ok := p.ask(fmt.Sprintf("Enter task number to mark as %s: ", action))
	if !ok {
		return false
	}
	c.setCompletion(store, target, answer)
	return true
}

func (c *cli) menuRemove(p *prompter, store *todo.Store) bool {
	if store.Len() == 0 {
		fmt.Fprintln(c.out, "\nNo tasks to remove.")
		return true
	}
	fmt.Fprintln(c.out, "\n--- Select a task to REMOVE ---")
	c.printListing(store, todo.FilterAll)

	answer, ok := p.ask("Enter task number to remove: ")
	if !ok {
		return false
	}
	c.removeTask(store, answer)
	return true
}

func (c *cli) menuEdit(p *prompter, store *todo.Store) bool {
	if store.Len() == 0 {
		fmt.Fprintln(c.out, "\nNo tasks to edit.")
		return true
	}
	fmt.Fprintln(c.out, "\n--- Select a task to EDIT ---")
	c.printListing(store, todo.FilterAll)

	answer, ok := p.ask("Enter task number to edit: ")
	if !ok {
		return false
	}
	n, err := todo.ParseSelection(answer)
	if err != nil {
		c.reportSelectionError(err)
		return true
	}
	task, err := store.Get(n)
	if err != nil {
		c.reportSelectionError(err)
		return true
	}

	description := task.Description
	if description == "" {
		description = "N/A"
	}
	fmt.Fprintf(c.out, "\nEditing Task: '%s'\n", task.Title)
	fmt.Fprintf(c.out, "Current Description: %s\n", description)
	fmt.Fprintf(c.out, "Current Due Date: %s\n", task.DueDateText())

	var e todo.Edit
	if e.Title, ok = p.ask(fmt.Sprintf("Enter new title (or press Enter to keep '%s'): ", task.Title)); !ok {
		return false
	}
	if e.Description, ok = p.ask("Enter new description (or press Enter to keep current, type 'clear' to remove): "); !ok {
		return false
	}
	if e.DueDate, ok = p.ask("Enter new due date in DD-MM-YYYY (or press Enter to keep current, type 'clear' to remove): "); !ok {
		return false
	}
	c.editTask(store, n, e)
	return true
}

// Actions shared by the menu and the one-shot commands.

func (c *cli) addTask(store *todo.Store, title, desc, due string) {
	out, err := store.Add(title, desc, due)
	var ve *todo.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(c.out, "Error adding task: %v\n", ve.Err)
		return
	}
	for _, w := range out.Warnings {
		var fw *todo.FormatWarning
		if errors.As(w, &fw) {
			fmt.Fprintf(c.out, "Warning: Due date '%s' for task '%s' is not in DD-MM-YYYY format. No due date set.\n", fw.Value, out.Task.Title)
		}
	}
	fmt.Fprintf(c.out, "\nTask '%s' added successfully.\n", out.Task.Title)
	c.reportSaveError(err)
}

func (c *cli) printListing(store *todo.Store, filter todo.Filter) {
	seq, err := store.View(filter)
	if errors.Is(err, todo.ErrStoreEmpty) {
		fmt.Fprintln(c.out, "\n"+ui.EmptyMessage(filter, err))
		return
	}
	fmt.Fprintln(c.out, "\n--- YOUR TASKS ---")
	if err != nil {
		fmt.Fprintln(c.out, ui.EmptyMessage(filter, err))
		return
	}
	for pos, task := range seq {
		fmt.Fprintf(c.out, "%d. %s\n%s\n", pos, task.Render(), separator)
	}
}

func (c *cli) setCompletion(store *todo.Store, target bool, answer string) {
	n, err := todo.ParseSelection(answer)
	if err != nil {
		c.reportSelectionError(err)
		return
	}
	out, err := store.SetCompletion(target, n)
	if c.reportSelectionError(err) {
		return
	}
	if out.Notice != "" {
		fmt.Fprintf(c.out, "\n%s\n", out.Notice)
		return
	}
	fmt.Fprintf(c.out, "\nTask '%s' marked as %s.\n", out.Task.Title, statusWord(target))
	c.reportSaveError(err)
}

func (c *cli) removeTask(store *todo.Store, answer string) {
	n, err := todo.ParseSelection(answer)
	if err != nil {
		c.reportSelectionError(err)
		return
	}
	out, err := store.Remove(n)
	if c.reportSelectionError(err) {
		return
	}
	fmt.Fprintf(c.out, "\nTask '%s' removed successfully.\n", out.Task.Title)
	c.reportSaveError(err)
}

func (c *cli) editTask(store *todo.Store, n int, e todo.Edit) {
	out, err := store.Edit(n, e)
	if c.reportSelectionError(err) {
		return
	}
	for _, w := range out.Warnings {
		var fw *todo.FormatWarning
		if errors.As(w, &fw) {
			fmt.Fprintf(c.out, "Warning: New due date '%s' is not in DD-MM-YYYY format. Due date not changed.\n", fw.Value)
		}
	}
	fmt.Fprintf(c.out, "\nTask '%s' updated successfully.\n", out.Task.Title)
	c.reportSaveError(err)
}

// reportSelectionError prints err if it is a *SelectionError and reports
// whether it did.
func (c *cli) reportSelectionError(err error) bool {
	var se *todo.SelectionError
	if !errors.As(err, &se) {
		return false
	}
	if se.NotNumber {
		fmt.Fprintln(c.out, "Invalid input. Please enter a number.")
	} else {
		fmt.Fprintln(c.out, "Invalid task number.")
	}
	return true
}

func (c *cli) reportSaveError(err error) {
	if err == nil {
		return
	}
	var pe *todo.PersistenceError
	if errors.As(err, &pe) {
		fmt.Fprintf(c.out, "Error: Could not save tasks to '%s'.\n", pe.Path)
		return
	}
	fmt.Fprintf(c.out, "Error: %v\n", err)
}

func statusWord(completed bool) string {
	if completed {
		return "complete"
	}
	return "pending"
}
