package todo

import (
	"fmt"
	"iter"
	"strings"
)

// Filter selects which tasks a listing contains.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "pending", "todo":
		return FilterPending, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter %q, must be one of: all, pending, completed", s)
	}
}

// Match reports whether t belongs in a listing with this filter.
func (f Filter) Match(t *Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// View returns the tasks matching filter as (position, task) pairs in store
// order. Positions are 1-based within the listing. The sequence is lazy and
// can be ranged over more than once; it reflects the store at iteration time.
//
// The error is ErrStoreEmpty when the store holds no tasks and ErrNoMatches
// when none match; the sequence is empty in both cases.
func (s *Store) View(filter Filter) (iter.Seq2[int, Task], error) {
	seq := func(yield func(int, Task) bool) {
		pos := 0
		for _, t := range s.tasks {
			if !filter.Match(t) {
				continue
			}
			pos++
			if !yield(pos, t.clone()) {
				return
			}
		}
	}

	if len(s.tasks) == 0 {
		return seq, ErrStoreEmpty
	}
	if s.count(filter) == 0 {
		return seq, ErrNoMatches
	}
	return seq, nil
}

// Candidates returns the listing SetCompletion(target, n) selects from:
// pending tasks when target is true, completed tasks otherwise.
func (s *Store) Candidates(target bool) (iter.Seq2[int, Task], error) {
	return s.View(candidateFilter(target))
}

func (s *Store) candidateIDs(target bool) []string {
	filter := candidateFilter(target)
	var ids []string
	for _, t := range s.tasks {
		if filter.Match(t) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s *Store) count(filter Filter) int {
	n := 0
	for _, t := range s.tasks {
		if filter.Match(t) {
			n++
		}
	}
	return n
}

func candidateFilter(target bool) Filter {
	if target {
		return FilterPending
	}
	return FilterCompleted
}
