// Package todo models to-do tasks and the file-backed store that holds them.
//
// The data file (todolist_data.json by default) is a JSON array of task
// records in display order:
//
//	[
//	  {
//	    "id": "5f0c6a8e-7a55-4a3e-9c1f-0c1f2b7f3d10",
//	    "title": "Buy milk",
//	    "description": "Two litres",
//	    "creation_date": "2024-05-01T10:20:30.123456789+02:00",
//	    "due_date": "03-05-2024",
//	    "completed": false
//	  }
//	]
//
// # Persistence
//
// Every mutating Store operation rewrites the whole file with 2-space
// indentation and a trailing newline. There is no journal and no partial
// update. A failed write is reported as a *PersistenceError and the in-memory
// list keeps the change.
//
// On open, the file is checked against the bundled JSON Schema
// (draft 2020-12). A file that is not JSON, violates the schema, or holds an
// undecodable record is treated as corrupted: the store starts empty and the
// file is left alone until the next save.
//
// # Selection
//
// Callers address tasks by 1-based position in a listing. Internally each
// task carries a stable id, and SetCompletion resolves the position to that
// id before changing anything. Records without an id get one on load.
//
// # Dates
//
// Due dates are calendar dates in DD-MM-YYYY form. Creation timestamps are
// stored as RFC 3339 with nanoseconds; naive ISO-8601 timestamps are accepted
// on read and interpreted as local time.
package todo
