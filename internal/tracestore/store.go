// Package tracestore persists navigation trace events into a SQLite sidecar
// database so that failed navigations can be debugged after the fact. The
// recorder is a trace.Sink: fire-and-forget, with write errors swallowed so
// that diagnostics never influence control flow.
package tracestore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/agentic-research/perch/internal/trace"
	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	level TEXT NOT NULL,
	op TEXT NOT NULL,
	msg TEXT NOT NULL,
	attrs TEXT
);
CREATE INDEX IF NOT EXISTS events_op ON events(op);
`

// Recorder writes trace events to a SQLite database.
type Recorder struct {
	db *sql.DB
}

// Open creates or opens the trace database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Emit implements trace.Sink. Insert failures are dropped; the sink has no
// feedback into navigation.
func (r *Recorder) Emit(ev trace.Event) {
	attrs := ""
	if len(ev.Attrs) > 0 {
		attrs = oj.JSON(ev.Attrs)
	}
	_, _ = r.db.Exec(
		"INSERT INTO events (ts, level, op, msg, attrs) VALUES (?, ?, ?, ?, ?)",
		ev.Time.UTC().Format(time.RFC3339Nano), ev.Level.String(), ev.Op, ev.Msg, attrs,
	)
}

// Event is one persisted trace row.
type Event struct {
	ID    int64
	Time  time.Time
	Level string
	Op    string
	Msg   string
	Attrs string
}

// Events returns recorded events in insertion order, optionally filtered by
// op ("" for all).
func (r *Recorder) Events(op string) ([]Event, error) {
	query := "SELECT id, ts, level, op, msg, attrs FROM events ORDER BY id"
	args := []any{}
	if op != "" {
		query = "SELECT id, ts, level, op, msg, attrs FROM events WHERE op = ? ORDER BY id"
		args = append(args, op)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Event
	for rows.Next() {
		var ev Event
		var ts string
		if err := rows.Scan(&ev.ID, &ts, &ev.Level, &ev.Op, &ev.Msg, &ev.Attrs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Time, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
