// Package sqlite stores recorded captures and their event journals in a
// SQLite database.
package sqlite

// Schema DDL. Statements are idempotent so Attach can run them on every
// open.
const (
	createCaptures = `CREATE TABLE IF NOT EXISTS captures (
    capture_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    frame_count INTEGER NOT NULL DEFAULT 0
);`

	createFrames = `CREATE TABLE IF NOT EXISTS frames (
    capture_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    frame_index INTEGER NOT NULL,
    payload BLOB NOT NULL,
    PRIMARY KEY (capture_id, seq),
    FOREIGN KEY (capture_id) REFERENCES captures(capture_id) ON DELETE CASCADE
);`

	createEvents = `CREATE TABLE IF NOT EXISTS events (
    event_id TEXT PRIMARY KEY,
    capture_id TEXT NOT NULL,
    frame_index INTEGER NOT NULL,
    kind TEXT NOT NULL,
    subject_id INTEGER NOT NULL,
    detail TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (capture_id) REFERENCES captures(capture_id) ON DELETE CASCADE
);`

	createEventsIndex = `CREATE INDEX IF NOT EXISTS idx_events_capture ON events (capture_id, frame_index);`
)

var schemaStatements = []string{
	createCaptures,
	createFrames,
	createEvents,
	createEventsIndex,
}
