package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Event kinds written by the journal.
const (
	EventStatus       = "status"
	EventButton       = "button"
	EventWordDetected = "word_detected"
	EventWordLost     = "word_lost"
	EventCamera       = "camera"
)

// Event is one journaled outbound event of a session.
type Event struct {
	ID         string          `json:"event_id"`
	CaptureID  string          `json:"capture_id"`
	FrameIndex int32           `json:"frame_index"`
	Kind       string          `json:"kind"`
	SubjectID  int32           `json:"subject_id"`
	Detail     json.RawMessage `json:"detail"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecordEvent stores e, assigning its id and timestamp.
func (s *Store) RecordEvent(ctx context.Context, e Event) (Event, error) {
	if err := validateID(e.CaptureID); err != nil {
		return Event{}, err
	}
	if len(e.Detail) == 0 {
		e.Detail = json.RawMessage("{}")
	}
	if !json.Valid(e.Detail) {
		return Event{}, fmt.Errorf("event detail is not valid JSON")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return Event{}, err
	}

	e.ID = generateUUID()
	e.CreatedAt = time.Now().UTC()
	_, err = db.ExecContext(ctx,
		`INSERT INTO events (event_id, capture_id, frame_index, kind, subject_id, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaptureID, e.FrameIndex, e.Kind, e.SubjectID, string(e.Detail), formatTime(e.CreatedAt))
	if err != nil {
		return Event{}, fmt.Errorf("inserting event: %w", err)
	}
	return e, nil
}

// ClearEvents deletes every event journaled for a capture and returns how
// many were removed. The capture and its frames are kept.
func (s *Store) ClearEvents(ctx context.Context, captureID string) (int, error) {
	if err := validateID(captureID); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	var n int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM captures WHERE capture_id = ?`, captureID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("reading capture: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", types.ErrCaptureNotFound, captureID)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE capture_id = ?`, captureID)
		if err != nil {
			return fmt.Errorf("deleting events: %w", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return int(n), err
}

// Events returns the events of a capture in the order they were recorded.
func (s *Store) Events(ctx context.Context, captureID string) ([]Event, error) {
	if err := validateID(captureID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if _, err := readCapture(ctx, db, captureID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT event_id, capture_id, frame_index, kind, subject_id, detail, created_at
		 FROM events WHERE capture_id = ? ORDER BY rowid`, captureID)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var detail, created string
		if err := rows.Scan(&e.ID, &e.CaptureID, &e.FrameIndex, &e.Kind, &e.SubjectID, &detail, &created); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Detail = json.RawMessage(detail)
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExportEventsJSONL writes the events of a capture to path, one JSON object
// per line. The file is replaced atomically.
func (s *Store) ExportEventsJSONL(ctx context.Context, captureID, path string) (int, error) {
	events, err := s.Events(ctx, captureID)
	if err != nil {
		return 0, err
	}
	records := make([]json.RawMessage, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("marshaling event %s: %w", e.ID, err)
		}
		records = append(records, b)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
