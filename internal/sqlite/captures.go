package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Capture is a recorded sequence of backend frames.
type Capture struct {
	ID         string    `json:"capture_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	FrameCount int       `json:"frame_count"`
}

// CreateCapture starts an empty capture.
func (s *Store) CreateCapture(ctx context.Context, name string) (Capture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return Capture{}, err
	}

	c := Capture{ID: generateUUID(), Name: name, CreatedAt: time.Now().UTC()}
	_, err = db.ExecContext(ctx,
		`INSERT INTO captures (capture_id, name, created_at, frame_count) VALUES (?, ?, ?, 0)`,
		c.ID, c.Name, formatTime(c.CreatedAt))
	if err != nil {
		return Capture{}, fmt.Errorf("inserting capture: %w", err)
	}
	return c, nil
}

// AppendFrame validates frame and adds it to the end of the capture.
// Malformed frames are rejected with an error wrapping wire.ErrMalformedFrame.
func (s *Store) AppendFrame(ctx context.Context, captureID string, frame []byte) error {
	if err := validateID(captureID); err != nil {
		return err
	}
	decoded, err := wire.Decode(frame)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		var seq int
		err := tx.QueryRowContext(ctx,
			`SELECT frame_count FROM captures WHERE capture_id = ?`, captureID).Scan(&seq)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", types.ErrCaptureNotFound, captureID)
		}
		if err != nil {
			return fmt.Errorf("reading capture: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO frames (capture_id, seq, frame_index, payload) VALUES (?, ?, ?, ?)`,
			captureID, seq, decoded.Index, frame); err != nil {
			return fmt.Errorf("inserting frame: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE captures SET frame_count = ? WHERE capture_id = ?`, seq+1, captureID); err != nil {
			return fmt.Errorf("updating frame count: %w", err)
		}
		return nil
	})
}

// Capture returns one capture by id.
func (s *Store) Capture(ctx context.Context, captureID string) (Capture, error) {
	if err := validateID(captureID); err != nil {
		return Capture{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return Capture{}, err
	}
	return readCapture(ctx, db, captureID)
}

func readCapture(ctx context.Context, db *sql.DB, captureID string) (Capture, error) {
	var c Capture
	var created string
	err := db.QueryRowContext(ctx,
		`SELECT capture_id, name, created_at, frame_count FROM captures WHERE capture_id = ?`,
		captureID).Scan(&c.ID, &c.Name, &created, &c.FrameCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Capture{}, fmt.Errorf("%w: %s", types.ErrCaptureNotFound, captureID)
	}
	if err != nil {
		return Capture{}, fmt.Errorf("reading capture: %w", err)
	}
	c.CreatedAt = parseTime(created)
	return c, nil
}

// Captures lists every capture, oldest first.
func (s *Store) Captures(ctx context.Context) ([]Capture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT capture_id, name, created_at, frame_count FROM captures ORDER BY created_at, capture_id`)
	if err != nil {
		return nil, fmt.Errorf("listing captures: %w", err)
	}
	defer rows.Close()

	var out []Capture
	for rows.Next() {
		var c Capture
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &created, &c.FrameCount); err != nil {
			return nil, fmt.Errorf("scanning capture: %w", err)
		}
		c.CreatedAt = parseTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Frames returns the encoded frames of a capture in recording order.
func (s *Store) Frames(ctx context.Context, captureID string) ([][]byte, error) {
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
		`SELECT payload FROM frames WHERE capture_id = ? ORDER BY seq`, captureID)
	if err != nil {
		return nil, fmt.Errorf("reading frames: %w", err)
	}
	defer rows.Close()

	var frames [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning frame: %w", err)
		}
		frames = append(frames, payload)
	}
	return frames, rows.Err()
}

// DeleteCapture removes a capture with its frames and events.
func (s *Store) DeleteCapture(ctx context.Context, captureID string) error {
	if err := validateID(captureID); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM captures WHERE capture_id = ?`, captureID)
	if err != nil {
		return fmt.Errorf("deleting capture: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrCaptureNotFound, captureID)
	}
	return nil
}
