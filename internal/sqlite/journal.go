package sqlite

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Journal records a session's outbound events against a capture. It
// implements types.FrameObserver. Observer callbacks cannot fail, so the
// first storage error is kept and returned by Err.
type Journal struct {
	store     *Store
	captureID string
	ctx       context.Context

	mu       sync.Mutex
	err      error
	recorded int
}

// NewJournal returns a journal writing to captureID. ctx bounds every write.
func NewJournal(ctx context.Context, store *Store, captureID string) *Journal {
	return &Journal{store: store, captureID: captureID, ctx: ctx}
}

// Err returns the first error encountered while recording.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Recorded returns the number of events written.
func (j *Journal) Recorded() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.recorded
}

func (j *Journal) record(frame int32, kind string, subject types.TrackableID, detail any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return
	}
	b, err := json.Marshal(detail)
	if err != nil {
		j.err = err
		return
	}
	_, err = j.store.RecordEvent(j.ctx, Event{
		CaptureID:  j.captureID,
		FrameIndex: frame,
		Kind:       kind,
		SubjectID:  int32(subject),
		Detail:     b,
	})
	if err != nil {
		j.err = err
		j.store.logger.Warn("sqlite: journal write failed", "capture_id", j.captureID, "error", err)
		return
	}
	j.recorded++
}

func (j *Journal) TrackableStatusChanged(frame int32, id types.TrackableID, previous, current types.Status) {
	j.record(frame, EventStatus, id, map[string]string{
		"previous": previous.String(),
		"current":  current.String(),
	})
}

func (j *Journal) VirtualButtonChanged(frame int32, id types.TrackableID, pressed bool) {
	j.record(frame, EventButton, id, map[string]bool{"pressed": pressed})
}

func (j *Journal) WordDetected(frame int32, w types.Word) {
	j.record(frame, EventWordDetected, w.ID, wordDetail(w))
}

func (j *Journal) WordLost(frame int32, w types.Word) {
	j.record(frame, EventWordLost, w.ID, wordDetail(w))
}

func (j *Journal) CameraMoved(frame int32, anchor types.TrackableID, camera types.Transform) {
	j.record(frame, EventCamera, anchor, poseRecordOf(types.Pose{
		Position:    camera.Position,
		Orientation: camera.Rotation,
	}))
}

func wordDetail(w types.Word) newWordRecord {
	return newWordRecord{ID: int32(w.ID), Text: w.StringValue, Size: [2]float32{w.Size.X, w.Size.Y}}
}
