package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trackstate/internal/backend"
	"github.com/mesh-intelligence/trackstate/internal/session"
	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

func TestJournalRecordsEvents(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "j")
	require.NoError(t, err)

	j := NewJournal(ctx, s, c.ID)
	j.TrackableStatusChanged(1, 3, types.StatusUnknown, types.StatusTracked)
	j.VirtualButtonChanged(1, 9, true)
	j.WordDetected(2, types.Word{ID: 50, StringValue: "exit"})
	j.WordLost(3, types.Word{ID: 50, StringValue: "exit"})
	j.CameraMoved(3, 3, types.Transform{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()})
	require.NoError(t, j.Err())
	assert.Equal(t, 5, j.Recorded())

	events, err := s.Events(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 5)

	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []string{EventStatus, EventButton, EventWordDetected, EventWordLost, EventCamera}, kinds)

	var status map[string]string
	require.NoError(t, json.Unmarshal(events[0].Detail, &status))
	assert.Equal(t, "TRACKED", status["current"])
	assert.Equal(t, int32(3), events[0].SubjectID)
	assert.Equal(t, int32(2), events[2].FrameIndex)
}

func TestJournalKeepsFirstError(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "j")
	require.NoError(t, err)

	j := NewJournal(ctx, s, c.ID)
	require.NoError(t, s.Detach())
	j.VirtualButtonChanged(1, 9, true)
	j.VirtualButtonChanged(2, 9, false)
	assert.ErrorIs(t, j.Err(), types.ErrStoreDetached)
	assert.Zero(t, j.Recorded())
}

func TestExportEventsJSONL(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "e")
	require.NoError(t, err)

	for i := range 3 {
		_, err := s.RecordEvent(ctx, Event{CaptureID: c.ID, FrameIndex: int32(i), Kind: EventButton})
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "events.jsonl")
	n, err := s.ExportEventsJSONL(ctx, c.ID, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	var e Event
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &e))
	assert.Equal(t, int32(2), e.FrameIndex)
	assert.Equal(t, c.ID, e.CaptureID)
	assert.JSONEq(t, `{}`, string(e.Detail))

	_, err = s.ExportEventsJSONL(ctx, generateUUID(), path)
	assert.ErrorIs(t, err, types.ErrCaptureNotFound)
}

func TestClearEvents(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "e")
	require.NoError(t, err)
	require.NoError(t, s.AppendFrame(ctx, c.ID, encodedFrame(0, 1)))
	other, err := s.CreateCapture(ctx, "other")
	require.NoError(t, err)

	for i := range 2 {
		_, err := s.RecordEvent(ctx, Event{CaptureID: c.ID, FrameIndex: int32(i), Kind: EventButton})
		require.NoError(t, err)
	}
	_, err = s.RecordEvent(ctx, Event{CaptureID: other.ID, Kind: EventButton})
	require.NoError(t, err)

	n, err := s.ClearEvents(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events, err := s.Events(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
	frames, err := s.Frames(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, frames, 1, "frames are kept")
	events, err = s.Events(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = s.ClearEvents(ctx, generateUUID())
	assert.ErrorIs(t, err, types.ErrCaptureNotFound)
	_, err = s.ClearEvents(ctx, "bad")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestRecordEventRejectsBadDetail(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "e")
	require.NoError(t, err)
	_, err = s.RecordEvent(ctx, Event{CaptureID: c.ID, Detail: json.RawMessage("{")})
	assert.Error(t, err)
}

// A replayed capture journals the session's events back into the store.
func TestReplayCaptureIntoJournal(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "replay")
	require.NoError(t, err)
	require.NoError(t, s.AppendFrame(ctx, c.ID, encodedFrame(1, 3)))
	require.NoError(t, s.AppendFrame(ctx, c.ID, wire.MustEncode(wire.Frame{Index: 2})))

	cfg := types.DefaultConfig()
	cfg.Backend = types.BackendReplay
	cfg.CaptureID = c.ID
	b, err := backend.New(cfg, s)
	require.NoError(t, err)

	j := NewJournal(ctx, s, c.ID)
	sess, err := session.New(cfg, b, session.WithObserver(j))
	require.NoError(t, err)
	_, err = sess.State().AssociateDataSet(types.DataSet{Trackables: []types.Trackable{
		{ID: 3, Name: "chips", Type: types.TypeImageTarget},
	}}, nil)
	require.NoError(t, err)

	require.NoError(t, sess.Start(ctx))
	require.NoError(t, sess.Run(ctx))
	require.NoError(t, sess.Stop())
	require.NoError(t, j.Err())

	events, err := s.Events(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int32(1), events[0].FrameIndex)
	assert.Equal(t, int32(2), events[1].FrameIndex)
}
