package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

func attachedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Attach(types.Config{DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = s.Detach() })
	return s
}

func encodedFrame(index int32, ids ...types.TrackableID) []byte {
	f := wire.Frame{Index: index}
	for _, id := range ids {
		f.Trackables = append(f.Trackables, types.TrackableResult{
			ID: id, Status: types.StatusTracked, Pose: types.IdentityPose(),
		})
	}
	return wire.MustEncode(f)
}

func TestStoreAttachDetach(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()
	require.NoError(t, s.Attach(types.Config{DataDir: dir}))

	_, err := os.Stat(filepath.Join(dir, DBFileName))
	require.NoError(t, err, "database file created")
	assert.Equal(t, dir, s.DataDir())

	assert.ErrorIs(t, s.Attach(types.Config{DataDir: dir}), types.ErrAlreadyAttached)

	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach(), "detach is idempotent")

	_, err = s.Captures(context.Background())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = s.CreateCapture(context.Background(), "x")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestStorePersistsAcrossAttach(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := NewStore()
	require.NoError(t, s.Attach(types.Config{DataDir: dir}))
	c, err := s.CreateCapture(ctx, "desk")
	require.NoError(t, err)
	require.NoError(t, s.AppendFrame(ctx, c.ID, encodedFrame(1, 3)))
	require.NoError(t, s.Detach())

	require.NoError(t, s.Attach(types.Config{DataDir: dir}))
	defer s.Detach()
	got, err := s.Capture(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "desk", got.Name)
	assert.Equal(t, 1, got.FrameCount)
}

func TestCaptureFrames(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)

	c, err := s.CreateCapture(ctx, "table")
	require.NoError(t, err)
	assert.Equal(t, "table", c.Name)
	assert.Equal(t, 0, c.FrameCount)

	want := [][]byte{encodedFrame(10, 1), encodedFrame(11), encodedFrame(12, 1, 2)}
	for _, f := range want {
		require.NoError(t, s.AppendFrame(ctx, c.ID, f))
	}

	got, err := s.Frames(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	c, err = s.Capture(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, c.FrameCount)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestAppendFrameErrors(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	c, err := s.CreateCapture(ctx, "c")
	require.NoError(t, err)

	tests := []struct {
		name      string
		captureID string
		frame     []byte
		wantErr   error
	}{
		{"malformed frame", c.ID, []byte("garbage"), wire.ErrMalformedFrame},
		{"invalid id", "not-a-uuid", encodedFrame(1), types.ErrInvalidID},
		{"unknown capture", generateUUID(), encodedFrame(1), types.ErrCaptureNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AppendFrame(ctx, tt.captureID, tt.frame)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	frames, err := s.Frames(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestCapturesAndDelete(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)

	a, err := s.CreateCapture(ctx, "a")
	require.NoError(t, err)
	b, err := s.CreateCapture(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, s.AppendFrame(ctx, b.ID, encodedFrame(1)))
	_, err = s.RecordEvent(ctx, Event{CaptureID: b.ID, Kind: EventStatus})
	require.NoError(t, err)

	list, err := s.Captures(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	require.NoError(t, s.DeleteCapture(ctx, b.ID))
	_, err = s.Frames(ctx, b.ID)
	assert.ErrorIs(t, err, types.ErrCaptureNotFound)
	assert.ErrorIs(t, s.DeleteCapture(ctx, b.ID), types.ErrCaptureNotFound)

	list, err = s.Captures(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFramesJSONL(t *testing.T) {
	ctx := context.Background()
	s := attachedStore(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "frames.jsonl")
	content := `{"index":1,"trackables":[{"id":3,"status":"TRACKED","pose":{"position":[0,0,1],"rotation":[0,0,0,1]}}],"buttons":[{"id":9,"pressed":true}]}
not json at all

{"index":2,"trackables":[{"id":3,"status":"VANISHED"}]}
{"index":3,"new_words":[{"id":50,"text":"exit","size":[1,0.25]}],"word_results":[{"id":50,"status":"DETECTED","pose":{"position":[0,0,2],"rotation":[0,0,0,1]},"obb":{"center":[4,5],"half_extents":[1,1],"rotation":30}}]}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, skipped, err := s.ImportFramesJSONL(ctx, path, "hand written")
	require.NoError(t, err)
	assert.Equal(t, 2, skipped, "invalid JSON and unknown status are skipped")
	assert.Equal(t, 2, c.FrameCount)

	frames, err := s.Frames(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	first, err := wire.Decode(frames[0])
	require.NoError(t, err)
	require.Len(t, first.Trackables, 1)
	assert.Equal(t, types.StatusTracked, first.Trackables[0].Status)
	assert.Equal(t, 1.0, first.Trackables[0].Pose.Position[2])
	assert.True(t, first.VirtualButtons[0].Pressed)

	second, err := wire.Decode(frames[1])
	require.NoError(t, err)
	assert.Equal(t, "exit", second.NewWords[0].StringValue)
	assert.Equal(t, float32(30), second.WordResults[0].Obb.Rotation)

	out := filepath.Join(dir, "export.jsonl")
	n, err := s.ExportFramesJSONL(ctx, c.ID, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	again, skipped, err := s.ImportFramesJSONL(ctx, out, "copy")
	require.NoError(t, err)
	assert.Zero(t, skipped)
	copied, err := s.Frames(ctx, again.ID)
	require.NoError(t, err)
	assert.Equal(t, frames, copied)
}

func TestImportMissingFile(t *testing.T) {
	s := attachedStore(t)
	_, _, err := s.ImportFramesJSONL(context.Background(), filepath.Join(t.TempDir(), "none.jsonl"), "x")
	assert.Error(t, err)
}
