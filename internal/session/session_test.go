package session

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trackstate/internal/backend"
	"github.com/mesh-intelligence/trackstate/internal/state"
	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

type eventLog struct {
	types.NopObserver
	statuses int
	words    int
}

func (e *eventLog) TrackableStatusChanged(int32, types.TrackableID, types.Status, types.Status) {
	e.statuses++
}

func (e *eventLog) WordDetected(int32, types.Word) { e.words++ }

func replayConfig() types.Config {
	cfg := types.DefaultConfig()
	cfg.Backend = types.BackendReplay
	cfg.CaptureID = "memory"
	return cfg
}

func tracked(index int32, ids ...types.TrackableID) []byte {
	f := wire.Frame{Index: index}
	for _, id := range ids {
		f.Trackables = append(f.Trackables, types.TrackableResult{
			ID:     id,
			Status: types.StatusTracked,
			Pose:   types.Pose{Position: mgl64.Vec3{0, 0, 1}, Orientation: mgl64.QuatIdent()},
		})
	}
	return wire.MustEncode(f)
}

func startSession(t *testing.T, cfg types.Config, frames [][]byte, opts ...Option) (*Session, *backend.Replay) {
	t.Helper()
	r := backend.NewReplay(frames)
	s, err := New(cfg, r, opts...)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })
	return s, r
}

func bindImage(t *testing.T, s *Session, ids ...types.TrackableID) {
	t.Helper()
	ds := types.DataSet{Path: "test"}
	for _, id := range ids {
		ds.Trackables = append(ds.Trackables, types.Trackable{ID: id, Type: types.TypeImageTarget})
	}
	_, err := s.AssociateDataSet(ds, nil)
	require.NoError(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Words.MaxInstances = 0
	_, err := New(cfg, backend.NewNull())
	assert.ErrorIs(t, err, types.ErrMaxInstancesInvalid)

	_, err = New(types.DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := New(types.DefaultConfig(), backend.NewNull())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Update(ctx), types.ErrNotStarted)
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Started())
	assert.ErrorIs(t, s.Start(ctx), types.ErrAlreadyStarted)

	require.NoError(t, s.Update(ctx))
	assert.Equal(t, uint64(1), s.Stats().Frames)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.False(t, s.Started())
	assert.False(t, s.StartTracker(types.TrackerImage), "null backend has no trackers")
}

func TestMalformedFrameIsDropped(t *testing.T) {
	ctx := context.Background()
	frames := [][]byte{tracked(1, 4), []byte("not a frame"), tracked(3)}
	s, _ := startSession(t, replayConfig(), frames)
	bindImage(t, s, 4)

	require.NoError(t, s.Update(ctx))
	require.Len(t, s.ActiveTrackables(), 1)

	require.NoError(t, s.Update(ctx), "malformed frames are not errors")
	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.DroppedFrames)
	assert.Equal(t, int32(1), stats.LastFrameIndex)
	require.Len(t, s.ActiveTrackables(), 1, "state is kept across a dropped frame")

	require.NoError(t, s.Update(ctx))
	assert.Empty(t, s.ActiveTrackables())
}

func TestPausedUpdateReappliesLastFrame(t *testing.T) {
	ctx := context.Background()
	log := &eventLog{}
	s, r := startSession(t, replayConfig(), [][]byte{tracked(1, 4), tracked(2)}, WithObserver(log))
	bindImage(t, s, 4)

	require.NoError(t, s.Update(ctx))
	events := log.statuses

	s.Pause(true)
	require.NoError(t, s.Update(ctx))
	require.NoError(t, s.Update(ctx))
	assert.Equal(t, 1, r.Remaining(), "paused updates do not consume frames")
	assert.Equal(t, uint64(2), s.Stats().PausedFrames)
	assert.Equal(t, events, log.statuses)
	assert.Len(t, s.ActiveTrackables(), 1)

	s.Pause(false)
	require.NoError(t, s.Update(ctx))
	assert.Empty(t, s.ActiveTrackables())
}

func TestRunStopsAtExhaustion(t *testing.T) {
	frames := [][]byte{tracked(1), tracked(2), tracked(3)}
	s, _ := startSession(t, replayConfig(), frames)
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, uint64(3), s.Stats().Frames)
	assert.Equal(t, int32(3), s.Stats().LastFrameIndex)
}

func TestRunHonoursContext(t *testing.T) {
	r := backend.NewReplay([][]byte{tracked(1)})
	r.Loop = true
	s, err := New(replayConfig(), r)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestStopTrackerMarksNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := startSession(t, replayConfig(), [][]byte{tracked(1, 4)})
	bindImage(t, s, 4)
	require.NoError(t, s.Update(ctx))

	assert.False(t, s.StopTracker(types.TrackerImage), "tracker was never started")
	require.True(t, s.StartTracker(types.TrackerImage))
	require.True(t, s.StopTracker(types.TrackerImage))

	b, ok := s.State().Registry().Lookup(4)
	require.True(t, ok)
	assert.Equal(t, types.StatusNotFound, b.Status())
	assert.Empty(t, s.ActiveTrackables())
}

func TestCameraImages(t *testing.T) {
	ctx := context.Background()
	header := wire.ImageHeader{
		Width: 2, Height: 2, Stride: 2, BufferWidth: 4, BufferHeight: 2,
		Format: types.PixelFormatGray,
	}
	realloc := header
	realloc.Reallocate = true
	realloc.Payload = []byte{9, 9, 9, 9, 9, 9, 9, 9}
	update := header
	update.Updated = true
	update.Payload = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	other := update
	other.Format = types.PixelFormatRGB888

	frames := [][]byte{
		wire.MustEncode(wire.Frame{Index: 1, Images: []wire.ImageHeader{realloc}}),
		wire.MustEncode(wire.Frame{Index: 2, Images: []wire.ImageHeader{update, other}}),
	}
	s, _ := startSession(t, replayConfig(), frames)
	require.True(t, s.SetFrameFormat(types.PixelFormatGray, true))

	require.NoError(t, s.Update(ctx))
	im, ok := s.Image(types.PixelFormatGray)
	require.True(t, ok)
	assert.Equal(t, make([]byte, 8), im.Pixels, "reallocation skips the copy")

	require.NoError(t, s.Update(ctx))
	im, ok = s.Image(types.PixelFormatGray)
	require.True(t, ok)
	assert.Equal(t, update.Payload, im.Pixels)
	assert.True(t, im.Valid())

	im.Pixels[0] = 42
	again, _ := s.Image(types.PixelFormatGray)
	assert.Equal(t, byte(1), again.Pixels[0], "images are copied out")

	_, ok = s.Image(types.PixelFormatRGB888)
	assert.False(t, ok, "formats never requested are ignored")

	require.True(t, s.SetFrameFormat(types.PixelFormatGray, false))
	_, ok = s.Image(types.PixelFormatGray)
	assert.False(t, ok)
}

func TestWordsFlowThroughSession(t *testing.T) {
	ctx := context.Background()
	log := &eventLog{}
	f := wire.Frame{
		Index:    1,
		NewWords: []types.NewWordData{{ID: 50, StringValue: "exit", Size: types.Vec2{X: 1, Y: 0.2}}},
		WordResults: []types.WordResultData{{
			ID: 50, Status: types.StatusTracked,
			Pose: types.Pose{Position: mgl64.Vec3{0, 0, 2}, Orientation: mgl64.QuatIdent()},
		}},
	}
	s, _ := startSession(t, replayConfig(), [][]byte{wire.MustEncode(f), tracked(2)}, WithObserver(log))

	require.NoError(t, s.Update(ctx))
	assert.Len(t, s.NewWords(), 1)
	results := s.ActiveWordResults()
	require.Len(t, results, 1)
	want := state.PositionTrackable(s.CameraTransform(), f.WordResults[0].Pose)
	assert.True(t, results[0].Pose.Position.ApproxEqual(want.Position))
	_, bound := s.Words().SlotFor(50)
	assert.True(t, bound, "auto template takes the word")
	assert.Equal(t, 1, log.words)

	require.NoError(t, s.Update(ctx))
	lost := s.LostWords()
	require.Len(t, lost, 1)
	assert.Equal(t, "exit", lost[0].StringValue)
	assert.Empty(t, s.ActiveWordResults())
}

func TestSetCameraTransform(t *testing.T) {
	ctx := context.Background()
	s, _ := startSession(t, replayConfig(), [][]byte{tracked(1, 4)})
	bindImage(t, s, 4)

	cam := types.Transform{Position: mgl64.Vec3{0, 5, 0}, Rotation: mgl64.QuatIdent()}
	s.SetCameraTransform(cam)
	require.NoError(t, s.Update(ctx))
	assert.Equal(t, cam, s.CameraTransform())

	b, _ := s.State().Registry().Lookup(4)
	assert.True(t, b.Transform.Position.ApproxEqual(mgl64.Vec3{0, 5, 1}))
}

func TestDestroyedBehavioursAreReleased(t *testing.T) {
	s, _ := startSession(t, replayConfig(), [][]byte{tracked(1, 1, 2, 3)})
	ds := types.DataSet{Path: "set", Trackables: []types.Trackable{
		{ID: 1, Name: "a", Type: types.TypeImageTarget},
		{ID: 2, Name: "b", Type: types.TypeImageTarget},
		{ID: 3, Name: "mine", Type: types.TypeImageTarget},
	}}
	mine := state.NewBehaviour(types.Trackable{Name: "mine"}, types.OriginUserAuthored)

	bound, err := s.AssociateDataSet(ds, []*state.TrackableBehaviour{mine})
	require.NoError(t, err)
	require.Len(t, bound, 3)

	released := s.UnloadDataSet(ds)
	assert.Equal(t, []*state.TrackableBehaviour{bound[0], bound[1]}, released)
	assert.Empty(t, s.RemoveDestroyed())
	assert.False(t, s.State().Registry().IsDestroyed(mine))
	assert.Zero(t, s.State().Registry().Len())

	_, err = s.AssociateDataSet(ds, []*state.TrackableBehaviour{mine})
	require.NoError(t, err)
	require.NoError(t, s.DestroyTrackableBehaviour(1))
	assert.Empty(t, s.RemoveDestroyed())
	assert.ErrorIs(t, s.DestroyTrackableBehaviour(99), types.ErrNotBound)

	require.NoError(t, s.State().DestroyTrackableBehaviour(2))
	require.NoError(t, s.Stop())
	assert.Empty(t, s.RemoveDestroyed(), "stop sweeps destroyed behaviours")
}
