// Package session ties a tracking backend to the state and word reconcilers.
// A Session is the explicit context object an application creates once and
// drives frame by frame.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/trackstate/internal/state"
	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/internal/words"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Stats is a snapshot of session counters.
type Stats struct {
	Frames         uint64 // frames decoded and reconciled
	DroppedFrames  uint64 // malformed frames
	PausedFrames   uint64 // re-reconciliations while paused
	LastFrameIndex int32
}

// Option configures a Session.
type Option func(*Session)

// WithObserver adds an observer for every outbound event.
func WithObserver(o types.FrameObserver) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session owns one backend and the reconcilers fed from it. Update must be
// called from a single goroutine. State and Words hand out the managers
// unguarded and are meant for setup before Start; every other method may be
// called from any goroutine.
type Session struct {
	mu      sync.Mutex
	started bool
	paused  bool

	cfg       types.Config
	backend   types.Backend
	state     *state.Manager
	words     *words.Manager
	images    *imageCache
	observers multiObserver
	logger    *slog.Logger
	stats     Stats
}

// New builds a session over backend. The backend is not initialized until
// Start.
func New(cfg types.Config, backend types.Backend, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if backend == nil {
		return nil, fmt.Errorf("session: %w", types.ErrBackendNotReady)
	}
	s := &Session{
		cfg:     cfg,
		backend: backend,
		images:  newImageCache(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.words = words.NewManager(words.Config{
		Mode:         cfg.Words.PrefabMode,
		MaxInstances: cfg.Words.MaxInstances,
		AutoTemplate: cfg.Words.AutoTemplate,
		Observer:     s.observers,
		Logger:       s.logger,
	})
	s.state = state.NewManager(state.ManagerConfig{
		Mode:          cfg.WorldCenterMode,
		WorldCenterID: cfg.WorldCenterID,
		Words:         s.words,
		Observer:      s.observers,
		Logger:        s.logger,
	})
	return s, nil
}

// Start initializes the backend. Returns ErrAlreadyStarted when running.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return types.ErrAlreadyStarted
	}
	if err := s.backend.Init(ctx); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	s.started = true
	s.paused = false
	s.logger.Info("session: started", "backend", s.cfg.Backend, "world_center_mode", s.cfg.WorldCenterMode)
	return nil
}

// Stop releases the backend. Stopping a stopped session does nothing.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	if n := len(s.state.Registry().RemoveDestroyed()); n > 0 {
		s.logger.Debug("session: released destroyed behaviours", "count", n)
	}
	if err := s.backend.Deinit(); err != nil {
		return fmt.Errorf("deinitializing backend: %w", err)
	}
	s.logger.Info("session: stopped", "frames", s.stats.Frames, "dropped", s.stats.DroppedFrames)
	return nil
}

// Pause switches paused mode. While paused, Update keeps the backend alive
// and re-applies the last frame without decoding a new one.
func (s *Session) Pause(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// Update pulls one frame from the backend and reconciles it. A malformed
// frame is dropped and counted, leaving all state as it was; it is not an
// error. Backend errors are returned wrapped.
func (s *Session) Update(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return types.ErrNotStarted
	}

	if s.paused {
		if err := s.backend.PausedUpdate(ctx); err != nil {
			return fmt.Errorf("paused update: %w", err)
		}
		if s.state.ReconcileLast() {
			s.stats.PausedFrames++
		}
		return nil
	}

	buf, err := s.backend.Update(ctx)
	if err != nil {
		return fmt.Errorf("backend update: %w", err)
	}
	frame, err := wire.Decode(buf)
	if err != nil {
		s.stats.DroppedFrames++
		s.logger.Warn("session: dropping frame", "error", err, "bytes", len(buf))
		return nil
	}

	s.images.apply(frame.Images)
	s.state.Reconcile(state.FrameInput{
		Index:          frame.Index,
		Results:        state.NewFrameResultSet(frame.Trackables),
		VirtualButtons: frame.VirtualButtons,
		NewWords:       frame.NewWords,
		WordResults:    frame.WordResults,
	})
	s.stats.Frames++
	s.stats.LastFrameIndex = frame.Index
	return nil
}

// Run calls Update until ctx is done or the backend runs out of frames.
// Exhaustion ends the loop without error.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Update(ctx); err != nil {
			if errors.Is(err, types.ErrCaptureExhausted) {
				return nil
			}
			return err
		}
	}
}

// StartTracker asks the backend to start a tracker and reports its answer.
func (s *Session) StartTracker(kind types.TrackerKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.backend.StartTracker(kind)
	if !ok {
		s.logger.Warn("session: tracker did not start", "tracker", kind)
	}
	return ok
}

// StopTracker stops a tracker. On success every behaviour the tracker
// handled is marked NOT_FOUND.
func (s *Session) StopTracker(kind types.TrackerKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.backend.StopTracker(kind)
	if ok {
		s.state.SetNotFound(kind)
	}
	return ok
}

// SetFrameFormat requests camera images in format, or stops the request.
func (s *Session) SetFrameFormat(format types.PixelFormat, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.backend.SetFrameFormat(format, enabled)
	if ok {
		s.images.setEnabled(format, enabled)
	}
	return ok
}

// Image returns a copy of the latest camera image in format.
func (s *Session) Image(format types.PixelFormat) (types.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images.get(format)
}

// State returns the trackable state manager. Not guarded; use before Start.
func (s *Session) State() *state.Manager { return s.state }

// Words returns the word manager. Not guarded; use before Start.
func (s *Session) Words() *words.Manager { return s.words }

// AssociateDataSet binds the trackables of ds; see state.Manager.
func (s *Session) AssociateDataSet(ds types.DataSet, authored []*state.TrackableBehaviour) ([]*state.TrackableBehaviour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AssociateDataSet(ds, authored)
}

// UnloadDataSet unbinds the trackables of ds and returns the auto-created
// behaviours it destroyed. The registry no longer holds them.
func (s *Session) UnloadDataSet(ds types.DataSet) []*state.TrackableBehaviour {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UnloadDataSet(ds)
	return s.state.Registry().RemoveDestroyed()
}

// DestroyTrackableBehaviour destroys the behaviour bound to id and releases
// it from the registry.
func (s *Session) DestroyTrackableBehaviour(id types.TrackableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.DestroyTrackableBehaviour(id); err != nil {
		return err
	}
	s.state.Registry().RemoveDestroyed()
	return nil
}

// RemoveDestroyed returns the behaviours destroyed through State since the
// last sweep and releases them. Stop sweeps as well.
func (s *Session) RemoveDestroyed() []*state.TrackableBehaviour {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Registry().RemoveDestroyed()
}

func (s *Session) ActiveTrackables() []*state.TrackableBehaviour {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveTrackables()
}

func (s *Session) ActiveWordResults() []types.WordResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words.ActiveWordResults()
}

func (s *Session) NewWords() []types.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words.NewWords()
}

func (s *Session) LostWords() []types.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words.LostWords()
}

func (s *Session) CameraTransform() types.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Camera()
}

func (s *Session) SetCameraTransform(t types.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetCamera(t)
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Started reports whether Start has succeeded and Stop has not been called.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
