package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Replay plays back encoded frames one per Update. Frames come either from
// memory or from a capture loaded at Init.
type Replay struct {
	mu          sync.Mutex
	initialized bool
	frames      [][]byte
	pos         int

	src       FrameSource
	captureID string

	// Loop restarts playback at the first frame instead of returning
	// ErrCaptureExhausted.
	Loop bool

	trackers map[types.TrackerKind]bool
	formats  map[types.PixelFormat]bool
}

// NewReplay returns a backend that replays frames from memory.
func NewReplay(frames [][]byte) *Replay {
	return &Replay{
		frames:   frames,
		trackers: make(map[types.TrackerKind]bool),
		formats:  make(map[types.PixelFormat]bool),
	}
}

// NewCaptureReplay returns a backend that loads the frames of captureID from
// src when initialized.
func NewCaptureReplay(src FrameSource, captureID string) *Replay {
	r := NewReplay(nil)
	r.src = src
	r.captureID = captureID
	return r
}

func (r *Replay) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.src != nil {
		frames, err := r.src.Frames(ctx, r.captureID)
		if err != nil {
			return fmt.Errorf("loading capture %s: %w", r.captureID, err)
		}
		r.frames = frames
	}
	r.pos = 0
	r.initialized = true
	return nil
}

func (r *Replay) Deinit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = false
	clear(r.trackers)
	clear(r.formats)
	return nil
}

// Update returns a copy of the next frame.
func (r *Replay) Update(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return nil, types.ErrBackendNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.pos >= len(r.frames) {
		if !r.Loop || len(r.frames) == 0 {
			return nil, types.ErrCaptureExhausted
		}
		r.pos = 0
	}
	frame := append([]byte(nil), r.frames[r.pos]...)
	r.pos++
	return frame, nil
}

func (r *Replay) PausedUpdate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return types.ErrBackendNotReady
	}
	return nil
}

// Remaining returns the number of frames not yet delivered.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames) - r.pos
}

func (r *Replay) StartTracker(kind types.TrackerKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return false
	}
	r.trackers[kind] = true
	return true
}

// StopTracker fails for trackers that were never started.
func (r *Replay) StopTracker(kind types.TrackerKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.trackers[kind] {
		return false
	}
	delete(r.trackers, kind)
	return true
}

func (r *Replay) SetFrameFormat(format types.PixelFormat, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if types.BufferSize(1, 1, format) == 0 {
		return false
	}
	if enabled {
		r.formats[format] = true
	} else {
		delete(r.formats, format)
	}
	return true
}
