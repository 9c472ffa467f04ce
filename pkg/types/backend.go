package types

import (
	"context"
	"errors"
)

// Backend is the tracking backend capability consumed by a session. One
// implementation is chosen at startup and injected; the session never
// switches backends while running.
//
// Update returns one encoded frame per call, in the binary frame protocol
// defined by internal/wire. Calls are synchronous from the caller's point of
// view.
type Backend interface {
	// Init prepares the backend for frame delivery.
	Init(ctx context.Context) error

	// Deinit releases backend resources. Idempotent.
	Deinit() error

	// Update advances the backend by one frame and returns the encoded
	// frame. Returns ErrCaptureExhausted when a finite source has no more
	// frames.
	Update(ctx context.Context) ([]byte, error)

	// PausedUpdate keeps the backend's video output alive while the session
	// is paused. No new frame is produced.
	PausedUpdate(ctx context.Context) error

	// StartTracker and StopTracker report success as a boolean; callers
	// decide whether a failure is fatal.
	StartTracker(kind TrackerKind) bool
	StopTracker(kind TrackerKind) bool

	// SetFrameFormat requests (or stops requesting) camera images in the
	// given pixel format.
	SetFrameFormat(format PixelFormat, enabled bool) bool
}

// Backend names accepted in Config.Backend.
const (
	BackendNull   = "null"
	BackendReplay = "replay"
)

// Backend errors.
var (
	ErrCaptureExhausted = errors.New("capture has no more frames")
	ErrBackendNotReady  = errors.New("backend is not initialized")
)
