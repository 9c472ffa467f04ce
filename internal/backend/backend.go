// Package backend provides the tracking backends a session can be built on:
// a null backend that produces empty frames and a replay backend that plays
// back recorded frames.
package backend

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// FrameSource loads the encoded frames of a recorded capture in order.
type FrameSource interface {
	Frames(ctx context.Context, captureID string) ([][]byte, error)
}

// New returns the backend named by cfg.Backend. The replay backend reads
// cfg.CaptureID from src when it is initialized.
func New(cfg types.Config, src FrameSource) (types.Backend, error) {
	switch cfg.Backend {
	case types.BackendNull:
		return NewNull(), nil
	case types.BackendReplay:
		if src == nil {
			return nil, fmt.Errorf("replay backend: no frame source")
		}
		if cfg.CaptureID == "" {
			return nil, types.ErrCaptureIDMissing
		}
		return NewCaptureReplay(src, cfg.CaptureID), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}
