package backend

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Null is a backend with no camera. Every Update yields an empty frame and
// every tracker or frame format request fails.
type Null struct {
	mu          sync.Mutex
	initialized bool
	index       int32
}

// NewNull returns an uninitialized null backend.
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Init(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.initialized = true
	return nil
}

func (n *Null) Deinit() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.initialized = false
	return nil
}

func (n *Null) Update(ctx context.Context) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.initialized {
		return nil, types.ErrBackendNotReady
	}
	n.index++
	return wire.Encode(wire.Frame{Index: n.index})
}

func (n *Null) PausedUpdate(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.initialized {
		return types.ErrBackendNotReady
	}
	return nil
}

func (n *Null) StartTracker(types.TrackerKind) bool { return false }

func (n *Null) StopTracker(types.TrackerKind) bool { return false }

func (n *Null) SetFrameFormat(types.PixelFormat, bool) bool { return false }
