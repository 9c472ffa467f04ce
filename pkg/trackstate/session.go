package trackstate

import (
	"fmt"

	"github.com/mesh-intelligence/trackstate/internal/backend"
	"github.com/mesh-intelligence/trackstate/internal/session"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// NewSession builds the backend named by cfg.Backend and a session over it.
// src supplies recorded frames to the replay backend and may be nil for the
// null backend.
func NewSession(cfg types.Config, src backend.FrameSource, opts ...session.Option) (*session.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	be, err := backend.New(cfg, src)
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}
	return session.New(cfg, be, opts...)
}
