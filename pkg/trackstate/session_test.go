package trackstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

func TestNewSessionNullBackend(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(types.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	for range 3 {
		require.NoError(t, s.Update(ctx))
	}
	assert.Equal(t, uint64(3), s.Stats().Frames)
	assert.Empty(t, s.ActiveTrackables())
}

func TestNewSessionErrors(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Backend = "vuforia"
	_, err := NewSession(cfg, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	cfg = types.DefaultConfig()
	cfg.Backend = types.BackendReplay
	cfg.CaptureID = "0190a0b2-0000-7000-8000-000000000000"
	_, err = NewSession(cfg, nil)
	assert.Error(t, err)
}
