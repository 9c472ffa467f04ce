package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	with := func(mut func(c *Config)) Config {
		c := valid
		mut(&c)
		return c
	}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "default config is valid",
			config:  valid,
			wantErr: nil,
		},
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  with(func(c *Config) { c.Backend = "" }),
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  with(func(c *Config) { c.Backend = "vuforia" }),
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "replay without capture id",
			config:  with(func(c *Config) { c.Backend = BackendReplay }),
			wantErr: ErrCaptureIDMissing,
		},
		{
			name: "replay with capture id",
			config: with(func(c *Config) {
				c.Backend = BackendReplay
				c.CaptureID = "0190a0b2-0000-7000-8000-000000000000"
			}),
			wantErr: nil,
		},
		{
			name:    "unknown world center mode",
			config:  with(func(c *Config) { c.WorldCenterMode = "user" }),
			wantErr: ErrWorldCenterMode,
		},
		{
			name:    "specific target without id",
			config:  with(func(c *Config) { c.WorldCenterMode = WorldCenterSpecificTarget }),
			wantErr: ErrWorldCenterMissing,
		},
		{
			name: "specific target with id",
			config: with(func(c *Config) {
				c.WorldCenterMode = WorldCenterSpecificTarget
				c.WorldCenterID = 4
			}),
			wantErr: nil,
		},
		{
			name:    "unknown prefab mode",
			config:  with(func(c *Config) { c.Words.PrefabMode = "clone" }),
			wantErr: ErrWordPrefabMode,
		},
		{
			name:    "zero max instances",
			config:  with(func(c *Config) { c.Words.MaxInstances = 0 }),
			wantErr: ErrMaxInstancesInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStatusVisible(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusNotFound, false},
		{StatusUnknown, false},
		{StatusUndefined, false},
		{StatusDetected, true},
		{StatusTracked, true},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Visible(); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerKindHandles(t *testing.T) {
	if !TrackerImage.Handles(TypeCylinderTarget) {
		t.Error("image tracker should handle cylinder targets")
	}
	if TrackerImage.Handles(TypeMarker) {
		t.Error("image tracker should not handle markers")
	}
	if !TrackerText.Handles(TypeWord) {
		t.Error("text tracker should handle words")
	}
}

func TestBufferSize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		format PixelFormat
		want   int
	}{
		{"rgb565", 4, 2, PixelFormatRGB565, 16},
		{"rgb888", 4, 2, PixelFormatRGB888, 24},
		{"gray", 4, 2, PixelFormatGray, 8},
		{"yuv", 4, 2, PixelFormatYUV, 12},
		{"rgba", 4, 2, PixelFormatRGBA8888, 32},
		{"unknown", 4, 2, PixelFormatUnknown, 0},
		{"empty", 0, 2, PixelFormatGray, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BufferSize(tt.w, tt.h, tt.format); got != tt.want {
				t.Errorf("BufferSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusNotFound, StatusUnknown, StatusUndefined, StatusDetected, StatusTracked} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseStatus("LOST"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}
