package types

import (
	"errors"
	"fmt"
)

// WorldCenterMode selects how world coordinates are anchored. The mode is
// fixed for the lifetime of a session.
type WorldCenterMode string

// World center modes.
const (
	// WorldCenterCamera keeps the camera where the application put it and
	// positions every trackable relative to it.
	WorldCenterCamera WorldCenterMode = "camera"

	// WorldCenterFirstTarget anchors the world to the oldest continuously
	// visible trackable.
	WorldCenterFirstTarget WorldCenterMode = "first_target"

	// WorldCenterSpecificTarget anchors the world to one designated
	// trackable.
	WorldCenterSpecificTarget WorldCenterMode = "specific_target"
)

// WordPrefabMode selects whether recognized words are bound to pooled
// augmentation slots.
type WordPrefabMode string

// Word prefab modes.
const (
	WordPrefabNone      WordPrefabMode = "none"
	WordPrefabDuplicate WordPrefabMode = "duplicate"
)

// WordConfig configures the word slot pools.
type WordConfig struct {
	PrefabMode WordPrefabMode `json:"prefab_mode" yaml:"prefab_mode" mapstructure:"prefab_mode"`

	// MaxInstances bounds both the slots per pool key and the total number
	// of simultaneously bound words.
	MaxInstances int `json:"max_instances" yaml:"max_instances" mapstructure:"max_instances"`

	// AutoTemplate creates a generic template slot when none was authored.
	AutoTemplate bool `json:"auto_template" yaml:"auto_template" mapstructure:"auto_template"`
}

// Config holds backend selection and session parameters.
type Config struct {
	Backend         string          `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir         string          `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	CaptureID       string          `json:"capture_id" yaml:"capture_id" mapstructure:"capture_id"`
	WorldCenterMode WorldCenterMode `json:"world_center_mode" yaml:"world_center_mode" mapstructure:"world_center_mode"`
	WorldCenterID   TrackableID     `json:"world_center_id" yaml:"world_center_id" mapstructure:"world_center_id"`
	Words           WordConfig      `json:"words" yaml:"words" mapstructure:"words"`
	LogLevel        string          `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns a config for the null backend in camera-fixed mode.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendNull,
		WorldCenterMode: WorldCenterCamera,
		WorldCenterID:   NoTrackable,
		Words: WordConfig{
			PrefabMode:   WordPrefabDuplicate,
			MaxInstances: 1,
			AutoTemplate: true,
		},
		LogLevel: "info",
	}
}

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrWorldCenterMode     = errors.New("unknown world center mode")
	ErrWorldCenterMissing  = errors.New("specific_target mode requires world_center_id")
	ErrWordPrefabMode      = errors.New("unknown word prefab mode")
	ErrMaxInstancesInvalid = errors.New("words.max_instances must be positive")
	ErrCaptureIDMissing    = errors.New("replay backend requires capture_id")
)

var knownBackends = map[string]bool{
	BackendNull:   true,
	BackendReplay: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package, wrapped with the offending value where useful.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.Backend == BackendReplay && c.CaptureID == "" {
		return ErrCaptureIDMissing
	}
	switch c.WorldCenterMode {
	case WorldCenterCamera, WorldCenterFirstTarget:
	case WorldCenterSpecificTarget:
		if c.WorldCenterID < 0 {
			return ErrWorldCenterMissing
		}
	default:
		return fmt.Errorf("%w: %q", ErrWorldCenterMode, c.WorldCenterMode)
	}
	switch c.Words.PrefabMode {
	case WordPrefabNone, WordPrefabDuplicate:
	default:
		return fmt.Errorf("%w: %q", ErrWordPrefabMode, c.Words.PrefabMode)
	}
	if c.Words.MaxInstances <= 0 {
		return ErrMaxInstancesInvalid
	}
	return nil
}
