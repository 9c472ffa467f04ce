package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/trackstate/internal/paths"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// settings is the resolved configuration of one CLI invocation.
type settings struct {
	configDir string
	config    types.Config
}

// loadSettings resolves the config directory, reads config.yaml with viper
// on top of the built-in defaults, and resolves the data directory. A
// missing config.yaml is not an error.
func loadSettings(flags *rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.DataDir, err = paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return settings{configDir: configDir, config: cfg}, nil
}

func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("data_dir", "")
	v.SetDefault("capture_id", "")
	v.SetDefault("world_center_mode", string(d.WorldCenterMode))
	v.SetDefault("world_center_id", int32(d.WorldCenterID))
	v.SetDefault("words.prefab_mode", string(d.Words.PrefabMode))
	v.SetDefault("words.max_instances", d.Words.MaxInstances)
	v.SetDefault("words.auto_template", d.Words.AutoTemplate)
	v.SetDefault("log_level", d.LogLevel)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := types.DefaultConfig()
	cfg.DataDir = dataDir
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# trackstate configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
