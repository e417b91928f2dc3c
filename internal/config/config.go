// Package config implements the ambient configuration collaborator: a
// viper-based Config narrowed, per SPEC_FULL.md's AMBIENT STACK, to exactly
// the playback core's surface (volume, speed, gapless, loop mode, plus the
// directories the library database and StreamedFile temp cache need).
//
// Grounded on the teacher's internal/config/config.go: mapstructure tags,
// env-prefixed viper.AutomaticEnv, per-OS defaults sourced from
// internal/platform, and the same ReadInConfig/ConfigFileNotFoundError
// tolerance so a first run with no config file on disk still works.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tramhao/termusic-sub005/internal/platform"
	"github.com/tramhao/termusic-sub005/pkg/track"
)

// Config is the playback engine's full configuration surface.
type Config struct {
	Debug bool `mapstructure:"debug"`

	Playback struct {
		Volume   float64 `mapstructure:"volume"`
		Speed    float64 `mapstructure:"speed"`
		Gapless  bool    `mapstructure:"gapless"`
		LoopMode int     `mapstructure:"loop_mode"`
	} `mapstructure:"playback"`

	Audio struct {
		DeviceSampleRate int `mapstructure:"device_sample_rate"`
		BufferMillis     int `mapstructure:"buffer_millis"`
	} `mapstructure:"audio"`

	Storage struct {
		DatabasePath string `mapstructure:"database_path"`
		CacheDir     string `mapstructure:"cache_dir"`
	} `mapstructure:"storage"`
}

// Load reads configuration from configPath (or the platform config
// directory's config.yaml if empty), applying defaults for anything unset.
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		configDir, err := platform.GetConfigDir()
		if err != nil {
			return nil, err
		}
		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("PLAYENGINE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := ensureDirectories(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("debug", false)

	dataDir, _ := platform.GetDataDir()
	cacheDir, _ := platform.GetCacheDir()

	viper.SetDefault("playback.volume", 1.0)
	viper.SetDefault("playback.speed", 1.0)
	viper.SetDefault("playback.gapless", true)
	viper.SetDefault("playback.loop_mode", int(track.LoopPlaylist))

	viper.SetDefault("audio.device_sample_rate", 44100)
	viper.SetDefault("audio.buffer_millis", 200)

	viper.SetDefault("storage.database_path", filepath.Join(dataDir, "playengine.db"))
	viper.SetDefault("storage.cache_dir", cacheDir)
}

func ensureDirectories(cfg *Config) error {
	for _, dir := range []string{filepath.Dir(cfg.Storage.DatabasePath), cfg.Storage.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Save persists cfg to the platform config directory's config.yaml.
func (c *Config) Save() error {
	configDir, err := platform.GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}
