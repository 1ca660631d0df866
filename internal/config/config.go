package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfigName is the file Load looks for in the config directory.
const ConfigName = "panorama.cfg.json"

// ViewConfig describes the neutral view used when no view can be read.
type ViewConfig struct {
	DefaultFov    float64 `json:"defaultFov" mapstructure:"defaultFov"`
	DefaultWidth  float64 `json:"defaultWidth" mapstructure:"defaultWidth"`
	DefaultHeight float64 `json:"defaultHeight" mapstructure:"defaultHeight"`
}

// DrawConfig holds drawing tool resolution.
type DrawConfig struct {
	FreeDrawTarget int `json:"freeDrawTarget" mapstructure:"freeDrawTarget"`
	CircleSegments int `json:"circleSegments" mapstructure:"circleSegments"`
}

// APIConfig holds hotspot service settings.
type APIConfig struct {
	ServerURL string        `json:"serverUrl" mapstructure:"serverUrl"`
	Token     string        `json:"token" mapstructure:"token"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
}

// MemoryConfig holds JSON file storage backend settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings.
type SQLiteConfig struct {
	Path     string `json:"path" mapstructure:"path"`
	DumpPath string `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the scene cache backend.
type StorageConfig struct {
	Type   string        `json:"type" mapstructure:"type"`
	TTL    time.Duration `json:"ttl" mapstructure:"ttl"`
	Memory MemoryConfig  `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig  `json:"sqlite" mapstructure:"sqlite"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("view.defaultFov", 90.0)
	viper.SetDefault("view.defaultWidth", 1920.0)
	viper.SetDefault("view.defaultHeight", 1080.0)

	viper.SetDefault("draw.freeDrawTarget", 80)
	viper.SetDefault("draw.circleSegments", 32)

	viper.SetDefault("api.serverUrl", "https://smarttravel-vr.mobifone.vn/vr-api/api/hotspot")
	viper.SetDefault("api.token", "")
	viper.SetDefault("api.timeout", "30s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.ttl", "24h")
	viper.SetDefault("storage.memory.outputDir", "./scenes")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "panorama")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetViewDefaults returns the neutral view settings.
func GetViewDefaults() ViewConfig {
	return ViewConfig{
		DefaultFov:    viper.GetFloat64("view.defaultFov"),
		DefaultWidth:  viper.GetFloat64("view.defaultWidth"),
		DefaultHeight: viper.GetFloat64("view.defaultHeight"),
	}
}

// GetDrawConfig returns drawing tool settings.
func GetDrawConfig() DrawConfig {
	return DrawConfig{
		FreeDrawTarget: viper.GetInt("draw.freeDrawTarget"),
		CircleSegments: viper.GetInt("draw.circleSegments"),
	}
}

// GetAPIConfig returns hotspot service settings.
func GetAPIConfig() APIConfig {
	return APIConfig{
		ServerURL: viper.GetString("api.serverUrl"),
		Token:     viper.GetString("api.token"),
		Timeout:   viper.GetDuration("api.timeout"),
	}
}

// GetStorageConfig returns scene cache settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		TTL:  viper.GetDuration("storage.ttl"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:     viper.GetString("storage.sqlite.path"),
			DumpPath: viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}
