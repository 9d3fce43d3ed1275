// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Generation GenerationConfig `mapstructure:"generation"`
	Render     RenderConfig     `mapstructure:"render"`
	Storage    StorageConfig    `mapstructure:"storage"`
	PubSub     PubSubConfig     `mapstructure:"pubsub"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// GenerationConfig governs job admission and artifact naming.
type GenerationConfig struct {
	MaxConcurrent  int    `mapstructure:"max_concurrent"`
	ArtifactPrefix string `mapstructure:"artifact_prefix"`
}

// RenderConfig configures the headless browser pipeline.
type RenderConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	UserAgent         string  `mapstructure:"user_agent"`
	NavTimeoutSec     int     `mapstructure:"nav_timeout_seconds"`
	SettleDelaySec    int     `mapstructure:"settle_delay_seconds"`
	StageTimeoutSec   int     `mapstructure:"stage_timeout_seconds"`
	CaptureTimeoutSec int     `mapstructure:"capture_timeout_seconds"`
	SiteQPS           float64 `mapstructure:"site_qps"`
	ViewportWidth     int     `mapstructure:"viewport_width"`
	ViewportHeight    int     `mapstructure:"viewport_height"`
}

// NavTimeout returns the navigation timeout as a duration.
func (c RenderConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// SettleDelay returns the post-navigation dwell as a duration.
func (c RenderConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySec) * time.Second
}

// StageTimeout returns the per-optional-stage timeout as a duration.
func (c RenderConfig) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSec) * time.Second
}

// CaptureTimeout returns the screenshot timeout as a duration.
func (c RenderConfig) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutSec) * time.Second
}

// StorageConfig selects and parameterizes the blob store.
type StorageConfig struct {
	Provider    string `mapstructure:"provider"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	BaseDir     string `mapstructure:"base_dir"`
	ContentType string `mapstructure:"content_type"`
}

// PubSubConfig holds metadata for completion-event notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEEDSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("generation.max_concurrent", 2)
	v.SetDefault("generation.artifact_prefix", "maps")
	v.SetDefault("render.base_url", "https://www.chunkbase.com/apps/seed-map")
	v.SetDefault("render.user_agent", "seedshot/0.1")
	v.SetDefault("render.nav_timeout_seconds", 45)
	v.SetDefault("render.settle_delay_seconds", 12)
	v.SetDefault("render.stage_timeout_seconds", 5)
	v.SetDefault("render.capture_timeout_seconds", 30)
	v.SetDefault("render.site_qps", 0.5)
	v.SetDefault("render.viewport_width", 2560)
	v.SetDefault("render.viewport_height", 2560)
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.base_dir", "./artifacts")
	v.SetDefault("storage.content_type", "image/png")
	v.SetDefault("pubsub.enabled", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Generation.MaxConcurrent <= 0 {
		return fmt.Errorf("generation.max_concurrent must be > 0")
	}
	if c.Render.BaseURL == "" {
		return fmt.Errorf("render.base_url must be set")
	}
	if c.Render.NavTimeoutSec <= 0 {
		return fmt.Errorf("render.nav_timeout_seconds must be > 0")
	}
	if c.Render.SettleDelaySec <= 0 {
		return fmt.Errorf("render.settle_delay_seconds must be > 0")
	}
	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when provider is gcs")
		}
	case "local":
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir must be set when provider is local")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicID == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_id must be set when pubsub is enabled")
	}
	return nil
}
