package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Generation.MaxConcurrent != 2 {
		t.Fatalf("expected default ceiling 2, got %d", cfg.Generation.MaxConcurrent)
	}
	if cfg.Storage.Provider != "local" {
		t.Fatalf("expected default storage provider local, got %s", cfg.Storage.Provider)
	}
	if got := cfg.Render.SettleDelay(); got != 12*time.Second {
		t.Fatalf("expected settle delay 12s, got %v", got)
	}
	if got := cfg.Render.NavTimeout(); got != 45*time.Second {
		t.Fatalf("expected nav timeout 45s, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
generation:
  max_concurrent: 4
  artifact_prefix: captures
render:
  base_url: https://maps.example.com/seed-map
  user_agent: custom-agent
  nav_timeout_seconds: 30
  settle_delay_seconds: 8
  site_qps: 1.5
storage:
  provider: gcs
  gcs_bucket: seedshot-artifacts
pubsub:
  enabled: true
  project_id: test-project
  topic_id: map-completions
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Generation.MaxConcurrent != 4 || cfg.Generation.ArtifactPrefix != "captures" {
		t.Fatalf("expected generation overrides to apply: %+v", cfg.Generation)
	}
	if cfg.Render.BaseURL != "https://maps.example.com/seed-map" {
		t.Fatalf("expected render base URL override, got %s", cfg.Render.BaseURL)
	}
	if got := cfg.Render.NavTimeout(); got != 30*time.Second {
		t.Fatalf("expected nav timeout 30s, got %v", got)
	}
	if cfg.Render.SiteQPS != 1.5 {
		t.Fatalf("expected site qps 1.5, got %f", cfg.Render.SiteQPS)
	}
	if cfg.Storage.Provider != "gcs" || cfg.Storage.GCSBucket != "seedshot-artifacts" {
		t.Fatalf("expected gcs storage config: %+v", cfg.Storage)
	}
	if !cfg.PubSub.Enabled || cfg.PubSub.ProjectID != "test-project" {
		t.Fatalf("expected pubsub config: %+v", cfg.PubSub)
	}
	if cfg.Logging.Development {
		t.Fatal("expected logging development to be false")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:     ServerConfig{Port: 8080},
		Generation: GenerationConfig{MaxConcurrent: 2},
		Render: RenderConfig{
			BaseURL:        "https://maps.example.com/seed-map",
			NavTimeoutSec:  45,
			SettleDelaySec: 12,
		},
		Storage: StorageConfig{Provider: "memory"},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid ceiling",
			cfg: func() Config {
				c := base
				c.Generation.MaxConcurrent = 0
				return c
			}(),
			want: "generation.max_concurrent",
		},
		{
			name: "missing base url",
			cfg: func() Config {
				c := base
				c.Render.BaseURL = ""
				return c
			}(),
			want: "render.base_url",
		},
		{
			name: "invalid settle delay",
			cfg: func() Config {
				c := base
				c.Render.SettleDelaySec = 0
				return c
			}(),
			want: "render.settle_delay_seconds",
		},
		{
			name: "gcs without bucket",
			cfg: func() Config {
				c := base
				c.Storage.Provider = "gcs"
				return c
			}(),
			want: "storage.gcs_bucket",
		},
		{
			name: "unknown storage provider",
			cfg: func() Config {
				c := base
				c.Storage.Provider = "s3"
				return c
			}(),
			want: "unknown storage provider",
		},
		{
			name: "pubsub enabled without topic",
			cfg: func() Config {
				c := base
				c.PubSub.Enabled = true
				c.PubSub.ProjectID = "p"
				return c
			}(),
			want: "pubsub",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
