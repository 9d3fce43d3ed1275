package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

func TestNewValidatesAndDefaults(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing base URL")
	}

	s, err := New(Config{BaseURL: "https://maps.example.com/seed-map"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.cfg.NavTimeout != defaultNavTimeout {
		t.Fatalf("nav timeout default = %v", s.cfg.NavTimeout)
	}
	if s.cfg.SettleDelay != defaultSettleDelay {
		t.Fatalf("settle delay default = %v", s.cfg.SettleDelay)
	}
	if s.cfg.ViewportWidth != defaultViewport || s.cfg.ViewportHeight != defaultViewport {
		t.Fatalf("viewport defaults = %dx%d", s.cfg.ViewportWidth, s.cfg.ViewportHeight)
	}
	if s.limiter != nil {
		t.Fatal("limiter should be nil when SiteQPS is 0")
	}

	s, err = New(Config{BaseURL: "https://maps.example.com/seed-map", SiteQPS: 0.5}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.limiter == nil {
		t.Fatal("limiter should be set when SiteQPS > 0")
	}
}

func TestMapURL(t *testing.T) {
	t.Parallel()

	s, err := New(Config{BaseURL: "https://maps.example.com/seed-map"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		seed string
		dim  mapgen.Dimension
		want string
	}{
		{"12345", mapgen.DimensionOverworld, "https://maps.example.com/seed-map#seed=12345&dimension=overworld"},
		{"-99", mapgen.DimensionNether, "https://maps.example.com/seed-map#seed=-99&dimension=nether"},
		{"glacier ridge", mapgen.DimensionEnd, "https://maps.example.com/seed-map#seed=glacier+ridge&dimension=end"},
	}
	for _, tt := range tests {
		if got := s.mapURL(tt.seed, tt.dim); got != tt.want {
			t.Fatalf("mapURL(%q, %s) = %q, want %q", tt.seed, tt.dim, got, tt.want)
		}
	}
}

func TestStageOutcome(t *testing.T) {
	t.Parallel()

	ok := applied()
	if !ok.Applied() || ok.Reason() != "" {
		t.Fatalf("applied outcome = %+v", ok)
	}
	miss := skipped("element not found")
	if miss.Applied() || miss.Reason() != "element not found" {
		t.Fatalf("skipped outcome = %+v", miss)
	}
}

func TestGenerateFailsAsRetryableRenderError(t *testing.T) {
	t.Parallel()

	s, err := New(Config{
		BaseURL:    "https://maps.example.com/seed-map",
		NavTimeout: 2 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// A canceled context guarantees the launch stage fails regardless of
	// whether Chrome is installed on the test host.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Generate(ctx, "12345", mapgen.DimensionOverworld)
	if err == nil {
		t.Fatal("expected Generate to fail with a canceled context")
	}
	var rerr *mapgen.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *mapgen.RenderError, got %T: %v", err, err)
	}
	if !rerr.Retryable() {
		t.Fatal("render failures must be retryable")
	}
	if rerr.Stage != "launch" {
		t.Fatalf("expected launch stage failure, got %q", rerr.Stage)
	}
}

func TestGenerateAgainstLiveBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}

	s, err := New(Config{
		BaseURL:     "https://maps.example.com/seed-map",
		NavTimeout:  10 * time.Second,
		SettleDelay: time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shot, err := s.Generate(ctx, "12345", mapgen.DimensionOverworld)
	if err != nil {
		// No Chrome binary or no network on the test host.
		if strings.Contains(err.Error(), "exec") || strings.Contains(err.Error(), "navigate") {
			t.Skipf("browser unavailable: %v", err)
		}
		t.Fatalf("Generate() error = %v", err)
	}
	if len(shot) == 0 {
		t.Fatal("expected non-empty capture")
	}
}
