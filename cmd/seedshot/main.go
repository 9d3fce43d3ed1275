// Package main wires together the seedshot service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/jfaulkner/seedshot/internal/api"
	"github.com/jfaulkner/seedshot/internal/clock/system"
	"github.com/jfaulkner/seedshot/internal/config"
	"github.com/jfaulkner/seedshot/internal/id"
	"github.com/jfaulkner/seedshot/internal/imaging"
	"github.com/jfaulkner/seedshot/internal/logging"
	"github.com/jfaulkner/seedshot/internal/mapgen"
	"github.com/jfaulkner/seedshot/internal/metrics"
	"github.com/jfaulkner/seedshot/internal/orchestrator"
	"github.com/jfaulkner/seedshot/internal/render"
	"github.com/jfaulkner/seedshot/internal/tracker"

	publishermem "github.com/jfaulkner/seedshot/internal/publisher/memory"
	publisherps "github.com/jfaulkner/seedshot/internal/publisher/pubsub"
	storagegcs "github.com/jfaulkner/seedshot/internal/storage/gcs"
	storagelocal "github.com/jfaulkner/seedshot/internal/storage/local"
	storagemem "github.com/jfaulkner/seedshot/internal/storage/memory"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("service exited with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	blobs, err := newBlobStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}
	defer closePublisher()

	session, err := render.New(render.Config{
		BaseURL:        cfg.Render.BaseURL,
		UserAgent:      cfg.Render.UserAgent,
		NavTimeout:     cfg.Render.NavTimeout(),
		SettleDelay:    cfg.Render.SettleDelay(),
		StageTimeout:   cfg.Render.StageTimeout(),
		CaptureTimeout: cfg.Render.CaptureTimeout(),
		SiteQPS:        cfg.Render.SiteQPS,
		ViewportWidth:  cfg.Render.ViewportWidth,
		ViewportHeight: cfg.Render.ViewportHeight,
	}, logger.Named("render"))
	if err != nil {
		return fmt.Errorf("init render session: %w", err)
	}

	clock := system.New()
	track := tracker.New(cfg.Generation.MaxConcurrent, clock, logger.Named("tracker"))
	orch := orchestrator.New(
		track,
		session,
		imaging.New(),
		blobs,
		publisher,
		clock,
		id.New(),
		orchestrator.Config{
			ArtifactPrefix: cfg.Generation.ArtifactPrefix,
			ContentType:    cfg.Storage.ContentType,
		},
		logger.Named("orchestrator"),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(orch, logger.Named("api")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (mapgen.BlobStore, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		logger.Info("using gcs blob store", zap.String("bucket", cfg.Storage.GCSBucket))
		return storagegcs.New(client, storagegcs.Config{Bucket: cfg.Storage.GCSBucket})
	case "local":
		logger.Info("using local blob store", zap.String("base_dir", cfg.Storage.BaseDir))
		return storagelocal.New(storagelocal.Config{BaseDir: cfg.Storage.BaseDir})
	case "memory":
		logger.Info("using in-memory blob store; artifacts are lost on restart")
		return storagemem.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (mapgen.Publisher, func(), error) {
	if !cfg.PubSub.Enabled {
		logger.Info("pubsub disabled; completion events stay in-process")
		return publishermem.New(), func() {}, nil
	}
	pub, err := publisherps.New(ctx, publisherps.Config{
		ProjectID: cfg.PubSub.ProjectID,
		TopicID:   cfg.PubSub.TopicID,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing completion events",
		zap.String("project", cfg.PubSub.ProjectID),
		zap.String("topic", cfg.PubSub.TopicID),
	)
	return pub, func() {
		if cerr := pub.Close(); cerr != nil {
			logger.Warn("pubsub close failed", zap.Error(cerr))
		}
	}, nil
}
