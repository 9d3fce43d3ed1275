// Package orchestrator is the public entry point for map generation: it
// validates submissions, drives admission control, and runs the async
// render/crop/store continuation for each admitted job.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jfaulkner/seedshot/internal/geometry"
	"github.com/jfaulkner/seedshot/internal/mapgen"
	"github.com/jfaulkner/seedshot/internal/metrics"
)

// Config controls orchestrator behavior.
type Config struct {
	// ArtifactPrefix is prepended to blob object names.
	ArtifactPrefix string
	ContentType    string
}

// Orchestrator coordinates the tracker, renderer, image pipeline, and
// storage for submitted jobs.
type Orchestrator struct {
	tracker   mapgen.Tracker
	renderer  mapgen.Renderer
	processor mapgen.ImageProcessor
	blobs     mapgen.BlobStore
	publisher mapgen.Publisher
	clock     mapgen.Clock
	ids       mapgen.IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Orchestrator. The publisher may be nil; completion
// events are then skipped.
func New(
	tracker mapgen.Tracker,
	renderer mapgen.Renderer,
	processor mapgen.ImageProcessor,
	blobs mapgen.BlobStore,
	publisher mapgen.Publisher,
	clock mapgen.Clock,
	ids mapgen.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.ArtifactPrefix == "" {
		cfg.ArtifactPrefix = "maps"
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "image/png"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Orchestrator{
		tracker:   tracker,
		renderer:  renderer,
		processor: processor,
		blobs:     blobs,
		publisher: publisher,
		clock:     clock,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}
}

// Submit validates the request, claims an admission slot, records the job,
// and launches the generation asynchronously. It returns the job id
// immediately; callers poll GetStatus for the outcome.
func (o *Orchestrator) Submit(_ context.Context, seed, dimension string, size int) (string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return "", fmt.Errorf("%w: seed must not be empty", mapgen.ErrInvalidInput)
	}
	dim, err := mapgen.ParseDimension(dimension)
	if err != nil {
		return "", err
	}
	if !geometry.ValidSize(size) {
		return "", fmt.Errorf("%w: %d not in [%d, %d]",
			mapgen.ErrInvalidSize, size, geometry.MinSize, geometry.MaxSize)
	}

	if !o.tracker.Admit() {
		metrics.ObserveAdmissionRejected()
		return "", mapgen.ErrAdmissionRejected
	}

	now := o.clock.Now()
	jobID := o.ids.NewID(seed, dim, now)
	o.tracker.CreateRecord(mapgen.Job{
		ID:        jobID,
		Seed:      seed,
		Dimension: dim,
		Size:      size,
		Submitted: now,
	})

	o.logger.Info("job admitted",
		zap.String("job_id", jobID),
		zap.String("seed", seed),
		zap.String("dimension", string(dim)),
		zap.Int("size", size),
	)

	go o.generate(jobID, seed, dim, size)
	return jobID, nil
}

// GetStatus fetches the tracked job record.
func (o *Orchestrator) GetStatus(jobID string) (mapgen.Job, error) {
	return o.tracker.Get(jobID)
}

// Counts returns the tracker summary.
func (o *Orchestrator) Counts() mapgen.Summary {
	return o.tracker.Summary()
}

// generate runs the continuation for one admitted job. It always leaves
// the job in a terminal state; the submission context is deliberately not
// inherited, a job runs to completion once admitted.
func (o *Orchestrator) generate(jobID, seed string, dim mapgen.Dimension, size int) {
	ctx := context.Background()
	logger := o.logger.With(zap.String("job_id", jobID))

	artifact, outputSize, err := o.produce(ctx, jobID, seed, dim, size)
	if err != nil {
		logger.Warn("generation failed", zap.Error(err))
		o.finish(ctx, jobID, seed, dim, mapgen.Outcome{
			Status:        mapgen.JobStatusFailed,
			FailureReason: err.Error(),
			Retryable:     retryable(err),
		})
		return
	}

	logger.Info("generation complete",
		zap.String("artifact_uri", artifact),
		zap.Int("output_size", outputSize),
	)
	o.finish(ctx, jobID, seed, dim, mapgen.Outcome{
		Status:      mapgen.JobStatusReady,
		ArtifactURI: artifact,
		OutputSize:  outputSize,
	})
}

func (o *Orchestrator) produce(
	ctx context.Context,
	jobID, seed string,
	dim mapgen.Dimension,
	size int,
) (string, int, error) {
	raw, err := o.renderer.Generate(ctx, seed, dim)
	if err != nil {
		return "", 0, err
	}

	spec, err := geometry.ComputeCrop(dim, size)
	if err != nil {
		return "", 0, &mapgen.ProcessingError{Step: "geometry", Err: err}
	}

	cropped, err := o.processor.Crop(raw, spec)
	if err != nil {
		return "", 0, &mapgen.ProcessingError{Step: "crop", Err: err}
	}
	scaled, err := o.processor.Resize(cropped, spec.OutputSize)
	if err != nil {
		return "", 0, &mapgen.ProcessingError{Step: "resize", Err: err}
	}
	encoded, err := o.processor.EncodePNG(scaled)
	if err != nil {
		return "", 0, &mapgen.ProcessingError{Step: "encode", Err: err}
	}

	name := fmt.Sprintf("%s/%s.png", o.cfg.ArtifactPrefix, jobID)
	uri, err := o.blobs.PutObject(ctx, name, o.cfg.ContentType, encoded)
	if err != nil {
		return "", 0, &mapgen.ProcessingError{Step: "store", Err: err}
	}
	return uri, spec.OutputSize, nil
}

// finish records the terminal state and emits the completion event.
// Publish failures are logged and swallowed.
func (o *Orchestrator) finish(
	ctx context.Context,
	jobID, seed string,
	dim mapgen.Dimension,
	outcome mapgen.Outcome,
) {
	o.tracker.Complete(jobID, outcome)
	if o.publisher == nil {
		return
	}
	_, err := o.publisher.Publish(ctx, mapgen.CompletionEvent{
		JobID:       jobID,
		Seed:        seed,
		Dimension:   dim,
		Status:      outcome.Status,
		ArtifactURI: outcome.ArtifactURI,
		CompletedAt: o.clock.Now(),
	})
	if err != nil {
		o.logger.Warn("completion publish failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// retryable reports the retry hint carried by render and processing
// errors. Unknown failures default to retryable since nothing in the
// continuation is caller-correctable.
func retryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}
