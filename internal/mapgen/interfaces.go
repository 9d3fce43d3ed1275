package mapgen

import (
	"context"
	"time"
)

// Renderer produces a raw full-page capture for one seed/dimension pair.
type Renderer interface {
	Generate(ctx context.Context, seed string, dim Dimension) ([]byte, error)
}

// ImageProcessor crops, scales, and encodes raw capture bytes.
type ImageProcessor interface {
	Crop(raw []byte, spec CropSpec) ([]byte, error)
	Resize(raw []byte, size int) ([]byte, error)
	EncodePNG(raw []byte) ([]byte, error)
}

// BlobStore writes finished artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, event CompletionEvent) (string, error)
}

// Tracker owns the job map and the admission counter.
type Tracker interface {
	Admit() bool
	CreateRecord(job Job)
	Complete(jobID string, outcome Outcome)
	Get(jobID string) (Job, error)
	Summary() Summary
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job identifiers.
type IDGenerator interface {
	NewID(seed string, dim Dimension, submitted time.Time) string
}
