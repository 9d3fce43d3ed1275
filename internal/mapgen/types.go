package mapgen

import (
	"fmt"
	"strings"
	"time"
)

// Dimension selects which world the upstream site renders.
type Dimension string

// Supported dimensions.
const (
	DimensionOverworld Dimension = "overworld"
	DimensionNether    Dimension = "nether"
	DimensionEnd       Dimension = "end"
)

// ParseDimension validates and normalizes a dimension string.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionOverworld:
		return DimensionOverworld, nil
	case DimensionNether:
		return DimensionNether, nil
	case DimensionEnd:
		return DimensionEnd, nil
	default:
		return "", fmt.Errorf("%w: unknown dimension %q", ErrInvalidInput, s)
	}
}

// JobStatus represents the lifecycle state of a generation job.
type JobStatus string

// Job status values held by the tracker. Ready and Failed are terminal;
// a job never re-enters Processing.
const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusReady      JobStatus = "ready"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusReady || s == JobStatusFailed
}

// Job is the record tracked for each submitted generation request.
type Job struct {
	ID            string     `json:"id"`
	Seed          string     `json:"seed"`
	Dimension     Dimension  `json:"dimension"`
	Size          int        `json:"size"`
	Status        JobStatus  `json:"status"`
	Submitted     time.Time  `json:"submitted_at"`
	Completed     *time.Time `json:"completed_at,omitempty"`
	ArtifactURI   string     `json:"artifact_uri,omitempty"`
	OutputSize    int        `json:"output_size,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Retryable     bool       `json:"retryable,omitempty"`
}

// Outcome carries the terminal result of a job's asynchronous continuation.
type Outcome struct {
	Status        JobStatus
	ArtifactURI   string
	OutputSize    int
	FailureReason string
	Retryable     bool
}

// CropSpec is the deterministic pixel window extracted from a capture.
// Width, Height, and OutputSize are always equal (square artifacts).
type CropSpec struct {
	Left       int
	Top        int
	Width      int
	Height     int
	OutputSize int
}

// Summary aggregates tracker state for the counts endpoint.
type Summary struct {
	InFlight   int `json:"in_flight"`
	Ceiling    int `json:"ceiling"`
	Total      int `json:"total"`
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Failed     int `json:"failed"`
}

// CompletionEvent is published after a job reaches a terminal state.
type CompletionEvent struct {
	JobID       string    `json:"job_id"`
	Seed        string    `json:"seed"`
	Dimension   Dimension `json:"dimension"`
	Status      JobStatus `json:"status"`
	ArtifactURI string    `json:"artifact_uri,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
