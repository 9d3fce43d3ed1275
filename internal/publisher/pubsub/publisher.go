// Package pubsub publishes job completion events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

// Config captures the parameters for the Pub/Sub publisher.
type Config struct {
	ProjectID string
	TopicID   string
}

// Publisher implements mapgen.Publisher on a Pub/Sub topic.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New creates a Pub/Sub client and verifies the topic exists.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.ProjectID == "" || cfg.TopicID == "" {
		return nil, fmt.Errorf("project id and topic id are required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(cfg.TopicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check topic %s: %w", cfg.TopicID, err)
	}
	if !exists {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", cfg.TopicID, cfg.ProjectID)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish sends a completion event and waits for the server ack.
func (p *Publisher) Publish(ctx context.Context, event mapgen.CompletionEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal completion event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"job_id": event.JobID,
			"status": string(event.Status),
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish completion event: %w", err)
	}
	return id, nil
}

// Close stops the topic publisher and closes the client.
func (p *Publisher) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
