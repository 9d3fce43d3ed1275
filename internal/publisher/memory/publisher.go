// Package memory contains an in-memory publisher for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

// Publisher stores published completion events for inspection.
type Publisher struct {
	mu     sync.RWMutex
	events []mapgen.CompletionEvent
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, event mapgen.CompletionEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return fmt.Sprintf("memory-%d", len(p.events)), nil
}

// Events returns the recorded publishes.
func (p *Publisher) Events() []mapgen.CompletionEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]mapgen.CompletionEvent, len(p.events))
	copy(out, p.events)
	return out
}
