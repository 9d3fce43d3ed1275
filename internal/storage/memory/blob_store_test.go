package memory

import (
	"context"
	"testing"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("content")
	uri, err := store.PutObject(context.Background(), "maps/job-1.png", "image/png", payload)
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://maps/job-1.png" {
		t.Fatalf("unexpected uri %s", uri)
	}
	payload[0] = 'C'
	stored, ok := store.GetObject("maps/job-1.png")
	if !ok || string(stored) != "content" {
		t.Fatalf("expected stored copy to be immutable, got %q ok=%v", stored, ok)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one object, got %d", store.Len())
	}
}

func TestBlobStoreRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	if _, err := store.PutObject(context.Background(), "", "image/png", []byte("x")); err == nil {
		t.Fatal("expected error for empty path")
	}
}
