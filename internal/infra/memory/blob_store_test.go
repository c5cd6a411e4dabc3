package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"character-match-service/internal/domain"
)

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore()

	if err := blobs.Put(ctx, "uploads/x.png", strings.NewReader("data"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := blobs.Open(ctx, "uploads/x.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "data" {
		t.Fatalf("unexpected content %q", data)
	}
	if err := blobs.Delete(ctx, "uploads/x.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := blobs.Open(ctx, "uploads/x.png"); !errors.Is(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
