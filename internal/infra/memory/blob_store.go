package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"character-match-service/internal/domain"
)

// BlobStore keeps media in memory (useful for tests/demos).
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Put reads r fully before taking the lock.
func (b *BlobStore) Put(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.blobs[key] = data
	b.mu.Unlock()
	return nil
}

func (b *BlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	data, ok := b.blobs[key]
	b.mu.RUnlock()
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *BlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[key]; !ok {
		return domain.ErrBlobNotFound
	}
	delete(b.blobs, key)
	return nil
}
