package blob

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps objects in process. It backs local runs without a bucket.
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

const memoryBaseURL = "http://blob.local"

// NewMemoryStore creates an empty in-process store
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read object body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return ObjectURL(memoryBaseURL, s.bucket, key), nil
}

func (s *MemoryStore) Delete(ctx context.Context, objectURL string) error {
	key, err := KeyFromURL(objectURL, s.bucket)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Has reports whether key is stored
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}
