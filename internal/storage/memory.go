package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in process memory. Used in development and tests;
// objects are served by the /files route.
type MemoryStorage struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStorage) Save(ctx context.Context, path string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[path]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(s.objects, path)
	return nil
}

func (s *MemoryStorage) URL(path string) string {
	return s.baseURL + "/" + path
}

// Open returns a reader for the object and its content type.
func (s *MemoryStorage) Open(path string) (io.ReadSeeker, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return bytes.NewReader(obj.data), obj.contentType, nil
}

func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
