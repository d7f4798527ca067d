package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	expapp "github.com/jo-maerz/loka/internal/application/experience"
)

// Ensure MemoryObjectStorage implements the service's ObjectStorage interface
var _ expapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in a map. It backs local development
// without a MinIO instance and the handler tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// BaseURL prefixes generated download URLs
	BaseURL string
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		objects: make(map[string][]byte),
		BaseURL: "https://storage.example.com",
	}
}

// Upload stores an object under the given key
func (m *MemoryObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[storageKey] = buf
	return nil
}

// DeletePrefix removes every object under the given key prefix
func (m *MemoryObjectStorage) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("key prefix is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

// GenerateDownloadURL returns a deterministic fake URL for the object
func (m *MemoryObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return m.BaseURL + "/" + storageKey, time.Now().Add(expiresIn), nil
}

// Get returns a stored object and whether it exists
func (m *MemoryObjectStorage) Get(storageKey string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[storageKey]
	return data, ok
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
