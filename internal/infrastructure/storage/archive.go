// Package storage provides object storage implementations for archiving
// uploaded import files.
package storage

import (
	"context"
	"sync"
	"time"
)

// FileArchive stores uploaded import files for audit and reprocessing.
type FileArchive interface {
	// Archive stores the file under the given key and returns nothing; the key
	// is recorded by the caller.
	Archive(ctx context.Context, key string, data []byte, contentType string) error
	// DownloadURL returns a time-limited URL for retrieving an archived file.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	// Exists reports whether a file is archived under the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// NoopArchive discards archived files. Used when storage is disabled.
type NoopArchive struct{}

// NewNoopArchive creates an archive that stores nothing
func NewNoopArchive() *NoopArchive {
	return &NoopArchive{}
}

func (a *NoopArchive) Archive(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (a *NoopArchive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (a *NoopArchive) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// MemoryArchive keeps archived files in memory. Intended for tests and
// development environments without object storage.
type MemoryArchive struct {
	mu           sync.RWMutex
	files        map[string][]byte
	contentTypes map[string]string
}

// NewMemoryArchive creates an empty in-memory archive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		files:        make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (a *MemoryArchive) Archive(ctx context.Context, key string, data []byte, contentType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	a.files[key] = stored
	a.contentTypes[key] = contentType
	return nil
}

func (a *MemoryArchive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "memory://" + key, time.Now().Add(expiresIn), nil
}

func (a *MemoryArchive) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.files[key]
	return ok, nil
}

// Get returns the stored bytes for a key, for test assertions
func (a *MemoryArchive) Get(key string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.files[key]
	return data, ok
}

// ContentType returns the stored content type for a key, for test assertions
func (a *MemoryArchive) ContentType(key string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ct, ok := a.contentTypes[key]
	return ct, ok
}

var (
	_ FileArchive = (*NoopArchive)(nil)
	_ FileArchive = (*MemoryArchive)(nil)
)
