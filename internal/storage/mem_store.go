package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
)

// MemStore keeps artifacts in memory. Used by tests and anywhere a dry run
// should not touch the filesystem.
type MemStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: map[string][]byte{}}
}

func (s *MemStore) Root() string { return "(memory)" }

func (s *MemStore) WriteArtifact(_ context.Context, targetPath string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.files[targetPath] = buf
	return nil
}

func (s *MemStore) ReadArtifact(_ context.Context, targetPath string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[targetPath]
	if !ok {
		return nil, ErrNotFound{Path: targetPath}
	}
	return data, nil
}

func (s *MemStore) CopyFile(ctx context.Context, srcAbsPath, targetPath string) error {
	data, err := os.ReadFile(srcAbsPath)
	if err != nil {
		return fmt.Errorf("open source %s: %w", srcAbsPath, err)
	}
	return s.WriteArtifact(ctx, targetPath, data)
}

func (s *MemStore) Exists(_ context.Context, targetPath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[targetPath]
	return ok, nil
}

func (s *MemStore) Remove(_ context.Context, targetPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, targetPath)
	return nil
}

// Paths returns every stored target path, sorted.
func (s *MemStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
