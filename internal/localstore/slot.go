package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Slot is a single named storage cell, read and rewritten in full. It is
// the one shared mutable resource with multiple writers: two processes
// racing on the same slot lose whole writes (last write wins), which is
// accepted rather than locked around.
type Slot interface {
	// Read returns the stored bytes, or (nil, nil) when nothing is stored.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored bytes.
	Write(ctx context.Context, data []byte) error
}

// FileSlot stores the slot as a file on disk. The mutex serializes
// in-process access only.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// NewFileSlot creates a slot backed by the file at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (s *FileSlot) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read slot: %w", err)
	}
	return data, nil
}

func (s *FileSlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create slot dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}

// MemorySlot is an in-memory slot for tests.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
