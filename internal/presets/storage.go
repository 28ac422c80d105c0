package presets

import (
	"context"
	"sync"
)

// Storage persists the serialized preset list under a single key.
// Read returns nil data and no error when nothing has been stored yet.
type Storage interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Name() string
}

// MemoryStorage keeps the document in memory. ReadErr and WriteErr, when
// set, are returned instead of touching the data.
type MemoryStorage struct {
	mu       sync.Mutex
	data     []byte
	writes   int
	ReadErr  error
	WriteErr error
}

func NewMemoryStorage(initial []byte) *MemoryStorage {
	return &MemoryStorage{data: initial}
}

func (m *MemoryStorage) Read(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append([]byte(nil), data...)
	m.writes++
	return nil
}

func (m *MemoryStorage) Name() string { return "memory" }

// Data returns the last written document.
func (m *MemoryStorage) Data() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Writes counts successful writes.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
