package transfer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zhengshuai-xiao/XferS/pkg/objstore"
)

// MockStore is a mock implementation of checkpoint.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, key string, offset uint64) error {
	args := m.Called(key, offset)
	return args.Error(0)
}

func (m *MockStore) Load(ctx context.Context, key string) (uint64, error) {
	args := m.Called(key)
	return args.Get(0).(uint64), args.Error(1)
}

type ioRecord struct {
	name string
	off  int64
	len  int
}

// memBackend is an objstore.Backend that keeps objects in memory and records
// every call.
type memBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	writes  []ioRecord
	reads   []ioRecord

	// allowWrites, when >= 0, is the number of writes accepted before
	// writeErr is returned.
	allowWrites int
	writeErr    error
	readErr     error
	statErr     error
	truncate    int // bytes dropped from every read
}

func newMemBackend() *memBackend {
	return &memBackend{objects: make(map[string][]byte), allowWrites: -1}
}

func (m *memBackend) String() string { return "mem://" }

func (m *memBackend) WriteAt(ctx context.Context, name string, p []byte, off int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allowWrites == 0 {
		return m.writeErr
	}
	if m.allowWrites > 0 {
		m.allowWrites--
	}
	m.writes = append(m.writes, ioRecord{name: name, off: off, len: len(p)})
	data := m.objects[name]
	if end := int(off) + len(p); end > len(data) {
		data = append(data, make([]byte, end-len(data))...)
	}
	copy(data[off:], p)
	m.objects[name] = data
	return nil
}

func (m *memBackend) ReadAt(ctx context.Context, name string, p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, ioRecord{name: name, off: off, len: len(p)})
	if m.readErr != nil {
		return 0, m.readErr
	}
	data, ok := m.objects[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", objstore.ErrObjectNotFound, name)
	}
	if off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if m.truncate > 0 && n > m.truncate {
		n -= m.truncate
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memBackend) Stat(ctx context.Context, name string) (objstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statErr != nil {
		return objstore.ObjectInfo{}, m.statErr
	}
	data, ok := m.objects[name]
	if !ok {
		return objstore.ObjectInfo{}, fmt.Errorf("%w: %s", objstore.ErrObjectNotFound, name)
	}
	return objstore.ObjectInfo{Name: name, Size: int64(len(data)), ModTime: time.Now()}, nil
}
