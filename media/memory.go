package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

var _ Uploader = (*MemoryUploader)(nil)

// MemoryUploader keeps objects in process memory. It backs local development
// when no bucket is configured.
type MemoryUploader struct {
	baseURL string
	objects map[string][]byte
	lock    sync.RWMutex
}

func NewMemoryUploader(baseURL string) *MemoryUploader {
	return &MemoryUploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (m *MemoryUploader) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.objects[key] = buf.Bytes()
	return m.baseURL + "/" + key, nil
}

func (m *MemoryUploader) Delete(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.objects, key)
	return nil
}

// Object returns a stored object.
func (m *MemoryUploader) Object(key string) ([]byte, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len reports how many objects are stored.
func (m *MemoryUploader) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.objects)
}
