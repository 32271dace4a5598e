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

// MemoryStore is an in-process ObjectStore used in tests and local
// development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (ms *MemoryStore) Put(key, contentType string, data []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	ms.objects[key] = memoryObject{data: buf, contentType: contentType}
}

func (ms *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	ms.mu.RLock()
	obj, ok := ms.objects[key]
	ms.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("object %q not found", key)
	}
	info := &ObjectInfo{ContentType: obj.contentType, Size: int64(len(obj.data))}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}
